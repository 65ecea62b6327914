package config

import (
	"strings"
	"testing"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Mode != "all" {
		t.Errorf("expected mode 'all', got %s", cfg.Mode)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.WorkerConcurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.WorkerConcurrency)
	}
	if !cfg.SchedulerEnabled {
		t.Error("expected scheduler enabled by default")
	}
	if len(cfg.EncryptionKey) != 32 {
		t.Errorf("expected 32 byte encryption key, got %d", len(cfg.EncryptionKey))
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RUN_MODE", "worker")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Mode != "worker" {
		t.Errorf("expected mode 'worker', got %s", cfg.Mode)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.WorkerConcurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.WorkerConcurrency)
	}
	if cfg.SchedulerEnabled {
		t.Error("expected scheduler disabled")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %d", len(cfg.CORSOrigins))
	}
	if cfg.CORSOrigins[1] != "https://admin.example.com" {
		t.Errorf("expected trimmed origin, got %q", cfg.CORSOrigins[1])
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Setenv("RUN_MODE", "banana")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestLoad_EncryptionKey(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if string(cfg.EncryptionKey) != "0123456789abcdef0123456789abcdef" {
		t.Error("expected explicit encryption key to be used")
	}
}

func TestLoad_EncryptionKeyWrongSize(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "too-short")

	if _, err := Load(); err == nil {
		t.Error("expected error for wrong key size")
	}
}

func TestLoad_PlatformCredentials(t *testing.T) {
	t.Setenv("TIKTOK_CLIENT_ID", "tt-client")
	t.Setenv("TIKTOK_CLIENT_SECRET", "tt-secret")
	t.Setenv("TIKTOK_SCOPES", "user.info.basic,video.list")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	creds, ok := cfg.Platforms[domain.PlatformTypeTikTok]
	if !ok {
		t.Fatal("expected tiktok credentials")
	}
	if !creds.Configured() {
		t.Error("expected tiktok to be configured")
	}
	if creds.ClientID != "tt-client" {
		t.Errorf("expected client id 'tt-client', got %s", creds.ClientID)
	}
	if len(creds.Scopes) != 2 || creds.Scopes[1] != "video.list" {
		t.Errorf("unexpected scopes: %v", creds.Scopes)
	}

	// Unconfigured platforms still get a default redirect URI
	x := cfg.Platforms[domain.PlatformTypeX]
	if x.Configured() {
		t.Error("expected x to be unconfigured")
	}
	if !strings.HasSuffix(x.RedirectURI, "/api/v1/connect/x/callback") {
		t.Errorf("unexpected redirect URI: %s", x.RedirectURI)
	}
}

func TestPlatformCredentials_Configured(t *testing.T) {
	if (PlatformCredentials{}).Configured() {
		t.Error("expected empty credentials to be unconfigured")
	}
	if (PlatformCredentials{ClientID: "id"}).Configured() {
		t.Error("expected credentials without secret to be unconfigured")
	}
	if !(PlatformCredentials{ClientID: "id", ClientSecret: "secret"}).Configured() {
		t.Error("expected full credentials to be configured")
	}
}
