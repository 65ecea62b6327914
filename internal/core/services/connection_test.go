package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

func storedConnection(userID string, platform domain.PlatformType) *domain.Connection {
	expires := time.Now().Add(time.Hour)
	return &domain.Connection{
		ID:       domain.GenerateID(),
		UserID:   userID,
		Platform: platform,
		Secrets: &domain.ConnectionSecrets{
			AccessToken:  "stored-access",
			RefreshToken: "stored-refresh",
		},
		ExpiresAt:   &expires,
		Profile:     domain.PlatformProfile{ID: "ext-1", Username: "creator"},
		Status:      domain.ConnectionStatusActive,
		ConnectedAt: time.Now(),
	}
}

func TestConnectionService_List(t *testing.T) {
	store := newMockConnectionStore()
	_ = store.Upsert(context.Background(), storedConnection("user-1", domain.PlatformTypeTikTok))
	_ = store.Upsert(context.Background(), storedConnection("user-1", domain.PlatformTypeX))
	_ = store.Upsert(context.Background(), storedConnection("user-2", domain.PlatformTypeInstagram))

	svc := NewConnectionService(store, newMockPlatformFactory(), nil)

	summaries, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Errorf("expected 2 connections, got %d", len(summaries))
	}
	for _, s := range summaries {
		if s.Username != "creator" {
			t.Errorf("expected username creator, got %s", s.Username)
		}
	}
}

func TestConnectionService_Get_NotConnected(t *testing.T) {
	svc := NewConnectionService(newMockConnectionStore(), newMockPlatformFactory(), nil)

	_, err := svc.Get(context.Background(), "user-1", domain.PlatformTypeTikTok)
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestConnectionService_Get_UnsupportedPlatform(t *testing.T) {
	svc := NewConnectionService(newMockConnectionStore(), newMockPlatformFactory(), nil)

	_, err := svc.Get(context.Background(), "user-1", domain.PlatformType("myspace"))
	if !errors.Is(err, domain.ErrUnsupportedPlatform) {
		t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
	}
}

func TestConnectionService_Disconnect(t *testing.T) {
	store := newMockConnectionStore()
	_ = store.Upsert(context.Background(), storedConnection("user-1", domain.PlatformTypeTikTok))

	svc := NewConnectionService(store, newMockPlatformFactory(), nil)

	if err := svc.Disconnect(context.Background(), "user-1", domain.PlatformTypeTikTok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.GetByUserAndPlatform(context.Background(), "user-1", domain.PlatformTypeTikTok); !errors.Is(err, domain.ErrNotFound) {
		t.Error("expected connection removed")
	}

	// Second disconnect reports not connected
	if err := svc.Disconnect(context.Background(), "user-1", domain.PlatformTypeTikTok); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestConnectionService_Refresh(t *testing.T) {
	store := newMockConnectionStore()
	_ = store.Upsert(context.Background(), storedConnection("user-1", domain.PlatformTypeTikTok))

	client := &mockPlatformClient{
		platform: domain.PlatformTypeTikTok,
		refreshGrant: &driven.TokenGrant{
			AccessToken:  "rotated-access",
			RefreshToken: "rotated-refresh",
			ExpiresIn:    7200,
		},
	}
	svc := NewConnectionService(store, newMockPlatformFactory(client), nil)

	summary, err := svc.Refresh(context.Background(), "user-1", domain.PlatformTypeTikTok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.ExpiresAt == nil {
		t.Fatal("expected new expiry")
	}

	conn, _ := store.GetByUserAndPlatform(context.Background(), "user-1", domain.PlatformTypeTikTok)
	if conn.Secrets.AccessToken != "rotated-access" {
		t.Errorf("expected rotated access token, got %s", conn.Secrets.AccessToken)
	}
	if conn.Secrets.RefreshToken != "rotated-refresh" {
		t.Errorf("expected rotated refresh token, got %s", conn.Secrets.RefreshToken)
	}
}

func TestConnectionService_Refresh_NoRefreshToken(t *testing.T) {
	store := newMockConnectionStore()
	conn := storedConnection("user-1", domain.PlatformTypeTikTok)
	conn.Secrets.RefreshToken = ""
	_ = store.Upsert(context.Background(), conn)

	svc := NewConnectionService(store, newMockPlatformFactory(), nil)

	if _, err := svc.Refresh(context.Background(), "user-1", domain.PlatformTypeTikTok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
