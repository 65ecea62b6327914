package platforms

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
)

func testCredentials() Credentials {
	return Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://app.example.com/api/v1/connect/x/callback",
		Scopes:       []string{"users.read", "tweet.write"},
	}
}

func testHTTPClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

func TestXClient_ExchangeCode_UsesBasicAuth(t *testing.T) {
	var gotAuth, gotBody, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok123","refresh_token":"ref123","expires_in":7200,"scope":"users.read tweet.write"}`))
	}))
	defer server.Close()

	client := NewXClient(testCredentials(), testHTTPClient())
	client.tokenURL = server.URL

	grant, err := client.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))
	if gotAuth != expectedAuth {
		t.Errorf("expected Basic auth header, got %q", gotAuth)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("expected form content type, got %q", gotContentType)
	}
	if strings.Contains(gotBody, "client_secret") {
		t.Error("expected no client_secret in request body")
	}
	if !strings.Contains(gotBody, "grant_type=authorization_code") {
		t.Errorf("expected authorization_code grant, got body %q", gotBody)
	}
	if grant.AccessToken != "tok123" {
		t.Errorf("expected access token tok123, got %s", grant.AccessToken)
	}
	if grant.ExpiresIn != 7200 {
		t.Errorf("expected expires_in 7200, got %d", grant.ExpiresIn)
	}
}

func TestXClient_ExchangeCode_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}))
	defer server.Close()

	client := NewXClient(testCredentials(), testHTTPClient())
	client.tokenURL = server.URL

	if _, err := client.ExchangeCode(context.Background(), "stale-code"); err == nil {
		t.Fatal("expected error")
	}
}

func TestXClient_FetchProfile(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"u1","username":"alice","name":"Alice"}}`))
	}))
	defer server.Close()

	client := NewXClient(testCredentials(), testHTTPClient())
	client.profileURL = server.URL

	profile, err := client.FetchProfile(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer tok123" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if profile.ID != "u1" {
		t.Errorf("expected id u1, got %s", profile.ID)
	}
	if profile.Username != "alice" {
		t.Errorf("expected username alice, got %s", profile.Username)
	}
}

func TestXClient_Publish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"tweet-1"}}`))
	}))
	defer server.Close()

	client := NewXClient(testCredentials(), testHTTPClient())
	client.publishURL = server.URL

	id, err := client.Publish(context.Background(),
		&domain.ConnectionSecrets{AccessToken: "tok123"},
		&domain.ContentItem{Title: "Hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "tweet-1" {
		t.Errorf("expected tweet-1, got %s", id)
	}
}

func TestTikTokClient_ExchangeCode_CredentialsInBody(t *testing.T) {
	var gotAuth string
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = r.ParseForm()
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok456","refresh_token":"ref456","expires_in":86400,"open_id":"open-1","scope":"user.info.basic"}`))
	}))
	defer server.Close()

	client := NewTikTokClient(testCredentials(), testHTTPClient())
	client.tokenURL = server.URL

	grant, err := client.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
	if got := gotForm["client_key"]; len(got) != 1 || got[0] != "client-id" {
		t.Errorf("expected client_key in body, got %v", gotForm)
	}
	if got := gotForm["client_secret"]; len(got) != 1 || got[0] != "client-secret" {
		t.Errorf("expected client_secret in body, got %v", gotForm)
	}
	if grant.OpenID != "open-1" {
		t.Errorf("expected open_id carried on grant, got %s", grant.OpenID)
	}
}

func TestTikTokClient_AuthorizeURL(t *testing.T) {
	client := NewTikTokClient(testCredentials(), testHTTPClient())

	u := client.AuthorizeURL("state-abc")

	if !strings.Contains(u, "state=state-abc") {
		t.Errorf("expected state embedded, got %s", u)
	}
	if !strings.Contains(u, "client_key=client-id") {
		t.Errorf("expected client_key param, got %s", u)
	}
	if !strings.Contains(u, "response_type=code") {
		t.Errorf("expected code response type, got %s", u)
	}
}

func TestInstagramClient_ExchangeCode_NumericUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("client_secret") != "client-secret" {
			t.Error("expected client_secret in body")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok789","user_id":17841400000}`))
	}))
	defer server.Close()

	client := NewInstagramClient(testCredentials(), testHTTPClient())
	client.tokenURL = server.URL

	grant, err := client.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if grant.OpenID != "17841400000" {
		t.Errorf("expected numeric user_id as string, got %q", grant.OpenID)
	}
	// No expiry reported means no expiry tracked
	if grant.ExpiresIn != 0 {
		t.Errorf("expected 0 expires_in, got %d", grant.ExpiresIn)
	}
}

func TestInstagramClient_FetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "tok789" {
			t.Error("expected access_token query param")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ig-1","username":"creator_ig"}`))
	}))
	defer server.Close()

	client := NewInstagramClient(testCredentials(), testHTTPClient())
	client.profileURL = server.URL

	profile, err := client.FetchProfile(context.Background(), "tok789")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Username != "creator_ig" {
		t.Errorf("expected username creator_ig, got %s", profile.Username)
	}
}

func TestFactory(t *testing.T) {
	creds := map[domain.PlatformType]Credentials{
		domain.PlatformTypeTikTok: testCredentials(),
		domain.PlatformTypeX:      testCredentials(),
		domain.PlatformTypeInstagram: {
			// Not configured: missing secret
			ClientID: "only-id",
		},
	}

	f := NewFactory(creds)

	if _, err := f.ClientFor(domain.PlatformTypeTikTok); err != nil {
		t.Errorf("expected tiktok client, got %v", err)
	}
	if _, err := f.ClientFor(domain.PlatformTypeX); err != nil {
		t.Errorf("expected x client, got %v", err)
	}
	if _, err := f.ClientFor(domain.PlatformTypeInstagram); err != domain.ErrUnsupportedPlatform {
		t.Errorf("expected ErrUnsupportedPlatform for unconfigured platform, got %v", err)
	}
	if _, err := f.ClientFor(domain.PlatformType("myspace")); err != domain.ErrUnsupportedPlatform {
		t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
	}
	if len(f.Supported()) != 2 {
		t.Errorf("expected 2 supported platforms, got %d", len(f.Supported()))
	}
}
