package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
)

func validatingAuthService(token, userID string) *mockAuthService {
	return &mockAuthService{
		validateTokenFn: func(ctx context.Context, got string) (*domain.AuthContext, error) {
			if got == token {
				return &domain.AuthContext{UserID: userID, Role: domain.RoleCreator}, nil
			}
			return nil, domain.ErrTokenInvalid
		},
	}
}

func TestHandleConnectAuthorize(t *testing.T) {
	mockConnect := &mockConnectService{
		authorizeFn: func(ctx context.Context, req driving.AuthorizeRequest) (*driving.AuthorizeResponse, error) {
			if req.UserID != "user-1" {
				t.Errorf("expected user 'user-1', got %s", req.UserID)
			}
			if req.Platform != domain.PlatformTypeTikTok {
				t.Errorf("expected platform tiktok, got %s", req.Platform)
			}
			return &driving.AuthorizeResponse{
				AuthorizationURL: "https://www.tiktok.com/v2/auth/authorize/?client_key=abc&state=state-123",
				State:            "state-123",
			}, nil
		},
	}
	server := &Server{authService: validatingAuthService("bearer-token", "user-1"), connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/tiktok", nil)
	req.SetPathValue("platform", "tiktok")
	req.Header.Set("Authorization", "Bearer bearer-token")
	rr := httptest.NewRecorder()

	server.handleConnectAuthorize(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "https://www.tiktok.com/v2/auth/authorize/?client_key=abc&state=state-123" {
		t.Errorf("unexpected redirect location: %s", loc)
	}

	cookie := findCookie(rr.Result().Cookies(), stateCookieName)
	if cookie == nil {
		t.Fatal("expected state cookie to be set")
	}
	if cookie.Value != "state-123" {
		t.Errorf("expected cookie value 'state-123', got %s", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("expected state cookie to be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("expected state cookie to be SameSite=Lax")
	}
	if cookie.MaxAge != 600 {
		t.Errorf("expected state cookie max age 600, got %d", cookie.MaxAge)
	}
}

func TestHandleConnectAuthorize_SessionCookieFallback(t *testing.T) {
	mockConnect := &mockConnectService{
		authorizeFn: func(ctx context.Context, req driving.AuthorizeRequest) (*driving.AuthorizeResponse, error) {
			return &driving.AuthorizeResponse{AuthorizationURL: "https://example.com/consent", State: "s"}, nil
		},
	}
	server := &Server{authService: validatingAuthService("cookie-token", "user-1"), connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/x", nil)
	req.SetPathValue("platform", "x")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})
	rr := httptest.NewRecorder()

	server.handleConnectAuthorize(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "https://example.com/consent" {
		t.Errorf("unexpected redirect location: %s", loc)
	}
}

func TestHandleConnectAuthorize_NotLoggedIn(t *testing.T) {
	server := &Server{authService: validatingAuthService("valid", "user-1")}

	req := httptest.NewRequest("GET", "/api/v1/connect/tiktok", nil)
	req.SetPathValue("platform", "tiktok")
	rr := httptest.NewRecorder()

	server.handleConnectAuthorize(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != loginPath {
		t.Errorf("expected redirect to %s, got %s", loginPath, loc)
	}
}

func TestHandleConnectAuthorize_ExpiredSession(t *testing.T) {
	server := &Server{authService: validatingAuthService("valid", "user-1")}

	req := httptest.NewRequest("GET", "/api/v1/connect/tiktok", nil)
	req.SetPathValue("platform", "tiktok")
	req.Header.Set("Authorization", "Bearer expired-token")
	rr := httptest.NewRecorder()

	server.handleConnectAuthorize(rr, req)

	if loc := rr.Header().Get("Location"); loc != loginPath {
		t.Errorf("expected redirect to %s, got %s", loginPath, loc)
	}
}

func TestHandleConnectAuthorize_UnsupportedPlatform(t *testing.T) {
	mockConnect := &mockConnectService{
		authorizeFn: func(ctx context.Context, req driving.AuthorizeRequest) (*driving.AuthorizeResponse, error) {
			return nil, domain.ErrUnsupportedPlatform
		},
	}
	server := &Server{authService: validatingAuthService("t", "user-1"), connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/myspace", nil)
	req.SetPathValue("platform", "myspace")
	req.Header.Set("Authorization", "Bearer t")
	rr := httptest.NewRecorder()

	server.handleConnectAuthorize(rr, req)

	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("failed to parse location: %v", err)
	}
	if loc.Path != settingsPath {
		t.Errorf("expected redirect to %s, got %s", settingsPath, loc.Path)
	}
	if loc.Query().Get("error") != "unsupported_platform" {
		t.Errorf("expected error 'unsupported_platform', got %s", loc.Query().Get("error"))
	}
	if loc.Query().Get("platform") != "myspace" {
		t.Errorf("expected platform 'myspace', got %s", loc.Query().Get("platform"))
	}
}

func TestHandleConnectCallback_Success(t *testing.T) {
	var gotReq driving.CallbackRequest
	mockConnect := &mockConnectService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			gotReq = req
			return &driving.CallbackResponse{
				Connection: &domain.ConnectionSummary{ID: "conn-1", Platform: domain.PlatformTypeX, Username: "alice"},
				Message:    "connected x as alice",
			}, nil
		},
	}
	server := &Server{connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/x/callback?code=code-1&state=state-123", nil)
	req.SetPathValue("platform", "x")
	req.Header.Set("Authorization", "Bearer bearer-token")
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "state-123"})
	rr := httptest.NewRecorder()

	server.handleConnectCallback(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != settingsPath+"?success=true&platform=x" {
		t.Errorf("unexpected redirect location: %s", loc)
	}

	if gotReq.Platform != domain.PlatformTypeX {
		t.Errorf("expected platform x, got %s", gotReq.Platform)
	}
	if gotReq.AuthToken != "bearer-token" {
		t.Errorf("expected auth token 'bearer-token', got %s", gotReq.AuthToken)
	}
	if gotReq.Code != "code-1" {
		t.Errorf("expected code 'code-1', got %s", gotReq.Code)
	}
	if gotReq.State != "state-123" || gotReq.StoredState != "state-123" {
		t.Errorf("expected matching states, got %q / %q", gotReq.State, gotReq.StoredState)
	}

	// State is single use so the cookie must be cleared
	cookie := findCookie(rr.Result().Cookies(), stateCookieName)
	if cookie == nil {
		t.Fatal("expected state cookie deletion")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("expected cleared cookie, got value %q max age %d", cookie.Value, cookie.MaxAge)
	}
}

func TestHandleConnectCallback_ClearsCookieOnFailure(t *testing.T) {
	mockConnect := &mockConnectService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			return nil, driving.NewConnectError(driving.ReasonTokenExchangeFailed, req.Platform, errors.New("provider returned 500"))
		},
	}
	server := &Server{connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/tiktok/callback?code=c&state=s", nil)
	req.SetPathValue("platform", "tiktok")
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s"})
	rr := httptest.NewRecorder()

	server.handleConnectCallback(rr, req)

	cookie := findCookie(rr.Result().Cookies(), stateCookieName)
	if cookie == nil {
		t.Fatal("expected state cookie deletion")
	}
	if cookie.MaxAge >= 0 {
		t.Errorf("expected cleared cookie, got max age %d", cookie.MaxAge)
	}

	loc, _ := url.Parse(rr.Header().Get("Location"))
	if loc.Query().Get("error") != "token_exchange_failed" {
		t.Errorf("expected error 'token_exchange_failed', got %s", loc.Query().Get("error"))
	}
	if loc.Query().Get("platform") != "tiktok" {
		t.Errorf("expected platform 'tiktok', got %s", loc.Query().Get("platform"))
	}
}

func TestHandleConnectCallback_MissingCookie(t *testing.T) {
	mockConnect := &mockConnectService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			if req.StoredState != "" {
				t.Errorf("expected empty stored state, got %q", req.StoredState)
			}
			return nil, driving.NewConnectError(driving.ReasonMissingState, req.Platform, nil)
		},
	}
	server := &Server{connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/tiktok/callback?code=c&state=s", nil)
	req.SetPathValue("platform", "tiktok")
	rr := httptest.NewRecorder()

	server.handleConnectCallback(rr, req)

	loc, _ := url.Parse(rr.Header().Get("Location"))
	if loc.Query().Get("error") != "missing_state" {
		t.Errorf("expected error 'missing_state', got %s", loc.Query().Get("error"))
	}
}

func TestHandleConnectCallback_AuthRequired(t *testing.T) {
	mockConnect := &mockConnectService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			return nil, driving.NewConnectError(driving.ReasonAuthRequired, req.Platform, nil)
		},
	}
	server := &Server{connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/x/callback?code=c&state=s", nil)
	req.SetPathValue("platform", "x")
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s"})
	rr := httptest.NewRecorder()

	server.handleConnectCallback(rr, req)

	if loc := rr.Header().Get("Location"); loc != loginPath {
		t.Errorf("expected redirect to %s, got %s", loginPath, loc)
	}
}

func TestHandleConnectCallback_InvalidSessionRedirectsToLogin(t *testing.T) {
	mockConnect := &mockConnectService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			return nil, driving.NewConnectError(driving.ReasonInvalidToken, req.Platform, domain.ErrTokenExpired)
		},
	}
	server := &Server{connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/x/callback?code=c&state=s", nil)
	req.SetPathValue("platform", "x")
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s"})
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "stale-session"})
	rr := httptest.NewRecorder()

	server.handleConnectCallback(rr, req)

	if loc := rr.Header().Get("Location"); loc != loginPath {
		t.Errorf("expected redirect to %s, got %s", loginPath, loc)
	}
}

func TestHandleConnectCallback_UnexpectedError(t *testing.T) {
	mockConnect := &mockConnectService{
		callbackFn: func(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
			return nil, errors.New("database is down")
		},
	}
	server := &Server{connectService: mockConnect}

	req := httptest.NewRequest("GET", "/api/v1/connect/instagram/callback?code=c&state=s", nil)
	req.SetPathValue("platform", "instagram")
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s"})
	rr := httptest.NewRecorder()

	server.handleConnectCallback(rr, req)

	loc, _ := url.Parse(rr.Header().Get("Location"))
	if loc.Path != settingsPath {
		t.Errorf("expected redirect to %s, got %s", settingsPath, loc.Path)
	}
	if loc.Query().Get("error") != "connection_failed" {
		t.Errorf("expected error 'connection_failed', got %s", loc.Query().Get("error"))
	}
}

func TestCallerToken_BearerWinsOverCookie(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("GET", "/api/v1/connect/x", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})

	if got := server.callerToken(req); got != "header-token" {
		t.Errorf("expected 'header-token', got %s", got)
	}
}
