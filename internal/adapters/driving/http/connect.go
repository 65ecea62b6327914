package http

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
)

const (
	// stateCookieName holds the anti-forgery state between the authorize
	// redirect and the provider callback.
	stateCookieName = "oauth_state"

	// sessionCookieName carries the session token for browser navigation,
	// where an Authorization header cannot be attached.
	sessionCookieName = "creatorsync_session"

	// stateCookieTTL bounds how long a pending OAuth flow stays valid.
	stateCookieTTL = 10 * time.Minute

	// settingsPath is where the browser lands after a connection attempt.
	settingsPath = "/dashboard/settings/platforms"

	loginPath = "/login"
)

// handleConnectAuthorize godoc
// @Summary      Start a platform connection
// @Description  Redirects the browser to the platform's OAuth consent screen. Sets a short-lived anti-forgery cookie.
// @Tags         Connect
// @Param        platform  path  string  true  "Platform (tiktok, instagram, x)"
// @Success      302  "Redirect to the provider authorization URL"
// @Router       /connect/{platform} [get]
func (s *Server) handleConnectAuthorize(w http.ResponseWriter, r *http.Request) {
	platform := domain.PlatformType(r.PathValue("platform"))

	authCtx, err := s.resolveIdentity(r)
	if err != nil {
		redirect(w, r, loginPath)
		return
	}

	resp, err := s.connectService.Authorize(r.Context(), driving.AuthorizeRequest{
		Platform: platform,
		UserID:   authCtx.UserID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedPlatform) {
			redirectResult(w, r, platform, string(driving.ReasonUnsupportedPlatform))
			return
		}
		redirectResult(w, r, platform, string(driving.ReasonConnectionFailed))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    resp.State,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	redirect(w, r, resp.AuthorizationURL)
}

// handleConnectCallback godoc
// @Summary      Complete a platform connection
// @Description  Handles the provider redirect. Verifies state, exchanges the code, and stores the connection, then redirects back to the settings page with a result code.
// @Tags         Connect
// @Param        platform  path   string  true   "Platform"
// @Param        code      query  string  false  "Authorization code"
// @Param        state     query  string  false  "Anti-forgery state"
// @Success      302  "Redirect to the settings page"
// @Router       /connect/{platform}/callback [get]
func (s *Server) handleConnectCallback(w http.ResponseWriter, r *http.Request) {
	platform := domain.PlatformType(r.PathValue("platform"))

	// The state cookie is single use. Read it and clear it before any
	// comparison so a failed attempt cannot be replayed.
	storedState := ""
	if c, err := r.Cookie(stateCookieName); err == nil {
		storedState = c.Value
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	query := r.URL.Query()
	resp, err := s.connectService.Callback(r.Context(), driving.CallbackRequest{
		Platform:    platform,
		AuthToken:   s.callerToken(r),
		Code:        query.Get("code"),
		State:       query.Get("state"),
		StoredState: storedState,
	})
	if err != nil {
		var connErr *driving.ConnectError
		if errors.As(err, &connErr) {
			if connErr.AuthRequired() {
				redirect(w, r, loginPath)
				return
			}
			redirectResult(w, r, platform, string(connErr.Reason))
			return
		}
		redirectResult(w, r, platform, string(driving.ReasonConnectionFailed))
		return
	}

	redirect(w, r, settingsPath+"?success=true&platform="+url.QueryEscape(string(resp.Connection.Platform)))
}

// resolveIdentity authenticates a browser request, trying the bearer
// token first and falling back to the session cookie.
func (s *Server) resolveIdentity(r *http.Request) (*domain.AuthContext, error) {
	token := s.callerToken(r)
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.authService.ValidateToken(r.Context(), token)
}

// callerToken returns the raw session token for a browser request, or
// empty when the request carries no credential.
func (s *Server) callerToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}

// redirectResult sends the browser back to the settings page carrying
// an error code for the failed platform.
func redirectResult(w http.ResponseWriter, r *http.Request, platform domain.PlatformType, reason string) {
	q := url.Values{}
	q.Set("error", reason)
	if platform != "" {
		q.Set("platform", string(platform))
	}
	redirect(w, r, settingsPath+"?"+q.Encode())
}

func buildSessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func buildSessionDeletionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
