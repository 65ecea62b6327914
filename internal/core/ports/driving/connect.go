package driving

import (
	"context"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
)

// ConnectService runs the OAuth connection flow for social platforms.
// It starts authorization flows and processes provider callbacks into
// persisted connections.
type ConnectService interface {
	// Authorize starts an OAuth flow for the given platform.
	// Returns the provider authorization URL and the anti-forgery state
	// the caller must set as a short-lived cookie before redirecting.
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResponse, error)

	// Callback processes the provider redirect: verifies the anti-forgery
	// state, exchanges the code, fetches the external profile, and upserts
	// the connection for the authenticated user.
	// Failures return a *ConnectError carrying the redirect reason code.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResponse, error)
}

// AuthorizeRequest represents a request to start a platform OAuth flow.
type AuthorizeRequest struct {
	// Platform is the target platform (tiktok, instagram, x, ...)
	Platform domain.PlatformType `json:"platform"`

	// UserID is the authenticated application user starting the flow
	UserID string `json:"user_id"`
}

// AuthorizeResponse contains the authorization URL and state.
type AuthorizeResponse struct {
	// AuthorizationURL is the provider URL to redirect the user to.
	AuthorizationURL string `json:"authorization_url"`

	// State is the anti-forgery value to store client-side and compare
	// against the state parameter echoed back in the callback.
	State string `json:"state"`
}

// CallbackRequest carries the provider redirect parameters plus the
// anti-forgery value recovered from the client.
type CallbackRequest struct {
	// Platform is the platform segment from the callback path
	Platform domain.PlatformType

	// AuthToken is the caller's credential (bearer token or session
	// cookie value). The owning user is resolved late in the flow so
	// an expired session surfaces as a login redirect, not a retry.
	AuthToken string

	// Code is the authorization code from the provider (may be empty)
	Code string

	// State is the state parameter echoed back by the provider
	State string

	// StoredState is the anti-forgery value recovered from the client
	// cookie. The transport layer clears the cookie before calling,
	// regardless of outcome.
	StoredState string
}

// CallbackResponse is the result of a completed connection flow.
type CallbackResponse struct {
	// Connection is the stored connection summary
	Connection *domain.ConnectionSummary `json:"connection"`

	// Message is a human-readable status line
	Message string `json:"message"`
}

// ConnectReason is the machine-readable reason code surfaced to the
// client when a connection flow ends, in success or failure.
type ConnectReason string

const (
	ReasonUnsupportedPlatform ConnectReason = "unsupported_platform"
	ReasonMissingCode         ConnectReason = "missing_code"
	ReasonMissingState        ConnectReason = "missing_state"
	ReasonInvalidState        ConnectReason = "invalid_state"
	ReasonTokenExchangeFailed ConnectReason = "token_exchange_failed"
	ReasonProfileFetchFailed  ConnectReason = "profile_fetch_failed"
	ReasonAuthRequired        ConnectReason = "auth_required"
	ReasonInvalidToken        ConnectReason = "invalid_token"
	ReasonStorageFailed       ConnectReason = "storage_failed"
	ReasonConnectionFailed    ConnectReason = "connection_failed"
)

// ConnectError is a connection flow failure with a reason code the
// transport layer maps onto the result redirect.
type ConnectError struct {
	// Reason is the machine-readable code for the failure
	Reason ConnectReason

	// Platform is the platform the flow was for (may be empty if the
	// failure happened before the platform was validated)
	Platform domain.PlatformType

	// Err is the underlying cause, if any
	Err error
}

func (e *ConnectError) Error() string {
	if e.Err != nil {
		return string(e.Reason) + ": " + e.Err.Error()
	}
	return string(e.Reason)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// AuthRequired reports whether the failure means the user must sign in
// again rather than retry the connection.
func (e *ConnectError) AuthRequired() bool {
	return e.Reason == ReasonAuthRequired || e.Reason == ReasonInvalidToken
}

// NewConnectError builds a ConnectError wrapping err.
func NewConnectError(reason ConnectReason, platform domain.PlatformType, err error) *ConnectError {
	return &ConnectError{Reason: reason, Platform: platform, Err: err}
}
