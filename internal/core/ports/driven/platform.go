package driven

import (
	"context"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
)

// TokenGrant is the result of exchanging an authorization code
// or refreshing an access token.
type TokenGrant struct {
	// AccessToken is the bearer token for API calls
	AccessToken string

	// RefreshToken allows obtaining a new access token (may be empty)
	RefreshToken string

	// ExpiresIn is the access token lifetime in seconds (0 = no expiry)
	ExpiresIn int64

	// Scope is the space- or comma-separated granted scopes as reported
	Scope string

	// OpenID is the platform user ID when the token response carries one
	// (TikTok returns open_id alongside the tokens)
	OpenID string
}

// PlatformClient talks to one external platform's OAuth and content APIs.
// One implementation exists per platform; each knows its own endpoint
// shapes and credential placement.
type PlatformClient interface {
	// Platform returns the platform this client serves
	Platform() domain.PlatformType

	// AuthorizeURL builds the authorization URL embedding the given state
	AuthorizeURL(state string) string

	// ExchangeCode exchanges an authorization code for tokens
	ExchangeCode(ctx context.Context, code string) (*TokenGrant, error)

	// RefreshAccessToken obtains a fresh access token from a refresh token
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenGrant, error)

	// FetchProfile retrieves the external identity for the token holder
	FetchProfile(ctx context.Context, accessToken string) (*domain.PlatformProfile, error)

	// Publish posts a content item to the platform.
	// Returns the platform-assigned ID of the created post.
	Publish(ctx context.Context, secrets *domain.ConnectionSecrets, item *domain.ContentItem) (string, error)
}

// PlatformClientFactory resolves the client for a platform.
// Unconfigured platforms yield domain.ErrUnsupportedPlatform.
type PlatformClientFactory interface {
	// ClientFor returns the client for the given platform
	ClientFor(platform domain.PlatformType) (PlatformClient, error)

	// Supported lists platforms this factory can serve
	Supported() []domain.PlatformType
}
