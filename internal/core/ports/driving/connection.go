package driving

import (
	"context"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
)

// ConnectionService manages a user's existing platform connections
type ConnectionService interface {
	// List returns the user's connections without secrets
	List(ctx context.Context, userID string) ([]*domain.ConnectionSummary, error)

	// Get returns one connection summary.
	// Returns domain.ErrNotConnected if the platform is not connected.
	Get(ctx context.Context, userID string, platform domain.PlatformType) (*domain.ConnectionSummary, error)

	// Disconnect removes the user's connection for a platform.
	// Returns domain.ErrNotConnected if no connection exists.
	Disconnect(ctx context.Context, userID string, platform domain.PlatformType) error

	// Refresh rotates the access token for a connected platform using
	// its refresh token. Returns the updated summary.
	Refresh(ctx context.Context, userID string, platform domain.PlatformType) (*domain.ConnectionSummary, error)
}
