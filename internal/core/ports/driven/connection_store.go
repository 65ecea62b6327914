package driven

import (
	"context"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
)

// ConnectionStore handles platform connection persistence (PostgreSQL).
// Token values are encrypted at rest; implementations decrypt on read.
type ConnectionStore interface {
	// Upsert creates or replaces the connection for (UserID, Platform).
	// Reconnecting a platform overwrites the prior record and its tokens.
	Upsert(ctx context.Context, conn *domain.Connection) error

	// Get retrieves a connection by ID, with secrets decrypted
	Get(ctx context.Context, id string) (*domain.Connection, error)

	// GetByUserAndPlatform retrieves a user's connection for one platform,
	// with secrets decrypted. Returns domain.ErrNotFound if absent.
	GetByUserAndPlatform(ctx context.Context, userID string, platform domain.PlatformType) (*domain.Connection, error)

	// ListByUser lists a user's connections without secrets
	ListByUser(ctx context.Context, userID string) ([]*domain.Connection, error)

	// Delete removes a connection
	Delete(ctx context.Context, id string) error

	// DeleteByUserAndPlatform removes a user's connection for one platform
	DeleteByUserAndPlatform(ctx context.Context, userID string, platform domain.PlatformType) error
}
