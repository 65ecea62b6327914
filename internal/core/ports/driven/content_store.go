package driven

import (
	"context"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
)

// ContentStore handles content item persistence (PostgreSQL)
type ContentStore interface {
	// Save creates or updates a content item
	Save(ctx context.Context, item *domain.ContentItem) error

	// Get retrieves a content item by ID
	Get(ctx context.Context, id string) (*domain.ContentItem, error)

	// ListByUser lists a user's content items, newest first
	ListByUser(ctx context.Context, userID string, filter ContentFilter) ([]*domain.ContentItem, error)

	// ListDue lists scheduled items whose publish time has passed
	ListDue(ctx context.Context, limit int) ([]*domain.ContentItem, error)

	// Delete removes a content item
	Delete(ctx context.Context, id string) error
}

// ContentFilter specifies criteria for listing content items
type ContentFilter struct {
	// Status filters by content status (optional, empty means all)
	Status domain.ContentStatus

	// Platform filters by target platform (optional, empty means all)
	Platform domain.PlatformType

	// Limit is the maximum number of items to return
	Limit int

	// Offset is the number of items to skip (for pagination)
	Offset int
}
