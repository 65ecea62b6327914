package driving

import (
	"context"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// ContentService manages creator content items
type ContentService interface {
	// Create adds a new draft content item for the user
	Create(ctx context.Context, userID string, req CreateContentRequest) (*domain.ContentItem, error)

	// Get retrieves a content item owned by the user
	Get(ctx context.Context, userID, itemID string) (*domain.ContentItem, error)

	// List lists the user's content items
	List(ctx context.Context, userID string, filter driven.ContentFilter) ([]*domain.ContentItem, error)

	// Schedule marks a draft item for publishing at the given time.
	// The target platform must be connected.
	Schedule(ctx context.Context, userID, itemID string, at time.Time) (*domain.ContentItem, error)

	// Delete removes a content item owned by the user
	Delete(ctx context.Context, userID, itemID string) error
}

// CreateContentRequest holds the fields for a new content item
type CreateContentRequest struct {
	Platform domain.PlatformType `json:"platform"`
	Title    string              `json:"title"`
	Body     string              `json:"body,omitempty"`
	MediaURL string              `json:"media_url,omitempty"`
}

// PublisherService pushes due content out to the platforms
type PublisherService interface {
	// PublishDue finds all due scheduled items and enqueues one publish
	// task per item. Returns the number of items enqueued.
	PublishDue(ctx context.Context) (int, error)

	// PublishItem publishes a single content item now.
	// The owning user's platform connection supplies the tokens.
	PublishItem(ctx context.Context, itemID string) error
}
