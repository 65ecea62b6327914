package domain

import "time"

// ContentStatus represents the publishing state of a content item
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusScheduled ContentStatus = "scheduled"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusFailed    ContentStatus = "failed"
)

// ContentItem is a piece of creator content destined for one platform.
// Scheduled items are picked up by the publisher once ScheduledFor passes.
type ContentItem struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	Platform PlatformType `json:"platform"`

	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	MediaURL string `json:"media_url,omitempty"`

	Status       ContentStatus `json:"status"`
	ScheduledFor *time.Time    `json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time    `json:"published_at,omitempty"`

	// LastError contains the reason the last publish attempt failed.
	LastError string `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDue returns true if the item is scheduled and its publish time has passed.
func (c *ContentItem) IsDue() bool {
	if c.Status != ContentStatusScheduled || c.ScheduledFor == nil {
		return false
	}
	return time.Now().After(*c.ScheduledFor)
}

// MarkPublished flips the item to published at the given time.
func (c *ContentItem) MarkPublished(at time.Time) {
	c.Status = ContentStatusPublished
	c.PublishedAt = &at
	c.UpdatedAt = at
	c.LastError = ""
}

// MarkFailed records a failed publish attempt.
func (c *ContentItem) MarkFailed(reason string) {
	c.Status = ContentStatusFailed
	c.LastError = reason
	c.UpdatedAt = time.Now()
}
