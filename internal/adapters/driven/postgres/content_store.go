package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore implements driven.ContentStore using PostgreSQL
type ContentStore struct {
	db *DB
}

// NewContentStore creates a new ContentStore
func NewContentStore(db *DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, user_id, platform, title, body, media_url,
	status, scheduled_for, published_at, last_error, created_at, updated_at`

// Save creates or updates a content item
func (s *ContentStore) Save(ctx context.Context, item *domain.ContentItem) error {
	query := `
		INSERT INTO content_items (id, user_id, platform, title, body, media_url,
			status, scheduled_for, published_at, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			media_url = EXCLUDED.media_url,
			status = EXCLUDED.status,
			scheduled_for = EXCLUDED.scheduled_for,
			published_at = EXCLUDED.published_at,
			last_error = EXCLUDED.last_error,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		string(item.Platform),
		item.Title,
		item.Body,
		item.MediaURL,
		string(item.Status),
		NullTime(item.ScheduledFor),
		NullTime(item.PublishedAt),
		item.LastError,
		item.CreatedAt,
		item.UpdatedAt,
	)
	return err
}

// Get retrieves a content item by ID
func (s *ContentStore) Get(ctx context.Context, id string) (*domain.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1`

	item, err := scanContentItem(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return item, err
}

// ListByUser lists a user's content items, newest first
func (s *ContentStore) ListByUser(ctx context.Context, userID string, filter driven.ContentFilter) ([]*domain.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE user_id = $1`
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Platform != "" {
		args = append(args, string(filter.Platform))
		query += fmt.Sprintf(" AND platform = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContentItems(rows)
}

// ListDue lists scheduled items whose publish time has passed
func (s *ContentStore) ListDue(ctx context.Context, limit int) ([]*domain.ContentItem, error) {
	query := `SELECT ` + contentColumns + `
		FROM content_items
		WHERE status = $1 AND scheduled_for IS NOT NULL AND scheduled_for <= $2
		ORDER BY scheduled_for ASC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, string(domain.ContentStatusScheduled), time.Now(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContentItems(rows)
}

// Delete removes a content item
func (s *ContentStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM content_items WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func scanContentItem(row rowScanner) (*domain.ContentItem, error) {
	var item domain.ContentItem
	var scheduledFor, publishedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Platform,
		&item.Title,
		&item.Body,
		&item.MediaURL,
		&item.Status,
		&scheduledFor,
		&publishedAt,
		&item.LastError,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.ScheduledFor = TimePtr(scheduledFor)
	item.PublishedAt = TimePtr(publishedAt)
	return &item, nil
}

func scanContentItems(rows *sql.Rows) ([]*domain.ContentItem, error) {
	var items []*domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
