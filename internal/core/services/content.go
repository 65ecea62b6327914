package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
)

// Ensure contentService implements ContentService
var _ driving.ContentService = (*contentService)(nil)

// contentService implements the ContentService interface
type contentService struct {
	content     driven.ContentStore
	connections driven.ConnectionStore
}

// NewContentService creates a new ContentService
func NewContentService(content driven.ContentStore, connections driven.ConnectionStore) driving.ContentService {
	return &contentService{
		content:     content,
		connections: connections,
	}
}

// Create adds a new draft content item for the user
func (s *contentService) Create(ctx context.Context, userID string, req driving.CreateContentRequest) (*domain.ContentItem, error) {
	if userID == "" || req.Title == "" {
		return nil, domain.ErrInvalidInput
	}
	if !domain.IsCorePlatform(req.Platform) {
		return nil, domain.ErrUnsupportedPlatform
	}

	now := time.Now()
	item := &domain.ContentItem{
		ID:        domain.GenerateID(),
		UserID:    userID,
		Platform:  req.Platform,
		Title:     req.Title,
		Body:      req.Body,
		MediaURL:  req.MediaURL,
		Status:    domain.ContentStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.content.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}
	return item, nil
}

// Get retrieves a content item owned by the user
func (s *contentService) Get(ctx context.Context, userID, itemID string) (*domain.ContentItem, error) {
	return s.getOwned(ctx, userID, itemID)
}

// List lists the user's content items
func (s *contentService) List(ctx context.Context, userID string, filter driven.ContentFilter) ([]*domain.ContentItem, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.content.ListByUser(ctx, userID, filter)
}

// Schedule marks a draft item for publishing at the given time.
// The target platform must be connected so the publish has tokens to use.
func (s *contentService) Schedule(ctx context.Context, userID, itemID string, at time.Time) (*domain.ContentItem, error) {
	item, err := s.getOwned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.ContentStatusPublished {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.connections.GetByUserAndPlatform(ctx, userID, item.Platform); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotConnected
		}
		return nil, fmt.Errorf("check connection: %w", err)
	}

	item.Status = domain.ContentStatusScheduled
	item.ScheduledFor = &at
	item.UpdatedAt = time.Now()

	if err := s.content.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}
	return item, nil
}

// Delete removes a content item owned by the user
func (s *contentService) Delete(ctx context.Context, userID, itemID string) error {
	if _, err := s.getOwned(ctx, userID, itemID); err != nil {
		return err
	}
	return s.content.Delete(ctx, itemID)
}

func (s *contentService) getOwned(ctx context.Context, userID, itemID string) (*domain.ContentItem, error) {
	if userID == "" || itemID == "" {
		return nil, domain.ErrInvalidInput
	}

	item, err := s.content.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return item, nil
}
