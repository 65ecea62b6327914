package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
)

// Ensure publisherService implements PublisherService
var _ driving.PublisherService = (*publisherService)(nil)

// publishBatchLimit caps how many due items one sweep picks up.
const publishBatchLimit = 100

// PublisherServiceConfig holds configuration for the publisher service.
type PublisherServiceConfig struct {
	Content     driven.ContentStore
	Connections driven.ConnectionStore
	Platforms   driven.PlatformClientFactory
	TaskQueue   driven.TaskQueue
	Logger      *slog.Logger
}

// publisherService pushes due content out to the platforms.
// PublishDue runs on the scheduler cadence and fans out one task per
// due item; PublishItem runs on workers processing those tasks.
type publisherService struct {
	content     driven.ContentStore
	connections driven.ConnectionStore
	platforms   driven.PlatformClientFactory
	taskQueue   driven.TaskQueue
	logger      *slog.Logger
}

// NewPublisherService creates a new PublisherService.
func NewPublisherService(cfg PublisherServiceConfig) driving.PublisherService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &publisherService{
		content:     cfg.Content,
		connections: cfg.Connections,
		platforms:   cfg.Platforms,
		taskQueue:   cfg.TaskQueue,
		logger:      logger,
	}
}

// PublishDue finds all due scheduled items and enqueues one publish
// task per item.
func (s *publisherService) PublishDue(ctx context.Context) (int, error) {
	due, err := s.content.ListDue(ctx, publishBatchLimit)
	if err != nil {
		return 0, fmt.Errorf("list due content: %w", err)
	}

	enqueued := 0
	for _, item := range due {
		task := domain.NewPublishItemTask(item.ID)
		if err := s.taskQueue.Enqueue(ctx, task); err != nil {
			s.logger.Error("enqueue publish task failed",
				"content_id", item.ID,
				"error", err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.logger.Info("due content enqueued", "count", enqueued)
	}
	return enqueued, nil
}

// PublishItem publishes a single content item now.
func (s *publisherService) PublishItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return domain.ErrInvalidInput
	}

	item, err := s.content.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get content: %w", err)
	}

	// A task can race a manual publish or a delete; only scheduled
	// items move forward.
	if item.Status != domain.ContentStatusScheduled {
		s.logger.Info("skipping publish, item no longer scheduled",
			"content_id", item.ID,
			"status", item.Status)
		return nil
	}

	conn, err := s.connections.GetByUserAndPlatform(ctx, item.UserID, item.Platform)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.failItem(ctx, item, "platform not connected")
		}
		return fmt.Errorf("get connection: %w", err)
	}
	if conn.IsExpired() {
		return s.failItem(ctx, item, "platform token expired")
	}

	client, err := s.platforms.ClientFor(item.Platform)
	if err != nil {
		return s.failItem(ctx, item, "platform not supported")
	}

	externalID, err := client.Publish(ctx, conn.Secrets, item)
	if err != nil {
		return s.failItem(ctx, item, err.Error())
	}

	item.MarkPublished(time.Now())
	if err := s.content.Save(ctx, item); err != nil {
		return fmt.Errorf("save published content: %w", err)
	}

	s.logger.Info("content published",
		"content_id", item.ID,
		"platform", item.Platform,
		"external_id", externalID)
	return nil
}

// failItem records the failure on the item. The publish error itself is
// returned so the task layer can retry.
func (s *publisherService) failItem(ctx context.Context, item *domain.ContentItem, reason string) error {
	item.MarkFailed(reason)
	if err := s.content.Save(ctx, item); err != nil {
		s.logger.Error("save failed content state",
			"content_id", item.ID,
			"error", err)
	}
	return fmt.Errorf("publish %s: %s", item.ID, reason)
}
