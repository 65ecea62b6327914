package driven

import (
	"context"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
)

// TaskQueue handles background task queuing and processing.
// Implementations can use Redis (preferred) or Postgres (fallback).
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing.
	Enqueue(ctx context.Context, task *domain.Task) error

	// Dequeue retrieves the next available task for processing.
	// The task is marked as processing and will not be returned to other workers.
	// Returns nil, nil if no tasks are available (for non-blocking implementations).
	Dequeue(ctx context.Context) (*domain.Task, error)

	// DequeueWithTimeout retrieves the next available task, waiting up to timeout seconds.
	// Returns nil, nil if timeout is reached with no tasks available.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion of a task.
	// The task is removed from the queue.
	Ack(ctx context.Context, taskID string) error

	// Nack indicates task processing failed and should be retried.
	// The task is returned to the queue with updated retry count.
	// If max retries exceeded, task is moved to failed state.
	Nack(ctx context.Context, taskID string, reason string) error

	// GetTask retrieves a task by ID (for status checking).
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}

// QueueStats contains queue statistics
type QueueStats struct {
	// PendingCount is the number of tasks waiting to be processed
	PendingCount int64 `json:"pending_count"`

	// ProcessingCount is the number of tasks currently being processed
	ProcessingCount int64 `json:"processing_count"`

	// CompletedCount is the number of successfully completed tasks
	CompletedCount int64 `json:"completed_count"`

	// FailedCount is the number of tasks that failed after all retries
	FailedCount int64 `json:"failed_count"`
}

// SchedulerStore handles persistence for scheduled jobs.
// This is separate from TaskQueue because scheduled jobs are configuration,
// not transient queue items.
type SchedulerStore interface {
	// GetScheduledJob retrieves a scheduled job by ID
	GetScheduledJob(ctx context.Context, id string) (*domain.ScheduledJob, error)

	// ListScheduledJobs retrieves all scheduled jobs
	ListScheduledJobs(ctx context.Context) ([]*domain.ScheduledJob, error)

	// SaveScheduledJob creates or updates a scheduled job
	SaveScheduledJob(ctx context.Context, job *domain.ScheduledJob) error

	// DeleteScheduledJob removes a scheduled job
	DeleteScheduledJob(ctx context.Context, id string) error

	// GetDueScheduledJobs retrieves scheduled jobs that are due to run
	GetDueScheduledJobs(ctx context.Context) ([]*domain.ScheduledJob, error)

	// UpdateLastRun updates the last run time and next run time
	UpdateLastRun(ctx context.Context, id string, lastError string) error
}
