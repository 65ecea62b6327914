package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// Scheduler manages periodic task scheduling.
// It runs on worker nodes and enqueues tasks based on schedules.
//
// For multi-worker deployments, configure a DistributedLock to prevent
// duplicate task enqueuing across instances.
type Scheduler struct {
	store     driven.SchedulerStore
	taskQueue driven.TaskQueue
	lock      driven.DistributedLock
	logger    *slog.Logger

	// Internal state
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	interval time.Duration

	// Lock configuration
	lockTTL      time.Duration
	lockRequired bool
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	Store        driven.SchedulerStore
	TaskQueue    driven.TaskQueue
	Lock         driven.DistributedLock // Optional: distributed lock for multi-instance coordination
	Logger       *slog.Logger
	PollInterval time.Duration // How often to check for due jobs (default: 30s)
	LockTTL      time.Duration // TTL for the distributed lock (default: 60s)
	LockRequired bool          // If true, skip the cycle when the lock acquire errors
}

// NewScheduler creates a new scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.PollInterval
	if interval == 0 {
		interval = 30 * time.Second
	}

	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 60 * time.Second // Default: 2x poll interval
	}

	return &Scheduler{
		store:        cfg.Store,
		taskQueue:    cfg.TaskQueue,
		lock:         cfg.Lock,
		logger:       logger,
		interval:     interval,
		lockTTL:      lockTTL,
		lockRequired: cfg.LockRequired,
	}
}

// Start begins the scheduler loop.
// It runs until Stop is called or context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("scheduler starting", "poll_interval", s.interval)

	go s.run(ctx)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for the scheduler to finish
	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.checkAndEnqueue(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkAndEnqueue(ctx)
		}
	}
}

// checkAndEnqueue checks for due scheduled jobs and enqueues them.
// If a distributed lock is configured, it acquires the lock before polling
// to prevent duplicate task enqueuing across multiple scheduler instances.
func (s *Scheduler) checkAndEnqueue(ctx context.Context) {
	// Attempt to acquire distributed lock if configured
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, "scheduler", s.lockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire scheduler lock", "error", err)
			if s.lockRequired {
				return // Skip this cycle
			}
			// Fall through if lock not required (single-instance mode)
		} else if !acquired {
			s.logger.Debug("scheduler lock held by another instance, skipping cycle")
			return
		} else {
			// Lock acquired, release when done
			defer func() {
				if err := s.lock.Release(ctx, "scheduler"); err != nil {
					s.logger.Warn("failed to release scheduler lock", "error", err)
				}
			}()
		}
	}

	jobs, err := s.store.GetDueScheduledJobs(ctx)
	if err != nil {
		s.logger.Error("failed to get due scheduled jobs", "error", err)
		return
	}

	for _, job := range jobs {
		if !job.Enabled || !job.IsDue() {
			continue
		}

		task := domain.NewTask(job.Type, nil)

		// Enqueue the task
		if err := s.taskQueue.Enqueue(ctx, task); err != nil {
			s.logger.Error("failed to enqueue scheduled task",
				"job_id", job.ID,
				"error", err,
			)
			// Update last error
			_ = s.store.UpdateLastRun(ctx, job.ID, err.Error())
			continue
		}

		s.logger.Info("enqueued scheduled task",
			"job_id", job.ID,
			"task_id", task.ID,
			"task_type", task.Type,
		)

		// Update the job's next run time
		if err := s.store.UpdateLastRun(ctx, job.ID, ""); err != nil {
			s.logger.Warn("failed to update scheduled job last run",
				"job_id", job.ID,
				"error", err,
			)
		}
	}
}

// CreateScheduledJob creates a new scheduled job.
func (s *Scheduler) CreateScheduledJob(ctx context.Context, job *domain.ScheduledJob) error {
	return s.store.SaveScheduledJob(ctx, job)
}

// GetScheduledJob retrieves a scheduled job by ID.
func (s *Scheduler) GetScheduledJob(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	return s.store.GetScheduledJob(ctx, id)
}

// ListScheduledJobs lists all scheduled jobs.
func (s *Scheduler) ListScheduledJobs(ctx context.Context) ([]*domain.ScheduledJob, error) {
	return s.store.ListScheduledJobs(ctx)
}

// DeleteScheduledJob deletes a scheduled job.
func (s *Scheduler) DeleteScheduledJob(ctx context.Context, id string) error {
	return s.store.DeleteScheduledJob(ctx, id)
}

// EnableScheduledJob enables a scheduled job.
func (s *Scheduler) EnableScheduledJob(ctx context.Context, id string) error {
	job, err := s.store.GetScheduledJob(ctx, id)
	if err != nil {
		return err
	}
	job.Enabled = true
	return s.store.SaveScheduledJob(ctx, job)
}

// DisableScheduledJob disables a scheduled job.
func (s *Scheduler) DisableScheduledJob(ctx context.Context, id string) error {
	job, err := s.store.GetScheduledJob(ctx, id)
	if err != nil {
		return err
	}
	job.Enabled = false
	return s.store.SaveScheduledJob(ctx, job)
}

// TriggerNow immediately enqueues a scheduled job's task (ignoring schedule).
func (s *Scheduler) TriggerNow(ctx context.Context, id string) (*domain.Task, error) {
	job, err := s.store.GetScheduledJob(ctx, id)
	if err != nil {
		return nil, err
	}

	task := domain.NewTask(job.Type, nil)

	if err := s.taskQueue.Enqueue(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("manually triggered scheduled job",
		"job_id", job.ID,
		"task_id", task.ID,
	)

	return task, nil
}
