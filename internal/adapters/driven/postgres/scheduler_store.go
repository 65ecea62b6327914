package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore implements driven.SchedulerStore using PostgreSQL
type SchedulerStore struct {
	db *DB
}

// NewSchedulerStore creates a new SchedulerStore
func NewSchedulerStore(db *DB) *SchedulerStore {
	return &SchedulerStore{db: db}
}

// GetScheduledJob retrieves a scheduled job by ID
func (s *SchedulerStore) GetScheduledJob(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	query := `
		SELECT id, name, type, interval_ns, enabled, next_run, last_run, last_error
		FROM scheduled_jobs
		WHERE id = $1
	`

	job, err := scanScheduledJob(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return job, err
}

// ListScheduledJobs retrieves all scheduled jobs
func (s *SchedulerStore) ListScheduledJobs(ctx context.Context) ([]*domain.ScheduledJob, error) {
	query := `
		SELECT id, name, type, interval_ns, enabled, next_run, last_run, last_error
		FROM scheduled_jobs
		ORDER BY next_run ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScheduledJobs(rows)
}

// SaveScheduledJob creates or updates a scheduled job
func (s *SchedulerStore) SaveScheduledJob(ctx context.Context, job *domain.ScheduledJob) error {
	query := `
		INSERT INTO scheduled_jobs (id, name, type, interval_ns, enabled, next_run, last_run, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			interval_ns = EXCLUDED.interval_ns,
			enabled = EXCLUDED.enabled,
			next_run = EXCLUDED.next_run,
			last_run = EXCLUDED.last_run,
			last_error = EXCLUDED.last_error
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Name,
		string(job.Type),
		int64(job.Interval),
		job.Enabled,
		job.NextRun,
		NullTime(job.LastRun),
		job.LastError,
	)
	return err
}

// DeleteScheduledJob removes a scheduled job
func (s *SchedulerStore) DeleteScheduledJob(ctx context.Context, id string) error {
	query := `DELETE FROM scheduled_jobs WHERE id = $1`
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

// GetDueScheduledJobs retrieves scheduled jobs that are due to run
func (s *SchedulerStore) GetDueScheduledJobs(ctx context.Context) ([]*domain.ScheduledJob, error) {
	query := `
		SELECT id, name, type, interval_ns, enabled, next_run, last_run, last_error
		FROM scheduled_jobs
		WHERE enabled = true AND next_run <= $1
		ORDER BY next_run ASC
	`

	rows, err := s.db.QueryContext(ctx, query, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScheduledJobs(rows)
}

// UpdateLastRun updates the last run time and next run time
func (s *SchedulerStore) UpdateLastRun(ctx context.Context, id string, lastError string) error {
	now := time.Now()

	// Need the interval to compute the next run
	job, err := s.GetScheduledJob(ctx, id)
	if err != nil {
		return err
	}

	nextRun := now.Add(job.Interval)

	query := `
		UPDATE scheduled_jobs
		SET last_run = $1, next_run = $2, last_error = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, now, nextRun, lastError, id)
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

func scanScheduledJob(row rowScanner) (*domain.ScheduledJob, error) {
	var job domain.ScheduledJob
	var lastRun sql.NullTime
	var lastError sql.NullString
	var intervalNs int64

	err := row.Scan(
		&job.ID,
		&job.Name,
		&job.Type,
		&intervalNs,
		&job.Enabled,
		&job.NextRun,
		&lastRun,
		&lastError,
	)
	if err != nil {
		return nil, err
	}

	job.Interval = time.Duration(intervalNs)
	job.LastRun = TimePtr(lastRun)
	job.LastError = lastError.String

	return &job, nil
}

func scanScheduledJobs(rows *sql.Rows) ([]*domain.ScheduledJob, error) {
	var jobs []*domain.ScheduledJob
	for rows.Next() {
		job, err := scanScheduledJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}
