package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job statuses.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusDegraded  = "degraded"
	JobStatusFailed    = "failed"
)

// JobRecord is one visualization job as stored.
type JobRecord struct {
	ID              string
	GardenName      string
	StartDay        int
	EndDay          int
	RequestedImages int
	Status          string
	Error           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProgressEvent is one per-day progress entry for a job.
type ProgressEvent struct {
	ID        int64
	JobID     string
	DayOfYear int
	Status    string
	Provider  string
	Attempt   int
	Detail    string
	CreatedAt time.Time
}

// Repository provides job persistence over an open database.
//
// Thread Safety: safe for concurrent use; the underlying pool serializes
// access.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateJob inserts a new queued job and returns its generated id.
func (r *Repository) CreateJob(ctx context.Context, gardenName string, startDay, endDay, requestedImages int) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, garden_name, start_day, end_day, requested_images, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, gardenName, startDay, endDay, requestedImages, JobStatusQueued,
	)
	if err != nil {
		return "", fmt.Errorf("jobstore: failed to create job: %w", err)
	}
	return id, nil
}

// UpdateJobStatus moves a job to a new status, recording an error message
// for failed and degraded outcomes.
func (r *Repository) UpdateJobStatus(ctx context.Context, jobID, status, errMsg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, errMsg, jobID,
	)
	if err != nil {
		return fmt.Errorf("jobstore: failed to update job %s: %w", jobID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("jobstore: failed to check update of job %s: %w", jobID, err)
	}
	if affected == 0 {
		return fmt.Errorf("jobstore: job %s not found", jobID)
	}
	return nil
}

// RecordEvent appends a per-day progress event to a job's history.
func (r *Repository) RecordEvent(ctx context.Context, e ProgressEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO job_events (job_id, day_of_year, status, provider, attempt, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.JobID, e.DayOfYear, e.Status, e.Provider, e.Attempt, e.Detail,
	)
	if err != nil {
		return fmt.Errorf("jobstore: failed to record event for job %s: %w", e.JobID, err)
	}
	return nil
}

// GetJob fetches a job by id.
func (r *Repository) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, garden_name, start_day, end_day, requested_images, status, error, created_at, updated_at
		FROM jobs WHERE id = ?`, jobID)

	var job JobRecord
	err := row.Scan(&job.ID, &job.GardenName, &job.StartDay, &job.EndDay,
		&job.RequestedImages, &job.Status, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("jobstore: job %s not found", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: failed to load job %s: %w", jobID, err)
	}
	return &job, nil
}

// ListEvents returns a job's progress events in insertion order.
func (r *Repository) ListEvents(ctx context.Context, jobID string) ([]ProgressEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, day_of_year, status, provider, attempt, detail, created_at
		FROM job_events WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("jobstore: failed to list events for job %s: %w", jobID, err)
	}
	defer rows.Close()

	var events []ProgressEvent
	for rows.Next() {
		var e ProgressEvent
		if err := rows.Scan(&e.ID, &e.JobID, &e.DayOfYear, &e.Status,
			&e.Provider, &e.Attempt, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("jobstore: failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("jobstore: event iteration failed: %w", err)
	}
	return events, nil
}
