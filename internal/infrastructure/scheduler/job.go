package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a backup job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one backup export. Types empty means every registered collection.
type Job struct {
	ID     uuid.UUID
	Types  []string
	Format string

	Status JobStatus
	Error  string
	// Output is the storage key of the written archive
	Output string

	StartedAt   *time.Time
	CompletedAt *time.Time

	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob returns a pending job allowed maxRetries further attempts after the first
func NewJob(types []string, format string, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Types:      types,
		Format:     format,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

func (j *Job) begin(now time.Time) {
	j.Status, j.Error = JobStatusRunning, ""
	j.StartedAt, j.CompletedAt = &now, nil
}

func (j *Job) succeed(now time.Time) {
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

func (j *Job) fail(now time.Time, err error) {
	j.Status, j.Error = JobStatusFailed, err.Error()
	j.CompletedAt = &now
}

func (j *Job) retryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// retryAt puts a failed job back to pending, due at now+delay
func (j *Job) retryAt(now time.Time, delay time.Duration) {
	due := now.Add(delay)
	j.RetryCount++
	j.Status, j.Error = JobStatusPending, ""
	j.NextRetryAt = &due
}

// JobExecutor runs one attempt of a job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}
