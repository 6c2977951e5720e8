package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeBackup writes a compressed task backup
	JobTypeBackup JobType = "backup"
)

// DefaultMaxRetries is how often a failed job is re-enqueued before it is dead-lettered
const DefaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	Reason     string     `json:"reason,omitempty"`
	NotBefore  *time.Time `json:"not_before,omitempty"`
	NotAfter   *time.Time `json:"not_after,omitempty"` // a scheduled run is stale once the next one is due
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewJob creates a new job created at now
func NewJob(jobType JobType, reason string, now time.Time) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Reason:     reason,
		CreatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}
}

// ShouldProcess reports whether now is inside the job's time window
func (j *Job) ShouldProcess(now time.Time) bool {
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	return !j.IsExpired(now)
}

// IsExpired reports whether NotAfter has passed
func (j *Job) IsExpired(now time.Time) bool {
	if j.NotAfter == nil {
		return false
	}
	return now.After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// Retry returns a copy of the job with the retry count incremented
func (j *Job) Retry() *Job {
	next := *j
	next.RetryCount++
	return &next
}
