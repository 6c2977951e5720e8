package main

import (
	"context"
	"time"

	"github.com/benvon/day-planner/internal/backup"
	"github.com/benvon/day-planner/internal/queue"
)

// scheduledBackupJob writes backups in-process, or hands them to the worker
// when a job queue is configured. A queued job expires when the next run is due.
func scheduledBackupJob(m *backup.Manager, jobQueue queue.JobQueue, next, now func() time.Time) backup.Job {
	if jobQueue == nil {
		return backup.RunJob(m)
	}
	return func(ctx context.Context) error {
		job := queue.NewJob(queue.JobTypeBackup, "schedule", now())
		if n := next(); n.After(job.CreatedAt) {
			job.NotAfter = &n
		}
		return jobQueue.Enqueue(ctx, job)
	}
}
