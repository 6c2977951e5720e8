// Package workers processes jobs consumed from the job queue.
package workers

import (
	"context"
	"fmt"

	"github.com/benvon/day-planner/internal/backup"
	"github.com/benvon/day-planner/internal/queue"
	"go.uber.org/zap"
)

// BackupRunner writes one backup
type BackupRunner interface {
	Run(ctx context.Context) (backup.Snapshot, error)
}

// Reloader refreshes in-memory state from storage
type Reloader interface {
	Load(ctx context.Context) error
}

// BackupWorker runs queued backup jobs. The API server owns the task
// collection, so the worker reloads it from storage before every backup.
type BackupWorker struct {
	backups  BackupRunner
	tasks    Reloader
	jobQueue queue.JobQueue
	log      *zap.Logger
}

// NewBackupWorker creates a worker. jobQueue is used to re-enqueue failed jobs and may be nil.
func NewBackupWorker(backups BackupRunner, tasks Reloader, jobQueue queue.JobQueue, log *zap.Logger) *BackupWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupWorker{backups: backups, tasks: tasks, jobQueue: jobQueue, log: log}
}

// ProcessJob handles one message and always settles it with Ack or Nack
func (w *BackupWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	switch job.Type {
	case queue.JobTypeBackup:
		snap, err := w.runBackup(ctx)
		if err != nil {
			return w.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		w.log.Info("backup_job_completed",
			zap.String("job_id", job.ID.String()),
			zap.String("reason", job.Reason),
			zap.String("file", snap.Name),
		)
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil {
			w.log.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (w *BackupWorker) runBackup(ctx context.Context) (backup.Snapshot, error) {
	if err := w.tasks.Load(ctx); err != nil {
		return backup.Snapshot{}, fmt.Errorf("failed to reload tasks: %w", err)
	}
	return w.backups.Run(ctx)
}

// handleJobError re-enqueues a retryable job and dead-letters the rest
func (w *BackupWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if job.CanRetry() && w.jobQueue != nil {
		retry := job.Retry()
		enqueueErr := w.jobQueue.Enqueue(ctx, retry)
		if enqueueErr == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				w.log.Warn("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
			}
			w.log.Warn("backup_job_retrying",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", retry.RetryCount),
				zap.Error(err),
			)
			return fmt.Errorf("backup job failed, retry %d queued: %w", retry.RetryCount, err)
		}
		w.log.Error("job_requeue_failed", zap.String("job_id", job.ID.String()), zap.Error(enqueueErr))
	}

	if nackErr := msg.Nack(false); nackErr != nil {
		w.log.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	return fmt.Errorf("backup job %s failed after %d retries: %w", job.ID, job.RetryCount, err)
}
