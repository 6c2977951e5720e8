package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultRunTimeout bounds a single scheduled backup
const DefaultRunTimeout = 2 * time.Minute

// Job is what the scheduler triggers: a backup in-process or a job handed to a worker
type Job func(ctx context.Context) error

// RunJob returns a Job that writes a backup with m
func RunJob(m *Manager) Job {
	return func(ctx context.Context) error {
		_, err := m.Run(ctx)
		return err
	}
}

// Scheduler triggers a Job on a cron schedule
type Scheduler struct {
	job   Job
	cron  *cron.Cron
	log   *zap.Logger
	spec  string
	entry cron.EntryID
}

// NewScheduler parses spec (standard five-field cron or a descriptor such as
// "@daily" or "@every 6h") evaluated in loc.
func NewScheduler(job Job, spec string, loc *time.Location, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		job:  job,
		cron: cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log,
		spec: spec,
	}

	id, err := s.cron.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultRunTimeout)
	defer cancel()
	if err := s.job(ctx); err != nil {
		s.log.Error("scheduled_backup_failed", zap.Error(err))
	}
}

// Next returns the next scheduled run, zero before Start
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Start launches the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("backup_scheduler_started",
		zap.String("schedule", s.spec),
		zap.Time("next_run", s.Next()),
	)
}

// Stop stops the scheduler and waits for a running backup, or until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		s.log.Warn("backup_scheduler_stop_timeout")
	}
	s.log.Info("backup_scheduler_stopped")
}
