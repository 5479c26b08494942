// Package scheduler runs background jobs on a fixed interval, off the HTTP path.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/logging"
)

// Job does one unit of periodic work for the given time.
type Job func(ctx context.Context, now time.Time) error

// Scheduler calls its job once at start and then every interval until the
// context is cancelled.
type Scheduler struct {
	name     string
	interval time.Duration
	job      Job
	logger   logging.Logger
	now      func() time.Time
}

func New(name string, interval time.Duration, job Job, logger logging.Logger) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		job:      job,
		logger:   logger.With("module", "scheduler"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks until ctx is cancelled. A job that overruns the interval
// delays the next tick rather than overlapping with it.
func (s *Scheduler) Run(ctx context.Context) {
	ctx = logging.ContextWith(ctx, "job", s.name)
	if s.interval <= 0 {
		s.logger.Error(ctx, "scheduler not started, interval must be positive", "interval", s.interval)
		return
	}
	s.logger.Info(ctx, "scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	err := s.runJob(ctx)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrPassInProgress):
		s.logger.Warn(ctx, "previous run still in progress, skipping")
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		s.logger.Info(ctx, "run interrupted by shutdown")
	default:
		s.logger.Error(ctx, "run failed", "error", err)
	}
}

// runJob reports a job panic as an error.
func (s *Scheduler) runJob(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return s.job(ctx, s.now())
}
