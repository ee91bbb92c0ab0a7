package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultInterval = 24 * time.Hour

	// schedulerMaxRetries bounds the backoff retries per refresh pass.
	schedulerMaxRetries = 3
)

// Scheduler runs refresh passes on a fixed cadence, retrying a failed pass
// with exponential backoff before waiting for the next tick.
type Scheduler struct {
	pipeline *Pipeline
	interval time.Duration
	logger   *zap.Logger
}

func NewScheduler(pipeline *Pipeline, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		pipeline: pipeline,
		interval: interval,
		logger:   logger,
	}
}

// Run executes one pass immediately, then one per interval until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass retries transient failures with 1s, 2s, 4s backoff. A pass that
// still fails waits for the next tick; sources marked unchanged are cheap
// to re-check.
func (s *Scheduler) runPass(ctx context.Context) {
	for attempt := 0; attempt < schedulerMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}

		_, err := s.pipeline.RunOnce(ctx)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		s.logger.Warn("refresh pass failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
}
