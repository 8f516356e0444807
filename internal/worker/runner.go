package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner drives a named job on a fixed interval until the context ends. Job
// errors are logged and the loop keeps ticking; the next tick re-reads state
// and recovers on its own.
type Runner struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context) error
	logger   *zap.Logger
}

// NewRunner creates a ticker loop for the given job.
func NewRunner(name string, interval time.Duration, job func(ctx context.Context) error, logger *zap.Logger) *Runner {
	return &Runner{name: name, interval: interval, job: job, logger: logger}
}

// RunWith adapts Run for errgroup.Go.
func (r *Runner) RunWith(ctx context.Context) func() error {
	return func() error {
		return r.Run(ctx)
	}
}

// Run blocks until ctx is cancelled. It always returns nil so one worker
// shutting down does not tear the others down through an error group.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("worker started",
		zap.String("worker", r.name),
		zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("worker stopped", zap.String("worker", r.name))
			return nil
		case <-ticker.C:
			if err := r.job(ctx); err != nil {
				r.logger.Error("worker tick failed",
					zap.String("worker", r.name),
					zap.Error(err))
			}
		}
	}
}
