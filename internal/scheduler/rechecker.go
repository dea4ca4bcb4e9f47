package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/outboundcheck/internal/diagnostic"
	"github.com/hamed0406/outboundcheck/internal/domain"
)

// CheckRunner runs one check to a terminal state; *diagnostic.Runner satisfies it.
type CheckRunner interface {
	Run(ctx context.Context, d domain.CheckDescriptor) error
}

type Rechecker struct {
	Logger   *zap.Logger
	Runner   CheckRunner
	Checks   []domain.CheckDescriptor
	Interval time.Duration
}

func NewRechecker(logger *zap.Logger, runner CheckRunner, interval time.Duration, checks ...domain.CheckDescriptor) *Rechecker {
	if interval < 0 {
		interval = 0
	}
	return &Rechecker{
		Logger:   logger,
		Runner:   runner,
		Checks:   checks,
		Interval: interval,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	for _, d := range r.Checks {
		if ctx.Err() != nil {
			return
		}
		err := r.Runner.Run(ctx, d)
		switch {
		case err == nil:
			r.Logger.Debug("rechecker_checked", zap.String("code", d.Code))
		case errors.Is(err, diagnostic.ErrRunInProgress):
			r.Logger.Debug("rechecker_skipped_busy", zap.String("code", d.Code))
		default:
			r.Logger.Warn("rechecker_run_error", zap.String("code", d.Code), zap.Error(err))
		}
	}
}
