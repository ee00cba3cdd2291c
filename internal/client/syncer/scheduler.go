package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/khoj-ai/khoj-sync/internal/khojapi"
)

// CycleRunner runs one synchronization cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*CycleResult, error)
}

// Scheduler runs cycles back to back at a fixed interval for continuous
// mode. Execution is strictly sequential: the next cycle starts only after
// the previous one and its sleep completed, so cycles never overlap.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
}

func NewScheduler(runner CycleRunner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
	}
}

// Run loops until the context is canceled or a cycle reports a fatal error.
// A bad cycle is logged and the loop keeps going; the circuit breaker
// tripping is the one failure that must take the whole process down.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.runOnce(ctx); err != nil {
			return err
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) error {
	_, err := s.runner.RunCycle(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, khojapi.ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return err
	}
	slog.Error("sync cycle failed", "error", err)
	return nil
}
