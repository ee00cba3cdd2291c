package khojapi

import (
	"context"
	"log/slog"
	"time"
)

const (
	// backoffThreshold is the consecutive-failure count past which the
	// breaker pauses before the next batch, assuming the server crashed and
	// needs time to restart.
	backoffThreshold = 3
	// abortThreshold is the count past which the breaker gives up entirely.
	abortThreshold = 6

	defaultBackoff = 30 * time.Second
)

// Breaker tracks consecutive batch-level failures within one sync cycle.
// One instance is shared across the upload and delete phases of a cycle: a
// server outage spanning both phases trips the breaker once, not twice.
type Breaker struct {
	// Backoff is the pause applied past the backoff threshold.
	Backoff time.Duration

	consecutive int
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewBreaker() *Breaker {
	return &Breaker{
		Backoff: defaultBackoff,
		sleep:   sleepCtx,
	}
}

// Success resets the counter. Any batch-level success counts, regardless of
// per-file outcomes within the batch.
func (b *Breaker) Success() {
	b.consecutive = 0
}

// Failure records one batch-level failure: a transport error or a
// non-success status.
func (b *Breaker) Failure() {
	b.consecutive++
}

func (b *Breaker) Failures() int {
	return b.consecutive
}

// Wait applies the backoff policy between batches. Past the backoff
// threshold it pauses for Backoff; past the abort threshold it returns
// ErrCircuitOpen after the pause. The pause is interruptible through ctx.
func (b *Breaker) Wait(ctx context.Context) error {
	if b.consecutive > backoffThreshold {
		slog.Warn("server may have crashed, waiting for it to restart",
			"failures", b.consecutive, "wait", b.Backoff)
		if err := b.sleep(ctx, b.Backoff); err != nil {
			return err
		}
	}
	if b.consecutive > abortThreshold {
		return ErrCircuitOpen
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
