package khojapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker() (*Breaker, *int) {
	b := NewBreaker()
	slept := 0
	b.sleep = func(ctx context.Context, d time.Duration) error {
		slept++
		return nil
	}
	return b, &slept
}

func TestBreaker_NoBackoffBelowThreshold(t *testing.T) {
	b, slept := newTestBreaker()

	for i := 0; i < 3; i++ {
		b.Failure()
		require.NoError(t, b.Wait(context.Background()))
	}
	assert.Equal(t, 0, *slept)
}

func TestBreaker_SleepsPastBackoffThreshold(t *testing.T) {
	b, slept := newTestBreaker()

	// fail, fail, fail, fail: a pause must happen before the next batch
	for i := 0; i < 4; i++ {
		b.Failure()
	}
	require.NoError(t, b.Wait(context.Background()))
	assert.Equal(t, 1, *slept)
}

func TestBreaker_AbortsPastAbortThreshold(t *testing.T) {
	b, slept := newTestBreaker()

	for i := 0; i < 6; i++ {
		b.Failure()
		require.NoError(t, b.Wait(context.Background()))
	}

	// the 7th consecutive failure trips the circuit
	b.Failure()
	err := b.Wait(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Greater(t, *slept, 0)
}

func TestBreaker_SuccessResetsCounter(t *testing.T) {
	b, slept := newTestBreaker()

	for i := 0; i < 5; i++ {
		b.Failure()
	}
	b.Success()
	assert.Equal(t, 0, b.Failures())

	b.Failure()
	require.NoError(t, b.Wait(context.Background()))
	assert.Equal(t, 0, *slept)
	assert.Equal(t, 1, b.Failures())
}

func TestBreaker_WaitInterruptible(t *testing.T) {
	b := NewBreaker()
	b.Backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 4; i++ {
		b.Failure()
	}
	err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
