package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttemptCeiling(t *testing.T) {
	calls := 0
	permanent := errors.New("always fails")
	err := Do(context.Background(), Config{MaxAttempts: 4, BaseDelay: time.Millisecond}, func() error {
		calls++
		return permanent
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, permanent)
	assert.Contains(t, err.Error(), "after 4 attempts")
}

func TestLinearBackoffDelays(t *testing.T) {
	var delays []time.Duration
	base := 10 * time.Millisecond
	cfg := Config{
		MaxAttempts: 3,
		BaseDelay:   base,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			delays = append(delays, delay)
		},
	}

	_ = Do(context.Background(), cfg, func() error { return errors.New("fail") })

	// Two sleeps between three attempts, strictly increasing linearly.
	require.Len(t, delays, 2)
	assert.Equal(t, base, delays[0])
	assert.Equal(t, 2*base, delays[1])
}

func TestMaxDelayCapsBackoff(t *testing.T) {
	var delays []time.Duration
	cfg := Config{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    15 * time.Millisecond,
		OnRetry: func(_ int, delay time.Duration, _ error) {
			delays = append(delays, delay)
		},
	}

	_ = Do(context.Background(), cfg, func() error { return errors.New("fail") })

	require.Len(t, delays, 4)
	for _, d := range delays {
		assert.LessOrEqual(t, d, 15*time.Millisecond)
	}
}

func TestNonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	terminal := errors.New("404")
	err := Do(context.Background(), Config{MaxAttempts: 5, BaseDelay: time.Millisecond}, func() error {
		calls++
		return NonRetryable(terminal)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, terminal)
	assert.True(t, IsNonRetryable(err))
}

func TestNonRetryableNil(t *testing.T) {
	assert.NoError(t, NonRetryable(nil))
	assert.False(t, IsNonRetryable(nil))
}

func TestContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := Config{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, cfg, func() error {
		calls++
		return errors.New("fail")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("not yet")
		}
		return "payload", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
}

func TestInvalidConfig(t *testing.T) {
	err := Do(context.Background(), Config{BaseDelay: -1}, func() error { return nil })
	assert.Error(t, err)

	err = Do(context.Background(), Config{BaseDelay: time.Second, MaxDelay: time.Millisecond}, func() error { return nil })
	assert.Error(t, err)
}
