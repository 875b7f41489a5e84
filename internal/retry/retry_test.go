package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingPolicy(sleeps *[]time.Duration) Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Sleep: func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		},
	}
}

func TestDo_FirstAttemptSuccess(t *testing.T) {
	var sleeps []time.Duration
	p := recordingPolicy(&sleeps)

	calls := 0
	err := p.Do(context.Background(), func(attempt int) error {
		calls++
		assert.Equal(t, 1, attempt)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps)
}

func TestDo_BackoffSchedule(t *testing.T) {
	var sleeps []time.Duration
	p := recordingPolicy(&sleeps)

	boom := errors.New("boom")
	calls := 0
	err := p.Do(context.Background(), func(int) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	// Doubling delays, no sleep after the final attempt.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
}

func TestDo_RecoversMidSchedule(t *testing.T) {
	var sleeps []time.Duration
	p := recordingPolicy(&sleeps)

	calls := 0
	err := p.Do(context.Background(), func(int) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
}

func TestDo_StopShortCircuits(t *testing.T) {
	var sleeps []time.Duration
	p := recordingPolicy(&sleeps)

	fatal := errors.New("fatal")
	calls := 0
	err := p.Do(context.Background(), func(int) error {
		calls++
		return Stop(fatal)
	})

	assert.Equal(t, fatal, err, "Stop unwraps to the original error")
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps)
}

func TestDo_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	calls := 0
	err := p.Do(ctx, func(int) error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_AtLeastOneAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 0}

	calls := 0
	err := p.Do(context.Background(), func(int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
