// Package retry provides a bounded exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy describes a bounded backoff schedule. Sleep is injectable so tests
// can run the schedule against a fake clock.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Sleep       func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy matches the provisioning contract: up to 3 attempts with
// 1s, 2s delays between them.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}
}

type stopError struct {
	err error
}

func (e *stopError) Error() string { return e.err.Error() }
func (e *stopError) Unwrap() error { return e.err }

// Stop wraps an error to mark it non-retryable. Do returns the wrapped error
// immediately without consuming further attempts.
func Stop(err error) error {
	return &stopError{err: err}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs fn until it succeeds, returns a Stop-wrapped error, the context is
// cancelled, or MaxAttempts is exhausted. The last error is returned on
// exhaustion.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}
		var stop *stopError
		if errors.As(err, &stop) {
			return stop.err
		}
		if attempt == attempts {
			break
		}
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
		if p.Multiplier > 0 {
			delay = time.Duration(float64(delay) * p.Multiplier)
		}
	}
	return err
}
