package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// ErrExhausted is returned once every attempt allowed by the policy has failed
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy describes an exponential backoff schedule with jitter
type Policy struct {
	// MaxAttempts counts the first call too; values below 1 mean a single attempt
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// Jitter is the fraction (0-1) of the interval added or removed at random
	Jitter float64
}

// DefaultPolicy waits 500ms, 1s, 2s, 4s between five attempts
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		Jitter:          0.1,
	}
}

// Fixed waits the same interval between attempts
func Fixed(attempts int, interval time.Duration) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: interval,
		MaxInterval:     interval,
		Multiplier:      1,
	}
}

// Notify is called after a failed attempt, before sleeping
type Notify func(attempt int, err error, wait time.Duration)

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do runs op until it succeeds, returns a permanent error, the policy is
// exhausted or ctx is done.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error, notify Notify) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, lastErr)
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if attempt == attempts {
			break
		}

		wait := p.Backoff(attempt)
		if notify != nil {
			notify(attempt, lastErr, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}

// Backoff returns the wait after the given 1-based attempt
func (p Policy) Backoff(attempt int) time.Duration {
	initial := p.InitialInterval
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2.0
	}

	wait := float64(initial) * math.Pow(mult, float64(attempt-1))
	if p.Jitter > 0 {
		j := math.Min(p.Jitter, 1)
		wait += (rand.Float64()*2 - 1) * wait * j
	}
	if p.MaxInterval > 0 && wait > float64(p.MaxInterval) {
		wait = float64(p.MaxInterval)
	}
	if wait < 0 {
		wait = float64(initial)
	}
	return time.Duration(wait)
}
