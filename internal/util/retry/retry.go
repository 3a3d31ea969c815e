// Package retry re-runs an operation after transient failures, doubling the
// delay between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// maxDelay caps the backoff between attempts.
const maxDelay = 30 * time.Second

type policy struct {
	attempts  int
	baseDelay time.Duration
}

// Option adjusts the retry policy.
type Option func(*policy)

// WithAttempts sets how many times the operation runs before giving up.
func WithAttempts(n int) Option {
	return func(p *policy) { p.attempts = n }
}

// WithBaseDelay sets the delay before the second attempt. Later delays
// double until they hit the cap.
func WithBaseDelay(d time.Duration) Option {
	return func(p *policy) { p.baseDelay = d }
}

// Do runs op until it succeeds, the attempts are exhausted, the context is
// done, or op returns an error marked Fatal.
func Do(ctx context.Context, op func() error, opts ...Option) error {
	p := policy{attempts: 5, baseDelay: time.Second}
	for _, opt := range opts {
		opt(&p)
	}

	delay := p.baseDelay
	var lastErr error

	for attempt := 1; attempt <= p.attempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if IsFatal(err) {
			return err
		}
		if attempt == p.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("cancelled after %d attempt(s): %w", attempt, ctx.Err())
		case <-time.After(delay):
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}

	return fmt.Errorf("giving up after %d attempt(s): %w", p.attempts, lastErr)
}

// fatalError marks an error that retrying cannot fix.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }

func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err so Do returns it immediately instead of retrying.
// A nil err stays nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err was marked with Fatal, at any wrap depth.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}
