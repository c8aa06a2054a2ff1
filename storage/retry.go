package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cogforge/logger"
)

// RetryPolicy bounds every store operation: a per-attempt deadline and a
// fixed retry budget with doubling backoff. Errors that will not get better
// on retry (missing objects, denied access) fail immediately.
type RetryPolicy struct {
	Attempts int           // total attempts; values < 1 mean a single try
	Timeout  time.Duration // per-attempt deadline; 0 means none
	Backoff  time.Duration // initial delay between attempts
}

// DefaultRetryPolicy is used when the config does not override the policy.
var DefaultRetryPolicy = RetryPolicy{
	Attempts: 3,
	Timeout:  10 * time.Minute,
	Backoff:  time.Second,
}

// Do runs fn under the policy, returning the last error if the budget is
// exhausted.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := p.Backoff
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt == attempts {
			break
		}
		logger.Warnf("%s failed (attempt %d/%d), retrying in %v: %v", op, attempt, attempts, delay, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s aborted: %w", op, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}

// retryable reports whether another attempt could plausibly succeed.
func retryable(err error) bool {
	if IsNotFound(err) || IsAccessDenied(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
