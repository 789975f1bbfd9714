package model

import (
	"context"
	"time"
)

// RetryPolicy bounds the retry behavior for backend calls. Transient
// failures (timeouts, connection errors, 5xx) are retried with exponential
// backoff; authentication and malformed-request failures are surfaced
// immediately since retrying cannot fix them.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// Multiplier scales the delay after each attempt.
	Multiplier float64
}

// DefaultRetryPolicy retries up to 3 attempts, starting at 1s and doubling.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: time.Second,
	Multiplier:   2,
}

// RetryableStatus reports whether an HTTP status is worth retrying.
// Authentication (401/403) and malformed requests (4xx in general) are not
// transient; 408 and 429 are the exceptions.
func RetryableStatus(status int) bool {
	switch {
	case status == 408 || status == 429:
		return true
	case status >= 400 && status < 500:
		return false
	default:
		return true
	}
}

// Retry runs fn up to policy.MaxAttempts times, sleeping with exponential
// backoff between attempts. retryable classifies errors; a nil classifier
// retries everything. The context cancels both in-flight waits and further
// attempts.
func Retry[T any](
	ctx context.Context,
	policy RetryPolicy,
	retryable func(error) bool,
	fn func() (T, error),
) (T, error) {
	var zero T
	var lastErr error

	delay := policy.InitialDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if retryable != nil && !retryable(err) {
			return zero, err
		}
		if attempt == policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * policy.Multiplier)
	}

	return zero, lastErr
}
