package blockexec

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

// BackoffStrategy selects how RetryPolicy.GetDelay grows between attempts.
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryPolicy implements a block's retry_actions semantics (spec §4.4,
// §7): attempt the block up to MaxAttempts times, waiting between
// attempts per BackoffStrategy, retrying only errors that match
// RetryableErrors (or any error, if that list is empty).
type RetryPolicy struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffStrategy BackoffStrategy
	RetryableErrors []string
}

// DefaultRetryPolicy is a single-attempt, no-retry policy — the default
// for a block that declares no retry_policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1, InitialDelay: 0, MaxDelay: 0, BackoffStrategy: BackoffConstant}
}

// ShouldRetry reports whether err justifies another attempt.
func (p RetryPolicy) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if len(p.RetryableErrors) == 0 {
		return true
	}
	msg := err.Error()
	for _, substr := range p.RetryableErrors {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// GetDelay returns the wait before attempt number `attempt` (1-based).
func (p RetryPolicy) GetDelay(attempt int) time.Duration {
	var delay time.Duration
	switch p.BackoffStrategy {
	case BackoffLinear:
		delay = p.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		delay = time.Duration(float64(p.InitialDelay) * math.Pow(2, float64(attempt-1)))
	default:
		delay = p.InitialDelay
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Execute runs fn, retrying per the policy. onRetry, if non-nil, is
// called before each retry attempt with the attempt number and the error
// that triggered it.
func (p RetryPolicy) Execute(ctx context.Context, fn func() (map[string]interface{}, error), onRetry func(attempt int, err error)) (map[string]interface{}, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == maxAttempts || !p.ShouldRetry(err) {
			break
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}

		delay := p.GetDelay(attempt)
		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, lastErr
}

// IsRetryableError reports whether err represents a transient condition
// (timeout, cancellation, or a type implementing Temporary()/Timeout()).
func IsRetryableError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) && temp.Temporary() {
		return true
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}
	return false
}
