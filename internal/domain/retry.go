package domain

import (
	"math"
	"time"
)

// DefaultBackoffMultiplier is applied when a task's retry spec leaves the
// multiplier unset.
const DefaultBackoffMultiplier = 2.0

// RetrySpec decides retry eligibility and backoff delay for a failing task.
// A task with MaxRetries=n is attempted at most n+1 times.
type RetrySpec struct {
	MaxRetries        int           `json:"max_retries"`
	BaseDelay         time.Duration `json:"base_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier,omitempty"`
}

// Eligible reports whether another attempt is allowed after retryCount
// retries have already happened.
func (r RetrySpec) Eligible(retryCount int) bool {
	return retryCount < r.MaxRetries
}

// Delay computes the backoff before the given retry (1-based):
// base_delay × multiplier^(retry-1).
func (r RetrySpec) Delay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}

	multiplier := r.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = DefaultBackoffMultiplier
	}

	return time.Duration(float64(r.BaseDelay) * math.Pow(multiplier, float64(retry-1)))
}
