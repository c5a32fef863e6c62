package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request may proceed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the current window expires.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter is the contract channel adapters throttle providers with.
type Limiter interface {
	// Allow checks whether one request is allowed for the key, consuming a
	// slot when it is.
	Allow(ctx context.Context, key string) (*Result, error)

	// Reset clears the limiter state for the key.
	Reset(ctx context.Context, key string) error
}

// Store is the counter backend for the fixed-window limiter.
type Store interface {
	// Increment atomically bumps the counter for the key, starting a new
	// window with the given duration when none is active. It returns the
	// counter value after the bump and when the window resets.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)

	// Delete removes the key from the store.
	Delete(ctx context.Context, key string) error
}
