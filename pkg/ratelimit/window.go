package ratelimit

import (
	"context"
	"time"
)

// FixedWindow is a fixed-window rate limiter: at most limit requests per
// window per key. It is the shape provider quotas are usually expressed in
// (N messages per second or per day), which keeps the mapping direct.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewFixedWindow creates a fixed-window limiter.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}
	return &FixedWindow{store: store, limit: limit, window: window}, nil
}

func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	count, resetAt, err := fw.store.Increment(ctx, key, fw.window)
	if err != nil {
		return nil, err
	}
	remaining := fw.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   count <= int64(fw.limit),
		Limit:     fw.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	return fw.store.Delete(ctx, key)
}
