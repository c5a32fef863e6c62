package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/ratelimit"
)

func TestFixedWindowAllow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 3, time.Minute)
	require.NoError(t, err)

	for i := range 3 {
		res, err := limiter.Allow(ctx, "sms")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := limiter.Allow(ctx, "sms")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Positive(t, res.RetryAfter())
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, time.Minute)
	require.NoError(t, err)

	res, err := limiter.Allow(ctx, "email")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "push")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "email")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestFixedWindowReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, time.Hour)
	require.NoError(t, err)

	_, err = limiter.Allow(ctx, "chat")
	require.NoError(t, err)

	res, err := limiter.Allow(ctx, "chat")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	require.NoError(t, limiter.Reset(ctx, "chat"))

	res, err = limiter.Allow(ctx, "chat")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindowExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, 20*time.Millisecond)
	require.NoError(t, err)

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	time.Sleep(30 * time.Millisecond)

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewFixedWindowValidation(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.NewFixedWindow(nil, 1, time.Second)
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)

	_, err = ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 0, time.Second)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)

	_, err = ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, 0)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidInterval)

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, time.Second)
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "")
	assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
}
