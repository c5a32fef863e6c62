package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed counter backend for multi-process
// deployments where provider quotas must be shared across instances.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default key prefix.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "ratelimit:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// incrScript bumps the counter and sets the window TTL only on the first
// increment, so the window boundary is stable for its whole duration.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

func (s *RedisStore) Increment(ctx context.Context, key string, d time.Duration) (int64, time.Time, error) {
	res, err := incrScript.Run(ctx, s.client, []string{s.prefix + key}, d.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, err
	}
	count, ttlMillis, err := parseIncrReply(res)
	if err != nil {
		return 0, time.Time{}, err
	}
	resetAt := time.Now().Add(time.Duration(ttlMillis) * time.Millisecond)
	return count, resetAt, nil
}

// parseIncrReply unpacks the {count, ttl} pair returned by incrScript. A
// proxy or script mismatch can return a shorter reply; that surfaces as an
// error instead of a panic so callers keep their fail-open behavior.
func parseIncrReply(res []int64) (count, ttlMillis int64, err error) {
	if len(res) < 2 {
		return 0, 0, fmt.Errorf("ratelimit: unexpected redis reply of %d values", len(res))
	}
	return res[0], res[1], nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
