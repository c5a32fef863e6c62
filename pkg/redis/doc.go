// Package redis provides helpers for connecting to a Redis server.
//
// It wraps the go-redis client with a retrying Connect and a health check
// closure for liveness probes. Configuration comes from environment
// variables via the Config struct.
//
// In this module Redis backs the shared rate limit counters used by the
// channel adapters:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewRedisStore(client), 100, time.Minute)
//
// Single-process deployments can use the in-memory rate limit store instead
// and skip Redis entirely.
package redis
