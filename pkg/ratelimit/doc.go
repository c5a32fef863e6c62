// Package ratelimit provides a fixed-window rate limiter used to respect
// provider send quotas.
//
// The limiter consumes one slot per Allow call, keyed by an arbitrary string
// (typically the provider name). Counters live in a pluggable Store: the
// in-memory store covers single-process deployments and tests, while the
// Redis store shares quotas across instances.
//
// Channel adapters treat an exhausted bucket as a per-recipient send failure
// with code RATE_LIMITED; nothing in this package blocks or retries.
package ratelimit
