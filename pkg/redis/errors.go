package redis

import "errors"

var (
	// ErrFailedToParseRedisConnString reports a malformed connection URL.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")

	// ErrRedisNotReady means the server did not answer a ping within the
	// configured retry budget.
	ErrRedisNotReady = errors.New("redis did not become ready within the given time period")

	// ErrEmptyConnectionURL rejects a Connect call with no URL configured.
	ErrEmptyConnectionURL = errors.New("empty redis connection URL")

	// ErrHealthcheckFailed wraps ping failures surfaced by Healthcheck.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
