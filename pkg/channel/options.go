package channel

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/ratelimit"
)

// options holds cross-adapter configuration applied via Option values.
type options struct {
	logger  *slog.Logger
	app     AppInfo
	limiter ratelimit.Limiter
	now     func() time.Time
}

// Option configures an adapter at construction time.
type Option func(*options)

// WithLogger sets the adapter logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithAppInfo sets the application identity exposed to templates as app.*.
func WithAppInfo(app AppInfo) Option {
	return func(o *options) {
		o.app = app
	}
}

// WithRateLimiter throttles outbound sends through the given limiter,
// keyed per channel. An exhausted bucket fails the send with RATE_LIMITED.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// WithClock overrides the time source, used by tests for deterministic
// date.now bindings.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts ...Option) options {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
