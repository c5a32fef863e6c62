package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Ticker periodically invokes ProcessDueScheduled so scheduled notifications
// go out once their send time elapses. It is the in-process form of the
// external trigger; deployments with their own job runner can call
// ProcessDueScheduled directly instead.
type Ticker struct {
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *slog.Logger
}

// NewTicker creates a ticker around the dispatcher. Non-positive intervals
// fall back to one minute.
func NewTicker(d *Dispatcher, interval time.Duration, log *slog.Logger) *Ticker {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ticker{dispatcher: d, interval: interval, logger: log}
}

// Run blocks, sweeping due notifications every interval until the context is
// canceled. Sweep failures are logged and the loop continues.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			processed, err := t.dispatcher.ProcessDueScheduled(ctx, now)
			if err != nil {
				t.logger.LogAttrs(ctx, slog.LevelError, "scheduled sweep failed",
					logger.Error(err),
				)
				continue
			}
			if processed > 0 {
				t.logger.LogAttrs(ctx, slog.LevelInfo, "scheduled notifications processed",
					slog.Int("count", processed),
				)
			}
		}
	}
}
