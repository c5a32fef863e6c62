package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/channel"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

const (
	// defaultBatchSize bounds how many sends run concurrently.
	defaultBatchSize = 10

	// defaultBatchDelay is the pause between batches so downstream
	// providers are not flooded.
	defaultBatchDelay = 100 * time.Millisecond
)

// Dispatcher orchestrates one dispatch end to end: template validation,
// audience resolution, batched fan-out across a channel adapter, and
// persistence of the outcome summary.
type Dispatcher struct {
	templates  TemplateStore
	records    RecordStore
	resolver   *audience.Resolver
	adapters   channel.Registry
	logger     *slog.Logger
	batchSize  int
	batchDelay time.Duration
	now        func() time.Time
	newID      func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// WithBatchSize overrides the per-batch concurrency bound.
func WithBatchSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithBatchDelay overrides the pause between batches.
func WithBatchDelay(delay time.Duration) Option {
	return func(d *Dispatcher) {
		if delay >= 0 {
			d.batchDelay = delay
		}
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDGenerator overrides notification id generation, used in tests.
func WithIDGenerator(gen func() string) Option {
	return func(d *Dispatcher) {
		if gen != nil {
			d.newID = gen
		}
	}
}

// NewDispatcher wires the coordinator with its collaborators. The adapter
// registry is an explicit dependency, constructed once at startup.
func NewDispatcher(templates TemplateStore, records RecordStore, resolver *audience.Resolver, adapters channel.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		templates:  templates,
		records:    records,
		resolver:   resolver,
		adapters:   adapters,
		logger:     slog.Default(),
		batchSize:  defaultBatchSize,
		batchDelay: defaultBatchDelay,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendNotification is the primary entry point. Validation and audience
// resolution failures abort before any record is written; per-recipient send
// failures never do.
func (d *Dispatcher) SendNotification(ctx context.Context, req Request) (Receipt, error) {
	if err := req.Validate(); err != nil {
		return Receipt{}, err
	}

	tmpl, adapter, err := d.loadTemplate(ctx, req.TemplateID, req.Channel)
	if err != nil {
		return Receipt{}, err
	}
	if err := checkVariables(tmpl, req.Variables); err != nil {
		return Receipt{}, err
	}

	recipients, err := d.resolver.Resolve(ctx, req.Audience)
	if err != nil {
		return Receipt{}, err
	}
	if len(recipients) == 0 {
		return Receipt{}, audience.ErrNoRecipients
	}

	now := d.now()
	rec := Record{
		ID:             d.newID(),
		Request:        req,
		Status:         StatusPending,
		RecipientCount: len(recipients),
		CreatedAt:      now,
	}
	if req.SendAt != nil && req.SendAt.After(now) {
		rec.Status = StatusScheduled
	}
	if err := d.records.Create(ctx, rec); err != nil {
		return Receipt{}, err
	}

	if rec.Status == StatusScheduled {
		d.logger.LogAttrs(ctx, slog.LevelInfo, "notification scheduled",
			logger.NotificationID(rec.ID),
			logger.TemplateID(req.TemplateID),
			slog.Time("send_at", *req.SendAt),
		)
		return Receipt{NotificationID: rec.ID}, nil
	}

	return d.run(ctx, rec, tmpl, adapter, recipients)
}

// SendTestNotification delivers to a single explicit recipient, bypassing
// audience resolution and record persistence. Used for preview and testing.
func (d *Dispatcher) SendTestNotification(ctx context.Context, templateID string, ch channel.Channel, rcpt audience.Recipient, variables map[string]any) (channel.SendResult, error) {
	tmpl, adapter, err := d.loadTemplate(ctx, templateID, ch)
	if err != nil {
		return channel.SendResult{}, err
	}
	return adapter.Send(ctx, tmpl, rcpt, template.ValueOf(variables)), nil
}

// PreviewTemplate renders a body against a sample context without any
// dispatch side effects.
func (d *Dispatcher) PreviewTemplate(body string, sample map[string]any) (string, error) {
	return template.Render(body, template.ValueOf(sample))
}

// ProcessDueScheduled runs every scheduled notification whose send time has
// elapsed as of now. It is invoked by a periodic external trigger; each due
// record runs to a terminal status independently.
func (d *Dispatcher) ProcessDueScheduled(ctx context.Context, now time.Time) (int, error) {
	due, err := d.records.ListDueScheduled(ctx, now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, rec := range due {
		if err := d.runScheduled(ctx, rec); err != nil {
			d.logger.LogAttrs(ctx, slog.LevelError, "scheduled dispatch failed",
				logger.NotificationID(rec.ID),
				logger.Error(err),
			)
			continue
		}
		processed++
	}
	return processed, nil
}

// RefreshDeliveryStatus polls delivery state for the successful results of a
// past dispatch and folds confirmed deliveries back into the record's stats.
// Adapters without status support leave their results pending. Best effort:
// polling never fails a record.
func (d *Dispatcher) RefreshDeliveryStatus(ctx context.Context, notificationID string, results []channel.SendResult) (Stats, error) {
	rec, err := d.records.Get(ctx, notificationID)
	if err != nil {
		return Stats{}, err
	}

	delivered := 0
	for _, res := range results {
		if !res.Success {
			continue
		}
		adapter, ok := d.adapters.Get(res.Channel)
		if !ok {
			continue
		}
		checker, ok := adapter.(channel.StatusChecker)
		if !ok {
			continue
		}
		if checker.DeliveryStatus(ctx, res.MessageID) == channel.DeliveryDelivered {
			delivered++
		}
	}

	rec.Stats.Delivered = delivered
	if err := d.records.Update(ctx, rec); err != nil {
		return Stats{}, err
	}
	return rec.Stats, nil
}

// loadTemplate fetches and validates the template against the requested
// channel, and resolves the adapter for that channel.
func (d *Dispatcher) loadTemplate(ctx context.Context, templateID string, ch channel.Channel) (channel.Template, channel.Adapter, error) {
	tmpl, err := d.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return channel.Template{}, nil, err
	}
	if !tmpl.Active {
		return channel.Template{}, nil, fmt.Errorf("%w: %s", ErrTemplateInactive, templateID)
	}
	if tmpl.Channel != ch {
		return channel.Template{}, nil, fmt.Errorf("%w: template %s targets %s, request asked for %s",
			ErrChannelMismatch, templateID, tmpl.Channel, ch)
	}
	adapter, ok := d.adapters.Get(ch)
	if !ok {
		return channel.Template{}, nil, fmt.Errorf("%w: %s", ErrChannelUnsupported, ch)
	}
	return tmpl, adapter, nil
}

// runScheduled re-validates a due record's template and executes its
// fan-out. A template that disappeared or went inactive since scheduling
// fails the record rather than erroring the sweep.
func (d *Dispatcher) runScheduled(ctx context.Context, rec Record) error {
	tmpl, adapter, err := d.loadTemplate(ctx, rec.Request.TemplateID, rec.Request.Channel)
	if err != nil {
		return d.finalize(ctx, rec, nil, err)
	}

	recipients, err := d.resolver.Resolve(ctx, rec.Request.Audience)
	if err != nil || len(recipients) == 0 {
		if err == nil {
			err = audience.ErrNoRecipients
		}
		return d.finalize(ctx, rec, nil, err)
	}

	rec.RecipientCount = len(recipients)
	_, err = d.run(ctx, rec, tmpl, adapter, recipients)
	return err
}

// finalize marks a record failed without any send attempts, preserving the
// partial results if there were any, and reports the cause to the caller.
func (d *Dispatcher) finalize(ctx context.Context, rec Record, results []channel.SendResult, cause error) error {
	rec.Status = StatusFailed
	rec.Stats = Stats{Failed: len(results)}
	completed := d.now()
	rec.CompletedAt = &completed

	if err := d.records.Update(ctx, rec); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// run executes the batched fan-out for an already-persisted record and
// writes the record's one final update.
func (d *Dispatcher) run(ctx context.Context, rec Record, tmpl channel.Template, adapter channel.Adapter, recipients []audience.Recipient) (Receipt, error) {
	vars := template.ValueOf(rec.Request.Variables)
	results := make([]channel.SendResult, 0, len(recipients))

	for start := 0; start < len(recipients); start += d.batchSize {
		end := min(start+d.batchSize, len(recipients))
		batch := recipients[start:end]

		futures := make([]*async.Future[channel.SendResult], len(batch))
		for i, rcpt := range batch {
			futures[i] = async.Async(ctx, rcpt, func(ctx context.Context, r audience.Recipient) (channel.SendResult, error) {
				return adapter.Send(ctx, tmpl, r, vars), nil
			})
		}

		// A send that panics or is canceled settles as a failed result for
		// that one recipient; it never aborts the batch.
		for i, outcome := range async.SettleAll(futures...) {
			if outcome.Err != nil {
				results = append(results, channel.Failure(batch[i], rec.Request.Channel, channel.CodeInternal, outcome.Err.Error()))
				continue
			}
			results = append(results, outcome.Value)
		}

		if end < len(recipients) && d.batchDelay > 0 {
			select {
			case <-time.After(d.batchDelay):
			case <-ctx.Done():
			}
		}
	}

	stats := Stats{}
	for _, res := range results {
		if res.Success {
			stats.Sent++
		} else {
			stats.Failed++
		}
	}

	rec.Stats = stats
	rec.Status = StatusFailed
	if stats.Sent > 0 {
		rec.Status = StatusSent
	}
	completed := d.now()
	rec.CompletedAt = &completed

	if err := d.records.Update(ctx, rec); err != nil {
		return Receipt{}, err
	}

	d.logger.LogAttrs(ctx, slog.LevelInfo, "notification dispatched",
		logger.NotificationID(rec.ID),
		logger.TemplateID(rec.Request.TemplateID),
		logger.ChannelName(string(rec.Request.Channel)),
		slog.String("status", string(rec.Status)),
		slog.Int("sent", stats.Sent),
		slog.Int("failed", stats.Failed),
	)
	return Receipt{NotificationID: rec.ID, Results: results, Stats: stats}, nil
}

// checkVariables confirms the request supplies every variable the template
// declares. The standard bindings user, app, and date are provided by the
// adapters and never required from the request.
func checkVariables(tmpl channel.Template, variables map[string]any) error {
	declared := tmpl.Variables
	if len(declared) == 0 {
		declared = template.ExtractVariables(tmpl.Subject + " " + tmpl.Body)
	}

	var missing []string
	for _, name := range declared {
		root, _, _ := strings.Cut(name, ".")
		switch root {
		case "user", "app", "date":
			continue
		}
		if _, ok := variables[root]; !ok {
			missing = append(missing, root)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingVariables, strings.Join(dedupe(missing), ", "))
	}
	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
