package dispatch

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/channel"
)

// Status is the lifecycle state of a notification record.
type Status string

const (
	// StatusPending marks a record whose fan-out is about to run.
	StatusPending Status = "pending"
	// StatusScheduled marks a record waiting for its due time.
	StatusScheduled Status = "scheduled"
	// StatusSent is terminal: at least one recipient succeeded.
	StatusSent Status = "sent"
	// StatusFailed is terminal: every recipient failed.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusScheduled:
		return next == StatusPending || next == StatusSent || next == StatusFailed
	case StatusPending:
		return next == StatusSent || next == StatusFailed
	}
	return false
}

// Priority orders notifications for the surrounding queueing layer.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	}
	return "normal"
}

// Stats aggregates per-recipient outcomes of one dispatch. Sent and Failed
// always cover the full resolved audience; Delivered lags behind Sent and is
// advanced by best-effort status polling.
type Stats struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Request describes one dispatch: which template, to whom, with what
// variable bindings. Requests are transient and never stored as-is; the
// notification record keeps a snapshot.
type Request struct {
	TemplateID string              `json:"template_id"`
	Channel    channel.Channel     `json:"channel"`
	Audience   audience.Descriptor `json:"audience"`
	Variables  map[string]any      `json:"variables,omitempty"`
	SendAt     *time.Time          `json:"send_at,omitempty"`
	Priority   Priority            `json:"priority"`
}

// Validate structurally checks the request before any store access.
func (r Request) Validate() error {
	if r.TemplateID == "" {
		return fmt.Errorf("%w: template id is required", ErrInvalidRequest)
	}
	if !r.Channel.Valid() {
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidRequest, r.Channel)
	}
	if err := r.Audience.Validate(); err != nil {
		return err
	}
	return nil
}

// Record is the persisted envelope of one dispatch. It is written exactly
// twice by the coordinator: once at creation and once with final statistics.
type Record struct {
	ID             string     `json:"id"`
	Request        Request    `json:"request"`
	Status         Status     `json:"status"`
	RecipientCount int        `json:"recipient_count"`
	Stats          Stats      `json:"stats"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Receipt is the structured outcome returned to callers on non-aborting
// paths.
type Receipt struct {
	NotificationID string               `json:"notification_id"`
	Results        []channel.SendResult `json:"results"`
	Stats          Stats                `json:"stats"`
}
