package channel

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// DeliveryStatus is the best-effort polled state of a sent message.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryPending   DeliveryStatus = "pending"
)

// SendResult is the immutable per-recipient outcome of one delivery attempt.
type SendResult struct {
	Success      bool           `json:"success"`
	MessageID    string         `json:"message_id,omitempty"`
	RecipientID  string         `json:"recipient_id"`
	Channel      Channel        `json:"channel"`
	ErrorCode    Code           `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Adapter is the uniform send contract every channel implements.
// Send never returns a Go error: every failure is folded into the SendResult
// so one recipient's outcome can never abort a batch.
type Adapter interface {
	// Channel returns the medium this adapter delivers to.
	Channel() Channel

	// Send renders the template for one recipient and delivers it.
	Send(ctx context.Context, tmpl Template, rcpt audience.Recipient, vars template.Value) SendResult

	// ValidateConfig verifies the adapter configuration.
	ValidateConfig() error
}

// StatusChecker is the optional delivery-status capability. Callers discover
// it with a type assertion; adapters without receipt polling simply do not
// implement it.
type StatusChecker interface {
	// DeliveryStatus polls the provider for a message's state. Transport
	// errors degrade to DeliveryPending rather than propagating.
	DeliveryStatus(ctx context.Context, messageID string) DeliveryStatus
}

// Success builds a successful send result.
func Success(rcpt audience.Recipient, ch Channel, messageID string) SendResult {
	return SendResult{
		Success:     true,
		MessageID:   messageID,
		RecipientID: rcpt.ID,
		Channel:     ch,
		Timestamp:   time.Now(),
	}
}

// Failure builds a failed send result with a channel-specific error code.
func Failure(rcpt audience.Recipient, ch Channel, code Code, msg string) SendResult {
	return SendResult{
		RecipientID:  rcpt.ID,
		Channel:      ch,
		ErrorCode:    code,
		ErrorMessage: msg,
		Timestamp:    time.Now(),
	}
}
