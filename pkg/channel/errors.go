package channel

import "errors"

// Code classifies a per-recipient send failure. Codes are part of the
// engine's outward contract: callers map them to user-facing messages
// without inspecting adapter internals.
type Code string

const (
	// CodeNoEmail means the recipient has no email address.
	CodeNoEmail Code = "NO_EMAIL"
	// CodeNoPhone means the recipient has no phone number.
	CodeNoPhone Code = "NO_PHONE"
	// CodeNoSubscription means the recipient has no push subscription.
	CodeNoSubscription Code = "NO_SUBSCRIPTION"
	// CodeInvalidPhone means the phone number failed normalization.
	CodeInvalidPhone Code = "INVALID_PHONE"
	// CodeOptedOut means the recipient explicitly opted out of the channel.
	CodeOptedOut Code = "OPTED_OUT"
	// CodeRenderFailed means template rendering failed for this recipient.
	CodeRenderFailed Code = "RENDER_FAILED"
	// CodeTransportFailed means the provider call failed.
	CodeTransportFailed Code = "TRANSPORT_FAILED"
	// CodeRateLimited means the provider quota was exhausted.
	CodeRateLimited Code = "RATE_LIMITED"
	// CodePayloadTooLarge means a hard channel size cap was exceeded.
	CodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"
	// CodeInternal covers recovered panics and other unexpected failures.
	CodeInternal Code = "INTERNAL"
)

var (
	// ErrInvalidConfig is returned by ValidateConfig for unusable adapter
	// configuration.
	ErrInvalidConfig = errors.New("channel: invalid config")

	// ErrInvalidPhone is returned by NormalizePhone for numbers that cannot
	// form a valid E.164-like string.
	ErrInvalidPhone = errors.New("channel: invalid phone number")
)
