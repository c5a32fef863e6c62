package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// GSM-7 segmentation: a single SMS carries 160 characters; concatenated
// messages carry 153 per segment because of the UDH header.
const (
	smsSingleSegment = 160
	smsConcatSegment = 153
)

// SMSConfig holds SMS channel configuration. Without APIKey and APIURL the
// adapter simulates delivery.
type SMSConfig struct {
	APIKey             string `env:"SMS_API_KEY"`
	APIURL             string `env:"SMS_API_URL"`
	SenderID           string `env:"SMS_SENDER_ID" envDefault:"NOTIFY"`
	DefaultCountryCode string `env:"SMS_DEFAULT_COUNTRY_CODE" envDefault:"91"`
}

// SMSTransport abstracts the outbound SMS provider.
type SMSTransport interface {
	// SendSMS delivers one message to an E.164-like number and returns the
	// provider message id.
	SendSMS(ctx context.Context, to, body string) (string, error)

	// MessageStatus polls the provider for a message's delivery state.
	MessageStatus(ctx context.Context, messageID string) (DeliveryStatus, error)
}

type httpSMSTransport struct {
	cfg    SMSConfig
	client *providerClient
}

func (t *httpSMSTransport) SendSMS(ctx context.Context, to, body string) (string, error) {
	resp, err := t.client.postJSON(ctx, t.cfg.APIURL, t.headers(), map[string]any{
		"to":        to,
		"message":   body,
		"sender_id": t.cfg.SenderID,
	})
	if err != nil {
		return "", err
	}
	return messageIDFromResponse(resp), nil
}

func (t *httpSMSTransport) MessageStatus(ctx context.Context, messageID string) (DeliveryStatus, error) {
	resp, err := t.client.getJSON(ctx, t.cfg.APIURL+"/"+messageID, t.headers())
	if err != nil {
		return DeliveryPending, err
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp, &payload); err != nil {
		return DeliveryPending, err
	}
	switch payload.Status {
	case "delivered":
		return DeliveryDelivered, nil
	case "failed", "undelivered":
		return DeliveryFailed, nil
	default:
		return DeliveryPending, nil
	}
}

func (t *httpSMSTransport) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + t.cfg.APIKey}
}

type simulatedSMSTransport struct {
	sim simulator
}

func (t *simulatedSMSTransport) SendSMS(ctx context.Context, _, _ string) (string, error) {
	return t.sim.send(ctx)
}

func (t *simulatedSMSTransport) MessageStatus(_ context.Context, _ string) (DeliveryStatus, error) {
	return DeliveryDelivered, nil
}

// SMSAdapter delivers rendered templates as text messages.
type SMSAdapter struct {
	cfg       SMSConfig
	transport SMSTransport
	opts      options
}

// NewSMSAdapter creates the SMS adapter, simulating delivery when no
// provider credentials are configured.
func NewSMSAdapter(cfg SMSConfig, opts ...Option) *SMSAdapter {
	o := newOptions(opts...)
	var transport SMSTransport
	if cfg.APIKey == "" || cfg.APIURL == "" {
		o.logger.Info("sms transport not configured, simulating delivery")
		transport = &simulatedSMSTransport{sim: newSimulator(ChannelSMS)}
	} else {
		transport = &httpSMSTransport{cfg: cfg, client: newProviderClient()}
	}
	return &SMSAdapter{cfg: cfg, transport: transport, opts: o}
}

// NewSMSAdapterWithTransport creates the adapter with a custom transport.
func NewSMSAdapterWithTransport(cfg SMSConfig, transport SMSTransport, opts ...Option) *SMSAdapter {
	return &SMSAdapter{cfg: cfg, transport: transport, opts: newOptions(opts...)}
}

func (a *SMSAdapter) Channel() Channel { return ChannelSMS }

func (a *SMSAdapter) ValidateConfig() error {
	if (a.cfg.APIKey == "") != (a.cfg.APIURL == "") {
		return fmt.Errorf("%w: sms provider requires both api key and url", ErrInvalidConfig)
	}
	return nil
}

func (a *SMSAdapter) Send(ctx context.Context, tmpl Template, rcpt audience.Recipient, vars template.Value) SendResult {
	if rcpt.Phone == "" {
		return Failure(rcpt, ChannelSMS, CodeNoPhone, "recipient has no phone number")
	}
	if !rcpt.OptedIn(string(ChannelSMS)) {
		return Failure(rcpt, ChannelSMS, CodeOptedOut, "recipient opted out of sms")
	}

	to, err := NormalizePhone(rcpt.Phone, a.cfg.DefaultCountryCode)
	if err != nil {
		return Failure(rcpt, ChannelSMS, CodeInvalidPhone, err.Error())
	}

	renderCtx := BuildContext(vars, rcpt, a.opts.app, a.opts.now())
	body, err := template.Render(tmpl.Body, renderCtx)
	if err != nil {
		return Failure(rcpt, ChannelSMS, CodeRenderFailed, err.Error())
	}

	// Overlength text is flagged, never dropped: multi-segment messages go
	// out as-is and cost one provider send per segment.
	if segments := SegmentCount(body); segments > 1 {
		a.opts.logger.LogAttrs(ctx, slog.LevelWarn, "sms body spans multiple segments",
			logger.RecipientID(rcpt.ID),
			logger.TemplateID(tmpl.ID),
			slog.Int("segments", segments),
			slog.Int("length", len(body)),
		)
	}

	if res := checkLimit(ctx, a.opts, ChannelSMS); res != nil {
		return Failure(rcpt, ChannelSMS, CodeRateLimited, res.Error())
	}

	id, err := a.transport.SendSMS(ctx, to, body)
	if err != nil {
		a.opts.logger.LogAttrs(ctx, slog.LevelWarn, "sms send failed",
			logger.RecipientID(rcpt.ID),
			logger.TemplateID(tmpl.ID),
			logger.Error(err),
		)
		return Failure(rcpt, ChannelSMS, CodeTransportFailed, err.Error())
	}
	return Success(rcpt, ChannelSMS, id)
}

// DeliveryStatus polls the provider, degrading to pending on any transport
// error.
func (a *SMSAdapter) DeliveryStatus(ctx context.Context, messageID string) DeliveryStatus {
	status, err := a.transport.MessageStatus(ctx, messageID)
	if err != nil {
		return DeliveryPending
	}
	return status
}

// SegmentCount returns how many SMS segments a body occupies.
func SegmentCount(body string) int {
	n := len([]rune(body))
	if n <= smsSingleSegment {
		return 1
	}
	return (n + smsConcatSegment - 1) / smsConcatSegment
}
