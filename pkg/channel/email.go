package channel

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// EmailConfig holds email channel configuration. The Postmark tokens are
// optional: without them the adapter runs against the deterministic
// simulator so development environments exercise the full pipeline.
type EmailConfig struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@localhost"`
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$|^[^@\s]+@localhost$`)

// EmailTransport abstracts the outbound email provider.
type EmailTransport interface {
	// SendEmail delivers one message and returns the provider message id.
	SendEmail(ctx context.Context, from, to, subject, htmlBody, tag string) (string, error)
}

type postmarkTransport struct {
	client *postmark.Client
}

func (t *postmarkTransport) SendEmail(ctx context.Context, from, to, subject, htmlBody, tag string) (string, error) {
	resp, err := t.client.SendEmail(ctx, postmark.Email{
		From:       from,
		To:         to,
		Subject:    subject,
		Tag:        tag,
		HTMLBody:   htmlBody,
		TrackOpens: true,
	})
	if err != nil {
		return "", err
	}
	if resp.ErrorCode > 0 {
		return "", fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	return resp.MessageID, nil
}

type simulatedEmailTransport struct {
	sim simulator
}

func (t *simulatedEmailTransport) SendEmail(ctx context.Context, _, _, _, _, _ string) (string, error) {
	return t.sim.send(ctx)
}

// EmailAdapter delivers rendered templates over email.
type EmailAdapter struct {
	cfg       EmailConfig
	transport EmailTransport
	opts      options
	simulated bool
}

// NewEmailAdapter creates the email adapter. When Postmark credentials are
// absent the adapter simulates delivery instead of contacting a provider.
func NewEmailAdapter(cfg EmailConfig, opts ...Option) *EmailAdapter {
	o := newOptions(opts...)
	simulated := cfg.PostmarkServerToken == "" || cfg.PostmarkAccountToken == ""

	var transport EmailTransport
	if simulated {
		o.logger.Info("email transport not configured, simulating delivery")
		transport = &simulatedEmailTransport{sim: newSimulator(ChannelEmail)}
	} else {
		transport = &postmarkTransport{
			client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		}
	}

	return &EmailAdapter{cfg: cfg, transport: transport, opts: o, simulated: simulated}
}

// NewEmailAdapterWithTransport creates the adapter with a custom transport,
// used by tests and alternative providers.
func NewEmailAdapterWithTransport(cfg EmailConfig, transport EmailTransport, opts ...Option) *EmailAdapter {
	return &EmailAdapter{cfg: cfg, transport: transport, opts: newOptions(opts...)}
}

func (a *EmailAdapter) Channel() Channel { return ChannelEmail }

// ValidateConfig checks the sender identity and token pairing.
func (a *EmailAdapter) ValidateConfig() error {
	if a.cfg.SenderEmail == "" || !emailRe.MatchString(a.cfg.SenderEmail) {
		return fmt.Errorf("%w: sender email %q is not a valid address", ErrInvalidConfig, a.cfg.SenderEmail)
	}
	if (a.cfg.PostmarkServerToken == "") != (a.cfg.PostmarkAccountToken == "") {
		return fmt.Errorf("%w: postmark requires both server and account tokens", ErrInvalidConfig)
	}
	return nil
}

func (a *EmailAdapter) Send(ctx context.Context, tmpl Template, rcpt audience.Recipient, vars template.Value) SendResult {
	if rcpt.Email == "" {
		return Failure(rcpt, ChannelEmail, CodeNoEmail, "recipient has no email address")
	}
	if !rcpt.OptedIn(string(ChannelEmail)) {
		return Failure(rcpt, ChannelEmail, CodeOptedOut, "recipient opted out of email")
	}

	renderCtx := BuildContext(vars, rcpt, a.opts.app, a.opts.now())
	subject, err := template.Render(tmpl.Subject, renderCtx)
	if err != nil {
		return Failure(rcpt, ChannelEmail, CodeRenderFailed, err.Error())
	}
	body, err := template.Render(tmpl.Body, renderCtx)
	if err != nil {
		return Failure(rcpt, ChannelEmail, CodeRenderFailed, err.Error())
	}

	if res := checkLimit(ctx, a.opts, ChannelEmail); res != nil {
		return Failure(rcpt, ChannelEmail, CodeRateLimited, res.Error())
	}

	id, err := a.transport.SendEmail(ctx, a.cfg.SenderEmail, rcpt.Email, subject, body, tmpl.ID)
	if err != nil {
		a.opts.logger.LogAttrs(ctx, slog.LevelWarn, "email send failed",
			logger.RecipientID(rcpt.ID),
			logger.TemplateID(tmpl.ID),
			logger.Error(err),
		)
		return Failure(rcpt, ChannelEmail, CodeTransportFailed, err.Error())
	}
	return Success(rcpt, ChannelEmail, id)
}

// DeliveryStatus reports delivered for simulated sends and pending
// otherwise; Postmark delivery receipts arrive over webhooks this engine
// does not consume.
func (a *EmailAdapter) DeliveryStatus(_ context.Context, _ string) DeliveryStatus {
	if a.simulated {
		return DeliveryDelivered
	}
	return DeliveryPending
}

// checkLimit consumes one slot from the adapter limiter. A nil return means
// the send may proceed; limiter backend errors fail open so a broken counter
// store never blocks delivery.
func checkLimit(ctx context.Context, o options, ch Channel) error {
	if o.limiter == nil {
		return nil
	}
	res, err := o.limiter.Allow(ctx, string(ch))
	if err != nil {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "rate limiter unavailable, allowing send",
			logger.ChannelName(string(ch)),
			logger.Error(err),
		)
		return nil
	}
	if !res.Allowed {
		return fmt.Errorf("%s quota exhausted, retry after %s", ch, res.RetryAfter().Round(time.Millisecond))
	}
	return nil
}
