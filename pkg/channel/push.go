package channel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// Provider-imposed caps on push payloads, enforced before transport.
const (
	MaxPushTitleLen = 120
	MaxPushBodyLen  = 320
)

// PushConfig holds browser-push configuration. Without APIKey and APIURL
// the adapter simulates delivery.
type PushConfig struct {
	APIKey      string `env:"PUSH_API_KEY"`
	APIURL      string `env:"PUSH_API_URL"`
	DefaultIcon string `env:"PUSH_DEFAULT_ICON"`
}

// PushAction is one call-to-action button on a push notification.
type PushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// PushPayload is the wire format for one browser push notification.
type PushPayload struct {
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Icon    string         `json:"icon,omitempty"`
	Badge   string         `json:"badge,omitempty"`
	Tag     string         `json:"tag,omitempty"`
	Actions []PushAction   `json:"actions,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// PushTransport abstracts the outbound push provider.
type PushTransport interface {
	SendPush(ctx context.Context, recipientID string, payload PushPayload) (string, error)
}

type httpPushTransport struct {
	cfg    PushConfig
	client *providerClient
}

func (t *httpPushTransport) SendPush(ctx context.Context, recipientID string, payload PushPayload) (string, error) {
	resp, err := t.client.postJSON(ctx, t.cfg.APIURL, map[string]string{
		"Authorization": "Bearer " + t.cfg.APIKey,
	}, map[string]any{
		"recipient_id": recipientID,
		"notification": payload,
	})
	if err != nil {
		return "", err
	}
	return messageIDFromResponse(resp), nil
}

type simulatedPushTransport struct {
	sim simulator
}

func (t *simulatedPushTransport) SendPush(ctx context.Context, _ string, _ PushPayload) (string, error) {
	return t.sim.send(ctx)
}

// PushAdapter delivers rendered templates as browser push notifications.
type PushAdapter struct {
	cfg       PushConfig
	transport PushTransport
	opts      options
}

// NewPushAdapter creates the push adapter, simulating delivery when no
// provider credentials are configured.
func NewPushAdapter(cfg PushConfig, opts ...Option) *PushAdapter {
	o := newOptions(opts...)
	var transport PushTransport
	if cfg.APIKey == "" || cfg.APIURL == "" {
		o.logger.Info("push transport not configured, simulating delivery")
		transport = &simulatedPushTransport{sim: newSimulator(ChannelPush)}
	} else {
		transport = &httpPushTransport{cfg: cfg, client: newProviderClient()}
	}
	return &PushAdapter{cfg: cfg, transport: transport, opts: o}
}

// NewPushAdapterWithTransport creates the adapter with a custom transport.
func NewPushAdapterWithTransport(cfg PushConfig, transport PushTransport, opts ...Option) *PushAdapter {
	return &PushAdapter{cfg: cfg, transport: transport, opts: newOptions(opts...)}
}

func (a *PushAdapter) Channel() Channel { return ChannelPush }

func (a *PushAdapter) ValidateConfig() error {
	if (a.cfg.APIKey == "") != (a.cfg.APIURL == "") {
		return fmt.Errorf("%w: push provider requires both api key and url", ErrInvalidConfig)
	}
	return nil
}

func (a *PushAdapter) Send(ctx context.Context, tmpl Template, rcpt audience.Recipient, vars template.Value) SendResult {
	// Browser push requires an explicit subscription; absence of the flag is
	// not consent.
	if subscribed, ok := rcpt.OptIns[string(ChannelPush)]; !ok || !subscribed {
		return Failure(rcpt, ChannelPush, CodeNoSubscription, "recipient has no push subscription")
	}

	renderCtx := BuildContext(vars, rcpt, a.opts.app, a.opts.now())
	title, err := template.Render(tmpl.Subject, renderCtx)
	if err != nil {
		return Failure(rcpt, ChannelPush, CodeRenderFailed, err.Error())
	}
	body, err := template.Render(tmpl.Body, renderCtx)
	if err != nil {
		return Failure(rcpt, ChannelPush, CodeRenderFailed, err.Error())
	}

	// Hard caps: unlike SMS segmentation these fail validation outright.
	if n := len([]rune(title)); n > MaxPushTitleLen {
		return Failure(rcpt, ChannelPush, CodePayloadTooLarge,
			fmt.Sprintf("push title is %d chars, cap is %d", n, MaxPushTitleLen))
	}
	if n := len([]rune(body)); n > MaxPushBodyLen {
		return Failure(rcpt, ChannelPush, CodePayloadTooLarge,
			fmt.Sprintf("push body is %d chars, cap is %d", n, MaxPushBodyLen))
	}

	payload := a.buildPayload(tmpl, title, body)

	if res := checkLimit(ctx, a.opts, ChannelPush); res != nil {
		return Failure(rcpt, ChannelPush, CodeRateLimited, res.Error())
	}

	id, err := a.transport.SendPush(ctx, rcpt.ID, payload)
	if err != nil {
		a.opts.logger.LogAttrs(ctx, slog.LevelWarn, "push send failed",
			logger.RecipientID(rcpt.ID),
			logger.TemplateID(tmpl.ID),
			logger.Error(err),
		)
		return Failure(rcpt, ChannelPush, CodeTransportFailed, err.Error())
	}
	return Success(rcpt, ChannelPush, id)
}

// buildPayload assembles the wire payload from rendered content and template
// metadata hints (icon, badge, tag, actions, data).
func (a *PushAdapter) buildPayload(tmpl Template, title, body string) PushPayload {
	payload := PushPayload{
		Title: title,
		Body:  body,
		Icon:  a.cfg.DefaultIcon,
		Tag:   tmpl.ID,
	}
	meta := tmpl.Metadata
	if meta == nil {
		return payload
	}
	if icon, ok := meta["icon"].(string); ok && icon != "" {
		payload.Icon = icon
	}
	if badge, ok := meta["badge"].(string); ok {
		payload.Badge = badge
	}
	if tag, ok := meta["tag"].(string); ok && tag != "" {
		payload.Tag = tag
	}
	if data, ok := meta["data"].(map[string]any); ok {
		payload.Data = data
	}
	if actions, ok := meta["actions"].([]any); ok {
		for _, e := range actions {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			action := PushAction{}
			action.Action, _ = m["action"].(string)
			action.Title, _ = m["title"].(string)
			action.Icon, _ = m["icon"].(string)
			if action.Action != "" || action.Title != "" {
				payload.Actions = append(payload.Actions, action)
			}
		}
	}
	return payload
}
