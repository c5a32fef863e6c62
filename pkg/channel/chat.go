package channel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// ChatConfig holds chat-app messaging configuration. Without APIKey and
// APIURL the adapter simulates delivery.
type ChatConfig struct {
	APIKey             string `env:"CHAT_API_KEY"`
	APIURL             string `env:"CHAT_API_URL"`
	DefaultCountryCode string `env:"CHAT_DEFAULT_COUNTRY_CODE" envDefault:"91"`
}

// ChatMessage is the provider payload for one chat message. The message
// subtype and media urls come from template metadata.
type ChatMessage struct {
	To        string   `json:"to"`
	Type      string   `json:"type"`
	Body      string   `json:"body"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

// ChatTransport abstracts the outbound chat-app provider.
type ChatTransport interface {
	SendMessage(ctx context.Context, msg ChatMessage) (string, error)
}

type httpChatTransport struct {
	cfg    ChatConfig
	client *providerClient
}

func (t *httpChatTransport) SendMessage(ctx context.Context, msg ChatMessage) (string, error) {
	resp, err := t.client.postJSON(ctx, t.cfg.APIURL, map[string]string{
		"Authorization": "Bearer " + t.cfg.APIKey,
	}, msg)
	if err != nil {
		return "", err
	}
	return messageIDFromResponse(resp), nil
}

type simulatedChatTransport struct {
	sim simulator
}

func (t *simulatedChatTransport) SendMessage(ctx context.Context, _ ChatMessage) (string, error) {
	return t.sim.send(ctx)
}

// ChatAdapter delivers rendered templates as chat-app messages. Chat
// providers address recipients by the same E.164-like numeric strings as
// SMS.
type ChatAdapter struct {
	cfg       ChatConfig
	transport ChatTransport
	opts      options
}

// NewChatAdapter creates the chat adapter, simulating delivery when no
// provider credentials are configured.
func NewChatAdapter(cfg ChatConfig, opts ...Option) *ChatAdapter {
	o := newOptions(opts...)
	var transport ChatTransport
	if cfg.APIKey == "" || cfg.APIURL == "" {
		o.logger.Info("chat transport not configured, simulating delivery")
		transport = &simulatedChatTransport{sim: newSimulator(ChannelChat)}
	} else {
		transport = &httpChatTransport{cfg: cfg, client: newProviderClient()}
	}
	return &ChatAdapter{cfg: cfg, transport: transport, opts: o}
}

// NewChatAdapterWithTransport creates the adapter with a custom transport.
func NewChatAdapterWithTransport(cfg ChatConfig, transport ChatTransport, opts ...Option) *ChatAdapter {
	return &ChatAdapter{cfg: cfg, transport: transport, opts: newOptions(opts...)}
}

func (a *ChatAdapter) Channel() Channel { return ChannelChat }

func (a *ChatAdapter) ValidateConfig() error {
	if (a.cfg.APIKey == "") != (a.cfg.APIURL == "") {
		return fmt.Errorf("%w: chat provider requires both api key and url", ErrInvalidConfig)
	}
	return nil
}

func (a *ChatAdapter) Send(ctx context.Context, tmpl Template, rcpt audience.Recipient, vars template.Value) SendResult {
	if rcpt.Phone == "" {
		return Failure(rcpt, ChannelChat, CodeNoPhone, "recipient has no phone number")
	}
	if !rcpt.OptedIn(string(ChannelChat)) {
		return Failure(rcpt, ChannelChat, CodeOptedOut, "recipient opted out of chat")
	}

	to, err := NormalizePhone(rcpt.Phone, a.cfg.DefaultCountryCode)
	if err != nil {
		return Failure(rcpt, ChannelChat, CodeInvalidPhone, err.Error())
	}

	renderCtx := BuildContext(vars, rcpt, a.opts.app, a.opts.now())
	body, err := template.Render(tmpl.Body, renderCtx)
	if err != nil {
		return Failure(rcpt, ChannelChat, CodeRenderFailed, err.Error())
	}

	msg := ChatMessage{To: to, Type: "text", Body: body}
	if subtype, ok := tmpl.Metadata["subtype"].(string); ok && subtype != "" {
		msg.Type = subtype
	}
	msg.MediaURLs = metadataStrings(tmpl.Metadata, "media_urls")

	if res := checkLimit(ctx, a.opts, ChannelChat); res != nil {
		return Failure(rcpt, ChannelChat, CodeRateLimited, res.Error())
	}

	id, err := a.transport.SendMessage(ctx, msg)
	if err != nil {
		a.opts.logger.LogAttrs(ctx, slog.LevelWarn, "chat send failed",
			logger.RecipientID(rcpt.ID),
			logger.TemplateID(tmpl.ID),
			logger.Error(err),
		)
		return Failure(rcpt, ChannelChat, CodeTransportFailed, err.Error())
	}
	return Success(rcpt, ChannelChat, id)
}

// metadataStrings extracts a string list from template metadata, accepting
// both []string and the []any produced by JSON decoding.
func metadataStrings(meta map[string]any, key string) []string {
	if meta == nil {
		return nil
	}
	switch v := meta[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
