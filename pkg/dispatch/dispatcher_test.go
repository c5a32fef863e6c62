package dispatch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/audience"
	"github.com/dmitrymomot/notifykit/pkg/channel"
	"github.com/dmitrymomot/notifykit/pkg/dispatch"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// fakeAdapter delivers on any channel, failing the recipient ids listed in
// failIDs and panicking on the ids listed in panicIDs.
type fakeAdapter struct {
	channel  channel.Channel
	failIDs  map[string]bool
	panicIDs map[string]bool
	status   channel.DeliveryStatus

	mu    sync.Mutex
	calls []string
}

func (f *fakeAdapter) Channel() channel.Channel { return f.channel }

func (f *fakeAdapter) ValidateConfig() error { return nil }

func (f *fakeAdapter) Send(_ context.Context, _ channel.Template, rcpt audience.Recipient, _ template.Value) channel.SendResult {
	f.mu.Lock()
	f.calls = append(f.calls, rcpt.ID)
	f.mu.Unlock()

	if f.panicIDs[rcpt.ID] {
		panic("adapter exploded")
	}
	if f.failIDs[rcpt.ID] {
		return channel.Failure(rcpt, f.channel, channel.CodeTransportFailed, "injected failure")
	}
	return channel.Success(rcpt, f.channel, "msg-"+rcpt.ID)
}

func (f *fakeAdapter) DeliveryStatus(_ context.Context, _ string) channel.DeliveryStatus {
	if f.status == "" {
		return channel.DeliveryPending
	}
	return f.status
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func seedRecipients(n int) []audience.Recipient {
	recipients := make([]audience.Recipient, 0, n)
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		recipients = append(recipients, audience.Recipient{
			ID:    "u" + id,
			Name:  "User " + id,
			Email: "u" + id + "@example.com",
			Phone: "98765432" + string(rune('1'+i%9)) + "0",
		})
	}
	return recipients
}

type fixture struct {
	dispatcher *dispatch.Dispatcher
	templates  *dispatch.MemoryTemplateStore
	records    *dispatch.MemoryRecordStore
	directory  *audience.MemoryDirectory
	adapter    *fakeAdapter
}

func newFixture(t *testing.T, ch channel.Channel, opts ...dispatch.Option) *fixture {
	t.Helper()
	templates := dispatch.NewMemoryTemplateStore(
		channel.Template{ID: "welcome", Channel: channel.ChannelEmail, Subject: "Hi", Body: "Hello {{user.name}}", Active: true},
		channel.Template{ID: "otp", Channel: channel.ChannelSMS, Body: "Code {{code}}", Variables: []string{"code"}, Active: true},
		channel.Template{ID: "retired", Channel: channel.ChannelEmail, Body: "old", Active: false},
	)
	records := dispatch.NewMemoryRecordStore()
	directory := audience.NewMemoryDirectory()
	adapter := &fakeAdapter{channel: ch, failIDs: map[string]bool{}, panicIDs: map[string]bool{}}

	opts = append([]dispatch.Option{dispatch.WithBatchDelay(0)}, opts...)
	dispatcher := dispatch.NewDispatcher(
		templates, records,
		audience.NewResolver(directory),
		channel.Registry{ch: adapter},
		opts...,
	)
	return &fixture{dispatcher: dispatcher, templates: templates, records: records, directory: directory, adapter: adapter}
}

func TestSendNotification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("delivers to every resolved recipient", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelEmail)
		fx.directory.Add(seedRecipients(5)...)

		receipt, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "welcome",
			Channel:    channel.ChannelEmail,
			Audience:   audience.All(),
		})
		require.NoError(t, err)

		assert.Len(t, receipt.Results, 5)
		assert.Equal(t, dispatch.Stats{Sent: 5}, receipt.Stats)

		rec, err := fx.records.Get(ctx, receipt.NotificationID)
		require.NoError(t, err)
		assert.Equal(t, dispatch.StatusSent, rec.Status)
		assert.Equal(t, 5, rec.RecipientCount)
		require.NotNil(t, rec.CompletedAt)
	})

	t.Run("injected failures produce exact counts", func(t *testing.T) {
		t.Parallel()
		const n, k = 25, 7
		fx := newFixture(t, channel.ChannelEmail)
		recipients := seedRecipients(n)
		fx.directory.Add(recipients...)
		for i := 0; i < k; i++ {
			fx.adapter.failIDs[recipients[i].ID] = true
		}

		receipt, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "welcome",
			Channel:    channel.ChannelEmail,
			Audience:   audience.All(),
		})
		require.NoError(t, err)

		assert.Len(t, receipt.Results, n)
		assert.Equal(t, n-k, receipt.Stats.Sent)
		assert.Equal(t, k, receipt.Stats.Failed)
		assert.Equal(t, n, receipt.Stats.Sent+receipt.Stats.Failed)
	})

	t.Run("all recipients failing marks the record failed", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelEmail)
		recipients := seedRecipients(3)
		fx.directory.Add(recipients...)
		for _, r := range recipients {
			fx.adapter.failIDs[r.ID] = true
		}

		receipt, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "welcome",
			Channel:    channel.ChannelEmail,
			Audience:   audience.All(),
		})
		require.NoError(t, err)

		rec, err := fx.records.Get(ctx, receipt.NotificationID)
		require.NoError(t, err)
		assert.Equal(t, dispatch.StatusFailed, rec.Status)
	})

	t.Run("a panicking adapter fails only its recipient", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelEmail)
		recipients := seedRecipients(3)
		fx.directory.Add(recipients...)
		fx.adapter.panicIDs[recipients[1].ID] = true

		receipt, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "welcome",
			Channel:    channel.ChannelEmail,
			Audience:   audience.All(),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, receipt.Stats.Sent)
		assert.Equal(t, 1, receipt.Stats.Failed)
		for _, res := range receipt.Results {
			if res.RecipientID == recipients[1].ID {
				assert.Equal(t, channel.CodeInternal, res.ErrorCode)
			}
		}
	})

	t.Run("empty audience aborts without a record", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelEmail)

		_, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "welcome",
			Channel:    channel.ChannelEmail,
			Audience:   audience.Role("nobody-has-this"),
		})
		assert.ErrorIs(t, err, audience.ErrNoRecipients)
		assert.Zero(t, fx.adapter.callCount())
	})

	t.Run("role audience with no roles fails before any query", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelEmail)
		fx.directory.Add(seedRecipients(2)...)

		_, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "welcome",
			Channel:    channel.ChannelEmail,
			Audience:   audience.Descriptor{Type: audience.TypeRole},
		})
		assert.ErrorIs(t, err, audience.ErrInvalidDescriptor)
	})

	t.Run("unknown template aborts", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelEmail)
		fx.directory.Add(seedRecipients(1)...)

		_, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "missing",
			Channel:    channel.ChannelEmail,
			Audience:   audience.All(),
		})
		assert.ErrorIs(t, err, dispatch.ErrTemplateNotFound)
	})

	t.Run("inactive template aborts", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelEmail)
		fx.directory.Add(seedRecipients(1)...)

		_, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "retired",
			Channel:    channel.ChannelEmail,
			Audience:   audience.All(),
		})
		assert.ErrorIs(t, err, dispatch.ErrTemplateInactive)
	})

	t.Run("channel mismatch aborts", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelSMS)
		fx.directory.Add(seedRecipients(1)...)

		_, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "welcome",
			Channel:    channel.ChannelSMS,
			Audience:   audience.All(),
		})
		assert.ErrorIs(t, err, dispatch.ErrChannelMismatch)
	})

	t.Run("missing declared variable aborts", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelSMS)
		fx.directory.Add(seedRecipients(1)...)

		_, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "otp",
			Channel:    channel.ChannelSMS,
			Audience:   audience.All(),
		})
		assert.ErrorIs(t, err, dispatch.ErrMissingVariables)

		_, err = fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "otp",
			Channel:    channel.ChannelSMS,
			Audience:   audience.All(),
			Variables:  map[string]any{"code": "4242"},
		})
		assert.NoError(t, err)
	})

	t.Run("future send time leaves the record scheduled", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t, channel.ChannelEmail)
		fx.directory.Add(seedRecipients(2)...)

		sendAt := time.Now().Add(time.Hour)
		receipt, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
			TemplateID: "welcome",
			Channel:    channel.ChannelEmail,
			Audience:   audience.All(),
			SendAt:     &sendAt,
		})
		require.NoError(t, err)
		assert.Empty(t, receipt.Results)
		assert.Zero(t, fx.adapter.callCount())

		rec, err := fx.records.Get(ctx, receipt.NotificationID)
		require.NoError(t, err)
		assert.Equal(t, dispatch.StatusScheduled, rec.Status)
		assert.Nil(t, rec.CompletedAt)
	})
}

type countingSMSTransport struct {
	calls atomic.Int64
}

func (c *countingSMSTransport) SendSMS(_ context.Context, _, _ string) (string, error) {
	c.calls.Add(1)
	return "sms-ok", nil
}

func (c *countingSMSTransport) MessageStatus(_ context.Context, _ string) (channel.DeliveryStatus, error) {
	return channel.DeliveryDelivered, nil
}

func TestSMSDispatchSkipsPhonelessRecipient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// A real SMS adapter with a counting transport: the phoneless recipient
	// must fail with NO_PHONE before any transport call.
	transport := &countingSMSTransport{}
	adapter := channel.NewSMSAdapterWithTransport(channel.SMSConfig{DefaultCountryCode: "91"}, transport)

	templates := dispatch.NewMemoryTemplateStore(
		channel.Template{ID: "otp", Channel: channel.ChannelSMS, Body: "Code 1234", Active: true},
	)
	directory := audience.NewMemoryDirectory()
	directory.Add(
		audience.Recipient{ID: "u1", Phone: "9876543210"},
		audience.Recipient{ID: "u2"},
		audience.Recipient{ID: "u3", Phone: "9876543211"},
	)

	dispatcher := dispatch.NewDispatcher(
		templates, dispatch.NewMemoryRecordStore(),
		audience.NewResolver(directory),
		channel.Registry{channel.ChannelSMS: adapter},
		dispatch.WithBatchDelay(0),
	)

	receipt, err := dispatcher.SendNotification(ctx, dispatch.Request{
		TemplateID: "otp",
		Channel:    channel.ChannelSMS,
		Audience:   audience.All(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, int(transport.calls.Load()))
	assert.Equal(t, 2, receipt.Stats.Sent)
	assert.Equal(t, 1, receipt.Stats.Failed)
	for _, res := range receipt.Results {
		if res.RecipientID == "u2" {
			assert.Equal(t, channel.CodeNoPhone, res.ErrorCode)
		}
	}
}

func TestProcessDueScheduled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newFixture(t, channel.ChannelEmail)
	fx.directory.Add(seedRecipients(3)...)

	sendAt := time.Now().Add(30 * time.Minute)
	receipt, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
		TemplateID: "welcome",
		Channel:    channel.ChannelEmail,
		Audience:   audience.All(),
		SendAt:     &sendAt,
	})
	require.NoError(t, err)

	// Not yet due.
	processed, err := fx.dispatcher.ProcessDueScheduled(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, fx.adapter.callCount())

	// Past the send time the record runs to a terminal state.
	processed, err = fx.dispatcher.ProcessDueScheduled(ctx, sendAt.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 3, fx.adapter.callCount())

	rec, err := fx.records.Get(ctx, receipt.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusSent, rec.Status)
	assert.Equal(t, dispatch.Stats{Sent: 3}, rec.Stats)
}

func TestSendTestNotification(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, channel.ChannelEmail)

	res, err := fx.dispatcher.SendTestNotification(context.Background(), "welcome", channel.ChannelEmail,
		audience.Recipient{ID: "tester", Email: "tester@example.com"}, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "tester", res.RecipientID)

	// No record is written for test sends.
	_, err = fx.records.Get(context.Background(), res.MessageID)
	assert.ErrorIs(t, err, dispatch.ErrRecordNotFound)
}

func TestPreviewTemplate(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, channel.ChannelEmail)

	out, err := fx.dispatcher.PreviewTemplate("Hello {{user.name|upper}}", map[string]any{
		"user": map[string]any{"name": "Asha"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello ASHA", out)

	_, err = fx.dispatcher.PreviewTemplate("{{#if x}}broken", nil)
	assert.Error(t, err)
}

func TestRefreshDeliveryStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newFixture(t, channel.ChannelEmail)
	fx.adapter.status = channel.DeliveryDelivered
	fx.directory.Add(seedRecipients(4)...)

	receipt, err := fx.dispatcher.SendNotification(ctx, dispatch.Request{
		TemplateID: "welcome",
		Channel:    channel.ChannelEmail,
		Audience:   audience.All(),
	})
	require.NoError(t, err)
	assert.Zero(t, receipt.Stats.Delivered)

	stats, err := fx.dispatcher.RefreshDeliveryStatus(ctx, receipt.NotificationID, receipt.Results)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Delivered)

	rec, err := fx.records.Get(ctx, receipt.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Stats.Delivered)
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	assert.True(t, dispatch.StatusScheduled.CanTransitionTo(dispatch.StatusPending))
	assert.True(t, dispatch.StatusPending.CanTransitionTo(dispatch.StatusSent))
	assert.True(t, dispatch.StatusPending.CanTransitionTo(dispatch.StatusFailed))
	assert.False(t, dispatch.StatusSent.CanTransitionTo(dispatch.StatusPending))
	assert.False(t, dispatch.StatusFailed.CanTransitionTo(dispatch.StatusSent))
	assert.True(t, dispatch.StatusSent.Terminal())
	assert.False(t, dispatch.StatusScheduled.Terminal())
}
