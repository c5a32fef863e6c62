package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/channel"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		cc      string
		want    string
		wantErr bool
	}{
		{name: "ten digit local gets country code", raw: "9876543210", cc: "91", want: "919876543210"},
		{name: "formatted number is stripped", raw: "+91 98765-43210", cc: "91", want: "919876543210"},
		{name: "already prefixed number kept", raw: "919876543210", cc: "91", want: "919876543210"},
		{name: "international 00 prefix trimmed", raw: "00919876543210", cc: "91", want: "919876543210"},
		{name: "us number with punctuation", raw: "(415) 555-2671", cc: "1", want: "14155552671"},
		{name: "too short", raw: "12345", cc: "91", wantErr: true},
		{name: "leading zero invalid", raw: "0123456789012", cc: "91", wantErr: true},
		{name: "empty", raw: "", cc: "91", wantErr: true},
		{name: "letters only", raw: "call me", cc: "91", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := channel.NormalizePhone(tt.raw, tt.cc)
			if tt.wantErr {
				assert.ErrorIs(t, err, channel.ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegmentCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, channel.SegmentCount(""))
	assert.Equal(t, 1, channel.SegmentCount(stringOfLen(160)))
	assert.Equal(t, 2, channel.SegmentCount(stringOfLen(161)))
	assert.Equal(t, 2, channel.SegmentCount(stringOfLen(306)))
	assert.Equal(t, 3, channel.SegmentCount(stringOfLen(307)))
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
