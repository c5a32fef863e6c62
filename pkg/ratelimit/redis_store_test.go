package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIncrReply(t *testing.T) {
	t.Parallel()

	t.Run("count and ttl pair", func(t *testing.T) {
		t.Parallel()
		count, ttl, err := parseIncrReply([]int64{3, 45000})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.Equal(t, int64(45000), ttl)
	})

	t.Run("short reply errors instead of panicking", func(t *testing.T) {
		t.Parallel()
		_, _, err := parseIncrReply([]int64{3})
		assert.Error(t, err)

		_, _, err = parseIncrReply(nil)
		assert.Error(t, err)
	})
}
