package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXReadArgs(t *testing.T) {
	t.Run("read never blocks", func(t *testing.T) {
		// go-redis sends BLOCK for any Block >= 0, and BLOCK 0 blocks
		// forever. A negative Block omits the option entirely, so an
		// empty stream returns redis.Nil instead of parking the poller.
		args := xReadArgs("events:transactions", "0", 100)
		assert.Negative(t, args.Block)
	})

	t.Run("stream and cursor wiring", func(t *testing.T) {
		args := xReadArgs("events:opportunities", "1693000000000-5", 25)

		require.Len(t, args.Streams, 2)
		assert.Equal(t, "events:opportunities", args.Streams[0])
		assert.Equal(t, "1693000000000-5", args.Streams[1])
		assert.Equal(t, int64(25), args.Count)
	})
}

func TestHasPattern(t *testing.T) {
	assert.False(t, hasPattern("events:transactions"))
	assert.True(t, hasPattern("events:*"))
	assert.True(t, hasPattern("events:[to]x"))
}
