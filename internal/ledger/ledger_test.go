package ledger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ray-no/fedhamev/internal/domain"
)

func rec(n uint64) domain.TransactionRecord {
	return domain.TransactionRecord{
		Sender:    common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		Receiver:  common.HexToAddress("0x00000000000000000000000000000000000000b2"),
		Amount:    n,
		GasPrice:  n * 2,
		Timestamp: 1700000000 + n,
	}
}

func TestLog_AppendAssignsSequentialIndices(t *testing.T) {
	l := New()

	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, l.Append(rec(1)))
	assert.Equal(t, 1, l.Append(rec(2)))
	assert.Equal(t, 2, l.Append(rec(3)))
	assert.Equal(t, 3, l.Len())
}

func TestLog_GetReturnsStoredRecord(t *testing.T) {
	l := New()
	want := rec(42)
	idx := l.Append(want)

	got, err := l.Get(idx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLog_GetOutOfRange(t *testing.T) {
	l := New()

	_, err := l.Get(0)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	l.Append(rec(1))

	_, err = l.Get(1)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = l.Get(-1)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	// Appending extends the valid range.
	l.Append(rec(2))
	_, err = l.Get(1)
	assert.NoError(t, err)
}

func TestLog_Snapshot(t *testing.T) {
	l := New()
	for i := uint64(1); i <= 5; i++ {
		l.Append(rec(i))
	}

	t.Run("full copy with negative limit", func(t *testing.T) {
		snap := l.Snapshot(0, -1)
		require.Len(t, snap, 5)
		assert.Equal(t, rec(1), snap[0])
		assert.Equal(t, rec(5), snap[4])
	})

	t.Run("window", func(t *testing.T) {
		snap := l.Snapshot(1, 2)
		require.Len(t, snap, 2)
		assert.Equal(t, rec(2), snap[0])
		assert.Equal(t, rec(3), snap[1])
	})

	t.Run("limit clamped to length", func(t *testing.T) {
		snap := l.Snapshot(3, 10)
		require.Len(t, snap, 2)
		assert.Equal(t, rec(4), snap[0])
	})

	t.Run("offset past end", func(t *testing.T) {
		assert.Empty(t, l.Snapshot(5, 10))
		assert.Empty(t, l.Snapshot(99, -1))
	})

	t.Run("snapshot is isolated from later appends", func(t *testing.T) {
		snap := l.Snapshot(0, -1)
		l.Append(rec(6))
		assert.Len(t, snap, 5)

		// Mutating the copy must not leak into the log.
		snap[0].Amount = 999
		got, err := l.Get(0)
		require.NoError(t, err)
		assert.Equal(t, rec(1), got)
	})
}

func TestLog_Restore(t *testing.T) {
	l := New()
	l.Append(rec(1))

	l.Restore([]domain.TransactionRecord{rec(7), rec(8)})
	assert.Equal(t, 2, l.Len())

	got, err := l.Get(0)
	require.NoError(t, err)
	assert.Equal(t, rec(7), got)
}
