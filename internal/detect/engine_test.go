package detect

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ray-no/fedhamev/internal/domain"
	"github.com/Ray-no/fedhamev/internal/event"
	"github.com/Ray-no/fedhamev/internal/ledger"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEvaluate_GasPriceHeuristic(t *testing.T) {
	t.Run("at threshold does not fire", func(t *testing.T) {
		_, _, ok := Evaluate(domain.TransactionRecord{
			Sender:   alice,
			Receiver: bob,
			GasPrice: 50_000_000_000,
		})
		assert.False(t, ok)
	})

	t.Run("one wei above threshold fires", func(t *testing.T) {
		typ, profit, ok := Evaluate(domain.TransactionRecord{
			Sender:   alice,
			Receiver: bob,
			GasPrice: 50_000_000_001,
		})
		require.True(t, ok)
		assert.Equal(t, domain.OpportunityGasOptimization, typ)
		assert.Equal(t, uint64(10_000_000_000_000_000), profit)
	})
}

func TestEvaluate_TransferHeuristic(t *testing.T) {
	t.Run("self transfer never fires", func(t *testing.T) {
		_, _, ok := Evaluate(domain.TransactionRecord{
			Sender:   alice,
			Receiver: alice,
			Amount:   1_000_000_000_000_000_000,
		})
		assert.False(t, ok)
	})

	t.Run("below one ether does not fire", func(t *testing.T) {
		_, _, ok := Evaluate(domain.TransactionRecord{
			Sender:   alice,
			Receiver: bob,
			Amount:   999_999_999_999_999_999,
		})
		assert.False(t, ok)
	})

	t.Run("exactly one ether between distinct parties fires", func(t *testing.T) {
		typ, profit, ok := Evaluate(domain.TransactionRecord{
			Sender:   alice,
			Receiver: bob,
			Amount:   1_000_000_000_000_000_000,
		})
		require.True(t, ok)
		assert.Equal(t, domain.OpportunityArbitrage, typ)
		assert.Equal(t, uint64(50_000_000_000_000_000), profit)
	})
}

func TestEvaluate_BothHeuristicsCombine(t *testing.T) {
	// Profits sum; the label reflects the last heuristic evaluated.
	typ, profit, ok := Evaluate(domain.TransactionRecord{
		Sender:   alice,
		Receiver: bob,
		Amount:   2_000_000_000_000_000_000,
		GasPrice: 60_000_000_000,
	})
	require.True(t, ok)
	assert.Equal(t, domain.OpportunityArbitrage, typ)
	assert.Equal(t, uint64(60_000_000_000_000_000), profit)
}

func TestEngine_ScanEmitsOneFindingPerMatch(t *testing.T) {
	l := ledger.New()
	// Index 0: no opportunity.
	l.Append(domain.TransactionRecord{Sender: alice, Receiver: bob, Amount: 1, GasPrice: 1})
	// Index 1: both heuristics fire.
	l.Append(domain.TransactionRecord{
		Sender: alice, Receiver: bob,
		Amount: 2_000_000_000_000_000_000, GasPrice: 60_000_000_000,
	})
	// Index 2: gas only.
	l.Append(domain.TransactionRecord{
		Sender: alice, Receiver: alice,
		Amount: 5, GasPrice: 51_000_000_000,
	})

	engine := NewEngine(l, testLogger())
	capture := event.NewCapture()
	require.NoError(t, engine.Scan(context.Background(), capture))

	findings := capture.Findings()
	require.Len(t, findings, 2)

	assert.Equal(t, 1, findings[0].LedgerIndex)
	assert.Equal(t, domain.OpportunityArbitrage, findings[0].Type)
	assert.Equal(t, uint64(60_000_000_000_000_000), findings[0].PotentialProfit)

	assert.Equal(t, 2, findings[1].LedgerIndex)
	assert.Equal(t, domain.OpportunityGasOptimization, findings[1].Type)
	assert.Equal(t, uint64(10_000_000_000_000_000), findings[1].PotentialProfit)

	// Both findings carry the same scan ID.
	assert.Equal(t, findings[0].ScanID, findings[1].ScanID)
}

func TestEngine_RepeatedScansAreIdentical(t *testing.T) {
	l := ledger.New()
	l.Append(domain.TransactionRecord{
		Sender: alice, Receiver: bob,
		Amount: 1_000_000_000_000_000_000,
	})

	engine := NewEngine(l, testLogger())

	first := event.NewCapture()
	require.NoError(t, engine.Scan(context.Background(), first))
	second := event.NewCapture()
	require.NoError(t, engine.Scan(context.Background(), second))

	a, b := first.Findings(), second.Findings()
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	// Scan IDs differ per run; everything else must match.
	a[0].ScanID, b[0].ScanID = "", ""
	assert.Equal(t, a, b)
}

func TestEngine_ScanRangeOffsetsIndices(t *testing.T) {
	l := ledger.New()
	for i := 0; i < 4; i++ {
		l.Append(domain.TransactionRecord{
			Sender: alice, Receiver: bob,
			Amount: 1_000_000_000_000_000_000,
		})
	}

	engine := NewEngine(l, testLogger())
	capture := event.NewCapture()
	require.NoError(t, engine.ScanRange(context.Background(), capture, 2, 1))

	findings := capture.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].LedgerIndex)
}

func TestEngine_ScanEmptyLedger(t *testing.T) {
	engine := NewEngine(ledger.New(), testLogger())
	capture := event.NewCapture()

	require.NoError(t, engine.Scan(context.Background(), capture))
	assert.Empty(t, capture.Findings())
}

func TestEngine_ScanHonoursCancellation(t *testing.T) {
	l := ledger.New()
	l.Append(domain.TransactionRecord{
		Sender: alice, Receiver: bob,
		Amount: 1_000_000_000_000_000_000,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(l, testLogger())
	err := engine.Scan(ctx, event.NewCapture())
	assert.ErrorIs(t, err, context.Canceled)
}
