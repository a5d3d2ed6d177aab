package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// RecordSource supplies ledger records to the engine. Snapshot must return a
// stable copy so a scan never observes a half-appended tail.
type RecordSource interface {
	Len() int
	Snapshot(offset, limit int) []domain.TransactionRecord
}

// Engine walks the ledger and emits a finding for every record with nonzero
// potential profit. The engine holds no scan state: every call re-evaluates
// from its starting offset, and identical ledgers produce identical
// findings.
type Engine struct {
	src    RecordSource
	logger *slog.Logger
}

// NewEngine creates an engine reading from src.
func NewEngine(src RecordSource, logger *slog.Logger) *Engine {
	return &Engine{
		src:    src,
		logger: logger.With(slog.String("component", "detect_engine")),
	}
}

// Scan walks the entire ledger in index order, fully synchronously, and
// emits each finding to sink. The ledger length is captured once at scan
// start. Scanning is read-only with respect to ledger and role state.
func (e *Engine) Scan(ctx context.Context, sink domain.EventSink) error {
	return e.ScanRange(ctx, sink, 0, -1)
}

// ScanRange is the paginated variant: it evaluates up to limit records
// starting at offset (negative limit means "to the end"). The unpaginated
// Scan keeps the original all-at-once semantics; ScanRange bounds the work
// a single call performs on a large ledger.
func (e *Engine) ScanRange(ctx context.Context, sink domain.EventSink, offset, limit int) error {
	scanID := uuid.New().String()
	records := e.src.Snapshot(offset, limit)

	e.logger.InfoContext(ctx, "scan started",
		slog.String("scan_id", scanID),
		slog.Int("offset", offset),
		slog.Int("count", len(records)),
	)

	findings := 0
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("detect: scan %s cancelled: %w", scanID, err)
		}

		typ, profit, ok := Evaluate(rec)
		if !ok {
			continue
		}

		ev := domain.OpportunityIdentified{
			ScanID:          scanID,
			LedgerIndex:     offset + i,
			Type:            typ,
			PotentialProfit: profit,
		}
		if err := sink.OpportunityIdentified(ctx, ev); err != nil {
			return fmt.Errorf("detect: emit finding for index %d: %w", ev.LedgerIndex, err)
		}
		findings++
	}

	e.logger.InfoContext(ctx, "scan finished",
		slog.String("scan_id", scanID),
		slog.Int("records", len(records)),
		slog.Int("findings", findings),
	)
	return nil
}
