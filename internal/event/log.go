package event

import (
	"context"
	"log/slog"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// LogSink writes events to the structured log. Used in modes that run
// without an external bus.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink logging at info level.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With(slog.String("component", "event_log"))}
}

// TransactionAdded implements domain.EventSink.
func (s *LogSink) TransactionAdded(ctx context.Context, ev domain.TransactionAdded) error {
	s.logger.InfoContext(ctx, "transaction added",
		slog.Int("index", ev.Index),
		slog.String("sender", ev.Record.Sender.Hex()),
		slog.String("receiver", ev.Record.Receiver.Hex()),
		slog.Uint64("amount", ev.Record.Amount),
		slog.Uint64("gas_price", ev.Record.GasPrice),
		slog.Uint64("timestamp", ev.Record.Timestamp),
	)
	return nil
}

// OpportunityIdentified implements domain.EventSink.
func (s *LogSink) OpportunityIdentified(ctx context.Context, ev domain.OpportunityIdentified) error {
	s.logger.InfoContext(ctx, "opportunity identified",
		slog.String("scan_id", ev.ScanID),
		slog.Int("ledger_index", ev.LedgerIndex),
		slog.String("type", string(ev.Type)),
		slog.Uint64("potential_profit", ev.PotentialProfit),
	)
	return nil
}

var _ domain.EventSink = (*LogSink)(nil)
