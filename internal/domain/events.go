package domain

import "context"

// OpportunityType labels which heuristic produced a finding.
type OpportunityType string

const (
	// OpportunityGasOptimization marks a record whose gas price exceeds the
	// gas threshold.
	OpportunityGasOptimization OpportunityType = "gas_optimization"

	// OpportunityArbitrage marks a cross-party transfer at or above the
	// minimum transfer amount.
	OpportunityArbitrage OpportunityType = "arbitrage"
)

// TransactionAdded is emitted once per successful ledger append. It carries
// all five record fields plus the index the ledger assigned.
type TransactionAdded struct {
	Index  int               `json:"index"`
	Record TransactionRecord `json:"record"`
}

// OpportunityIdentified is emitted once per qualifying record per scan.
// Findings are transient: they are never persisted, and re-running a scan
// re-emits findings for the same records.
//
// When both heuristics fire on one record, PotentialProfit is their sum but
// Type carries only the label of the heuristic evaluated last. This mirrors
// the original single-slot labeling; see OpportunityType.
type OpportunityIdentified struct {
	ScanID          string          `json:"scan_id"`
	LedgerIndex     int             `json:"ledger_index"`
	Type            OpportunityType `json:"opportunity_type"`
	PotentialProfit uint64          `json:"potential_profit"` // wei
}

// EventSink receives the two event shapes the core emits. Implementations
// must not mutate ledger or role state.
type EventSink interface {
	TransactionAdded(ctx context.Context, ev TransactionAdded) error
	OpportunityIdentified(ctx context.Context, ev OpportunityIdentified) error
}
