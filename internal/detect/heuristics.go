// Package detect implements the opportunity-detection engine: per-record
// heuristics over the ledger producing transient findings.
package detect

import (
	"github.com/ethereum/go-ethereum/params"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// Heuristic thresholds and stand-in profit magnitudes, all in wei. Profits
// are fixed constants, not derived from market data.
const (
	// GasPriceThreshold is the exclusive gas-price bound above which the
	// gas-optimization heuristic fires (50 gwei).
	GasPriceThreshold uint64 = 50 * params.GWei

	// GasSavingsProfit is the fixed profit contributed by the
	// gas-optimization heuristic (0.01 ether).
	GasSavingsProfit uint64 = params.Ether / 100

	// MinArbAmount is the inclusive transfer-amount bound for the arbitrage
	// heuristic (1 ether).
	MinArbAmount uint64 = params.Ether

	// ArbProfit is the fixed profit contributed by the arbitrage heuristic
	// (0.05 ether).
	ArbProfit uint64 = 5 * params.Ether / 100
)

// gasOpportunity fires when the record's gas price strictly exceeds
// GasPriceThreshold. Pure function of its input.
func gasOpportunity(rec domain.TransactionRecord) bool {
	return rec.GasPrice > GasPriceThreshold
}

// transferOpportunity fires on cross-party transfers of at least
// MinArbAmount. Self-transfers never qualify.
func transferOpportunity(rec domain.TransactionRecord) bool {
	return rec.Sender != rec.Receiver && rec.Amount >= MinArbAmount
}

// Evaluate runs both heuristics on a record. The heuristics are independent
// and may both fire; the returned profit is their sum. The label is a single
// slot overwritten by whichever heuristic ran last, so a record matching
// both is labeled by the arbitrage heuristic. ok is false when neither
// fired (zero profit).
func Evaluate(rec domain.TransactionRecord) (typ domain.OpportunityType, profit uint64, ok bool) {
	if gasOpportunity(rec) {
		typ = domain.OpportunityGasOptimization
		profit += GasSavingsProfit
	}
	if transferOpportunity(rec) {
		typ = domain.OpportunityArbitrage
		profit += ArbProfit
	}
	return typ, profit, profit > 0
}
