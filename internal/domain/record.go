// Package domain defines the core types, events, sentinel errors, and
// persistence interfaces shared by the ledger watcher components.
package domain

import "github.com/ethereum/go-ethereum/common"

// Principal is an address capable of calling operations and holding roles.
type Principal = common.Address

// TransactionRecord is a single observed transaction. Records are immutable
// once stored: the ledger assigns each one a stable 0-based index at append
// time and never mutates or deletes it.
//
// Fields are deliberately not validated for plausibility: the sender may
// equal the receiver and the amount may be zero. Relevance is decided by the
// detection heuristics, not by the ledger.
//
// Amount and GasPrice are uint64 wei, which caps a single record at
// 2^64-1 wei (roughly 18.4 ETH). The heuristic thresholds all sit well
// below that bound. The postgres columns are NUMERIC(38,0), so widening
// to holiman/uint256 later is a Go-side change only.
type TransactionRecord struct {
	Sender    Principal `json:"sender"`
	Receiver  Principal `json:"receiver"`
	Amount    uint64    `json:"amount"`    // wei, capped at ~18.4 ETH
	GasPrice  uint64    `json:"gas_price"` // wei per gas
	Timestamp uint64    `json:"timestamp"` // unix seconds, caller-supplied
}
