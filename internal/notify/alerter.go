package notify

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/params"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// Event names used for alert filtering in the notify config.
const (
	EventTransactionAdded      = "transaction_added"
	EventOpportunityIdentified = "opportunity_identified"
)

// Alerter adapts the Notifier to the event sink interface so ledger and
// detection events can reach operator channels. Delivery failures are
// surfaced to the caller (the fanout collects them); they never affect
// ledger state.
type Alerter struct {
	notifier *Notifier
}

// NewAlerter wraps a Notifier as an event sink.
func NewAlerter(notifier *Notifier) *Alerter {
	return &Alerter{notifier: notifier}
}

// TransactionAdded implements domain.EventSink.
func (a *Alerter) TransactionAdded(ctx context.Context, ev domain.TransactionAdded) error {
	msg := fmt.Sprintf("index %d: %s -> %s, %s, gas price %s",
		ev.Index,
		ev.Record.Sender.Hex(),
		ev.Record.Receiver.Hex(),
		formatEther(ev.Record.Amount),
		formatGwei(ev.Record.GasPrice),
	)
	return a.notifier.Notify(ctx, EventTransactionAdded, "Transaction recorded", msg)
}

// OpportunityIdentified implements domain.EventSink.
func (a *Alerter) OpportunityIdentified(ctx context.Context, ev domain.OpportunityIdentified) error {
	msg := fmt.Sprintf("ledger index %d: %s, potential profit %s",
		ev.LedgerIndex,
		ev.Type,
		formatEther(ev.PotentialProfit),
	)
	return a.notifier.Notify(ctx, EventOpportunityIdentified, "Opportunity identified", msg)
}

// formatEther renders a wei amount as a decimal ether string.
func formatEther(wei uint64) string {
	return fmt.Sprintf("%.6f ETH", float64(wei)/params.Ether)
}

// formatGwei renders a wei-per-gas price as gwei.
func formatGwei(wei uint64) string {
	return fmt.Sprintf("%.2f gwei", float64(wei)/params.GWei)
}

var _ domain.EventSink = (*Alerter)(nil)
