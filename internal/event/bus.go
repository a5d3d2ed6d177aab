package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// Channel and stream names for the two event shapes. Live consumers (the
// websocket hub, tail mode) subscribe to the channels; the streams keep a
// bounded replay buffer.
const (
	ChannelTransactions  = "ch:tx"
	ChannelOpportunities = "ch:opportunity"
	StreamTransactions   = "stream:tx"
	StreamOpportunities  = "stream:opportunity"
)

// envelope is the JSON wire shape published on the bus.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// BusSink publishes events as JSON envelopes on a signal bus: pub/sub for
// live delivery plus a stream append for durable replay.
type BusSink struct {
	bus domain.SignalBus
}

// NewBusSink creates a sink publishing to bus.
func NewBusSink(bus domain.SignalBus) *BusSink {
	return &BusSink{bus: bus}
}

// TransactionAdded implements domain.EventSink.
func (s *BusSink) TransactionAdded(ctx context.Context, ev domain.TransactionAdded) error {
	return s.publish(ctx, ChannelTransactions, StreamTransactions, "transaction_added", ev)
}

// OpportunityIdentified implements domain.EventSink.
func (s *BusSink) OpportunityIdentified(ctx context.Context, ev domain.OpportunityIdentified) error {
	return s.publish(ctx, ChannelOpportunities, StreamOpportunities, "opportunity_identified", ev)
}

func (s *BusSink) publish(ctx context.Context, channel, stream, name string, payload any) error {
	data, err := json.Marshal(envelope{Event: name, Payload: payload})
	if err != nil {
		return fmt.Errorf("event: marshal %s: %w", name, err)
	}
	if err := s.bus.Publish(ctx, channel, data); err != nil {
		return err
	}
	return s.bus.StreamAppend(ctx, stream, data)
}

var _ domain.EventSink = (*BusSink)(nil)
