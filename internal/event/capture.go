package event

import (
	"context"
	"sync"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// Capture records every event in memory, in emission order. Test support.
type Capture struct {
	mu            sync.Mutex
	Transactions  []domain.TransactionAdded
	Opportunities []domain.OpportunityIdentified
}

// NewCapture creates an empty capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

// TransactionAdded implements domain.EventSink.
func (c *Capture) TransactionAdded(_ context.Context, ev domain.TransactionAdded) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions = append(c.Transactions, ev)
	return nil
}

// OpportunityIdentified implements domain.EventSink.
func (c *Capture) OpportunityIdentified(_ context.Context, ev domain.OpportunityIdentified) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Opportunities = append(c.Opportunities, ev)
	return nil
}

// Findings returns a copy of the captured findings.
func (c *Capture) Findings() []domain.OpportunityIdentified {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.OpportunityIdentified, len(c.Opportunities))
	copy(out, c.Opportunities)
	return out
}

// Reset clears all captured events.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions = nil
	c.Opportunities = nil
}

var _ domain.EventSink = (*Capture)(nil)
