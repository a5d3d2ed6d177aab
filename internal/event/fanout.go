// Package event provides NotificationSink implementations: fanout over
// several sinks, a signal-bus publisher, a slog sink, and an in-memory
// capture sink for tests.
package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// Fanout dispatches every event to all wrapped sinks. Errors from individual
// sinks are collected and returned combined; one failing sink does not stop
// delivery to the rest.
type Fanout struct {
	sinks []domain.EventSink
}

// NewFanout creates a fanout over the given sinks. Nil entries are skipped.
func NewFanout(sinks ...domain.EventSink) *Fanout {
	kept := make([]domain.EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{sinks: kept}
}

// TransactionAdded implements domain.EventSink.
func (f *Fanout) TransactionAdded(ctx context.Context, ev domain.TransactionAdded) error {
	var errs []string
	for _, s := range f.sinks {
		if err := s.TransactionAdded(ctx, ev); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return joined(errs)
}

// OpportunityIdentified implements domain.EventSink.
func (f *Fanout) OpportunityIdentified(ctx context.Context, ev domain.OpportunityIdentified) error {
	var errs []string
	for _, s := range f.sinks {
		if err := s.OpportunityIdentified(ctx, ev); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return joined(errs)
}

func joined(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("event: %d sink(s) failed: %s", len(errs), strings.Join(errs, "; "))
}

var _ domain.EventSink = (*Fanout)(nil)
