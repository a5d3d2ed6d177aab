package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ray-no/fedhamev/internal/domain"
)

type failingSink struct{}

func (failingSink) TransactionAdded(context.Context, domain.TransactionAdded) error {
	return errors.New("boom")
}

func (failingSink) OpportunityIdentified(context.Context, domain.OpportunityIdentified) error {
	return errors.New("boom")
}

func TestFanout_DeliversToAllSinks(t *testing.T) {
	a, b := NewCapture(), NewCapture()
	f := NewFanout(a, b)
	ctx := context.Background()

	require.NoError(t, f.TransactionAdded(ctx, domain.TransactionAdded{Index: 3}))
	require.NoError(t, f.OpportunityIdentified(ctx, domain.OpportunityIdentified{LedgerIndex: 3}))

	assert.Len(t, a.Transactions, 1)
	assert.Len(t, b.Transactions, 1)
	assert.Len(t, a.Findings(), 1)
	assert.Len(t, b.Findings(), 1)
}

func TestFanout_OneFailureDoesNotBlockOthers(t *testing.T) {
	capture := NewCapture()
	f := NewFanout(failingSink{}, capture)

	err := f.TransactionAdded(context.Background(), domain.TransactionAdded{Index: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 sink(s) failed")

	// The healthy sink still received the event.
	assert.Len(t, capture.Transactions, 1)
}

func TestFanout_SkipsNilSinks(t *testing.T) {
	capture := NewCapture()
	f := NewFanout(nil, capture, nil)

	require.NoError(t, f.TransactionAdded(context.Background(), domain.TransactionAdded{}))
	assert.Len(t, capture.Transactions, 1)
}
