package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ray-no/fedhamev/internal/access"
	"github.com/Ray-no/fedhamev/internal/domain"
	"github.com/Ray-no/fedhamev/internal/event"
	"github.com/Ray-no/fedhamev/internal/ledger"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) Insert(ctx context.Context, index int, rec domain.TransactionRecord) error {
	args := m.Called(ctx, index, rec)
	return args.Error(0)
}

func (m *MockLedgerStore) List(ctx context.Context) ([]domain.TransactionRecord, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.TransactionRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedgerStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return int64(args.Int(0)), args.Error(1)
}

type MockRoleStore struct {
	mock.Mock
}

func (m *MockRoleStore) SetOwner(ctx context.Context, p domain.Principal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRoleStore) GetOwner(ctx context.Context) (domain.Principal, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Principal), args.Error(1)
}

func (m *MockRoleStore) SetAuthorized(ctx context.Context, p domain.Principal, authorized bool) error {
	args := m.Called(ctx, p, authorized)
	return args.Error(0)
}

func (m *MockRoleStore) ListAuthorized(ctx context.Context) ([]domain.Principal, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.Principal), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(sink domain.EventSink) *Service {
	return NewService(Config{
		Roles:  access.NewRoles(owner),
		Ledger: ledger.New(),
		Sink:   sink,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestService_AppendRequiresAuthorization(t *testing.T) {
	capture := event.NewCapture()
	svc := newTestService(capture)
	ctx := context.Background()

	rec := domain.TransactionRecord{Sender: alice, Receiver: bob, Amount: 10}

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := svc.Append(ctx, alice, rec)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Equal(t, 0, svc.Length())
		assert.Empty(t, capture.Transactions)
	})

	t.Run("owner can always append", func(t *testing.T) {
		index, err := svc.Append(ctx, owner, rec)
		require.NoError(t, err)
		assert.Equal(t, 0, index)
	})

	t.Run("authorized principal can append", func(t *testing.T) {
		require.NoError(t, svc.Authorize(ctx, owner, alice))

		index, err := svc.Append(ctx, alice, rec)
		require.NoError(t, err)
		assert.Equal(t, 1, index)
		assert.Equal(t, 2, svc.Length())
	})

	t.Run("revoked principal loses the right", func(t *testing.T) {
		require.NoError(t, svc.Revoke(ctx, owner, alice))

		_, err := svc.Append(ctx, alice, rec)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Equal(t, 2, svc.Length())
	})
}

func TestService_AppendEmitsEvent(t *testing.T) {
	capture := event.NewCapture()
	svc := newTestService(capture)

	rec := domain.TransactionRecord{Sender: alice, Receiver: bob, Amount: 7, GasPrice: 3, Timestamp: 99}
	index, err := svc.Append(context.Background(), owner, rec)
	require.NoError(t, err)

	require.Len(t, capture.Transactions, 1)
	assert.Equal(t, index, capture.Transactions[0].Index)
	assert.Equal(t, rec, capture.Transactions[0].Record)
}

func TestService_AccessMutationsAreOwnerOnly(t *testing.T) {
	svc := newTestService(event.NewCapture())
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, owner, alice))

	assert.ErrorIs(t, svc.Authorize(ctx, alice, bob), domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.Revoke(ctx, alice, owner), domain.ErrUnauthorized)
}

func TestService_ScanIsOwnerGated(t *testing.T) {
	capture := event.NewCapture()
	svc := newTestService(capture)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, owner, alice))
	_, err := svc.Append(ctx, alice, domain.TransactionRecord{
		Sender: alice, Receiver: bob, Amount: 1_000_000_000_000_000_000,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Scan(ctx, alice), domain.ErrUnauthorized)
	assert.Empty(t, capture.Findings())

	require.NoError(t, svc.Scan(ctx, owner))
	assert.Len(t, capture.Findings(), 1)
}

func TestService_AppendThenScanScenario(t *testing.T) {
	capture := event.NewCapture()
	svc := newTestService(capture)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, owner, bob))

	// High amount between distinct parties plus a gas price above 50 gwei:
	// both heuristics fire on the same record.
	rec := domain.TransactionRecord{
		Sender:    alice,
		Receiver:  bob,
		Amount:    2_000_000_000_000_000_000,
		GasPrice:  60_000_000_000,
		Timestamp: 1700000000,
	}
	index, err := svc.Append(ctx, bob, rec)
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	require.NoError(t, svc.Scan(ctx, owner))

	findings := capture.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, 0, findings[0].LedgerIndex)
	assert.Equal(t, domain.OpportunityArbitrage, findings[0].Type)
	assert.Equal(t, uint64(60_000_000_000_000_000), findings[0].PotentialProfit)

	// Rescanning the unchanged ledger reproduces the finding.
	capture.Reset()
	require.NoError(t, svc.Scan(ctx, owner))
	assert.Len(t, capture.Findings(), 1)
}

func TestService_StoreFailureLeavesMemoryUnchanged(t *testing.T) {
	capture := event.NewCapture()
	store := new(MockLedgerStore)
	svc := NewService(Config{
		Roles:       access.NewRoles(owner),
		Ledger:      ledger.New(),
		Sink:        capture,
		LedgerStore: store,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	rec := domain.TransactionRecord{Sender: alice, Receiver: bob, Amount: 10}

	store.On("Insert", mock.Anything, 0, rec).Return(errors.New("connection refused")).Once()
	_, err := svc.Append(ctx, owner, rec)
	require.Error(t, err)
	assert.Equal(t, 0, svc.Length())
	assert.Empty(t, capture.Transactions)

	// A later successful insert lands at the same index.
	store.On("Insert", mock.Anything, 0, rec).Return(nil).Once()
	index, err := svc.Append(ctx, owner, rec)
	require.NoError(t, err)
	assert.Equal(t, 0, index)
	assert.Equal(t, 1, svc.Length())

	store.AssertExpectations(t)
}

func TestService_AuthorizeStoreFailureLeavesRolesUnchanged(t *testing.T) {
	store := new(MockRoleStore)
	svc := NewService(Config{
		Roles:     access.NewRoles(owner),
		Ledger:    ledger.New(),
		Sink:      event.NewCapture(),
		RoleStore: store,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	store.On("SetAuthorized", mock.Anything, alice, true).Return(errors.New("connection refused")).Once()
	require.Error(t, svc.Authorize(ctx, owner, alice))

	// The grant never took effect.
	_, err := svc.Append(ctx, alice, domain.TransactionRecord{Sender: alice, Receiver: bob})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	store.AssertExpectations(t)
}

func TestService_GetAndListArePublic(t *testing.T) {
	svc := newTestService(event.NewCapture())
	ctx := context.Background()

	rec := domain.TransactionRecord{Sender: alice, Receiver: bob, Amount: 5}
	_, err := svc.Append(ctx, owner, rec)
	require.NoError(t, err)

	got, err := svc.Get(0)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = svc.Get(1)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	assert.Len(t, svc.List(0, 10), 1)
	assert.Equal(t, 1, svc.Length())
}

func TestService_Restore(t *testing.T) {
	ledgerStore := new(MockLedgerStore)
	roleStore := new(MockRoleStore)
	svc := NewService(Config{
		Roles:       access.NewRoles(owner),
		Ledger:      ledger.New(),
		Sink:        event.NewCapture(),
		LedgerStore: ledgerStore,
		RoleStore:   roleStore,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	records := []domain.TransactionRecord{
		{Sender: alice, Receiver: bob, Amount: 1},
		{Sender: bob, Receiver: alice, Amount: 2},
	}
	roleStore.On("ListAuthorized", mock.Anything).Return([]domain.Principal{alice}, nil).Once()
	ledgerStore.On("List", mock.Anything).Return(records, nil).Once()

	require.NoError(t, svc.Restore(ctx))

	assert.Equal(t, 2, svc.Length())
	got, err := svc.Get(1)
	require.NoError(t, err)
	assert.Equal(t, records[1], got)

	// Restored principals keep their append right.
	ledgerStore.On("Insert", mock.Anything, 2, mock.Anything).Return(nil).Once()
	_, err = svc.Append(ctx, alice, domain.TransactionRecord{Sender: alice, Receiver: bob})
	require.NoError(t, err)

	ledgerStore.AssertExpectations(t)
	roleStore.AssertExpectations(t)
}
