package domain

import (
	"context"
	"io"
	"time"
)

// LedgerStore persists the ordered ledger. The table is append-only: there
// are no update or delete operations, matching the audit-trail contract that
// historical entries never change.
type LedgerStore interface {
	// Insert writes a record under its ledger-assigned index.
	Insert(ctx context.Context, index int, rec TransactionRecord) error
	// List returns every record in index order.
	List(ctx context.Context) ([]TransactionRecord, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}

// RoleStore persists the owner identity and the authorized-caller set. These
// plus the ledger are the only durable state.
type RoleStore interface {
	SetOwner(ctx context.Context, owner Principal) error
	// GetOwner returns ErrNotFound when no owner has been recorded yet.
	GetOwner(ctx context.Context) (Principal, error)
	SetAuthorized(ctx context.Context, p Principal, authorized bool) error
	ListAuthorized(ctx context.Context) ([]Principal, error)
}

// StreamMessage is a single durable message read back from an event stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus carries serialized events between processes: ephemeral pub/sub
// for live consumers and a bounded stream for replay.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// LockManager provides distributed mutual exclusion, used to serialize scans
// across replicas. Acquire returns ErrLockHeld when another holder owns the
// lock; the returned release function is safe to call more than once.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// BlobWriter uploads data to object storage. Used for ledger snapshot
// exports; exports are copies and never touch the source state.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
