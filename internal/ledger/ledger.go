// Package ledger implements the append-only transaction log. The log is pure
// storage: access gating and event emission live in the watcher facade.
package ledger

import (
	"fmt"
	"sync"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// Log is an ordered, append-only sequence of transaction records indexed by
// insertion order. Indices are 0-based and stable; no operation mutates or
// removes a stored record.
type Log struct {
	mu      sync.RWMutex
	records []domain.TransactionRecord
}

// New creates an empty log.
func New() *Log {
	return &Log{}
}

// Append pushes rec to the end of the sequence and returns the assigned
// index, which equals the previous length.
func (l *Log) Append(rec domain.TransactionRecord) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return len(l.records) - 1
}

// Get returns the record at index. It fails with ErrOutOfRange when
// index >= Len() or index is negative.
func (l *Log) Get(index int) (domain.TransactionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.records) {
		return domain.TransactionRecord{}, fmt.Errorf("ledger: index %d, length %d: %w", index, len(l.records), domain.ErrOutOfRange)
	}
	return l.records[index], nil
}

// Len returns the number of stored records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Snapshot copies out the records in [offset, offset+limit). A negative
// limit means "to the end". Scans read from a snapshot so a concurrent
// append cannot expose a half-visible tail; the copy also keeps callers
// from aliasing internal storage.
func (l *Log) Snapshot(offset, limit int) []domain.TransactionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(l.records) {
		return nil
	}
	end := len(l.records)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]domain.TransactionRecord, end-offset)
	copy(out, l.records[offset:end])
	return out
}

// Restore replaces the log contents with records loaded from durable
// storage. Only valid at startup, before the log is shared.
func (l *Log) Restore(records []domain.TransactionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make([]domain.TransactionRecord, len(records))
	copy(l.records, records)
}
