// Package watcher wires access control, the ledger, and the detection engine
// into the single service instance that external collaborators call. All
// state is owned by the service; there are no process-wide registries.
package watcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ray-no/fedhamev/internal/access"
	"github.com/Ray-no/fedhamev/internal/detect"
	"github.com/Ray-no/fedhamev/internal/domain"
	"github.com/Ray-no/fedhamev/internal/ledger"
)

// scanLockTTL bounds how long the cross-replica scan lock may be held when a
// holder dies without releasing it.
const scanLockTTL = time.Minute

// Config assembles the service dependencies. Roles, Ledger, Sink, and Logger
// are required; the stores, lock manager, and blob writer are optional and
// enable write-through persistence, cross-replica scan exclusion, and
// snapshot export respectively.
type Config struct {
	Roles       *access.Roles
	Ledger      *ledger.Log
	Sink        domain.EventSink
	LedgerStore domain.LedgerStore
	RoleStore   domain.RoleStore
	Locks       domain.LockManager
	Blobs       domain.BlobWriter
	Logger      *slog.Logger
}

// Service is the external surface: append, authorize, revoke, scan, and the
// public reads. Mutating operations are serialized behind one exclusive
// lock guarding the ledger and the role state jointly; every guard check
// happens before any state change, so a failed operation leaves both
// untouched.
type Service struct {
	mu     sync.Mutex
	roles  *access.Roles
	log    *ledger.Log
	engine *detect.Engine
	sink   domain.EventSink

	ledgerStore domain.LedgerStore
	roleStore   domain.RoleStore
	locks       domain.LockManager
	blobs       domain.BlobWriter

	logger *slog.Logger
}

// NewService creates the service from cfg.
func NewService(cfg Config) *Service {
	logger := cfg.Logger.With(slog.String("component", "watcher"))
	return &Service{
		roles:       cfg.Roles,
		log:         cfg.Ledger,
		engine:      detect.NewEngine(cfg.Ledger, cfg.Logger),
		sink:        cfg.Sink,
		ledgerStore: cfg.LedgerStore,
		roleStore:   cfg.RoleStore,
		locks:       cfg.Locks,
		blobs:       cfg.Blobs,
		logger:      logger,
	}
}

// Owner returns the owner principal.
func (s *Service) Owner() domain.Principal {
	return s.roles.Owner()
}

// Append stores rec at the end of the ledger and returns the assigned index.
// Caller must be authorized. When a ledger store is configured the record is
// persisted first; a store failure leaves the in-memory ledger unchanged.
func (s *Service) Append(ctx context.Context, caller domain.Principal, rec domain.TransactionRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roles.RequireAuthorized(caller); err != nil {
		return 0, err
	}

	index := s.log.Len()
	if s.ledgerStore != nil {
		if err := s.ledgerStore.Insert(ctx, index, rec); err != nil {
			return 0, fmt.Errorf("watcher: persist record: %w", err)
		}
	}
	s.log.Append(rec)

	if err := s.sink.TransactionAdded(ctx, domain.TransactionAdded{Index: index, Record: rec}); err != nil {
		s.logger.WarnContext(ctx, "transaction event emission failed",
			slog.Int("index", index),
			slog.String("error", err.Error()),
		)
	}
	return index, nil
}

// Authorize grants p the right to append. Caller must be the owner.
func (s *Service) Authorize(ctx context.Context, caller, p domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roles.RequireOwner(caller); err != nil {
		return err
	}
	if s.roleStore != nil {
		if err := s.roleStore.SetAuthorized(ctx, p, true); err != nil {
			return fmt.Errorf("watcher: persist authorization: %w", err)
		}
	}
	return s.roles.Authorize(caller, p)
}

// Revoke clears p's append right. Caller must be the owner. Idempotent.
func (s *Service) Revoke(ctx context.Context, caller, p domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roles.RequireOwner(caller); err != nil {
		return err
	}
	if s.roleStore != nil {
		if err := s.roleStore.SetAuthorized(ctx, p, false); err != nil {
			return fmt.Errorf("watcher: persist revocation: %w", err)
		}
	}
	return s.roles.Revoke(caller, p)
}

// Scan walks the whole ledger and emits a finding for each record with
// nonzero potential profit. Caller must be the owner. Scanning mutates
// nothing; it reads from a snapshot taken at scan start and may run
// concurrently with other reads.
func (s *Service) Scan(ctx context.Context, caller domain.Principal) error {
	return s.ScanRange(ctx, caller, 0, -1)
}

// ScanRange is the paginated scan variant covering up to limit records from
// offset; a negative limit scans to the end.
func (s *Service) ScanRange(ctx context.Context, caller domain.Principal, offset, limit int) error {
	if err := s.roles.RequireOwner(caller); err != nil {
		return err
	}

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, "scan", scanLockTTL)
		if err != nil {
			return fmt.Errorf("watcher: acquire scan lock: %w", err)
		}
		defer release()
	}

	return s.engine.ScanRange(ctx, s.sink, offset, limit)
}

// Get returns the record at index. Public read; fails with ErrOutOfRange
// past the current length.
func (s *Service) Get(index int) (domain.TransactionRecord, error) {
	return s.log.Get(index)
}

// Length returns the current ledger length. Public read.
func (s *Service) Length() int {
	return s.log.Len()
}

// List returns a copy of the records in [offset, offset+limit). Public read.
func (s *Service) List(offset, limit int) []domain.TransactionRecord {
	return s.log.Snapshot(offset, limit)
}

// snapshotExport is the JSON layout of a ledger snapshot object.
type snapshotExport struct {
	Owner      domain.Principal           `json:"owner"`
	Authorized []domain.Principal         `json:"authorized"`
	Length     int                        `json:"length"`
	Records    []domain.TransactionRecord `json:"records"`
	CreatedAt  time.Time                  `json:"created_at"`
}

// SnapshotToBlob exports the full durable state (owner, authorized set,
// ordered ledger) as a JSON object in blob storage and returns the object
// key. Caller must be the owner. The export is a cold copy; nothing is
// evicted from the ledger.
func (s *Service) SnapshotToBlob(ctx context.Context, caller domain.Principal) (string, error) {
	if err := s.roles.RequireOwner(caller); err != nil {
		return "", err
	}
	if s.blobs == nil {
		return "", fmt.Errorf("watcher: snapshot storage not configured")
	}

	records := s.log.Snapshot(0, -1)
	export := snapshotExport{
		Owner:      s.roles.Owner(),
		Authorized: s.roles.AuthorizedList(),
		Length:     len(records),
		Records:    records,
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("watcher: marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/ledger-%s.json", uuid.New())
	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", fmt.Errorf("watcher: upload snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "ledger snapshot exported",
		slog.String("key", key),
		slog.Int("records", len(records)),
	)
	return key, nil
}

// Restore loads the authorized set and the ledger from the configured
// stores. Called once at startup, before the service is shared.
func (s *Service) Restore(ctx context.Context) error {
	if s.roleStore != nil {
		authorized, err := s.roleStore.ListAuthorized(ctx)
		if err != nil {
			return fmt.Errorf("watcher: restore roles: %w", err)
		}
		s.roles.Restore(authorized)
	}
	if s.ledgerStore != nil {
		records, err := s.ledgerStore.List(ctx)
		if err != nil {
			return fmt.Errorf("watcher: restore ledger: %w", err)
		}
		s.log.Restore(records)
	}
	s.logger.InfoContext(ctx, "state restored",
		slog.Int("ledger_length", s.log.Len()),
	)
	return nil
}
