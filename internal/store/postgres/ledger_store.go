package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// LedgerStore implements domain.LedgerStore using PostgreSQL. Wei amounts
// are stored as NUMERIC and moved across the wire as decimal strings to
// avoid int64 truncation.
type LedgerStore struct {
	pool *pgxpool.Pool
}

// NewLedgerStore creates a LedgerStore backed by the given connection pool.
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Insert writes a record under its ledger-assigned index.
func (s *LedgerStore) Insert(ctx context.Context, index int, rec domain.TransactionRecord) error {
	const query = `
		INSERT INTO ledger_records (idx, sender, receiver, amount, gas_price, ts)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)`

	_, err := s.pool.Exec(ctx, query,
		int64(index),
		rec.Sender.Bytes(),
		rec.Receiver.Bytes(),
		strconv.FormatUint(rec.Amount, 10),
		strconv.FormatUint(rec.GasPrice, 10),
		int64(rec.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert ledger record %d: %w", index, err)
	}
	return nil
}

// List returns every record in index order.
func (s *LedgerStore) List(ctx context.Context) ([]domain.TransactionRecord, error) {
	const query = `
		SELECT sender, receiver, amount::text, gas_price::text, ts
		FROM ledger_records ORDER BY idx ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list ledger records: %w", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		var (
			sender, receiver []byte
			amount, gasPrice string
			ts               int64
		)
		if err := rows.Scan(&sender, &receiver, &amount, &gasPrice, &ts); err != nil {
			return nil, fmt.Errorf("postgres: scan ledger record: %w", err)
		}

		amt, err := strconv.ParseUint(amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("postgres: parse amount %q: %w", amount, err)
		}
		gas, err := strconv.ParseUint(gasPrice, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("postgres: parse gas price %q: %w", gasPrice, err)
		}

		records = append(records, domain.TransactionRecord{
			Sender:    common.BytesToAddress(sender),
			Receiver:  common.BytesToAddress(receiver),
			Amount:    amt,
			GasPrice:  gas,
			Timestamp: uint64(ts),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list ledger records rows: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *LedgerStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ledger_records").Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count ledger records: %w", err)
	}
	return count, nil
}

var _ domain.LedgerStore = (*LedgerStore)(nil)
