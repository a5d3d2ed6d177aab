package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// RoleStore implements domain.RoleStore using PostgreSQL.
type RoleStore struct {
	pool *pgxpool.Pool
}

// NewRoleStore creates a RoleStore backed by the given connection pool.
func NewRoleStore(pool *pgxpool.Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

// SetOwner records the owner principal. The owner row is written once at
// first boot; a later call with the same owner is a no-op.
func (s *RoleStore) SetOwner(ctx context.Context, owner domain.Principal) error {
	const query = `
		INSERT INTO roles (principal, role, authorized)
		VALUES ($1, 'owner', TRUE)
		ON CONFLICT (principal) DO UPDATE SET role = 'owner', authorized = TRUE, updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, owner.Bytes()); err != nil {
		return fmt.Errorf("postgres: set owner: %w", err)
	}
	return nil
}

// GetOwner returns the stored owner, or ErrNotFound when none is recorded.
func (s *RoleStore) GetOwner(ctx context.Context) (domain.Principal, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		"SELECT principal FROM roles WHERE role = 'owner'").Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Principal{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("postgres: get owner: %w", err)
	}
	return common.BytesToAddress(raw), nil
}

// SetAuthorized upserts p's authorized flag. Idempotent either way; clearing
// the flag for an unknown principal writes a revoked row rather than
// failing, matching the silent-revoke contract.
func (s *RoleStore) SetAuthorized(ctx context.Context, p domain.Principal, authorized bool) error {
	const query = `
		INSERT INTO roles (principal, role, authorized)
		VALUES ($1, 'authorized', $2)
		ON CONFLICT (principal) DO UPDATE SET authorized = $2, updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, p.Bytes(), authorized); err != nil {
		return fmt.Errorf("postgres: set authorized %s=%t: %w", p.Hex(), authorized, err)
	}
	return nil
}

// ListAuthorized returns every principal whose flag is currently set.
func (s *RoleStore) ListAuthorized(ctx context.Context) ([]domain.Principal, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT principal FROM roles WHERE authorized = TRUE")
	if err != nil {
		return nil, fmt.Errorf("postgres: list authorized: %w", err)
	}
	defer rows.Close()

	var out []domain.Principal
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("postgres: scan authorized principal: %w", err)
		}
		out = append(out, common.BytesToAddress(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list authorized rows: %w", err)
	}
	return out, nil
}

var _ domain.RoleStore = (*RoleStore)(nil)
