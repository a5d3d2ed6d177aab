// Package access implements the role model gating every mutating operation:
// a single fixed owner and a mutable set of authorized appenders.
package access

import (
	"fmt"
	"sync"

	"github.com/Ray-no/fedhamev/internal/domain"
)

// Roles holds the owner identity and the authorized-caller set. The owner is
// set at construction and never rotated; the authorized set is mutable only
// through owner-gated calls.
type Roles struct {
	mu         sync.RWMutex
	owner      domain.Principal
	authorized map[domain.Principal]bool
}

// NewRoles creates the role state with the given owner. The owner is also
// granted the authorized flag, and IsAuthorized additionally treats the
// owner as always authorized, so clearing the flag can never strip the
// owner's append right.
func NewRoles(owner domain.Principal) *Roles {
	return &Roles{
		owner:      owner,
		authorized: map[domain.Principal]bool{owner: true},
	}
}

// Owner returns the owner principal.
func (r *Roles) Owner() domain.Principal {
	return r.owner
}

// Authorize grants p the authorized flag. Caller must be the owner.
// Idempotent: re-authorizing is a no-op beyond re-setting the flag.
func (r *Roles) Authorize(caller, p domain.Principal) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorized[p] = true
	return nil
}

// Revoke clears p's authorized flag. Caller must be the owner. Revoking a
// never-authorized or already-revoked principal succeeds silently.
func (r *Roles) Revoke(caller, p domain.Principal) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorized[p] = false
	return nil
}

// IsAuthorized reports whether p may append. The owner is always authorized
// regardless of its flag.
func (r *Roles) IsAuthorized(p domain.Principal) bool {
	if p == r.owner {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authorized[p]
}

// RequireOwner fails with ErrUnauthorized when caller is not the owner.
func (r *Roles) RequireOwner(caller domain.Principal) error {
	if caller != r.owner {
		return fmt.Errorf("access: caller %s is not the owner: %w", caller.Hex(), domain.ErrUnauthorized)
	}
	return nil
}

// RequireAuthorized fails with ErrUnauthorized when caller lacks the
// authorized flag (and is not the owner).
func (r *Roles) RequireAuthorized(caller domain.Principal) error {
	if !r.IsAuthorized(caller) {
		return fmt.Errorf("access: caller %s is not authorized: %w", caller.Hex(), domain.ErrUnauthorized)
	}
	return nil
}

// AuthorizedList returns every principal whose flag is currently set, for
// persistence and snapshot export. Order is unspecified.
func (r *Roles) AuthorizedList() []domain.Principal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Principal, 0, len(r.authorized))
	for p, ok := range r.authorized {
		if ok {
			out = append(out, p)
		}
	}
	return out
}

// Restore replaces the authorized set with the given principals. Used when
// reloading durable state at startup; the owner keeps its construction-time
// flag.
func (r *Roles) Restore(authorized []domain.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorized = make(map[domain.Principal]bool, len(authorized)+1)
	r.authorized[r.owner] = true
	for _, p := range authorized {
		r.authorized[p] = true
	}
}
