// Package users implements client-side user administration: listing,
// creation, deletion, and role changes staged as a local draft with an
// explicit commit/rollback pair instead of optimistic mutation.
package users

import (
	"context"
	"errors"
	"fmt"

	"condoctl/internal/authn"
)

// User is an account row as served by the admin service.
type User struct {
	ID       string
	Username string
	Role     string
}

// API is the slice of the backend this package consumes.
type API interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, username, password, role string) error
	UpdateUserRole(ctx context.Context, id, role string) error
	DeleteUser(ctx context.Context, id string) error
}

// ErrSuperImmutable rejects any attempt to modify or delete a super
// user; the backend refuses these too, so fail before the request.
var ErrSuperImmutable = errors.New("super users cannot be modified")

func validRole(role string) bool {
	return role == authn.RoleUser || role == authn.RoleAdmin
}

// Service wraps the immediate (non-staged) user operations.
type Service struct {
	api API
}

// NewService creates a user administration service.
func NewService(api API) *Service {
	return &Service{api: api}
}

// List fetches all user accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.api.ListUsers(ctx)
}

// Create adds a new account. Creating super users is rejected locally.
func (s *Service) Create(ctx context.Context, username, password, role string) error {
	if username == "" || password == "" {
		return errors.New("username and password required")
	}
	if !validRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	return s.api.CreateUser(ctx, username, password, role)
}

// Delete removes an account. Super users are rejected locally.
func (s *Service) Delete(ctx context.Context, u User) error {
	if u.Role == authn.RoleSuper {
		return ErrSuperImmutable
	}
	return s.api.DeleteUser(ctx, u.ID)
}

// RoleDraft stages role changes against a loaded user list. Changes are
// local until Commit; Rollback drops them. A commit that fails midway
// keeps the already-confirmed changes and reports which ones failed,
// leaving the failed entries staged for retry.
type RoleDraft struct {
	api    API
	users  []User
	orig   map[string]string // id -> role at load time
	staged map[string]string // id -> draft role
}

// NewRoleDraft loads the current user list and opens an empty draft.
func NewRoleDraft(ctx context.Context, api API) (*RoleDraft, error) {
	list, err := api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	orig := make(map[string]string, len(list))
	for _, u := range list {
		orig[u.ID] = u.Role
	}
	return &RoleDraft{
		api:    api,
		users:  list,
		orig:   orig,
		staged: make(map[string]string),
	}, nil
}

// Users returns the list with staged roles applied.
func (d *RoleDraft) Users() []User {
	out := make([]User, len(d.users))
	copy(out, d.users)
	for i := range out {
		if role, ok := d.staged[out[i].ID]; ok {
			out[i].Role = role
		}
	}
	return out
}

// Stage records a draft role for a user. Staging the original role back
// clears the entry, mirroring the dirty-field discipline of the data
// editor.
func (d *RoleDraft) Stage(id, role string) error {
	cur, ok := d.orig[id]
	if !ok {
		return fmt.Errorf("no user with id %s", id)
	}
	if cur == authn.RoleSuper {
		return ErrSuperImmutable
	}
	if !validRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	if role == cur {
		delete(d.staged, id)
		return nil
	}
	d.staged[id] = role
	return nil
}

// Pending returns the number of staged role changes.
func (d *RoleDraft) Pending() int { return len(d.staged) }

// Rollback discards all staged changes.
func (d *RoleDraft) Rollback() {
	d.staged = make(map[string]string)
}

// Commit applies the staged changes one at a time. Confirmed changes are
// folded into the baseline; the first failure stops the pass and is
// returned with the failing user identified, leaving that change staged.
func (d *RoleDraft) Commit(ctx context.Context) error {
	for id, role := range d.staged {
		if err := d.api.UpdateUserRole(ctx, id, role); err != nil {
			return fmt.Errorf("update role for user %s: %w", id, err)
		}
		d.orig[id] = role
		for i := range d.users {
			if d.users[i].ID == id {
				d.users[i].Role = role
			}
		}
		delete(d.staged, id)
	}
	return nil
}
