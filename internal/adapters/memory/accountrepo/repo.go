package accountrepo

import (
	"context"
	"sync"

	"github.com/volume-club/reader-api/internal/domain"
	"github.com/volume-club/reader-api/internal/ports/out/accountrepo"
)

// Repo is an in-memory implementation of accountrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID          map[domain.IdentityID]accountrepo.Identity
	idByEmail     map[string]domain.IdentityID
	subByIdentity map[domain.IdentityID]accountrepo.Subscription
	rolesByType   map[string]accountrepo.Role
}

// NewRepo returns an empty store pre-seeded with the default authenticated
// role, mirroring what the postgres migrations seed.
func NewRepo() *Repo {
	r := &Repo{
		byID:          make(map[domain.IdentityID]accountrepo.Identity),
		idByEmail:     make(map[string]domain.IdentityID),
		subByIdentity: make(map[domain.IdentityID]accountrepo.Subscription),
		rolesByType:   make(map[string]accountrepo.Role),
	}
	r.PutRole(accountrepo.Role{ID: "role-authenticated", Type: domain.RoleTypeAuthenticated})
	return r
}

// PutRole adds or replaces a role. Role management is out of scope for the
// flow; this exists for wiring and tests.
func (r *Repo) PutRole(role accountrepo.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rolesByType[role.Type] = role
}

// RemoveRole deletes a role. For tests that exercise the missing-role path.
func (r *Repo) RemoveRole(roleType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rolesByType, roleType)
}

func (r *Repo) CreateAccount(ctx context.Context, identity accountrepo.Identity, sub accountrepo.Subscription) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.idByEmail[identity.Email]; ok {
		return accountrepo.ErrEmailTaken
	}

	// Both writes happen under the one lock; a reader never observes an
	// identity without its subscription.
	r.byID[identity.ID] = identity
	r.idByEmail[identity.Email] = identity.ID
	r.subByIdentity[sub.IdentityID] = sub
	return nil
}

func (r *Repo) GetIdentityByEmail(ctx context.Context, email string) (accountrepo.Identity, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEmail[email]
	if !ok {
		return accountrepo.Identity{}, accountrepo.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *Repo) GetIdentityByID(ctx context.Context, id domain.IdentityID) (accountrepo.Identity, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byID[id]
	if !ok {
		return accountrepo.Identity{}, accountrepo.ErrNotFound
	}
	return identity, nil
}

func (r *Repo) GetRoleByType(ctx context.Context, roleType string) (accountrepo.Role, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.rolesByType[roleType]
	if !ok {
		return accountrepo.Role{}, accountrepo.ErrNotFound
	}
	return role, nil
}

func (r *Repo) GetSubscriptionByIdentity(ctx context.Context, identityID domain.IdentityID) (accountrepo.Subscription, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subByIdentity[identityID]
	if !ok {
		return accountrepo.Subscription{}, accountrepo.ErrNotFound
	}
	return sub, nil
}

func (r *Repo) UpdateSubscription(ctx context.Context, sub accountrepo.Subscription) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.subByIdentity[sub.IdentityID]
	if !ok || existing.ID != sub.ID {
		return accountrepo.ErrNotFound
	}
	r.subByIdentity[sub.IdentityID] = sub
	return nil
}
