package accountrepo

import (
	"context"
	"time"

	"github.com/volume-club/reader-api/internal/domain"
)

// Identity is the persisted account record.
type Identity struct {
	ID       domain.IdentityID
	Email    string // normalized lowercase, unique
	Username string
	RoleID   domain.RoleID

	Confirmed bool
	Provider  string

	CreatedAt time.Time
}

// Role is a persisted role record. This service only ever reads roles.
type Role struct {
	ID   domain.RoleID
	Type string
}

// Subscription is the persisted subscription record.
type Subscription struct {
	ID         domain.SubscriptionID
	IdentityID domain.IdentityID

	PlanType  string
	StartDate time.Time
	EndDate   time.Time

	CurrentVolumeNumber int
	NextVolumeDate      time.Time

	Status string

	CreatedAt time.Time
}

// Repository persists identities, roles and subscriptions.
type Repository interface {
	// CreateAccount stores the identity together with its subscription as one
	// atomic unit: neither record becomes visible unless both writes succeed.
	// Returns ErrEmailTaken when an identity with the same email already
	// exists (including when a concurrent CreateAccount won the race).
	CreateAccount(ctx context.Context, identity Identity, sub Subscription) error

	GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
	GetIdentityByID(ctx context.Context, id domain.IdentityID) (Identity, error)

	GetRoleByType(ctx context.Context, roleType string) (Role, error)

	GetSubscriptionByIdentity(ctx context.Context, identityID domain.IdentityID) (Subscription, error)

	// UpdateSubscription persists administrative changes (volume floor,
	// status). The auth flow never calls it.
	UpdateSubscription(ctx context.Context, sub Subscription) error
}
