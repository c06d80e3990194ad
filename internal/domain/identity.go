package domain

import "time"

// RoleTypeAuthenticated is the role every identity provisioned through the
// passwordless flow is assigned.
const RoleTypeAuthenticated = "authenticated"

// ProviderLocal marks identities provisioned by this service rather than an
// external identity provider.
const ProviderLocal = "local"

// Identity is the domain representation of an account.
type Identity struct {
	ID       IdentityID
	Email    string // normalized lowercase, unique
	Username string
	RoleID   RoleID

	Confirmed bool
	Provider  string

	CreatedAt time.Time
}

// Role is a named permission bucket. Role management lives outside this
// service; the flow only reads the default role at provisioning time.
type Role struct {
	ID   RoleID
	Type string
}
