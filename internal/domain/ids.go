package domain

// IdentityID is an internal identifier for an identity record.
type IdentityID string

// SubscriptionID is an internal identifier for a subscription record.
type SubscriptionID string

// RoleID is an internal identifier for a role record.
// Its format is controlled by the persistence layer; we treat it as opaque.
type RoleID string
