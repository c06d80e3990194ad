package domain

import "time"

// PlanAnnual is the only plan the flow provisions today.
const PlanAnnual = "annual"

// Subscription lifecycle states. Transitions out of active happen through
// administrative action, never through the auth flow.
const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// Subscription is the domain representation of a reader's subscription.
//
// CurrentVolumeNumber is a manually settable floor: operators may raise it to
// grant early access. The number of volumes actually readable is derived from
// it and the elapsed time, never stored.
type Subscription struct {
	ID         SubscriptionID
	IdentityID IdentityID

	PlanType  string
	StartDate time.Time
	EndDate   time.Time

	CurrentVolumeNumber int
	NextVolumeDate      time.Time

	Status string

	CreatedAt time.Time
}
