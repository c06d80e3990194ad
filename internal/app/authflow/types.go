package authflow

import "github.com/volume-club/reader-api/internal/domain"

// SubscriptionView is a subscription together with the derived access count.
// AccessibleVolumes is recomputed on every read, never stored.
type SubscriptionView struct {
	domain.Subscription
	AccessibleVolumes int
}

// VerifyResult is what a successful code verification yields.
type VerifyResult struct {
	Token    string
	Identity domain.Identity

	// Subscription is nil when the identity has no subscription on record.
	// Provisioning guarantees one, but the response contract tolerates its
	// absence rather than failing the login.
	Subscription *SubscriptionView
}
