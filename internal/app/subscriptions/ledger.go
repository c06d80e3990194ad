package subscriptions

import (
	"context"
	"time"

	"github.com/volume-club/reader-api/internal/domain"
	"github.com/volume-club/reader-api/internal/ports/out/accountrepo"
)

const (
	// TermDays is the length of the annual plan.
	TermDays = 365

	// VolumeInterval is how long a subscriber waits for the next volume to
	// unlock.
	VolumeInterval = 30 * 24 * time.Hour

	// MaxVolumes caps time-based unlocking at a full year of volumes.
	MaxVolumes = 12
)

// NewDefault builds the subscription every newly provisioned identity starts
// with: an annual plan anchored at midnight UTC of the creation day, one
// volume unlocked, the next unlocking thirty days in.
func NewDefault(id domain.SubscriptionID, identityID domain.IdentityID, now time.Time) domain.Subscription {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return domain.Subscription{
		ID:                  id,
		IdentityID:          identityID,
		PlanType:            domain.PlanAnnual,
		StartDate:           start,
		EndDate:             start.AddDate(0, 0, TermDays),
		CurrentVolumeNumber: 1,
		NextVolumeDate:      start.Add(VolumeInterval),
		Status:              domain.SubscriptionActive,
		CreatedAt:           now,
	}
}

// AccessibleVolumes reports how many volumes the subscriber may read at now.
//
// One volume unlocks per thirty elapsed days since StartDate, capped at
// MaxVolumes. CurrentVolumeNumber acts as a manually raised floor, so for any
// now >= StartDate the result never decreases as time advances.
func AccessibleVolumes(sub domain.Subscription, now time.Time) int {
	n := sub.CurrentVolumeNumber
	if n < 1 {
		n = 1
	}
	if elapsed := now.Sub(sub.StartDate); elapsed >= 0 {
		unlocked := int(elapsed/VolumeInterval) + 1
		if unlocked > MaxVolumes {
			unlocked = MaxVolumes
		}
		if unlocked > n {
			n = unlocked
		}
	}
	return n
}

// Ledger reads subscriptions on behalf of the auth flow.
type Ledger struct {
	repo accountrepo.Repository
}

func NewLedger(repo accountrepo.Repository) *Ledger {
	return &Ledger{repo: repo}
}

// FindByIdentity returns the identity's subscription. Repository sentinels
// (accountrepo.ErrNotFound) pass through for the caller to map.
func (l *Ledger) FindByIdentity(ctx context.Context, identityID domain.IdentityID) (domain.Subscription, error) {
	rec, err := l.repo.GetSubscriptionByIdentity(ctx, identityID)
	if err != nil {
		return domain.Subscription{}, err
	}
	return toDomain(rec), nil
}

func toDomain(rec accountrepo.Subscription) domain.Subscription {
	return domain.Subscription{
		ID:                  rec.ID,
		IdentityID:          rec.IdentityID,
		PlanType:            rec.PlanType,
		StartDate:           rec.StartDate,
		EndDate:             rec.EndDate,
		CurrentVolumeNumber: rec.CurrentVolumeNumber,
		NextVolumeDate:      rec.NextVolumeDate,
		Status:              rec.Status,
		CreatedAt:           rec.CreatedAt,
	}
}

// ToRecord converts a domain subscription to its persisted form.
func ToRecord(sub domain.Subscription) accountrepo.Subscription {
	return accountrepo.Subscription{
		ID:                  sub.ID,
		IdentityID:          sub.IdentityID,
		PlanType:            sub.PlanType,
		StartDate:           sub.StartDate,
		EndDate:             sub.EndDate,
		CurrentVolumeNumber: sub.CurrentVolumeNumber,
		NextVolumeDate:      sub.NextVolumeDate,
		Status:              sub.Status,
		CreatedAt:           sub.CreatedAt,
	}
}
