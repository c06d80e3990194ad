// Package contracttest holds behavioral contracts every adapter implementation
// of a port must satisfy. Adapter packages run them against their own
// factories so memory and postgres stay interchangeable.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/volume-club/reader-api/internal/domain"
	"github.com/volume-club/reader-api/internal/ports/out/accountrepo"
	"github.com/volume-club/reader-api/internal/ports/out/challengestore"
)

type CleanupFunc = func()

type AccountRepoFactory func(t *testing.T) (accountrepo.Repository, CleanupFunc)
type ChallengeStoreFactory func(t *testing.T) (challengestore.Store, CleanupFunc)

func newTestAccount(email string) (accountrepo.Identity, accountrepo.Subscription) {
	now := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	identity := accountrepo.Identity{
		ID:        domain.IdentityID(uuid.NewString()),
		Email:     email,
		Username:  email,
		RoleID:    "role-authenticated",
		Confirmed: true,
		Provider:  domain.ProviderLocal,
		CreatedAt: now,
	}
	sub := accountrepo.Subscription{
		ID:                  domain.SubscriptionID(uuid.NewString()),
		IdentityID:          identity.ID,
		PlanType:            domain.PlanAnnual,
		StartDate:           start,
		EndDate:             start.AddDate(0, 0, 365),
		CurrentVolumeNumber: 1,
		NextVolumeDate:      start.Add(30 * 24 * time.Hour),
		Status:              domain.SubscriptionActive,
		CreatedAt:           now,
	}
	return identity, sub
}

func RunAccountRepo(t *testing.T, newRepo AccountRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Default role is seeded.
	role, err := repo.GetRoleByType(ctx, domain.RoleTypeAuthenticated)
	if err != nil {
		t.Fatalf("GetRoleByType: %v", err)
	}
	if role.Type != domain.RoleTypeAuthenticated || role.ID == "" {
		t.Fatalf("unexpected role: %+v", role)
	}
	if _, err := repo.GetRoleByType(ctx, "no-such-role"); !errors.Is(err, accountrepo.ErrNotFound) {
		t.Fatalf("GetRoleByType(missing) err=%v, want ErrNotFound", err)
	}

	// Create makes both records visible together.
	identity, sub := newTestAccount("reader@example.com")
	if err := repo.CreateAccount(ctx, identity, sub); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	gotIdentity, err := repo.GetIdentityByEmail(ctx, "reader@example.com")
	if err != nil {
		t.Fatalf("GetIdentityByEmail: %v", err)
	}
	if gotIdentity.ID != identity.ID || gotIdentity.Username != identity.Username {
		t.Fatalf("identity=%+v, want %+v", gotIdentity, identity)
	}
	if gotIdentity, err = repo.GetIdentityByID(ctx, identity.ID); err != nil || gotIdentity.Email != identity.Email {
		t.Fatalf("GetIdentityByID=%+v err=%v", gotIdentity, err)
	}

	gotSub, err := repo.GetSubscriptionByIdentity(ctx, identity.ID)
	if err != nil {
		t.Fatalf("GetSubscriptionByIdentity: %v", err)
	}
	if gotSub.ID != sub.ID || gotSub.CurrentVolumeNumber != 1 || !gotSub.StartDate.Equal(sub.StartDate) {
		t.Fatalf("subscription=%+v, want %+v", gotSub, sub)
	}

	// Email uniqueness.
	dupe, dupeSub := newTestAccount("reader@example.com")
	if err := repo.CreateAccount(ctx, dupe, dupeSub); !errors.Is(err, accountrepo.ErrEmailTaken) {
		t.Fatalf("CreateAccount(dupe) err=%v, want ErrEmailTaken", err)
	}

	// Not-found sentinels.
	if _, err := repo.GetIdentityByEmail(ctx, "ghost@example.com"); !errors.Is(err, accountrepo.ErrNotFound) {
		t.Fatalf("GetIdentityByEmail(ghost) err=%v, want ErrNotFound", err)
	}
	if _, err := repo.GetIdentityByID(ctx, domain.IdentityID(uuid.NewString())); !errors.Is(err, accountrepo.ErrNotFound) {
		t.Fatalf("GetIdentityByID(ghost) err=%v, want ErrNotFound", err)
	}
	if _, err := repo.GetSubscriptionByIdentity(ctx, domain.IdentityID(uuid.NewString())); !errors.Is(err, accountrepo.ErrNotFound) {
		t.Fatalf("GetSubscriptionByIdentity(ghost) err=%v, want ErrNotFound", err)
	}

	// Administrative update sticks.
	gotSub.CurrentVolumeNumber = 5
	gotSub.Status = domain.SubscriptionCancelled
	if err := repo.UpdateSubscription(ctx, gotSub); err != nil {
		t.Fatalf("UpdateSubscription: %v", err)
	}
	updated, err := repo.GetSubscriptionByIdentity(ctx, identity.ID)
	if err != nil || updated.CurrentVolumeNumber != 5 || updated.Status != domain.SubscriptionCancelled {
		t.Fatalf("updated=%+v err=%v", updated, err)
	}

	missing := gotSub
	missing.ID = domain.SubscriptionID(uuid.NewString())
	missing.IdentityID = domain.IdentityID(uuid.NewString())
	if err := repo.UpdateSubscription(ctx, missing); !errors.Is(err, accountrepo.ErrNotFound) {
		t.Fatalf("UpdateSubscription(missing) err=%v, want ErrNotFound", err)
	}
}

func RunChallengeStore(t *testing.T, newStore ChallengeStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ch := challengestore.Challenge{
		Email:     "reader@example.com",
		Code:      "482913",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(10 * time.Minute),
	}
	if err := store.Put(ctx, ch); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Wrong code leaves the challenge live.
	if err := store.Consume(ctx, ch.Email, "000000", issued.Add(time.Minute)); !errors.Is(err, challengestore.ErrCodeMismatch) {
		t.Fatalf("Consume(wrong) err=%v, want ErrCodeMismatch", err)
	}

	// Right code consumes exactly once.
	if err := store.Consume(ctx, ch.Email, ch.Code, issued.Add(time.Minute)); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := store.Consume(ctx, ch.Email, ch.Code, issued.Add(time.Minute)); !errors.Is(err, challengestore.ErrNoChallenge) {
		t.Fatalf("Consume(replay) err=%v, want ErrNoChallenge", err)
	}

	// Unknown email.
	if err := store.Consume(ctx, "ghost@example.com", "123456", issued); !errors.Is(err, challengestore.ErrNoChallenge) {
		t.Fatalf("Consume(unknown) err=%v, want ErrNoChallenge", err)
	}

	// Expired challenges fail even when still present.
	if err := store.Put(ctx, ch); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Consume(ctx, ch.Email, ch.Code, ch.ExpiresAt.Add(time.Second)); !errors.Is(err, challengestore.ErrExpired) {
		t.Fatalf("Consume(expired) err=%v, want ErrExpired", err)
	}

	// Reissue overwrites: only the newest code is valid.
	if err := store.Put(ctx, ch); err != nil {
		t.Fatalf("Put: %v", err)
	}
	newer := ch
	newer.Code = "775533"
	if err := store.Put(ctx, newer); err != nil {
		t.Fatalf("Put(overwrite): %v", err)
	}
	if err := store.Consume(ctx, ch.Email, ch.Code, issued.Add(time.Minute)); !errors.Is(err, challengestore.ErrCodeMismatch) {
		t.Fatalf("Consume(stale code) err=%v, want ErrCodeMismatch", err)
	}
	if err := store.Consume(ctx, ch.Email, newer.Code, issued.Add(time.Minute)); err != nil {
		t.Fatalf("Consume(newest): %v", err)
	}
}
