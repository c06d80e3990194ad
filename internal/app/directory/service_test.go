package directory

import (
	"context"
	"testing"
	"time"

	memaccountrepo "github.com/volume-club/reader-api/internal/adapters/memory/accountrepo"
	memclock "github.com/volume-club/reader-api/internal/adapters/memory/clock"
	"github.com/volume-club/reader-api/internal/domain"
)

func newTestService() (*Service, *memaccountrepo.Repo, *memclock.ManualClock) {
	repo := memaccountrepo.NewRepo()
	clk := memclock.NewManualClock(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))
	return NewService(repo, clk), repo, clk
}

func TestService_ResolveOrCreate_ProvisionsOnce(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService()
	ctx := context.Background()

	first, created, err := svc.ResolveOrCreate(ctx, "reader@example.com")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if !created {
		t.Fatalf("created=false, want true")
	}
	if first.Email != "reader@example.com" || first.Username != "reader@example.com" {
		t.Fatalf("identity=%+v", first)
	}
	if first.Provider != domain.ProviderLocal || !first.Confirmed {
		t.Fatalf("identity=%+v, want confirmed local account", first)
	}

	// The subscription exists before ResolveOrCreate returns.
	sub, err := repo.GetSubscriptionByIdentity(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSubscriptionByIdentity: %v", err)
	}
	if !sub.StartDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) || sub.CurrentVolumeNumber != 1 {
		t.Fatalf("subscription=%+v", sub)
	}

	second, created, err := svc.ResolveOrCreate(ctx, "reader@example.com")
	if err != nil {
		t.Fatalf("ResolveOrCreate again: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("second=%+v created=%v, want existing identity", second, created)
	}
}

func TestService_ResolveOrCreate_NormalizesEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	first, _, err := svc.ResolveOrCreate(ctx, "A@Test.com")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if first.Email != "a@test.com" {
		t.Fatalf("email=%q, want lowercased", first.Email)
	}

	second, created, err := svc.ResolveOrCreate(ctx, "a@test.com")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("case variants resolved to different identities: %v vs %v", first.ID, second.ID)
	}
}

func TestService_ResolveOrCreate_MissingDefaultRole(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService()
	repo.RemoveRole(domain.RoleTypeAuthenticated)

	if _, _, err := svc.ResolveOrCreate(context.Background(), "reader@example.com"); err == nil {
		t.Fatalf("expected error when default role is missing")
	}
}

func TestService_FindByEmail_Normalizes(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	created, _, err := svc.ResolveOrCreate(ctx, "reader@example.com")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	got, err := svc.FindByEmail(ctx, "  READER@example.COM ")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("got=%v, want %v", got.ID, created.ID)
	}

	byID, err := svc.FindByID(ctx, created.ID)
	if err != nil || byID.Email != "reader@example.com" {
		t.Fatalf("FindByID=%+v err=%v", byID, err)
	}
}
