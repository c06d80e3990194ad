package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/volume-club/reader-api/internal/app/subscriptions"
	"github.com/volume-club/reader-api/internal/domain"
	"github.com/volume-club/reader-api/internal/ports/out/accountrepo"
	clockport "github.com/volume-club/reader-api/internal/ports/out/clock"
)

// Service resolves emails to identities, provisioning accounts on first
// contact.
type Service struct {
	repo accountrepo.Repository
	clk  clockport.Clock

	newIdentityID     func() domain.IdentityID
	newSubscriptionID func() domain.SubscriptionID
}

func NewService(repo accountrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		newIdentityID: func() domain.IdentityID {
			return domain.IdentityID(uuid.NewString())
		},
		newSubscriptionID: func() domain.SubscriptionID {
			return domain.SubscriptionID(uuid.NewString())
		},
	}
}

// ResolveOrCreate returns the identity for email, provisioning a new account
// when none exists. A provisioned account always carries its default
// subscription: identity and subscription are written as a single unit, so no
// identity is ever left without one.
//
// Concurrent calls with the same email are safe: the repository's email
// uniqueness decides the winner and the loser returns the winner's identity.
func (s *Service) ResolveOrCreate(ctx context.Context, email string) (domain.Identity, bool, error) {
	addr := domain.NormalizeEmail(email)

	existing, err := s.repo.GetIdentityByEmail(ctx, addr)
	if err == nil {
		return toDomain(existing), false, nil
	}
	if !errors.Is(err, accountrepo.ErrNotFound) {
		return domain.Identity{}, false, fmt.Errorf("lookup identity: %w", err)
	}

	role, err := s.repo.GetRoleByType(ctx, domain.RoleTypeAuthenticated)
	if err != nil {
		// A missing default role is a deployment fault, not a reason to
		// invent a role ID.
		return domain.Identity{}, false, fmt.Errorf("default role lookup: %w", err)
	}

	now := s.clk.Now()
	rec := accountrepo.Identity{
		ID:        s.newIdentityID(),
		Email:     addr,
		Username:  addr,
		RoleID:    role.ID,
		Confirmed: true,
		Provider:  domain.ProviderLocal,
		CreatedAt: now,
	}
	sub := subscriptions.NewDefault(s.newSubscriptionID(), rec.ID, now)

	if err := s.repo.CreateAccount(ctx, rec, subscriptions.ToRecord(sub)); err != nil {
		if errors.Is(err, accountrepo.ErrEmailTaken) {
			// Lost the provisioning race; the winner's account serves.
			winner, gerr := s.repo.GetIdentityByEmail(ctx, addr)
			if gerr != nil {
				return domain.Identity{}, false, fmt.Errorf("lookup identity after race: %w", gerr)
			}
			return toDomain(winner), false, nil
		}
		return domain.Identity{}, false, fmt.Errorf("provision account: %w", err)
	}
	return toDomain(rec), true, nil
}

// FindByEmail returns the identity for a normalized email.
// Repository sentinels (accountrepo.ErrNotFound) pass through.
func (s *Service) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	rec, err := s.repo.GetIdentityByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return domain.Identity{}, err
	}
	return toDomain(rec), nil
}

// FindByID returns the identity for an ID.
// Repository sentinels (accountrepo.ErrNotFound) pass through.
func (s *Service) FindByID(ctx context.Context, id domain.IdentityID) (domain.Identity, error) {
	rec, err := s.repo.GetIdentityByID(ctx, id)
	if err != nil {
		return domain.Identity{}, err
	}
	return toDomain(rec), nil
}

func toDomain(rec accountrepo.Identity) domain.Identity {
	return domain.Identity{
		ID:        rec.ID,
		Email:     rec.Email,
		Username:  rec.Username,
		RoleID:    rec.RoleID,
		Confirmed: rec.Confirmed,
		Provider:  rec.Provider,
		CreatedAt: rec.CreatedAt,
	}
}
