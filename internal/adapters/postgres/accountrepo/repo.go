package accountrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/volume-club/reader-api/internal/adapters/postgres"
	"github.com/volume-club/reader-api/internal/domain"
	"github.com/volume-club/reader-api/internal/ports/out/accountrepo"
)

// Repo is a Postgres implementation of accountrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) CreateAccount(ctx context.Context, identity accountrepo.Identity, sub accountrepo.Subscription) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	// One transaction for both rows: a reader never observes an identity
	// without its subscription.
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO identities (
				id,
				email,
				username,
				role_id,
				confirmed,
				provider,
				created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			string(identity.ID),
			identity.Email,
			identity.Username,
			string(identity.RoleID),
			identity.Confirmed,
			identity.Provider,
			identity.CreatedAt.UTC(),
		)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && postgres.IsUniqueViolation(err) {
				if pe.ConstraintName == "identities_email_unique" {
					return accountrepo.ErrEmailTaken
				}
			}
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO subscriptions (
				id,
				identity_id,
				plan_type,
				start_date,
				end_date,
				current_volume_number,
				next_volume_date,
				status,
				created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			string(sub.ID),
			string(sub.IdentityID),
			sub.PlanType,
			sub.StartDate.UTC(),
			sub.EndDate.UTC(),
			sub.CurrentVolumeNumber,
			sub.NextVolumeDate.UTC(),
			sub.Status,
			sub.CreatedAt.UTC(),
		)
		return err
	})
	if err != nil {
		if errors.Is(err, accountrepo.ErrEmailTaken) {
			return accountrepo.ErrEmailTaken
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

const identityColumns = `id, email, username, role_id, confirmed, provider, created_at`

func (r *Repo) GetIdentityByEmail(ctx context.Context, email string) (accountrepo.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE email = $1
	`, email)
	return scanIdentity(row)
}

func (r *Repo) GetIdentityByID(ctx context.Context, id domain.IdentityID) (accountrepo.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE id = $1
	`, string(id))
	return scanIdentity(row)
}

func (r *Repo) GetRoleByType(ctx context.Context, roleType string) (accountrepo.Role, error) {
	var (
		id  string
		typ string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, type
		FROM roles
		WHERE type = $1
	`, roleType).Scan(&id, &typ)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accountrepo.Role{}, accountrepo.ErrNotFound
		}
		return accountrepo.Role{}, fmt.Errorf("get role: %w", err)
	}
	return accountrepo.Role{ID: domain.RoleID(id), Type: typ}, nil
}

func (r *Repo) GetSubscriptionByIdentity(ctx context.Context, identityID domain.IdentityID) (accountrepo.Subscription, error) {
	var (
		sub        accountrepo.Subscription
		id         string
		identityFK string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, identity_id, plan_type, start_date, end_date,
		       current_volume_number, next_volume_date, status, created_at
		FROM subscriptions
		WHERE identity_id = $1
	`, string(identityID)).Scan(
		&id,
		&identityFK,
		&sub.PlanType,
		&sub.StartDate,
		&sub.EndDate,
		&sub.CurrentVolumeNumber,
		&sub.NextVolumeDate,
		&sub.Status,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accountrepo.Subscription{}, accountrepo.ErrNotFound
		}
		return accountrepo.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	sub.ID = domain.SubscriptionID(id)
	sub.IdentityID = domain.IdentityID(identityFK)
	return sub, nil
}

func (r *Repo) UpdateSubscription(ctx context.Context, sub accountrepo.Subscription) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subscriptions
		SET plan_type = $2,
		    start_date = $3,
		    end_date = $4,
		    current_volume_number = $5,
		    next_volume_date = $6,
		    status = $7
		WHERE id = $1
	`,
		string(sub.ID),
		sub.PlanType,
		sub.StartDate.UTC(),
		sub.EndDate.UTC(),
		sub.CurrentVolumeNumber,
		sub.NextVolumeDate.UTC(),
		sub.Status,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accountrepo.ErrNotFound
	}
	return nil
}

func scanIdentity(row pgx.Row) (accountrepo.Identity, error) {
	var (
		identity accountrepo.Identity
		id       string
		roleID   string
	)
	err := row.Scan(
		&id,
		&identity.Email,
		&identity.Username,
		&roleID,
		&identity.Confirmed,
		&identity.Provider,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accountrepo.Identity{}, accountrepo.ErrNotFound
		}
		return accountrepo.Identity{}, fmt.Errorf("get identity: %w", err)
	}
	identity.ID = domain.IdentityID(id)
	identity.RoleID = domain.RoleID(roleID)
	return identity, nil
}
