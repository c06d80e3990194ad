package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/volume-club/reader-api/internal/adapters/postgres"
)

// OpenMigratedPool connects to TEST_DATABASE_URL, runs the embedded
// migrations and returns a pool with the account tables emptied. Tests that
// call it are skipped when no database is configured.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres tests")
	}

	ctx := context.Background()
	if err := postgres.Migrate(ctx, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	// Roles keep their migration seed; account data starts empty.
	if _, err := pool.Exec(ctx, `TRUNCATE subscriptions, identities`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
