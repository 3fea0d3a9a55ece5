// Package testutil opens isolated Postgres pools for adapter tests.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/scoutbook-labs/badge-tracker/internal/adapters/postgres"
)

// DatabaseURLEnv names the DSN used by Postgres-backed tests.
const DatabaseURLEnv = "TEST_DATABASE_URL"

// OpenMigratedPool returns a pool pinned to a fresh schema with all migrations applied.
// The schema is dropped when the test finishes. Tests are skipped when TEST_DATABASE_URL is unset.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv(DatabaseURLEnv))
	if dsn == "" {
		t.Skipf("%s not set; skipping postgres tests", DatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 2})
	if err != nil {
		t.Fatalf("open admin pool err=%v", err)
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize()); err != nil {
		admin.Close()
		t.Fatalf("create schema err=%v", err)
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 4, SearchPath: schema})
	if err != nil {
		dropSchema(t, admin, schema)
		admin.Close()
		t.Fatalf("open test pool err=%v", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		dropSchema(t, admin, schema)
		admin.Close()
		t.Fatalf("migrate err=%v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		dropSchema(t, admin, schema)
		admin.Close()
	})
	return pool
}

func dropSchema(t *testing.T, admin *pgxpool.Pool, schema string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := admin.Exec(ctx, "DROP SCHEMA IF EXISTS "+pgx.Identifier{schema}.Sanitize()+" CASCADE"); err != nil {
		t.Logf("drop schema %s err=%v", schema, err)
	}
}
