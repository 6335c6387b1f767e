package store_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/dbpool"
	"github.com/gfcbot/rulekeeper/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 0)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// newTenantID returns a random snowflake-shaped guild id.
func newTenantID() string {
	return fmt.Sprintf("%d", 100000000000000000+rand.Int64N(800000000000000000)) //nolint:gosec // test ids.
}

// setupTestBase returns a Base plus a fresh tenant whose rows are removed after the test.
func setupTestBase(t *testing.T) (_ store.Base, _ string) {
	t.Helper()

	env := getTestEnv(t)
	tenantID := newTenantID()

	t.Cleanup(func() {
		execAsTenant(t, tenantID, "DELETE FROM embed_rules WHERE tenant_id = $1", tenantID)
		execAsTenant(t, tenantID, "DELETE FROM retention_policies WHERE tenant_id = $1", tenantID)
		execAsTenant(t, tenantID, "DELETE FROM audit_log WHERE tenant_id = $1", tenantID)
		execAsTenant(t, tenantID, "DELETE FROM message_history WHERE tenant_id = $1", tenantID)
	})

	return store.Base{Pool: env.pool, Log: env.log}, tenantID
}

// execAsTenant runs a statement inside a transaction scoped to tenantID.
func execAsTenant(t *testing.T, tenantID, query string, args ...any) {
	t.Helper()

	env := getTestEnv(t)
	ctx := context.Background()

	tx, err := env.pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		t.Fatalf("set tenant: %v", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

// insertHistory writes a message_history row with the given age.
func insertHistory(t *testing.T, tenantID string, age time.Duration) {
	t.Helper()

	execAsTenant(t, tenantID, `
		INSERT INTO message_history (tenant_id, platform, message_id, original_url, created_at)
		VALUES ($1, 'twitter', $2, 'https://twitter.com/a/status/1', $3)`,
		tenantID, newTenantID(), time.Now().Add(-age),
	)
}
