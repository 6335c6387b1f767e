// Package store provides focused, single-concern data access stores for
// rewrite rules, retention policies, the audit trail and message history.
//
// Each store owns one table and embeds shared helpers (Pool, logger) via the
// Base struct. Every tenant-scoped statement runs inside a transaction that
// sets app.tenant_id so row-level security applies.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/dbpool"
	"github.com/gfcbot/rulekeeper/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// Postgres error codes that indicate a concurrent-modification collision.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// setTenant sets the tenant context for RLS policies within a transaction.
func setTenant(ctx context.Context, tx pgx.Tx, tenantID string) error {
	if err := models.ValidateTenantID(tenantID); err != nil {
		return err
	}

	_, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID)
	if err != nil {
		return wrapDBError("setting tenant context", err)
	}

	return nil
}

// beginTx starts a read-write transaction and sets the tenant context.
func (b *Base) beginTx(ctx context.Context, tenantID string) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, wrapDBError("beginning transaction", err)
	}

	if err := setTenant(ctx, tx, tenantID); err != nil {
		tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, err
	}

	return tx, nil
}

// beginReadTx starts a read-only transaction and sets the tenant context.
func (b *Base) beginReadTx(ctx context.Context, tenantID string) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, wrapDBError("beginning read transaction", err)
	}

	if err := setTenant(ctx, tx, tenantID); err != nil {
		tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, err
	}

	return tx, nil
}

// beginSweeperReadTx starts a read-only transaction allowed to see rows of
// every tenant for tables that carry a sweeper_read policy.
func (b *Base) beginSweeperReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, wrapDBError("beginning sweeper transaction", err)
	}

	if _, err := tx.Exec(ctx, "SELECT set_config('app.scope', 'sweeper', true)"); err != nil {
		tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, wrapDBError("setting sweeper scope", err)
	}

	return tx, nil
}

// commit commits tx and classifies deferred-constraint failures raised at commit time.
func commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return wrapDBError("committing transaction", err)
	}

	return nil
}

// wrapDBError classifies a database failure: concurrent-modification codes
// become models.ErrConflict, everything else models.ErrDependency.
// Errors that already carry a model error kind are returned unchanged.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range []error{models.ErrValidation, models.ErrNotFound, models.ErrConflict, models.ErrDependency} {
		if errors.Is(err, kind) {
			return err
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%s: %w: %w", op, models.ErrConflict, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, models.ErrDependency, err)
}
