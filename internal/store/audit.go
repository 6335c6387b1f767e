package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/gfcbot/rulekeeper/internal/models"
)

// defaultAuditLimit is the page size used when the caller supplies none.
const defaultAuditLimit = 100

// AuditStore provides data access for the audit_log table.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

// RecordAudit inserts an audit log entry.
func (s *AuditStore) RecordAudit(
	ctx context.Context,
	tenantID, action, targetType, targetID, actorID string,
	detail map[string]any,
) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	var detailJSON []byte
	if detail != nil {
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (tenant_id, actor_id, action, target_type, target_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tenantID, actorID, action, targetType, targetID, detailJSON,
	)
	if err != nil {
		return wrapDBError("inserting audit entry", err)
	}

	return commit(ctx, tx)
}

// auditFilter builds the WHERE predicate shared by the page and count queries.
func auditFilter(tenantID string, opts models.AuditQueryOpts) sq.And {
	where := sq.And{
		sq.Eq{"tenant_id": tenantID},
		sq.Eq{"deleted_at": nil},
	}

	if opts.Action != "" {
		where = append(where, sq.Eq{"action": opts.Action})
	}
	if opts.Since != nil {
		where = append(where, sq.GtOrEq{"created_at": *opts.Since})
	}
	if opts.Until != nil {
		where = append(where, sq.LtOrEq{"created_at": *opts.Until})
	}

	return where
}

// QueryAudit returns a page of non-deleted entries, newest first, plus the total match count.
func (s *AuditStore) QueryAudit(
	ctx context.Context, tenantID string, opts models.AuditQueryOpts,
) (*models.AuditPage, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	where := auditFilter(tenantID, opts)
	limit := clampLimit(opts.Limit, defaultAuditLimit)
	offset := max(opts.Offset, 0)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("audit_log").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building audit count query: %w", err)
	}

	var total int
	if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, wrapDBError("counting audit entries", err)
	}

	pageSQL, pageArgs, err := psql.
		Select("id, tenant_id, actor_id, action, target_type, target_id, detail, created_at, deleted_at").
		From("audit_log").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).   //nolint:gosec // clamped to [1, maxListLimit].
		Offset(uint64(offset)). //nolint:gosec // non-negative.
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building audit page query: %w", err)
	}

	entries, err := queryAuditEntries(ctx, tx, pageSQL, pageArgs)
	if err != nil {
		return nil, err
	}

	return &models.AuditPage{
		Entries: entries,
		Total:   total,
		HasMore: offset+len(entries) < total,
	}, nil
}

// ListActions returns the sorted distinct actions of non-deleted entries.
func (s *AuditStore) ListActions(ctx context.Context, tenantID string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	rows, err := tx.Query(ctx,
		"SELECT DISTINCT action FROM audit_log WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY action",
		tenantID,
	)
	if err != nil {
		return nil, wrapDBError("querying audit actions", err)
	}

	actions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapDBError("scanning audit actions", err)
	}

	return actions, nil
}

// SoftDeleteEntry marks one entry deleted. Missing or already-deleted entries are not found.
func (s *AuditStore) SoftDeleteEntry(ctx context.Context, tenantID string, entryID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	tag, err := tx.Exec(ctx,
		"UPDATE audit_log SET deleted_at = NOW() WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL",
		tenantID, entryID,
	)
	if err != nil {
		return wrapDBError("soft-deleting audit entry", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrAuditEntryNotFound
	}

	return commit(ctx, tx)
}

// SoftDeleteAll marks every non-deleted entry of the tenant deleted and returns the count.
func (s *AuditStore) SoftDeleteAll(ctx context.Context, tenantID string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	tag, err := tx.Exec(ctx,
		"UPDATE audit_log SET deleted_at = NOW() WHERE tenant_id = $1 AND deleted_at IS NULL",
		tenantID,
	)
	if err != nil {
		return 0, wrapDBError("soft-deleting audit entries", err)
	}

	if err := commit(ctx, tx); err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}

// queryAuditEntries runs a SELECT whose columns follow models.AuditEntry field order.
func queryAuditEntries(ctx context.Context, tx pgx.Tx, query string, args []any) ([]models.AuditEntry, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("querying audit log", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.AuditEntry])
	if err != nil {
		return nil, wrapDBError("scanning audit log", err)
	}

	return entries, nil
}

// Name identifies the audit log as a prunable dataset.
func (s *AuditStore) Name() string { return "audit_log" }

// PurgeOlderThan physically deletes entries created before cutoff, soft-deleted
// or not, in batches. Returns the number of deleted entries.
func (s *AuditStore) PurgeOlderThan(ctx context.Context, tenantID string, cutoff time.Time) (int, error) {
	return purgeInBatches(ctx, &s.Base, "audit_log", tenantID, cutoff)
}

// purgeInBatches deletes rows of table with created_at < cutoff for one tenant,
// committing every purgeBatchSize rows so locks are held briefly.
func purgeInBatches(ctx context.Context, b *Base, table, tenantID string, cutoff time.Time) (int, error) {
	var totalDeleted int

	for {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		batchCtx, cancel := withTimeout(ctx)

		deleted, err := purgeBatch(batchCtx, b, table, tenantID, cutoff)
		cancel()

		if err != nil {
			return totalDeleted, err
		}

		totalDeleted += deleted
		if deleted < purgeBatchSize {
			break
		}
	}

	return totalDeleted, nil
}

// purgeBatch deletes a single batch of expired rows.
func purgeBatch(ctx context.Context, b *Base, table, tenantID string, cutoff time.Time) (int, error) {
	tx, err := b.beginTx(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	// table is one of a fixed set of identifiers supplied by this package.
	tag, err := tx.Exec(ctx, fmt.Sprintf(
		`DELETE FROM %[1]s WHERE ctid IN (
			SELECT ctid FROM %[1]s
			WHERE tenant_id = $1 AND created_at < $2
			LIMIT $3
		)`, pgx.Identifier{table}.Sanitize()),
		tenantID, cutoff, purgeBatchSize,
	)
	if err != nil {
		return 0, wrapDBError("purging "+table, err)
	}

	if err := commit(ctx, tx); err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}
