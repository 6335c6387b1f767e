package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gfcbot/rulekeeper/internal/models"
)

const ruleColumns = "id, tenant_id, platform, pattern, kind, active, priority, created_at, updated_at"

// RuleStore provides data access for the embed_rules table.
//
// Every mutation that can change priorities takes the scope's advisory lock,
// and the (tenant, platform, priority) unique constraint is deferred to commit,
// so priorities stay a dense 0..N-1 sequence under concurrent writers.
type RuleStore struct {
	Base
}

// NewRuleStore creates a RuleStore.
func NewRuleStore(base Base) *RuleStore {
	return &RuleStore{Base: base}
}

// ListRules returns the tenant's rules ordered by platform, priority and id.
// An empty platform lists every platform.
func (s *RuleStore) ListRules(
	ctx context.Context, tenantID string, platform models.Platform, includeInactive bool,
) ([]models.RewriteRule, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	where := sq.And{sq.Eq{"tenant_id": tenantID}}
	if platform != "" {
		where = append(where, sq.Eq{"platform": string(platform)})
	}
	if !includeInactive {
		where = append(where, sq.Eq{"active": true})
	}

	query, args, err := psql.Select(ruleColumns).
		From("embed_rules").
		Where(where).
		OrderBy("platform", "priority", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building rule query: %w", err)
	}

	return queryRules(ctx, tx, query, args...)
}

// GetRule returns a single rule owned by the tenant.
func (s *RuleStore) GetRule(ctx context.Context, tenantID, ruleID string) (*models.RewriteRule, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	return getRule(ctx, tx, tenantID, ruleID, false)
}

// CreateRule inserts a rule at the end of its platform's order.
func (s *RuleStore) CreateRule(
	ctx context.Context, tenantID string, req models.CreateRuleRequest,
) (*models.RewriteRule, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating rule id: %w", err)
	}

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	if err := lockRuleScope(ctx, tx, tenantID, req.Platform); err != nil {
		return nil, err
	}

	rule, err := scanRule(tx.QueryRow(ctx, `
		INSERT INTO embed_rules (id, tenant_id, platform, pattern, kind, active, priority)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COUNT(*) FROM embed_rules WHERE tenant_id = $2 AND platform = $3))
		RETURNING `+ruleColumns,
		id.String(), tenantID, string(req.Platform), req.Pattern, string(req.Kind), req.IsActive(),
	))
	if err != nil {
		return nil, wrapDBError("inserting rule", err)
	}

	if err := commit(ctx, tx); err != nil {
		return nil, err
	}

	return rule, nil
}

// UpdateRule applies a partial update and returns the rule before and after.
func (s *RuleStore) UpdateRule(
	ctx context.Context, tenantID, ruleID string, patch models.RulePatch,
) (before, after *models.RewriteRule, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	before, err = getRule(ctx, tx, tenantID, ruleID, true)
	if err != nil {
		return nil, nil, err
	}

	merged := patch.Apply(*before)
	if err := merged.CheckPattern(); err != nil {
		return nil, nil, err
	}

	after, err = scanRule(tx.QueryRow(ctx, `
		UPDATE embed_rules
		SET pattern = $3, kind = $4, active = $5, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+ruleColumns,
		tenantID, ruleID, merged.Pattern, string(merged.Kind), merged.Active,
	))
	if err != nil {
		return nil, nil, wrapDBError("updating rule", err)
	}

	if err := commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	return before, after, nil
}

// DeleteRule removes a rule, renumbers the rest of its platform and returns the removed rule.
func (s *RuleStore) DeleteRule(ctx context.Context, tenantID, ruleID string) (*models.RewriteRule, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	// Platform never changes, so reading it before taking the scope lock is safe.
	existing, err := getRule(ctx, tx, tenantID, ruleID, false)
	if err != nil {
		return nil, err
	}

	if err := lockRuleScope(ctx, tx, tenantID, existing.Platform); err != nil {
		return nil, err
	}

	deleted, err := scanRule(tx.QueryRow(ctx,
		"DELETE FROM embed_rules WHERE tenant_id = $1 AND id = $2 RETURNING "+ruleColumns,
		tenantID, ruleID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRuleNotFound
	}
	if err != nil {
		return nil, wrapDBError("deleting rule", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE embed_rules AS r
		SET priority = o.pos, updated_at = NOW()
		FROM (
			SELECT id, (ROW_NUMBER() OVER (ORDER BY priority, id) - 1)::int AS pos
			FROM embed_rules
			WHERE tenant_id = $1 AND platform = $2
		) AS o
		WHERE r.id = o.id AND r.priority <> o.pos`,
		tenantID, string(deleted.Platform),
	); err != nil {
		return nil, wrapDBError("renumbering rules", err)
	}

	if err := commit(ctx, tx); err != nil {
		return nil, err
	}

	return deleted, nil
}

// ReorderRules sets priority = index for every rule of the platform in one
// transaction. ruleIDs must be exactly the platform's rule-id set.
// Returns the rule order before and after.
func (s *RuleStore) ReorderRules(
	ctx context.Context, tenantID string, platform models.Platform, ruleIDs []string,
) (before, after []models.RewriteRule, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	if err := lockRuleScope(ctx, tx, tenantID, platform); err != nil {
		return nil, nil, err
	}

	scopeQuery := "SELECT " + ruleColumns + " FROM embed_rules WHERE tenant_id = $1 AND platform = $2 ORDER BY priority, id"

	before, err = queryRules(ctx, tx, scopeQuery, tenantID, string(platform))
	if err != nil {
		return nil, nil, err
	}

	if !sameIDSet(before, ruleIDs) {
		return nil, nil, models.ErrReorderMismatch
	}

	if _, err := tx.Exec(ctx, `
		UPDATE embed_rules AS r
		SET priority = v.pos - 1, updated_at = NOW()
		FROM unnest($3::text[]) WITH ORDINALITY AS v(id, pos)
		WHERE r.tenant_id = $1 AND r.platform = $2 AND r.id = v.id AND r.priority <> v.pos - 1`,
		tenantID, string(platform), ruleIDs,
	); err != nil {
		return nil, nil, wrapDBError("reordering rules", err)
	}

	after, err = queryRules(ctx, tx, scopeQuery, tenantID, string(platform))
	if err != nil {
		return nil, nil, err
	}

	if err := commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	return before, after, nil
}

// getRule reads one rule, optionally locking the row for update.
func getRule(ctx context.Context, tx pgx.Tx, tenantID, ruleID string, forUpdate bool) (*models.RewriteRule, error) {
	query := "SELECT " + ruleColumns + " FROM embed_rules WHERE tenant_id = $1 AND id = $2"
	if forUpdate {
		query += " FOR UPDATE"
	}

	rule, err := scanRule(tx.QueryRow(ctx, query, tenantID, ruleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRuleNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting rule", err)
	}

	return rule, nil
}

// queryRules executes a query selecting ruleColumns and scans every row.
func queryRules(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]models.RewriteRule, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("querying rules", err)
	}
	defer rows.Close()

	rules := []models.RewriteRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, wrapDBError("scanning rule", err)
		}
		rules = append(rules, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating rules", err)
	}

	return rules, nil
}

// scanRule scans ruleColumns from a single row.
func scanRule(row pgx.Row) (*models.RewriteRule, error) {
	var (
		r        models.RewriteRule
		platform string
		kind     string
	)

	if err := row.Scan(&r.ID, &r.TenantID, &platform, &r.Pattern, &kind, &r.Active, &r.Priority, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	r.Platform = models.Platform(platform)
	r.Kind = models.RuleKind(kind)

	return &r, nil
}

// sameIDSet reports whether ids names every rule exactly once.
func sameIDSet(rules []models.RewriteRule, ids []string) bool {
	if len(rules) != len(ids) {
		return false
	}

	want := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		want[r.ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := want[id]; !ok {
			return false
		}
		delete(want, id)
	}

	return len(want) == 0
}
