package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/gfcbot/rulekeeper/internal/models"
)

const policyColumns = "tenant_id, platform, enabled, max_days, repost_enabled, created_at, updated_at"

// RetentionStore provides data access for the retention_policies table.
type RetentionStore struct {
	Base
}

// NewRetentionStore creates a RetentionStore.
func NewRetentionStore(base Base) *RetentionStore {
	return &RetentionStore{Base: base}
}

// GetPolicy returns the persisted policy or models.ErrPolicyNotFound.
func (s *RetentionStore) GetPolicy(
	ctx context.Context, tenantID string, platform models.Platform,
) (*models.RetentionPolicy, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	return getPolicy(ctx, tx, tenantID, platform, false)
}

// ListPolicies returns every persisted policy of the tenant.
func (s *RetentionStore) ListPolicies(ctx context.Context, tenantID string) ([]models.RetentionPolicy, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	return queryPolicies(ctx, tx,
		"SELECT "+policyColumns+" FROM retention_policies WHERE tenant_id = $1 ORDER BY platform",
		tenantID,
	)
}

// ListEnabledPolicies returns enabled policies across all tenants for the sweeper.
func (s *RetentionStore) ListEnabledPolicies(ctx context.Context) ([]models.RetentionPolicy, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginSweeperReadTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	return queryPolicies(ctx, tx,
		"SELECT "+policyColumns+" FROM retention_policies WHERE enabled ORDER BY tenant_id, platform",
	)
}

// UpsertPolicy inserts or updates the (tenant, platform) policy in a single
// statement. Absent patch fields keep their stored value, or the default on insert.
// Returns the policy before (nil when absent) and after the write.
func (s *RetentionStore) UpsertPolicy(
	ctx context.Context, tenantID string, platform models.Platform, patch models.PolicyPatch,
) (before, after *models.RetentionPolicy, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	before, err = getPolicy(ctx, tx, tenantID, platform, true)
	if err != nil && !errors.Is(err, models.ErrPolicyNotFound) {
		return nil, nil, err
	}

	def := models.DefaultRetentionPolicy(tenantID, platform)

	after, err = scanPolicy(tx.QueryRow(ctx, `
		INSERT INTO retention_policies AS p (tenant_id, platform, enabled, max_days, repost_enabled)
		VALUES ($1, $2,
			COALESCE($3::boolean, $6::boolean),
			COALESCE($4::integer, $7::integer),
			COALESCE($5::boolean, $8::boolean))
		ON CONFLICT (tenant_id, platform) DO UPDATE SET
			enabled        = COALESCE($3, p.enabled),
			max_days       = COALESCE($4, p.max_days),
			repost_enabled = COALESCE($5, p.repost_enabled),
			updated_at     = NOW()
		RETURNING `+policyColumns,
		tenantID, string(platform),
		patch.Enabled.Ptr(), patch.MaxDays.Ptr(), patch.RepostEnabled.Ptr(),
		def.Enabled, def.MaxDays, def.RepostEnabled,
	))
	if err != nil {
		return nil, nil, wrapDBError("upserting retention policy", err)
	}

	if err := commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	return before, after, nil
}

// getPolicy reads one policy, optionally locking the row for update.
func getPolicy(
	ctx context.Context, tx pgx.Tx, tenantID string, platform models.Platform, forUpdate bool,
) (*models.RetentionPolicy, error) {
	query := "SELECT " + policyColumns + " FROM retention_policies WHERE tenant_id = $1 AND platform = $2"
	if forUpdate {
		query += " FOR UPDATE"
	}

	p, err := scanPolicy(tx.QueryRow(ctx, query, tenantID, string(platform)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPolicyNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting retention policy", err)
	}

	return p, nil
}

func queryPolicies(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]models.RetentionPolicy, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("querying retention policies", err)
	}
	defer rows.Close()

	policies := []models.RetentionPolicy{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, wrapDBError("scanning retention policy", err)
		}
		policies = append(policies, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating retention policies", err)
	}

	return policies, nil
}

func scanPolicy(row pgx.Row) (*models.RetentionPolicy, error) {
	var (
		p        models.RetentionPolicy
		platform string
	)

	if err := row.Scan(&p.TenantID, &platform, &p.Enabled, &p.MaxDays, &p.RepostEnabled, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.Platform = models.Platform(platform)
	p.Persisted = true

	return &p, nil
}
