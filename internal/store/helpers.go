package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/gfcbot/rulekeeper/internal/models"
)

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

// purgeBatchSize limits the number of rows deleted per transaction to avoid
// holding long locks during retention sweeps.
const purgeBatchSize = 5000

// psql builds Postgres statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// clampLimit applies the default and the hard cap to a list limit.
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}

	if limit > maxListLimit {
		return maxListLimit
	}

	return limit
}

// lockRuleScope serializes rule mutations for one (tenant, platform) scope
// until the surrounding transaction ends.
func lockRuleScope(ctx context.Context, tx pgx.Tx, tenantID string, platform models.Platform) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "embed_rules:"+tenantID+":"+string(platform))
	if err != nil {
		return wrapDBError("locking rule scope", err)
	}

	return nil
}
