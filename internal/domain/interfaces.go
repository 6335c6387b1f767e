// Package domain defines the canonical service interfaces shared across API
// layers (REST handlers, CLI, sweeper). Consumers should depend on these
// interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"
	"time"

	"github.com/gfcbot/rulekeeper/internal/models"
)

// RuleService defines rewrite rule operations. Mutations take the acting identity
// so every change is attributed in the audit trail.
type RuleService interface {
	ListRules(ctx context.Context, tenantID string, platform models.Platform, includeInactive bool) ([]models.RewriteRule, error)
	AddRule(ctx context.Context, actor models.Actor, tenantID string, req models.CreateRuleRequest) (*models.RewriteRule, error)
	UpdateRule(ctx context.Context, actor models.Actor, tenantID, ruleID string, patch models.RulePatch) (*models.RewriteRule, error)
	RemoveRule(ctx context.Context, actor models.Actor, tenantID, ruleID string) error
	ReorderRules(ctx context.Context, actor models.Actor, tenantID string, req models.ReorderRequest) ([]models.RewriteRule, error)
}

// ResolveService resolves links against a tenant's stored rules.
type ResolveService interface {
	Resolve(ctx context.Context, tenantID string, platform models.Platform, rawURL string) (models.Resolution, error)
}

// RetentionService defines retention policy operations.
type RetentionService interface {
	GetPolicy(ctx context.Context, tenantID string, platform models.Platform) (*models.RetentionPolicy, error)
	ListPolicies(ctx context.Context, tenantID string) ([]models.RetentionPolicy, error)
	UpsertPolicy(ctx context.Context, actor models.Actor, tenantID string, platform models.Platform, patch models.PolicyPatch) (*models.RetentionPolicy, error)
}

// AuditService defines audit log query and maintenance operations.
type AuditService interface {
	Auditor
	QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) (*models.AuditPage, error)
	ListActions(ctx context.Context, tenantID string) ([]string, error)
	SoftDeleteEntry(ctx context.Context, tenantID string, entryID int64) error
	SoftDeleteAll(ctx context.Context, tenantID string) (int, error)
}

// Auditor is the minimal interface for recording audit entries.
// Used by services for fire-and-forget audit logging.
type Auditor interface {
	RecordAudit(ctx context.Context, tenantID, action, targetType, targetID, actorID string, detail map[string]any) error
}

// PrunableDataset is a tenant-partitioned dataset the retention sweeper can age out.
type PrunableDataset interface {
	Name() string
	PurgeOlderThan(ctx context.Context, tenantID string, cutoff time.Time) (int, error)
}
