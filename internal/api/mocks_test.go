package api_test

import (
	"context"

	"github.com/gfcbot/rulekeeper/internal/models"
	"github.com/gfcbot/rulekeeper/internal/sweep"
)

// mockRuleService implements api.RuleService for testing.
type mockRuleService struct {
	listFn    func(ctx context.Context, tenantID string, platform models.Platform, includeInactive bool) ([]models.RewriteRule, error)
	addFn     func(ctx context.Context, actor models.Actor, tenantID string, req models.CreateRuleRequest) (*models.RewriteRule, error)
	updateFn  func(ctx context.Context, actor models.Actor, tenantID, ruleID string, patch models.RulePatch) (*models.RewriteRule, error)
	removeFn  func(ctx context.Context, actor models.Actor, tenantID, ruleID string) error
	reorderFn func(ctx context.Context, actor models.Actor, tenantID string, req models.ReorderRequest) ([]models.RewriteRule, error)
}

func (m *mockRuleService) ListRules(ctx context.Context, tenantID string, platform models.Platform, includeInactive bool) ([]models.RewriteRule, error) {
	return m.listFn(ctx, tenantID, platform, includeInactive)
}

func (m *mockRuleService) AddRule(ctx context.Context, actor models.Actor, tenantID string, req models.CreateRuleRequest) (*models.RewriteRule, error) {
	return m.addFn(ctx, actor, tenantID, req)
}

func (m *mockRuleService) UpdateRule(ctx context.Context, actor models.Actor, tenantID, ruleID string, patch models.RulePatch) (*models.RewriteRule, error) {
	return m.updateFn(ctx, actor, tenantID, ruleID, patch)
}

func (m *mockRuleService) RemoveRule(ctx context.Context, actor models.Actor, tenantID, ruleID string) error {
	return m.removeFn(ctx, actor, tenantID, ruleID)
}

func (m *mockRuleService) ReorderRules(ctx context.Context, actor models.Actor, tenantID string, req models.ReorderRequest) ([]models.RewriteRule, error) {
	return m.reorderFn(ctx, actor, tenantID, req)
}

// mockResolveService implements api.ResolveService for testing.
type mockResolveService struct {
	resolveFn func(ctx context.Context, tenantID string, platform models.Platform, rawURL string) (models.Resolution, error)
}

func (m *mockResolveService) Resolve(ctx context.Context, tenantID string, platform models.Platform, rawURL string) (models.Resolution, error) {
	return m.resolveFn(ctx, tenantID, platform, rawURL)
}

// mockRetentionService implements api.RetentionService for testing.
type mockRetentionService struct {
	getFn    func(ctx context.Context, tenantID string, platform models.Platform) (*models.RetentionPolicy, error)
	listFn   func(ctx context.Context, tenantID string) ([]models.RetentionPolicy, error)
	upsertFn func(ctx context.Context, actor models.Actor, tenantID string, platform models.Platform, patch models.PolicyPatch) (*models.RetentionPolicy, error)
}

func (m *mockRetentionService) GetPolicy(ctx context.Context, tenantID string, platform models.Platform) (*models.RetentionPolicy, error) {
	return m.getFn(ctx, tenantID, platform)
}

func (m *mockRetentionService) ListPolicies(ctx context.Context, tenantID string) ([]models.RetentionPolicy, error) {
	return m.listFn(ctx, tenantID)
}

func (m *mockRetentionService) UpsertPolicy(ctx context.Context, actor models.Actor, tenantID string, platform models.Platform, patch models.PolicyPatch) (*models.RetentionPolicy, error) {
	return m.upsertFn(ctx, actor, tenantID, platform, patch)
}

// mockAuditService implements api.AuditService for testing.
type mockAuditService struct {
	queryFn     func(ctx context.Context, tenantID string, opts models.AuditQueryOpts) (*models.AuditPage, error)
	actionsFn   func(ctx context.Context, tenantID string) ([]string, error)
	deleteFn    func(ctx context.Context, tenantID string, entryID int64) error
	deleteAllFn func(ctx context.Context, tenantID string) (int, error)
}

func (m *mockAuditService) RecordAudit(context.Context, string, string, string, string, string, map[string]any) error {
	return nil
}

func (m *mockAuditService) QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) (*models.AuditPage, error) {
	return m.queryFn(ctx, tenantID, opts)
}

func (m *mockAuditService) ListActions(ctx context.Context, tenantID string) ([]string, error) {
	return m.actionsFn(ctx, tenantID)
}

func (m *mockAuditService) SoftDeleteEntry(ctx context.Context, tenantID string, entryID int64) error {
	return m.deleteFn(ctx, tenantID, entryID)
}

func (m *mockAuditService) SoftDeleteAll(ctx context.Context, tenantID string) (int, error) {
	return m.deleteAllFn(ctx, tenantID)
}

// mockSweepRunner implements api.SweepRunner for testing.
type mockSweepRunner struct {
	runFn   func(ctx context.Context) (*sweep.Summary, error)
	running bool
}

func (m *mockSweepRunner) Run(ctx context.Context) (*sweep.Summary, error) { return m.runFn(ctx) }

func (m *mockSweepRunner) Running() bool { return m.running }

// mockClientLookup accepts a single key.
type mockClientLookup struct{}

func (mockClientLookup) GetClientByAPIKey(_ context.Context, apiKey string) (string, error) {
	if apiKey == "test-key" {
		return "test-client", nil
	}
	return "", models.ErrNotFound
}
