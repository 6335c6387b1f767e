package service

import (
	"context"
	"sync"

	"github.com/gfcbot/rulekeeper/internal/models"
)

// mockRuleStore records calls and returns configured responses.
type mockRuleStore struct {
	mu    sync.Mutex
	calls []string

	listRules    func(ctx context.Context, tenantID string, platform models.Platform, includeInactive bool) ([]models.RewriteRule, error)
	createRule   func(ctx context.Context, tenantID string, req models.CreateRuleRequest) (*models.RewriteRule, error)
	updateRule   func(ctx context.Context, tenantID, ruleID string, patch models.RulePatch) (*models.RewriteRule, *models.RewriteRule, error)
	deleteRule   func(ctx context.Context, tenantID, ruleID string) (*models.RewriteRule, error)
	reorderRules func(ctx context.Context, tenantID string, platform models.Platform, ruleIDs []string) ([]models.RewriteRule, []models.RewriteRule, error)
}

func (m *mockRuleStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockRuleStore) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockRuleStore) ListRules(ctx context.Context, tenantID string, platform models.Platform, includeInactive bool) ([]models.RewriteRule, error) {
	m.record("ListRules")
	return m.listRules(ctx, tenantID, platform, includeInactive)
}

func (m *mockRuleStore) CreateRule(ctx context.Context, tenantID string, req models.CreateRuleRequest) (*models.RewriteRule, error) {
	m.record("CreateRule")
	return m.createRule(ctx, tenantID, req)
}

func (m *mockRuleStore) UpdateRule(ctx context.Context, tenantID, ruleID string, patch models.RulePatch) (*models.RewriteRule, *models.RewriteRule, error) {
	m.record("UpdateRule")
	return m.updateRule(ctx, tenantID, ruleID, patch)
}

func (m *mockRuleStore) DeleteRule(ctx context.Context, tenantID, ruleID string) (*models.RewriteRule, error) {
	m.record("DeleteRule")
	return m.deleteRule(ctx, tenantID, ruleID)
}

func (m *mockRuleStore) ReorderRules(ctx context.Context, tenantID string, platform models.Platform, ruleIDs []string) ([]models.RewriteRule, []models.RewriteRule, error) {
	m.record("ReorderRules")
	return m.reorderRules(ctx, tenantID, platform, ruleIDs)
}

// mockPolicyStore records calls and returns configured responses.
type mockPolicyStore struct {
	mu    sync.Mutex
	calls []string

	getPolicy    func(ctx context.Context, tenantID string, platform models.Platform) (*models.RetentionPolicy, error)
	listPolicies func(ctx context.Context, tenantID string) ([]models.RetentionPolicy, error)
	upsertPolicy func(ctx context.Context, tenantID string, platform models.Platform, patch models.PolicyPatch) (*models.RetentionPolicy, *models.RetentionPolicy, error)
}

func (m *mockPolicyStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockPolicyStore) GetPolicy(ctx context.Context, tenantID string, platform models.Platform) (*models.RetentionPolicy, error) {
	m.record("GetPolicy")
	return m.getPolicy(ctx, tenantID, platform)
}

func (m *mockPolicyStore) ListPolicies(ctx context.Context, tenantID string) ([]models.RetentionPolicy, error) {
	m.record("ListPolicies")
	return m.listPolicies(ctx, tenantID)
}

func (m *mockPolicyStore) UpsertPolicy(ctx context.Context, tenantID string, platform models.Platform, patch models.PolicyPatch) (*models.RetentionPolicy, *models.RetentionPolicy, error) {
	m.record("UpsertPolicy")
	return m.upsertPolicy(ctx, tenantID, platform, patch)
}

// mockAuditStore implements AuditQueryStore with configurable responses.
type mockAuditStore struct {
	mockAuditor

	queryAudit      func(ctx context.Context, tenantID string, opts models.AuditQueryOpts) (*models.AuditPage, error)
	listActions     func(ctx context.Context, tenantID string) ([]string, error)
	softDeleteEntry func(ctx context.Context, tenantID string, entryID int64) error
	softDeleteAll   func(ctx context.Context, tenantID string) (int, error)
}

func (m *mockAuditStore) QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) (*models.AuditPage, error) {
	return m.queryAudit(ctx, tenantID, opts)
}

func (m *mockAuditStore) ListActions(ctx context.Context, tenantID string) ([]string, error) {
	return m.listActions(ctx, tenantID)
}

func (m *mockAuditStore) SoftDeleteEntry(ctx context.Context, tenantID string, entryID int64) error {
	return m.softDeleteEntry(ctx, tenantID, entryID)
}

func (m *mockAuditStore) SoftDeleteAll(ctx context.Context, tenantID string) (int, error) {
	return m.softDeleteAll(ctx, tenantID)
}

// mockAuditor records RecordAudit calls.
type mockAuditor struct {
	mu    sync.Mutex
	calls []AuditJob

	err error
}

func (m *mockAuditor) RecordAudit(ctx context.Context, tenantID, action, targetType, targetID, actorID string, detail map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, AuditJob{
		TenantID:   tenantID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		ActorID:    actorID,
		Detail:     detail,
	})
	return m.err
}

func (m *mockAuditor) getCalls() []AuditJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]AuditJob, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// mockEnqueuer captures audit jobs synchronously.
type mockEnqueuer struct {
	mu   sync.Mutex
	jobs []*AuditJob
}

func (m *mockEnqueuer) Enqueue(job *AuditJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

func (m *mockEnqueuer) getJobs() []*AuditJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]*AuditJob, len(m.jobs))
	copy(cp, m.jobs)
	return cp
}
