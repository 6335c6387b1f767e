// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/domain"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// RuleStore is the data-access interface RuleService depends on.
type RuleStore interface {
	ListRules(ctx context.Context, tenantID string, platform models.Platform, includeInactive bool) ([]models.RewriteRule, error)
	CreateRule(ctx context.Context, tenantID string, req models.CreateRuleRequest) (*models.RewriteRule, error)
	UpdateRule(ctx context.Context, tenantID, ruleID string, patch models.RulePatch) (before, after *models.RewriteRule, err error)
	DeleteRule(ctx context.Context, tenantID, ruleID string) (*models.RewriteRule, error)
	ReorderRules(ctx context.Context, tenantID string, platform models.Platform, ruleIDs []string) (before, after []models.RewriteRule, err error)
}

// Compile-time check: *RuleService must satisfy domain.RuleService.
var _ domain.RuleService = (*RuleService)(nil)

// RuleService validates rule mutations and records one audit entry per success.
type RuleService struct {
	store       RuleStore
	auditWorker AuditEnqueuer
	log         *logrus.Logger
}

// NewRuleService creates a RuleService.
func NewRuleService(store RuleStore, auditWorker AuditEnqueuer, log *logrus.Logger) *RuleService {
	return &RuleService{store: store, auditWorker: auditWorker, log: log}
}

// ListRules returns rules in precedence order. An empty platform lists every platform.
func (s *RuleService) ListRules(
	ctx context.Context, tenantID string, platform models.Platform, includeInactive bool,
) ([]models.RewriteRule, error) {
	return s.store.ListRules(ctx, tenantID, platform, includeInactive)
}

// AddRule appends a rule to the end of its platform's order.
func (s *RuleService) AddRule(
	ctx context.Context, actor models.Actor, tenantID string, req models.CreateRuleRequest,
) (*models.RewriteRule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rule, err := retryOnConflict(func() (*models.RewriteRule, error) {
		return s.store.CreateRule(ctx, tenantID, req)
	})
	if err != nil {
		return nil, err
	}

	auditAsync(s.auditWorker, s.log, actor, tenantID, models.ActionRuleCreated, models.TargetRule, rule.ID,
		models.ChangeDetail(nil, rule.Snapshot()))

	return rule, nil
}

// UpdateRule applies a partial update. Only supplied fields change.
func (s *RuleService) UpdateRule(
	ctx context.Context, actor models.Actor, tenantID, ruleID string, patch models.RulePatch,
) (*models.RewriteRule, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	before, after, err := s.store.UpdateRule(ctx, tenantID, ruleID, patch)
	if err != nil {
		return nil, err
	}

	auditAsync(s.auditWorker, s.log, actor, tenantID, models.ActionRuleUpdated, models.TargetRule, ruleID,
		models.ChangeDetail(before.Snapshot(), after.Snapshot()))

	return after, nil
}

// RemoveRule deletes a rule; the remaining rules of its platform are renumbered.
func (s *RuleService) RemoveRule(ctx context.Context, actor models.Actor, tenantID, ruleID string) error {
	deleted, err := s.store.DeleteRule(ctx, tenantID, ruleID)
	if err != nil {
		return err
	}

	auditAsync(s.auditWorker, s.log, actor, tenantID, models.ActionRuleDeleted, models.TargetRule, ruleID,
		models.ChangeDetail(deleted.Snapshot(), nil))

	return nil
}

// ReorderRules assigns priority = index to every rule of the platform atomically.
func (s *RuleService) ReorderRules(
	ctx context.Context, actor models.Actor, tenantID string, req models.ReorderRequest,
) ([]models.RewriteRule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	type result struct{ before, after []models.RewriteRule }

	res, err := retryOnConflict(func() (result, error) {
		before, after, err := s.store.ReorderRules(ctx, tenantID, req.Platform, req.RuleIDs)
		return result{before, after}, err
	})
	if err != nil {
		return nil, err
	}

	auditAsync(s.auditWorker, s.log, actor, tenantID, models.ActionRulesReordered, models.TargetRule, string(req.Platform),
		models.ChangeDetail(
			map[string]any{"order": ruleOrder(res.before)},
			map[string]any{"order": ruleOrder(res.after)},
		))

	return res.after, nil
}

func ruleOrder(rules []models.RewriteRule) []string {
	ids := make([]string, len(rules))
	for i := range rules {
		ids[i] = rules[i].ID
	}

	return ids
}
