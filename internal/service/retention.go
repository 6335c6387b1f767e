package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/domain"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// PolicyStore is the data-access interface RetentionService depends on.
type PolicyStore interface {
	GetPolicy(ctx context.Context, tenantID string, platform models.Platform) (*models.RetentionPolicy, error)
	ListPolicies(ctx context.Context, tenantID string) ([]models.RetentionPolicy, error)
	UpsertPolicy(ctx context.Context, tenantID string, platform models.Platform, patch models.PolicyPatch) (before, after *models.RetentionPolicy, err error)
}

// Compile-time check: *RetentionService must satisfy domain.RetentionService.
var _ domain.RetentionService = (*RetentionService)(nil)

// RetentionService serves retention policies with the default view for
// unconfigured platforms. Defaults are returned, never written.
type RetentionService struct {
	store       PolicyStore
	auditWorker AuditEnqueuer
	log         *logrus.Logger
}

// NewRetentionService creates a RetentionService.
func NewRetentionService(store PolicyStore, auditWorker AuditEnqueuer, log *logrus.Logger) *RetentionService {
	return &RetentionService{store: store, auditWorker: auditWorker, log: log}
}

// GetPolicy returns the stored policy, or the default view when none is stored.
func (s *RetentionService) GetPolicy(
	ctx context.Context, tenantID string, platform models.Platform,
) (*models.RetentionPolicy, error) {
	if !platform.Valid() {
		return nil, models.Invalid("platform", "is not supported")
	}

	p, err := s.store.GetPolicy(ctx, tenantID, platform)
	if errors.Is(err, models.ErrPolicyNotFound) {
		def := models.DefaultRetentionPolicy(tenantID, platform)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// ListPolicies returns one policy per supported platform, stored or default.
func (s *RetentionService) ListPolicies(ctx context.Context, tenantID string) ([]models.RetentionPolicy, error) {
	stored, err := s.store.ListPolicies(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	byPlatform := make(map[models.Platform]models.RetentionPolicy, len(stored))
	for _, p := range stored {
		byPlatform[p.Platform] = p
	}

	platforms := models.Platforms()
	policies := make([]models.RetentionPolicy, 0, len(platforms))

	for _, platform := range platforms {
		if p, ok := byPlatform[platform]; ok {
			policies = append(policies, p)
			continue
		}
		policies = append(policies, models.DefaultRetentionPolicy(tenantID, platform))
	}

	return policies, nil
}

// UpsertPolicy validates and writes a partial policy update.
func (s *RetentionService) UpsertPolicy(
	ctx context.Context, actor models.Actor, tenantID string, platform models.Platform, patch models.PolicyPatch,
) (*models.RetentionPolicy, error) {
	if !platform.Valid() {
		return nil, models.Invalid("platform", "is not supported")
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	type result struct{ before, after *models.RetentionPolicy }

	res, err := retryOnConflict(func() (result, error) {
		before, after, err := s.store.UpsertPolicy(ctx, tenantID, platform, patch)
		return result{before, after}, err
	})
	if err != nil {
		return nil, err
	}

	auditAsync(s.auditWorker, s.log, actor, tenantID, models.ActionRetentionPolicyUpdated, models.TargetRetentionPolicy, string(platform),
		models.ChangeDetail(res.before.Snapshot(), res.after.Snapshot()))

	return res.after, nil
}
