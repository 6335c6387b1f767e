package service

import (
	"context"

	"github.com/gfcbot/rulekeeper/internal/domain"
	"github.com/gfcbot/rulekeeper/internal/models"
	"github.com/gfcbot/rulekeeper/internal/resolver"
)

// ActiveRuleLister loads the rules a resolution runs against.
type ActiveRuleLister interface {
	ListRules(ctx context.Context, tenantID string, platform models.Platform, includeInactive bool) ([]models.RewriteRule, error)
}

// Compile-time check: *ResolveService must satisfy domain.ResolveService.
var _ domain.ResolveService = (*ResolveService)(nil)

// ResolveService resolves links against the stored active rules. It holds no cache.
type ResolveService struct {
	rules ActiveRuleLister
}

// NewResolveService creates a ResolveService.
func NewResolveService(rules ActiveRuleLister) *ResolveService {
	return &ResolveService{rules: rules}
}

// Resolve loads the platform's active rules and applies the first one to rawURL.
func (s *ResolveService) Resolve(
	ctx context.Context, tenantID string, platform models.Platform, rawURL string,
) (models.Resolution, error) {
	if !platform.Valid() {
		return models.Resolution{}, models.Invalid("platform", "is not supported")
	}

	rules, err := s.rules.ListRules(ctx, tenantID, platform, false)
	if err != nil {
		return models.Resolution{}, err
	}

	return resolver.Resolve(rules, platform, rawURL), nil
}
