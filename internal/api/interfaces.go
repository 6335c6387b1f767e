package api

import (
	"context"

	"github.com/gfcbot/rulekeeper/internal/domain"
	"github.com/gfcbot/rulekeeper/internal/sweep"
)

// Service aliases keep handler signatures short; the canonical definitions live in domain.
type (
	RuleService      = domain.RuleService
	ResolveService   = domain.ResolveService
	RetentionService = domain.RetentionService
	AuditService     = domain.AuditService
)

// SweepRunner triggers a retention sweep on demand.
type SweepRunner interface {
	Run(ctx context.Context) (*sweep.Summary, error)
	Running() bool
}
