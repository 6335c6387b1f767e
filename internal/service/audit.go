package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/domain"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// AuditQueryStore is the store side of the audit API. The store and the
// service share one method set.
type AuditQueryStore = domain.AuditService

// Auditor writes single entries; the audit worker drains into one.
type Auditor = domain.Auditor

var _ domain.AuditService = (*AuditService)(nil)

// AuditService validates audit queries and logs the destructive operations.
type AuditService struct {
	store AuditQueryStore
	log   *logrus.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(store AuditQueryStore, log *logrus.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// RecordAudit writes one entry synchronously.
func (s *AuditService) RecordAudit(
	ctx context.Context, tenantID, action, targetType, targetID, actorID string, detail map[string]any,
) error {
	return s.store.RecordAudit(ctx, tenantID, action, targetType, targetID, actorID, detail)
}

// QueryAudit returns a page of entries matching the given filters.
func (s *AuditService) QueryAudit(
	ctx context.Context, tenantID string, opts models.AuditQueryOpts,
) (*models.AuditPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return s.store.QueryAudit(ctx, tenantID, opts)
}

// ListActions returns the distinct actions present in the tenant's log.
func (s *AuditService) ListActions(ctx context.Context, tenantID string) ([]string, error) {
	return s.store.ListActions(ctx, tenantID)
}

// SoftDeleteEntry hides one entry from queries and logs the removal.
func (s *AuditService) SoftDeleteEntry(ctx context.Context, tenantID string, entryID int64) error {
	if err := s.store.SoftDeleteEntry(ctx, tenantID, entryID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"entry_id":  entryID,
	}).Info("audit.soft_delete")

	return nil
}

// SoftDeleteAll hides every entry of the tenant and logs the count.
func (s *AuditService) SoftDeleteAll(ctx context.Context, tenantID string) (int, error) {
	deleted, err := s.store.SoftDeleteAll(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"deleted":   deleted,
	}).Info("audit.soft_delete_all")

	return deleted, nil
}
