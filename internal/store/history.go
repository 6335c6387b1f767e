package store

import (
	"context"
	"time"
)

// HistoryStore exposes retention for the message_history table. Rows are
// written by the message-processing collaborator; this store only ages them out.
type HistoryStore struct {
	Base
}

// NewHistoryStore creates a HistoryStore.
func NewHistoryStore(base Base) *HistoryStore {
	return &HistoryStore{Base: base}
}

// Name identifies message history as a prunable dataset.
func (s *HistoryStore) Name() string { return "message_history" }

// PurgeOlderThan deletes the tenant's message history created before cutoff.
func (s *HistoryStore) PurgeOlderThan(ctx context.Context, tenantID string, cutoff time.Time) (int, error) {
	return purgeInBatches(ctx, &s.Base, "message_history", tenantID, cutoff)
}
