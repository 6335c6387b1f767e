package client

import (
	"context"
	"net/http"
)

// SweepService triggers retention sweeps.
type SweepService struct {
	c *Client
}

// Run performs a sweep and waits for its summary. A sweep that is already
// running yields an error for which IsConflict is true.
func (s *SweepService) Run(ctx context.Context) (*SweepSummary, error) {
	var summary SweepSummary
	if err := s.c.send(ctx, http.MethodPost, "/api/v1/admin/sweep", nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
