package client

import (
	"context"
	"net/http"
)

// RetentionService handles retention policy operations.
type RetentionService struct {
	c *Client
}

// List returns the effective policy of every platform for the server.
func (s *RetentionService) List(ctx context.Context, tenantID string) ([]RetentionPolicy, error) {
	var resp struct {
		Policies []RetentionPolicy `json:"policies"`
	}
	if err := s.c.send(ctx, http.MethodGet, serverPath(tenantID, "retention"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Policies, nil
}

// Get returns the effective policy for one platform.
func (s *RetentionService) Get(ctx context.Context, tenantID, platform string) (*RetentionPolicy, error) {
	var p RetentionPolicy
	if err := s.c.send(ctx, http.MethodGet, serverPath(tenantID, "retention", platform), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update creates or changes the policy for one platform.
func (s *RetentionService) Update(ctx context.Context, tenantID, platform string, req *UpdatePolicyRequest) (*RetentionPolicy, error) {
	var p RetentionPolicy
	if err := s.c.send(ctx, http.MethodPut, serverPath(tenantID, "retention", platform), nil, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
