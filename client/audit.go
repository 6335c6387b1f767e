package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// AuditService handles audit log operations.
type AuditService struct {
	c *Client
}

// Query returns a page of audit entries matching the given options, newest first.
func (s *AuditService) Query(ctx context.Context, tenantID string, opts *AuditQueryOptions) (*AuditPage, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Action != "" {
			params.Set("action", opts.Action)
		}
		if opts.Since != nil {
			params.Set("since", opts.Since.Format(time.RFC3339))
		}
		if opts.Until != nil {
			params.Set("until", opts.Until.Format(time.RFC3339))
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
	}
	var page AuditPage
	if err := s.c.send(ctx, http.MethodGet, serverPath(tenantID, "audit"), params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Actions returns the distinct actions present in the server's audit log.
func (s *AuditService) Actions(ctx context.Context, tenantID string) ([]string, error) {
	var resp struct {
		Actions []string `json:"actions"`
	}
	if err := s.c.send(ctx, http.MethodGet, serverPath(tenantID, "audit", "actions"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Actions, nil
}

// Delete hides one audit entry from queries.
func (s *AuditService) Delete(ctx context.Context, tenantID string, entryID int64) error {
	return s.c.send(ctx, http.MethodDelete, serverPath(tenantID, "audit", strconv.FormatInt(entryID, 10)), nil, nil, nil)
}

// DeleteAll hides every audit entry of the server. Returns the count affected.
func (s *AuditService) DeleteAll(ctx context.Context, tenantID string) (int, error) {
	var resp struct {
		Deleted int `json:"deleted"`
	}
	if err := s.c.send(ctx, http.MethodDelete, serverPath(tenantID, "audit"), nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}
