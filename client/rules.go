package client

import (
	"context"
	"net/http"
	"net/url"
)

// RuleService handles rewrite rule operations.
type RuleService struct {
	c *Client
}

type rulesResponse struct {
	Rules []Rule `json:"rules"`
}

// List returns the server's rules in precedence order.
func (s *RuleService) List(ctx context.Context, tenantID string, opts *ListRulesOptions) ([]Rule, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Platform != "" {
			params.Set("platform", opts.Platform)
		}
		if opts.IncludeInactive {
			params.Set("include_inactive", "true")
		}
	}
	var resp rulesResponse
	if err := s.c.send(ctx, http.MethodGet, serverPath(tenantID, "rules"), params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// Create appends a rule to the end of its platform's order.
func (s *RuleService) Create(ctx context.Context, tenantID string, req *CreateRuleRequest) (*Rule, error) {
	var rule Rule
	if err := s.c.send(ctx, http.MethodPost, serverPath(tenantID, "rules"), nil, req, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Update changes the supplied fields of a rule.
func (s *RuleService) Update(ctx context.Context, tenantID, ruleID string, req *UpdateRuleRequest) (*Rule, error) {
	var rule Rule
	if err := s.c.send(ctx, http.MethodPatch, serverPath(tenantID, "rules", ruleID), nil, req, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Delete removes a rule. Remaining rules of the platform are renumbered.
func (s *RuleService) Delete(ctx context.Context, tenantID, ruleID string) error {
	return s.c.send(ctx, http.MethodDelete, serverPath(tenantID, "rules", ruleID), nil, nil, nil)
}

// Reorder sets the precedence of every rule of a platform. ruleIDs must list
// each of the platform's rules exactly once.
func (s *RuleService) Reorder(ctx context.Context, tenantID, platform string, ruleIDs []string) ([]Rule, error) {
	body := map[string]any{"platform": platform, "rule_ids": ruleIDs}
	var resp rulesResponse
	if err := s.c.send(ctx, http.MethodPut, serverPath(tenantID, "rules", "reorder"), nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// Resolve rewrites a link using the server's active rules.
func (s *RuleService) Resolve(ctx context.Context, tenantID, platform, link string) (*Resolution, error) {
	params := url.Values{"platform": {platform}, "url": {link}}
	var res Resolution
	if err := s.c.send(ctx, http.MethodGet, serverPath(tenantID, "resolve"), params, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
