// Package client provides a typed Go SDK for the rulekeeper REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the top-level rulekeeper API client.
type Client struct {
	baseURL    string
	apiKey     string
	actorID    string
	actorRoles []string
	httpClient *http.Client

	Rules     *RuleService
	Retention *RetentionService
	Audit     *AuditService
	Sweep     *SweepService
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithActor sets the acting identity sent with every request. Mutations are
// attributed to id in the audit trail and authorized by roles.
func WithActor(id string, roles ...string) Option {
	return func(c *Client) {
		c.actorID = id
		c.actorRoles = roles
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the given base URL (e.g. "http://localhost:3030").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	c.Rules = &RuleService{c: c}
	c.Retention = &RetentionService{c: c}
	c.Audit = &AuditService{c: c}
	c.Sweep = &SweepService{c: c}
	return c
}

// Health returns the liveness check response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.send(ctx, http.MethodGet, "/api/v1/health", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// serverPath returns the API path of a tenant-scoped resource.
func serverPath(tenantID string, parts ...string) string {
	p := "/api/v1/servers/" + url.PathEscape(tenantID)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// send issues one API call. query and body may be nil. A 2xx response body is
// decoded into out when out is non-nil; anything else becomes an *APIError.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		return parseAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// maxErrorBody caps how much of an error response is kept in APIError.Message.
const maxErrorBody = 64 << 10

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	h := req.Header
	h.Set("Accept", "application/json")
	if payload != nil {
		h.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		h.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.actorID != "" {
		h.Set("X-Actor-ID", c.actorID)
	}
	if len(c.actorRoles) > 0 {
		h.Set("X-Actor-Roles", strings.Join(c.actorRoles, ","))
	}

	return req, nil
}
