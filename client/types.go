package client

import "time"

// Rule is a per-server, per-platform link rewrite.
type Rule struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Platform  string    `json:"platform"`
	Pattern   string    `json:"pattern"`
	Kind      string    `json:"kind"`
	Active    bool      `json:"active"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRuleRequest is the payload for adding a rule. Active defaults to true.
type CreateRuleRequest struct {
	Platform string `json:"platform"`
	Pattern  string `json:"pattern"`
	Kind     string `json:"kind"`
	Active   *bool  `json:"active,omitempty"`
}

// UpdateRuleRequest changes the supplied fields of a rule.
type UpdateRuleRequest struct {
	Pattern *string `json:"pattern,omitempty"`
	Kind    *string `json:"kind,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// ListRulesOptions filters a rule listing.
type ListRulesOptions struct {
	Platform        string
	IncludeInactive bool
}

// Resolution is the result of resolving a link.
type Resolution struct {
	Outcome string `json:"outcome"`
	URL     string `json:"url"`
	Rule    *Rule  `json:"rule,omitempty"`
}

// RetentionPolicy controls how long history is kept for a server and platform.
// Persisted is false when the server has never configured the platform.
type RetentionPolicy struct {
	TenantID      string     `json:"tenant_id"`
	Platform      string     `json:"platform"`
	Enabled       bool       `json:"enabled"`
	MaxDays       int        `json:"max_days"`
	RepostEnabled bool       `json:"repost_enabled"`
	Persisted     bool       `json:"persisted"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// UpdatePolicyRequest changes the supplied fields of a retention policy.
type UpdatePolicyRequest struct {
	Enabled       *bool `json:"enabled,omitempty"`
	MaxDays       *int  `json:"max_days,omitempty"`
	RepostEnabled *bool `json:"repost_enabled,omitempty"`
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         int64          `json:"id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditQueryOptions holds optional filters for audit log queries.
type AuditQueryOptions struct {
	Action string
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Entries []AuditEntry `json:"data"`
	Total   int          `json:"total"`
	HasMore bool         `json:"has_more"`
}

// SweepSummary reports the outcome of a retention sweep.
type SweepSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Tenants    []struct {
		TenantID string         `json:"tenant_id"`
		MaxDays  int            `json:"max_days"`
		Cutoff   time.Time      `json:"cutoff"`
		Deleted  map[string]int `json:"deleted"`
	} `json:"tenants"`
	Failures []struct {
		TenantID string `json:"tenant_id"`
		Dataset  string `json:"dataset"`
		Error    string `json:"error"`
	} `json:"failures"`
	Skipped []string `json:"skipped"`
}

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	SweepRunning  bool    `json:"sweep_running"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
