package models

import "time"

// Audit actions recorded for administrative mutations.
const (
	ActionRuleCreated            = "rule_created"
	ActionRuleUpdated            = "rule_updated"
	ActionRuleDeleted            = "rule_deleted"
	ActionRulesReordered         = "rules_reordered"
	ActionRetentionPolicyUpdated = "retention_policy_updated"
)

// Audit target types.
const (
	TargetRule            = "rewrite_rule"
	TargetRetentionPolicy = "retention_policy"
)

// Actor is the identity performing a request, supplied by the HTTP collaborator.
type Actor struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles,omitempty"`
}

// AuditEntry represents a single audit log entry. Only DeletedAt changes after insert.
type AuditEntry struct {
	ID         int64          `json:"id"`
	TenantID   string         `json:"-"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  *time.Time     `json:"deleted_at,omitempty"`
}

// AuditQueryOpts holds filters for querying the audit log.
type AuditQueryOpts struct {
	Action string
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// Validate rejects inverted time ranges.
func (o *AuditQueryOpts) Validate() error {
	if o.Since != nil && o.Until != nil && o.Until.Before(*o.Since) {
		return Invalid("until", "must not be before since")
	}

	return nil
}

// AuditPage is one page of audit entries plus the total matching count.
type AuditPage struct {
	Entries []AuditEntry `json:"data"`
	Total   int          `json:"total"`
	HasMore bool         `json:"has_more"`
}

// ChangeDetail builds the before/after audit detail for a mutation.
func ChangeDetail(before, after map[string]any) map[string]any {
	detail := map[string]any{}
	if before != nil {
		detail["before"] = before
	}
	if after != nil {
		detail["after"] = after
	}

	return detail
}
