// Package models defines data types for rewrite rules, retention policies and the audit trail.
package models

import (
	"regexp"
	"strings"
	"time"
)

// RuleKind selects how a rule transforms the host of a link.
type RuleKind string

// Rule kinds.
const (
	// KindPrefix prepends the pattern before the platform domain (x.com -> fxx.com).
	KindPrefix RuleKind = "prefix"
	// KindReplacement substitutes the platform domain with the pattern (x.com -> fxtwitter.com).
	KindReplacement RuleKind = "replacement"
)

// Valid reports whether k is a known rule kind.
func (k RuleKind) Valid() bool {
	return k == KindPrefix || k == KindReplacement
}

const maxPatternLen = 253

var patternChars = regexp.MustCompile(`^[a-z0-9.-]+$`)

// RewriteRule is a single per-tenant, per-platform link rewrite.
// Priorities within a (tenant, platform) scope are always 0..N-1.
type RewriteRule struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Platform  Platform  `json:"platform"`
	Pattern   string    `json:"pattern"`
	Kind      RuleKind  `json:"kind"`
	Active    bool      `json:"active"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns the audit representation of the rule.
func (r *RewriteRule) Snapshot() map[string]any {
	if r == nil {
		return nil
	}

	return map[string]any{
		"platform": string(r.Platform),
		"pattern":  r.Pattern,
		"kind":     string(r.Kind),
		"active":   r.Active,
		"priority": r.Priority,
	}
}

// CheckPattern validates the pattern against the rule's kind. Used after a
// patch changes only one of the two.
func (r *RewriteRule) CheckPattern() error {
	_, err := normalizePattern(r.Pattern, r.Kind)
	return err
}

// CreateRuleRequest is the payload for adding a rule.
type CreateRuleRequest struct {
	Platform Platform `json:"platform"`
	Pattern  string   `json:"pattern"`
	Kind     RuleKind `json:"kind"`
	Active   *bool    `json:"active,omitempty"`
}

// IsActive returns the requested active flag, defaulting to true.
func (r *CreateRuleRequest) IsActive() bool {
	return r.Active == nil || *r.Active
}

// Validate normalizes the request in place and checks its fields.
func (r *CreateRuleRequest) Validate() error {
	p, err := ParsePlatform(string(r.Platform))
	if err != nil {
		return err
	}
	r.Platform = p

	r.Kind = RuleKind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	if !r.Kind.Valid() {
		return Invalid("kind", "must be 'prefix' or 'replacement'")
	}

	pattern, err := normalizePattern(r.Pattern, r.Kind)
	if err != nil {
		return err
	}
	r.Pattern = pattern

	return nil
}

// RulePatch carries a partial rule update. Priority is changed only through reorder.
type RulePatch struct {
	Pattern Optional[string]   `json:"pattern"`
	Kind    Optional[RuleKind] `json:"kind"`
	Active  Optional[bool]     `json:"active"`
}

// IsEmpty reports whether no field was supplied.
func (p *RulePatch) IsEmpty() bool {
	return !p.Pattern.IsSet() && !p.Kind.IsSet() && !p.Active.IsSet()
}

// Validate normalizes supplied fields in place and checks them.
func (p *RulePatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}

	kind, kindSet := p.Kind.Get()
	if kindSet {
		kind = RuleKind(strings.ToLower(strings.TrimSpace(string(kind))))
		if !kind.Valid() {
			return Invalid("kind", "must be 'prefix' or 'replacement'")
		}
		p.Kind = Some(kind)
	}

	if pattern, ok := p.Pattern.Get(); ok {
		normalized, err := normalizePattern(pattern, kind)
		if err != nil {
			return err
		}
		p.Pattern = Some(normalized)
	}

	return nil
}

// Apply returns a copy of r with the patch applied.
func (p *RulePatch) Apply(r RewriteRule) RewriteRule {
	r.Pattern = p.Pattern.Or(r.Pattern)
	r.Kind = p.Kind.Or(r.Kind)
	r.Active = p.Active.Or(r.Active)

	return r
}

// ReorderRequest assigns priority = index for every rule of a platform.
type ReorderRequest struct {
	Platform Platform `json:"platform"`
	RuleIDs  []string `json:"rule_ids"`
}

// Validate checks the platform and rejects blank or duplicate ids.
// Whether the ids match the stored rule set is checked under lock by the store.
func (r *ReorderRequest) Validate() error {
	p, err := ParsePlatform(string(r.Platform))
	if err != nil {
		return err
	}
	r.Platform = p

	seen := make(map[string]struct{}, len(r.RuleIDs))
	for _, id := range r.RuleIDs {
		if id == "" {
			return Invalid("rule_ids", "must not contain empty ids")
		}
		if _, dup := seen[id]; dup {
			return Invalid("rule_ids", "must not contain duplicates")
		}
		seen[id] = struct{}{}
	}

	return nil
}

// normalizePattern trims and lowercases a pattern and checks it against the kind.
// An empty kind applies only the checks shared by both kinds.
func normalizePattern(raw string, kind RuleKind) (string, error) {
	pattern := strings.ToLower(strings.TrimSpace(raw))
	if pattern == "" {
		return "", ErrMissingPattern
	}

	if len(pattern) > maxPatternLen {
		return "", ErrFieldTooLong("pattern", maxPatternLen)
	}

	if !patternChars.MatchString(pattern) {
		return "", Invalid("pattern", "may only contain letters, digits, '.' and '-'")
	}

	if kind == KindReplacement {
		if !strings.Contains(pattern, ".") || strings.HasPrefix(pattern, ".") || strings.HasSuffix(pattern, ".") {
			return "", Invalid("pattern", "must be a domain name for replacement rules")
		}
	}

	return pattern, nil
}
