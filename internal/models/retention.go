package models

import "time"

// Retention bounds and the default view returned for unconfigured tenants.
const (
	MinRetentionDays     = 1
	MaxRetentionDays     = 90
	DefaultRetentionDays = 90
)

// RetentionPolicy controls how long operational history is kept for a tenant/platform.
type RetentionPolicy struct {
	TenantID      string     `json:"tenant_id"`
	Platform      Platform   `json:"platform"`
	Enabled       bool       `json:"enabled"`
	MaxDays       int        `json:"max_days"`
	RepostEnabled bool       `json:"repost_enabled"`
	Persisted     bool       `json:"persisted"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// DefaultRetentionPolicy returns the view used when no row exists. It is never written automatically.
func DefaultRetentionPolicy(tenantID string, platform Platform) RetentionPolicy {
	return RetentionPolicy{
		TenantID: tenantID,
		Platform: platform,
		Enabled:  true,
		MaxDays:  DefaultRetentionDays,
	}
}

// Cutoff returns the instant before which rows are eligible for deletion.
func (p *RetentionPolicy) Cutoff(now time.Time) time.Time {
	return now.Add(-time.Duration(p.MaxDays) * 24 * time.Hour)
}

// Snapshot returns the audit representation of the policy.
func (p *RetentionPolicy) Snapshot() map[string]any {
	if p == nil {
		return nil
	}

	return map[string]any{
		"enabled":        p.Enabled,
		"max_days":       p.MaxDays,
		"repost_enabled": p.RepostEnabled,
	}
}

// PolicyPatch carries a partial retention policy update.
type PolicyPatch struct {
	Enabled       Optional[bool] `json:"enabled"`
	MaxDays       Optional[int]  `json:"max_days"`
	RepostEnabled Optional[bool] `json:"repost_enabled"`
}

// IsEmpty reports whether no field was supplied.
func (p *PolicyPatch) IsEmpty() bool {
	return !p.Enabled.IsSet() && !p.MaxDays.IsSet() && !p.RepostEnabled.IsSet()
}

// Validate rejects empty patches and out-of-range retention days.
func (p *PolicyPatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}

	if days, ok := p.MaxDays.Get(); ok && (days < MinRetentionDays || days > MaxRetentionDays) {
		return ErrMaxDaysRange
	}

	return nil
}

// Apply returns a copy of base with the patch applied.
func (p *PolicyPatch) Apply(base RetentionPolicy) RetentionPolicy {
	base.Enabled = p.Enabled.Or(base.Enabled)
	base.MaxDays = p.MaxDays.Or(base.MaxDays)
	base.RepostEnabled = p.RepostEnabled.Or(base.RepostEnabled)

	return base
}
