// Package authz checks feature permissions with casbin.
//
// Permissions are ordered read < manage < delete: a policy granting an action
// also grants every lower one. Requests are (subject, tenant, object, action)
// where subject is "role:<name>" taken from the acting identity.
package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
)

//go:embed model.conf
var modelText string

//go:embed policy.csv
var defaultPolicy string

// Mode selects how authorization decisions are applied.
type Mode string

// Modes.
const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

// Objects guarded by the policy.
const (
	ObjectRules     = "rules"
	ObjectRetention = "retention"
	ObjectAudit     = "audit"
	ObjectSweep     = "sweep"
)

// Actions, lowest first.
const (
	ActionRead   = "read"
	ActionManage = "manage"
	ActionDelete = "delete"
)

// GlobalDomain is the domain of requests not tied to a tenant.
const GlobalDomain = "global"

// ParseMode parses an AUTHZ_MODE value. Empty means enforce.
func ParseMode(raw string) (Mode, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ModeEnforce, nil
	}

	switch m := Mode(raw); m {
	case ModeEnforce, ModeShadow, ModeDisabled:
		return m, nil
	default:
		return "", errors.New("authz: invalid mode (expected enforce|shadow|disabled)")
	}
}

// Authorizer evaluates requests against the model and policy.
type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
}

// NewAuthorizer loads the built-in policy, or policyPath when set.
func NewAuthorizer(policyPath string, mode Mode) (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: loading model: %w", err)
	}

	var enforcer *casbin.Enforcer
	if policyPath != "" {
		enforcer, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		enforcer, err = casbin.NewEnforcer(m, stringadapter.NewAdapter(defaultPolicy))
	}
	if err != nil {
		return nil, fmt.Errorf("authz: loading policy: %w", err)
	}

	return &Authorizer{enforcer: enforcer, mode: mode}, nil
}

// Mode returns the configured mode.
func (a *Authorizer) Mode() Mode { return a.mode }

// SubjectFromRole maps a role name to a policy subject.
func SubjectFromRole(role string) string {
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		role = "anonymous"
	}

	return "role:" + role
}

// Authorize evaluates one request. enforced is false when the decision must not
// block the request (shadow and disabled modes).
func (a *Authorizer) Authorize(subject, domain, object, action string) (allowed, enforced bool, err error) {
	switch a.mode {
	case ModeDisabled:
		return true, false, nil
	case ModeShadow:
		ok, err := a.enforcer.Enforce(subject, domain, object, action)
		if err != nil {
			return false, false, err
		}
		return ok, false, nil
	case ModeEnforce:
		ok, err := a.enforcer.Enforce(subject, domain, object, action)
		if err != nil {
			return false, true, err
		}
		return ok, true, nil
	default:
		return false, false, errors.New("authz: unknown mode")
	}
}

// AuthorizeRoles allows the request when any of roles is allowed.
func (a *Authorizer) AuthorizeRoles(roles []string, domain, object, action string) (allowed, enforced bool, err error) {
	if len(roles) == 0 {
		roles = []string{""}
	}

	for _, role := range roles {
		allowed, enforced, err = a.Authorize(SubjectFromRole(role), domain, object, action)
		if err != nil || allowed {
			return allowed, enforced, err
		}
	}

	return false, enforced, nil
}
