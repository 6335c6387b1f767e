package authz

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{"", ModeEnforce, false},
		{"shadow", ModeShadow, false},
		{" Disabled ", ModeDisabled, false},
		{"nope", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q) err = %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDefaultPolicy(t *testing.T) {
	a, err := NewAuthorizer("", ModeEnforce)
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}

	tests := []struct {
		role   string
		obj    string
		act    string
		domain string
		want   bool
	}{
		{"viewer", ObjectRules, ActionRead, "g1", true},
		{"viewer", ObjectRules, ActionManage, "g1", false},
		{"viewer", ObjectAudit, ActionRead, "g1", true},
		{"moderator", ObjectRules, ActionManage, "g1", true},
		{"moderator", ObjectRules, ActionDelete, "g1", true},
		{"moderator", ObjectRetention, ActionManage, "g1", true},
		{"moderator", ObjectAudit, ActionRead, "g1", true},
		{"moderator", ObjectAudit, ActionDelete, "g1", false},
		{"moderator", ObjectSweep, ActionManage, GlobalDomain, false},
		{"admin", ObjectAudit, ActionDelete, "g1", true},
		{"admin", ObjectSweep, ActionManage, GlobalDomain, true},
		{"", ObjectRules, ActionRead, "g1", false},
		{"stranger", ObjectRules, ActionRead, "g1", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.obj+"/"+tt.act, func(t *testing.T) {
			allowed, enforced, err := a.Authorize(SubjectFromRole(tt.role), tt.domain, tt.obj, tt.act)
			if err != nil {
				t.Fatalf("Authorize: %v", err)
			}
			if !enforced {
				t.Error("enforce mode reported not enforced")
			}
			if allowed != tt.want {
				t.Errorf("allowed = %v, want %v", allowed, tt.want)
			}
		})
	}
}

func TestAuthorizeRoles(t *testing.T) {
	a, err := NewAuthorizer("", ModeEnforce)
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}

	allowed, _, err := a.AuthorizeRoles([]string{"viewer", "admin"}, "g1", ObjectAudit, ActionDelete)
	if err != nil || !allowed {
		t.Errorf("allowed = %v, err = %v; want any-role match", allowed, err)
	}

	allowed, _, err = a.AuthorizeRoles(nil, "g1", ObjectRules, ActionRead)
	if err != nil || allowed {
		t.Errorf("allowed = %v, err = %v; want anonymous denied", allowed, err)
	}
}

func TestModes(t *testing.T) {
	shadow, err := NewAuthorizer("", ModeShadow)
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	allowed, enforced, err := shadow.Authorize(SubjectFromRole("viewer"), "g1", ObjectRules, ActionDelete)
	if err != nil || allowed || enforced {
		t.Errorf("shadow: allowed=%v enforced=%v err=%v", allowed, enforced, err)
	}

	disabled, err := NewAuthorizer("", ModeDisabled)
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	allowed, enforced, err = disabled.Authorize(SubjectFromRole("viewer"), "g1", ObjectRules, ActionDelete)
	if err != nil || !allowed || enforced {
		t.Errorf("disabled: allowed=%v enforced=%v err=%v", allowed, enforced, err)
	}
}

func TestPolicyFile(t *testing.T) {
	policy := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(policy, []byte("p, role:auditor, *, audit, read\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := NewAuthorizer(policy, ModeEnforce)
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}

	if allowed, _, _ := a.Authorize(SubjectFromRole("auditor"), "g1", ObjectAudit, ActionRead); !allowed {
		t.Error("auditor denied audit read")
	}
	if allowed, _, _ := a.Authorize(SubjectFromRole("auditor"), "g1", ObjectRules, ActionRead); allowed {
		t.Error("auditor allowed rules read")
	}

	if _, err := NewAuthorizer(filepath.Join(t.TempDir(), "missing.csv"), ModeEnforce); err == nil {
		t.Error("missing policy file accepted")
	}
}
