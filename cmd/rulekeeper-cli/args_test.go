package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// executeArgs runs the given root command with args and returns any error.
// It suppresses cobra's usage/error output so test output stays clean.
func executeArgs(t *testing.T, root *cobra.Command, args ...string) error {
	t.Helper()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

// newTestRoot builds the same command tree as main() with PersistentPreRun
// stubbed out so the API client is never initialised.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "rulekeeper-cli",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Skip client initialisation in tests.
		},
	}
	addPersistentFlags(root)

	root.AddCommand(newRulesCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newRetentionCmd())
	root.AddCommand(newAuditCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newHealthCmd())
	return root
}

// Argument validation fails before Run, so none of these reach the nil client.
func TestArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"rules add without pattern", []string{"rules", "add", "twitter"}},
		{"rules add extra arg", []string{"rules", "add", "twitter", "fx", "extra"}},
		{"rules update without id", []string{"rules", "update"}},
		{"rules delete without id", []string{"rules", "delete"}},
		{"rules reorder without ids", []string{"rules", "reorder", "twitter"}},
		{"rules list with arg", []string{"rules", "list", "twitter"}},
		{"resolve without url", []string{"resolve", "twitter"}},
		{"retention get without platform", []string{"retention", "get"}},
		{"retention set extra arg", []string{"retention", "set", "twitter", "instagram"}},
		{"audit delete without id", []string{"audit", "delete"}},
		{"audit actions with arg", []string{"audit", "actions", "x"}},
		{"sweep with arg", []string{"sweep", "now"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			if err := executeArgs(t, newTestRoot(), tc.args...); err == nil {
				t.Errorf("expected error for %v", tc.args)
			}
		})
	}
}

func TestFlagDefaults(t *testing.T) {
	cases := []struct {
		cmd  *cobra.Command
		flag string
		want string
	}{
		{rulesAddCmd(), "kind", "prefix"},
		{rulesAddCmd(), "inactive", "false"},
		{rulesListCmd(), "all", "false"},
		{retentionSetCmd(), "max-days", "90"},
		{retentionSetCmd(), "enabled", "true"},
		{auditClearCmd(), "yes", "false"},
		{newAuditCmd(), "limit", "0"},
	}
	for _, tc := range cases {
		f := tc.cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Errorf("%s: --%s flag not found", tc.cmd.Name(), tc.flag)
			continue
		}
		if f.DefValue != tc.want {
			t.Errorf("%s --%s default: got %q, want %q", tc.cmd.Name(), tc.flag, f.DefValue, tc.want)
		}
	}
}

func TestPersistentFlagDefaults(t *testing.T) {
	root := newTestRoot()
	for flag, want := range map[string]string{"format": "json", "url": defaultURL, "server": ""} {
		f := root.PersistentFlags().Lookup(flag)
		if f == nil {
			t.Errorf("--%s flag not found", flag)
			continue
		}
		if f.DefValue != want {
			t.Errorf("--%s default: got %q, want %q", flag, f.DefValue, want)
		}
	}
	if root.PersistentFlags().ShorthandLookup("s") == nil {
		t.Error("-s shorthand for --server not registered")
	}
}

func TestParseTimeFlag(t *testing.T) {
	if got, err := parseTimeFlag(""); err != nil || got != nil {
		t.Errorf("empty: got %v, %v", got, err)
	}

	got, err := parseTimeFlag("2026-02-03T04:05:06Z")
	if err != nil || !got.Equal(time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)) {
		t.Errorf("rfc3339: got %v, %v", got, err)
	}

	got, err = parseTimeFlag("2026-02-03")
	if err != nil || !got.Equal(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date: got %v, %v", got, err)
	}

	if _, err := parseTimeFlag("yesterday"); err == nil {
		t.Error("expected error for unparseable time")
	}
}

func TestClientOptions(t *testing.T) {
	resetFlags(t)

	if opts := clientOptions(); len(opts) != 0 {
		t.Errorf("expected no options, got %d", len(opts))
	}

	flagKey = "k"
	flagActor = "42"
	flagRoles = "moderator"
	if opts := clientOptions(); len(opts) != 2 {
		t.Errorf("expected key and actor options, got %d", len(opts))
	}
}
