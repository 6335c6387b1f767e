package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gfcbot/rulekeeper/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3030"

var (
	apiClient  *client.Client
	flagURL    string
	flagKey    string
	flagFmt    string
	flagServer string
	flagActor  string
	flagRoles  string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("rulekeeper-cli version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("rulekeeper-cli version %s-dev", version)
}

type configFile struct {
	// Flat format
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Server string `yaml:"server"`
	Actor  string `yaml:"actor"`
	// Profile format
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Server string `yaml:"server"`
	Actor  string `yaml:"actor"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "rulekeeper-cli",
		Short:   "rulekeeper-cli: manage embed rules, retention and audit over the API",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = client.New(flagURL, clientOptions()...)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newRetentionCmd())
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newHealthCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "rulekeeper server URL (env: RULEKEEPER_URL)")
	root.PersistentFlags().StringVar(&flagKey, "api-key", "", "API key (env: RULEKEEPER_API_KEY)")
	root.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|yaml|table|quiet")
	root.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Server (tenant) id (env: RULEKEEPER_SERVER)")
	root.PersistentFlags().StringVar(&flagActor, "actor", "", "Acting user id recorded in the audit trail (env: RULEKEEPER_ACTOR)")
	root.PersistentFlags().StringVar(&flagRoles, "roles", "", "Comma-separated roles of the acting user, e.g. moderator (env: RULEKEEPER_ROLES)")
}

func clientOptions() []client.Option {
	var opts []client.Option
	if flagKey != "" {
		opts = append(opts, client.WithAPIKey(flagKey))
	}
	if flagActor != "" {
		opts = append(opts, client.WithActor(flagActor, splitRoles(flagRoles)...))
	}
	return opts
}

func splitRoles(raw string) []string {
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL == defaultURL {
		if v := os.Getenv("RULEKEEPER_URL"); v != "" {
			flagURL = v
		}
	}
	if flagKey == "" {
		flagKey = os.Getenv("RULEKEEPER_API_KEY")
	}
	if flagServer == "" {
		flagServer = os.Getenv("RULEKEEPER_SERVER")
	}
	if flagActor == "" {
		flagActor = os.Getenv("RULEKEEPER_ACTOR")
	}
	if flagRoles == "" {
		flagRoles = os.Getenv("RULEKEEPER_ROLES")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	data, err := os.ReadFile(filepath.Join(home, ".rulekeeper", "config.yaml"))
	if err != nil {
		return
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return
	}

	resolved := configProfile{URL: cfg.URL, APIKey: cfg.APIKey, Server: cfg.Server, Actor: cfg.Actor}
	if cfg.Profiles != nil {
		profileName := cfg.ActiveProfile
		if profileName == "" {
			profileName = "default"
		}
		if p, ok := cfg.Profiles[profileName]; ok {
			resolved = mergeProfile(resolved, p)
		}
	}

	if flagURL == defaultURL && resolved.URL != "" {
		flagURL = resolved.URL
	}
	if flagKey == "" {
		flagKey = resolved.APIKey
	}
	if flagServer == "" {
		flagServer = resolved.Server
	}
	if flagActor == "" {
		flagActor = resolved.Actor
	}
}

// mergeProfile overlays the non-empty fields of p onto base.
func mergeProfile(base, p configProfile) configProfile {
	if p.URL != "" {
		base.URL = p.URL
	}
	if p.APIKey != "" {
		base.APIKey = p.APIKey
	}
	if p.Server != "" {
		base.Server = p.Server
	}
	if p.Actor != "" {
		base.Actor = p.Actor
	}
	return base
}

// requireServer returns the selected server id or exits.
func requireServer() string {
	if flagServer == "" {
		fatal("server", errors.New("no server selected; pass --server or set RULEKEEPER_SERVER"))
	}
	return flagServer
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
