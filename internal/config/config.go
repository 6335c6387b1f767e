// Package config provides environment-driven configuration for rulekeeper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gfcbot/rulekeeper/internal/authz"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL Secret
	Port        string
	ListenHost  string
	CORSOrigins []string
	LogLevel    string
	DBMaxConns  int

	SweepSchedule      string
	SweepTimezone      string
	SweepWorkers       int
	SweepTenantTimeout time.Duration

	AuditQueueSize int

	AuthzMode                authz.Mode
	AuthzPolicyFile          string
	AuthzUnsafeAllowDisabled bool

	RateLimit float64
	RateBurst int
}

// LoadEnvFile loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing files
// are ignored.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:              Secret(envOrDefault("DATABASE_URL", "")),
		Port:                     envOrDefault("PORT", "3030"),
		ListenHost:               envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:                 envOrDefault("LOG_LEVEL", "info"),
		SweepSchedule:            envOrDefault("SWEEP_SCHEDULE", "0 2 * * *"),
		SweepTimezone:            envOrDefault("SWEEP_TIMEZONE", "UTC"),
		AuthzPolicyFile:          envOrDefault("AUTHZ_POLICY_FILE", ""),
		AuthzUnsafeAllowDisabled: envOrDefault("AUTHZ_UNSAFE_ALLOW_DISABLED", "false") == "true",
	}

	var err error

	if cfg.DBMaxConns, err = intInRange("DB_MAX_CONNS", "10", 2, 200); err != nil {
		return nil, err
	}
	if cfg.SweepWorkers, err = intInRange("SWEEP_WORKERS", "4", 1, 32); err != nil {
		return nil, err
	}
	if cfg.AuditQueueSize, err = intInRange("AUDIT_QUEUE_SIZE", "1000", 1, 100000); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = intInRange("RATE_LIMIT_BURST", "100", 1, 10000); err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(envOrDefault("SWEEP_TENANT_TIMEOUT", "2m"))
	if err != nil || timeout < time.Second {
		return nil, fmt.Errorf("SWEEP_TENANT_TIMEOUT must be a duration of at least 1s")
	}
	cfg.SweepTenantTimeout = timeout

	rate, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT_RPS", "50"), 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number")
	}
	cfg.RateLimit = rate

	if cfg.AuthzMode, err = authz.ParseMode(os.Getenv("AUTHZ_MODE")); err != nil {
		return nil, fmt.Errorf("AUTHZ_MODE: %w", err)
	}

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func intInRange(key, fallback string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}

	return v, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
