package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/authz"
)

// Hosts the API may bind to. 0.0.0.0 and :: are for containers, where the
// platform owns the network boundary.
var bindHosts = map[string]bool{
	"127.0.0.1": true,
	"::1":       true,
	"localhost": true,
	"0.0.0.0":   true,
	"::":        true,
}

// validate runs every check and reports all failures together.
func (c *Config) validate() error {
	checks := []func() error{
		c.checkDatabaseURL,
		c.checkListen,
		c.checkCORSOrigins,
		c.checkSweepSchedule,
		c.checkAuthzMode,
		func() error {
			if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
				return fmt.Errorf("LOG_LEVEL: %w", err)
			}
			return nil
		},
	}

	var errs []error
	for _, check := range checks {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func (c *Config) checkDatabaseURL() error {
	raw := c.DatabaseURL.Value()
	if raw == "" {
		return errors.New("DATABASE_URL is required")
	}

	u, err := url.Parse(raw)
	switch {
	case err != nil:
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	case u.Scheme != "postgres" && u.Scheme != "postgresql":
		return errors.New("DATABASE_URL scheme must be postgres:// or postgresql://")
	case u.Hostname() == "":
		return errors.New("DATABASE_URL must include a host")
	case !isLoopback(u.Hostname()) && u.Query().Get("sslmode") == "disable":
		return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", u.Hostname())
	}

	return nil
}

func (c *Config) checkListen() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535 (got %d)", port)
	}

	if !bindHosts[c.ListenHost] {
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost)
	}

	return nil
}

func (c *Config) checkCORSOrigins() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return errors.New("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters, got %q", origin)
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (need scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) checkSweepSchedule() error {
	if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
		return fmt.Errorf("SWEEP_SCHEDULE is not a valid cron expression: %w", err)
	}
	if _, err := time.LoadLocation(c.SweepTimezone); err != nil {
		return fmt.Errorf("SWEEP_TIMEZONE is not a known time zone: %w", err)
	}

	return nil
}

func (c *Config) checkAuthzMode() error {
	if c.AuthzMode == authz.ModeDisabled && !c.AuthzUnsafeAllowDisabled {
		return errors.New("AUTHZ_MODE=disabled requires AUTHZ_UNSAFE_ALLOW_DISABLED=true")
	}

	return nil
}
