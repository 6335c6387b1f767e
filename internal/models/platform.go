package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Platform is a content source whose links are subject to rewrite rules.
type Platform string

// Supported platforms.
const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
)

var platformDomains = map[Platform][]string{
	PlatformTwitter:   {"twitter.com", "x.com"},
	PlatformInstagram: {"instagram.com"},
}

// Platforms returns every supported platform in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformTwitter, PlatformInstagram}
}

// Domains returns the registrable domains that identify links of this platform.
func (p Platform) Domains() []string {
	return platformDomains[p]
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	_, ok := platformDomains[p]
	return ok
}

// ParsePlatform normalizes and validates a platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return "", Invalid("platform", "is required")
	}

	if !p.Valid() {
		return "", Invalid("platform", fmt.Sprintf("%q is not supported", s))
	}

	return p, nil
}

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateTenantID checks that a tenant (server) identifier is well formed.
func ValidateTenantID(id string) error {
	if !tenantIDPattern.MatchString(id) {
		return Invalid("tenant id", "must be 1-64 characters of letters, digits, '-' or '_'")
	}

	return nil
}
