// Package resolver decides how a shared link is rewritten for embedding.
//
// Resolve is a pure function over a snapshot of rules: it never touches the
// store, so any number of goroutines may call it concurrently.
package resolver

import (
	"cmp"
	"net/url"
	"slices"
	"strings"

	"github.com/gfcbot/rulekeeper/internal/models"
)

// Resolve applies the highest-precedence active rule to rawURL.
//
// Rules are ordered by ascending priority; duplicate priorities fall back to the
// lowest id. If any active rule's transformation is already present in the link
// host the link is reported as already rewritten. Links that do not belong to
// the platform, or cannot be parsed, resolve to no rewrite. The subdomain of the
// link is kept and the port is dropped.
func Resolve(rules []models.RewriteRule, platform models.Platform, rawURL string) models.Resolution {
	none := models.Resolution{Outcome: models.OutcomeNone, URL: rawURL}

	active := Ordered(rules)
	if len(active) == 0 {
		return none
	}

	u, host, ok := parseLink(rawURL)
	if !ok {
		return none
	}

	domains := platform.Domains()

	for i := range active {
		if alreadyApplied(&active[i], host, domains) {
			return models.Resolution{Outcome: models.OutcomeAlreadyRewritten, URL: rawURL, Rule: &active[i]}
		}
	}

	base, ok := matchDomain(host, domains)
	if !ok {
		return none
	}

	rule := &active[0]
	sub := strings.TrimSuffix(host, base) // "" or e.g. "mobile."

	switch rule.Kind {
	case models.KindPrefix:
		u.Host = sub + rule.Pattern + base
	case models.KindReplacement:
		u.Host = sub + rule.Pattern
	default:
		return none
	}

	return models.Resolution{Outcome: models.OutcomeRewritten, URL: u.String(), Rule: rule}
}

// Ordered returns the active rules sorted by (priority, id). The input is not modified.
func Ordered(rules []models.RewriteRule) []models.RewriteRule {
	active := make([]models.RewriteRule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}

	slices.SortStableFunc(active, func(a, b models.RewriteRule) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return active
}

// parseLink parses an absolute http(s) link and returns its lowercased host without port.
func parseLink(rawURL string) (*url.URL, string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, "", false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, "", false
	}

	return u, host, true
}

// matchDomain reports which platform domain host belongs to (exact or subdomain).
func matchDomain(host string, domains []string) (string, bool) {
	for _, d := range domains {
		if hostIs(host, d) {
			return d, true
		}
	}

	return "", false
}

// alreadyApplied reports whether host already carries the rule's transformation.
func alreadyApplied(rule *models.RewriteRule, host string, domains []string) bool {
	switch rule.Kind {
	case models.KindReplacement:
		return hostIs(host, rule.Pattern)
	case models.KindPrefix:
		for _, d := range domains {
			if hostIs(host, rule.Pattern+d) {
				return true
			}
		}
	}

	return false
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
