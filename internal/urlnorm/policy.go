package urlnorm

import (
	"strings"
)

// DefaultHardExcludes are canonical URL prefixes that never become evidence.
var DefaultHardExcludes = []string{
	"https://www.artadvisors.org/art-advisor-directory",
}

// DefaultBannedHosts are social networks and low-value directories.
var DefaultBannedHosts = []string{
	"artadvisors.org",
	"aboutus.com",
	"allbiz.com",
	"trustpilot.com",
	"mapquest.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"instagram.com",
}

// Policy decides whether a search result link is skipped before any fetch.
type Policy struct {
	hardExcludes []string
	bannedHosts  map[string]bool
	paths        *PathMatcher
}

// NewPolicy builds a Policy. Nil host or prefix lists fall back to the
// defaults; an empty non-nil list disables that check.
func NewPolicy(bannedHosts, hardExcludes, excludePaths []string) *Policy {
	if bannedHosts == nil {
		bannedHosts = DefaultBannedHosts
	}
	if hardExcludes == nil {
		hardExcludes = DefaultHardExcludes
	}

	hosts := make(map[string]bool, len(bannedHosts))
	for _, h := range bannedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts[h] = true
		}
	}

	return &Policy{
		hardExcludes: hardExcludes,
		bannedHosts:  hosts,
		paths:        NewPathMatcher(excludePaths),
	}
}

// DefaultPolicy returns the built-in exclusion policy.
func DefaultPolicy() *Policy {
	return NewPolicy(nil, nil, nil)
}

// IsExcluded reports whether the canonical form of rawURL starts with a
// hard-excluded prefix, sits on a banned host (exact match), or matches an
// excluded path pattern.
func (p *Policy) IsExcluded(rawURL string) bool {
	c := Canonicalize(rawURL)
	for _, prefix := range p.hardExcludes {
		if prefix != "" && strings.HasPrefix(c, prefix) {
			return true
		}
	}
	if p.bannedHosts[Hostname(c)] {
		return true
	}
	return p.paths.IsExcluded(c)
}
