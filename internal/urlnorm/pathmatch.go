package urlnorm

import (
	"net/url"
	"path"
	"strings"
)

// PathMatcher filters URLs based on glob-style path patterns.
// A pattern like "/login/*" matches "/login" and every path below it.
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher from glob patterns (e.g. "/login/*", "/*.pdf").
// An empty pattern list matches nothing.
func NewPathMatcher(patterns []string) *PathMatcher {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			lowered = append(lowered, strings.ToLower(p))
		}
	}
	return &PathMatcher{patterns: lowered}
}

// Patterns returns the configured patterns.
func (m *PathMatcher) Patterns() []string {
	return m.patterns
}

// IsExcluded checks whether a URL path matches any exclude pattern.
// Unparseable URLs are never matched; the host check handles those.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	if len(m.patterns) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	urlPath := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchSegmented(pattern, urlPath) {
			return true
		}
	}
	return false
}

// matchSegmented performs glob matching where "/blog/*" matches both
// "/blog/post" and "/blog/deep/nested/path".
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}

	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}

	return false
}
