// Package query builds the ordered search queries issued for a lead.
package query

import (
	"strings"
)

// phraseSuffixes are appended to the quoted name/firm phrase, in order.
var phraseSuffixes = []string{
	"art advisory",
	"site:.org",
	"museum profile",
	"interview",
	"collection",
}

// institutionsClause is appended to the bare name.
const institutionsClause = "(museum OR collection OR foundation OR gallery OR exhibition)"

// Build returns the deduplicated search queries for a lead. Name and firm are
// quoted and joined into a base phrase; city, when present, adds one more
// query. Whitespace is collapsed and empty or repeated queries are dropped,
// keeping first-seen order.
func Build(name, firm, city string) []string {
	n := strings.TrimSpace(name)
	f := strings.TrimSpace(firm)
	c := strings.TrimSpace(city)

	var parts []string
	if n != "" {
		parts = append(parts, `"`+n+`"`)
	}
	if f != "" {
		parts = append(parts, `"`+f+`"`)
	}
	base := strings.Join(parts, " ")

	candidates := make([]string, 0, len(phraseSuffixes)+2)
	for _, s := range phraseSuffixes {
		candidates = append(candidates, base+" "+s)
	}
	candidates = append(candidates, n+" "+institutionsClause)
	if c != "" {
		candidates = append(candidates, base+" "+c)
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, q := range candidates {
		q = collapseSpace(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
