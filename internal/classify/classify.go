// Package classify maps evidence URLs and weak page signals to an evidence kind.
package classify

import (
	"regexp"
	"strings"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/urlnorm"
)

// Signals are the inputs a rule may inspect.
type Signals struct {
	URL      string
	Title    string
	SiteName string

	// Domain is the registrable domain of URL. Lower is the whole URL
	// lowercased, so host and query words count as well as the path.
	Domain string
	Lower  string
}

// NewSignals derives the domain and the lowercased URL from rawURL.
func NewSignals(rawURL, title, siteName string) Signals {
	s := Signals{
		URL:      rawURL,
		Title:    title,
		SiteName: siteName,
		Domain:   urlnorm.Domain(rawURL),
		Lower:    strings.ToLower(rawURL),
	}
	if s.Domain == "" {
		s.Domain = urlnorm.Hostname(rawURL)
	}
	return s
}

// Rule is one entry of the ordered classification table.
type Rule struct {
	Name  string
	Kind  model.Kind
	Match func(Signals) bool
}

var (
	institutionDomainRe = regexp.MustCompile(`museum|gallery|foundation|university|collection`)
	projectURLRe       = regexp.MustCompile(`exhibition|project|artist|profile`)
	publicationDomainRe = regexp.MustCompile(`nytimes|wsj|artnews|artforum|ft\.com|newyorker|theguardian|bloomberg|forbes`)
	pressURLRe         = regexp.MustCompile(`press|newsroom|press-release|media`)
	imagesURLRe        = regexp.MustCompile(`image|photo|media|collection/images`)
	profileURLRe       = regexp.MustCompile(`about|team|people|advis`)
	officialTextRe      = regexp.MustCompile(`(?i)official|homepage`)
	orgEduDomainRe      = regexp.MustCompile(`\.org$|\.edu$`)
)

// rules is evaluated top to bottom; the first match wins.
var rules = []Rule{
	{
		Name: "museum-project",
		Kind: model.KindProject,
		Match: func(s Signals) bool {
			return institutionDomainRe.MatchString(s.Domain) && projectURLRe.MatchString(s.Lower)
		},
	},
	{
		Name:  "publication",
		Kind:  model.KindArticle,
		Match: func(s Signals) bool { return publicationDomainRe.MatchString(s.Domain) },
	},
	{
		Name:  "press",
		Kind:  model.KindPress,
		Match: func(s Signals) bool { return pressURLRe.MatchString(s.Lower) },
	},
	{
		Name:  "images",
		Kind:  model.KindImages,
		Match: func(s Signals) bool { return imagesURLRe.MatchString(s.Lower) },
	},
	{
		Name: "official",
		Kind: model.KindWebsite,
		Match: func(s Signals) bool {
			return profileURLRe.MatchString(s.Lower) || officialTextRe.MatchString(s.Title+" "+s.SiteName)
		},
	},
	{
		Name:  "org-edu",
		Kind:  model.KindProject,
		Match: func(s Signals) bool { return orgEduDomainRe.MatchString(s.Domain) },
	},
	{
		Name:  "default",
		Kind:  model.KindArticle,
		Match: func(Signals) bool { return true },
	},
}

// Rules returns a copy of the classification table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Match returns the first rule matching the given signals.
func Match(s Signals) (Rule, bool) {
	for _, r := range rules {
		if r.Match(s) {
			return r, true
		}
	}
	return Rule{}, false
}

// Classify returns the evidence kind for a URL and its page signals.
// The bool is false when no rule matched and the result must be skipped.
func Classify(rawURL, title, siteName string) (model.Kind, bool) {
	r, ok := Match(NewSignals(rawURL, title, siteName))
	if !ok {
		return "", false
	}
	return r.Kind, true
}
