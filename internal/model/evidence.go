package model

import "time"

// Kind is the closed classification category of an evidence URL.
type Kind string

const (
	KindWebsite Kind = "website"
	KindPress   Kind = "press"
	KindProject Kind = "project"
	KindImages  Kind = "images"
	KindArticle Kind = "article"
)

// AllKinds returns all defined evidence kinds.
func AllKinds() []Kind {
	return []Kind{
		KindWebsite,
		KindPress,
		KindProject,
		KindImages,
		KindArticle,
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// MaxNotesLen is the longest notes string stored on an evidence row.
const MaxNotesLen = 140

// Evidence is one persisted (lead, url) association with classification metadata.
// At most one row exists per (LeadID, EvidenceID, URL).
type Evidence struct {
	LeadID      string     `json:"lead_id"`
	EvidenceID  string     `json:"evidence_id"`
	URL         string     `json:"url"`
	SourceType  Kind       `json:"source_type"`
	Label       string     `json:"label"`
	PublishedAt *time.Time `json:"published_at"`
	Notes       string     `json:"notes"`
}

// SearchResult is a single organic result returned by the search provider.
// Only Link survives into an Evidence row.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
