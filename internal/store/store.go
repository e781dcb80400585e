// Package store persists evidence rows and reads the leads that need them.
package store

import (
	"context"

	"github.com/sells-group/evidence-cli/internal/model"
)

// Default table names.
const (
	DefaultLeadsTable    = "supplements_needing_links"
	DefaultEvidenceTable = "supplements_rows"
)

// Tables names the two tables the store touches.
type Tables struct {
	Leads    string
	Evidence string
}

// withDefaults fills empty table names.
func (t Tables) withDefaults() Tables {
	if t.Leads == "" {
		t.Leads = DefaultLeadsTable
	}
	if t.Evidence == "" {
		t.Evidence = DefaultEvidenceTable
	}
	return t
}

// evidenceColumns is the column order used for every evidence write.
var evidenceColumns = []string{"lead_id", "evidence_id", "url", "source_type", "label", "published_at", "notes"}

// evidenceConflictKeys form the evidence table's unique constraint.
var evidenceConflictKeys = []string{"lead_id", "evidence_id", "url"}

// leadColumns is the column order used for lead reads and imports.
var leadColumns = []string{"lead_id", "evidence_id", "lead_name", "lead_firm", "lead_city"}

// Store defines the persistence interface for the evidence pipeline.
type Store interface {
	// PendingLeads returns up to limit leads that still need evidence.
	PendingLeads(ctx context.Context, limit int) ([]model.Lead, error)
	// UpsertEvidence writes rows keyed on (lead_id, evidence_id, url).
	// An empty batch is a no-op.
	UpsertEvidence(ctx context.Context, rows []model.Evidence) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// LeadImporter is implemented by stores that can load leads from outside sources.
type LeadImporter interface {
	ImportLeads(ctx context.Context, leads []model.Lead) (int64, error)
}

// evidenceRow flattens e in evidenceColumns order.
func evidenceRow(e model.Evidence) []any {
	var published any
	if e.PublishedAt != nil {
		published = e.PublishedAt.UTC()
	}
	return []any{e.LeadID, e.EvidenceID, e.URL, string(e.SourceType), e.Label, published, e.Notes}
}

// leadRow flattens l in leadColumns order; empty optional fields become NULL.
func leadRow(l model.Lead) []any {
	return []any{l.LeadID, l.EvidenceID, l.Name, nullable(l.Firm), nullable(l.City)}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
