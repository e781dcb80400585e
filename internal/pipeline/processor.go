// Package pipeline turns pending leads into persisted evidence rows.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/classify"
	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/pubdate"
	"github.com/sells-group/evidence-cli/internal/query"
	"github.com/sells-group/evidence-cli/internal/scrape"
	"github.com/sells-group/evidence-cli/internal/store"
	"github.com/sells-group/evidence-cli/internal/urlnorm"
)

// DefaultMaxEvidence caps the rows written per lead.
const DefaultMaxEvidence = 3

// Processor runs the per-lead search, fetch, classify and persist loop.
type Processor struct {
	search      Searcher
	fetch       scrape.Fetcher
	store       store.Store
	policy      *urlnorm.Policy
	maxEvidence int
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithPolicy replaces the default URL exclusion policy.
func WithPolicy(p *urlnorm.Policy) ProcessorOption {
	return func(pr *Processor) {
		if p != nil {
			pr.policy = p
		}
	}
}

// WithMaxEvidence overrides the per-lead row cap.
func WithMaxEvidence(n int) ProcessorOption {
	return func(pr *Processor) {
		if n > 0 {
			pr.maxEvidence = n
		}
	}
}

// NewProcessor creates a Processor.
func NewProcessor(search Searcher, fetch scrape.Fetcher, st store.Store, opts ...ProcessorOption) *Processor {
	p := &Processor{
		search:      search,
		fetch:       fetch,
		store:       st,
		policy:      urlnorm.DefaultPolicy(),
		maxEvidence: DefaultMaxEvidence,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process gathers up to maxEvidence evidence rows for lead and upserts them.
// It returns the number of candidates assembled. Search and fetch failures
// degrade to empty results; only a failed upsert or a cancelled context is
// returned as an error.
func (p *Processor) Process(ctx context.Context, lead model.Lead) (int, error) {
	log := zap.L().With(
		zap.String("lead_id", lead.LeadID),
		zap.String("evidence_id", lead.EvidenceID),
	)

	queries := query.Build(lead.Name, lead.Firm, lead.City)
	seen := make(map[string]struct{})
	var assembled []model.Evidence

queries:
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return len(assembled), eris.Wrap(err, "pipeline: process lead")
		}

		results, err := p.search.Search(ctx, q)
		if err != nil {
			log.Warn("pipeline: search failed, treating as no results", zap.String("query", q), zap.Error(err))
			continue
		}

		for _, r := range results {
			link := urlnorm.Canonicalize(r.Link)
			if _, dup := seen[link]; dup || p.policy.IsExcluded(link) {
				continue
			}
			seen[link] = struct{}{}

			ev, ok := p.candidate(ctx, lead, link, log)
			if !ok {
				continue
			}
			assembled = append(assembled, ev)
			if len(assembled) >= p.maxEvidence {
				break queries
			}
		}
	}

	persist := assembled
	if len(persist) > p.maxEvidence {
		persist = persist[:p.maxEvidence]
	}
	if len(persist) > 0 {
		if _, err := p.store.UpsertEvidence(ctx, persist); err != nil {
			return len(assembled), eris.Wrapf(err, "pipeline: persist evidence for lead %s", lead.LeadID)
		}
	}

	log.Info("pipeline: lead processed",
		zap.Int("queries", len(queries)),
		zap.Int("candidates", len(assembled)),
	)
	return len(assembled), nil
}

// candidate fetches and classifies one canonical link.
func (p *Processor) candidate(ctx context.Context, lead model.Lead, link string, log *zap.Logger) (model.Evidence, bool) {
	domain := urlnorm.Domain(link)

	page, err := p.fetch.FetchLight(ctx, link)
	if err != nil || page == nil {
		log.Debug("pipeline: fetch failed, classifying from url only", zap.String("url", link), zap.Error(err))
		page = &scrape.Page{URL: link}
	}

	kind, ok := classify.Classify(link, page.Title, page.SiteName)
	if !ok {
		log.Debug("pipeline: no classification", zap.String("url", link))
		return model.Evidence{}, false
	}

	ev := model.Evidence{
		LeadID:     lead.LeadID,
		EvidenceID: lead.EvidenceID,
		URL:        link,
		SourceType: kind,
		Label:      classify.SelectLabel(kind, page.Title, link),
		Notes:      classify.ShortNotes(kind, domain),
	}
	if page.HTML != "" {
		if res := pubdate.Extract(page.HTML); res.OK {
			ev.PublishedAt = res.TimePtr()
		} else {
			log.Debug("pipeline: no publication date", zap.String("url", link))
		}
	}
	return ev, true
}
