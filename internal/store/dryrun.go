package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/model"
)

// DryRunStore reads from the wrapped store but only logs writes.
type DryRunStore struct {
	inner Store
}

// NewDryRun wraps inner so that no evidence or schema changes reach it.
func NewDryRun(inner Store) *DryRunStore {
	return &DryRunStore{inner: inner}
}

func (d *DryRunStore) PendingLeads(ctx context.Context, limit int) ([]model.Lead, error) {
	return d.inner.PendingLeads(ctx, limit)
}

func (d *DryRunStore) UpsertEvidence(_ context.Context, rows []model.Evidence) (int64, error) {
	for _, r := range rows {
		fields := []zap.Field{
			zap.String("lead_id", r.LeadID),
			zap.String("evidence_id", r.EvidenceID),
			zap.String("url", r.URL),
			zap.String("source_type", string(r.SourceType)),
			zap.String("label", r.Label),
			zap.String("notes", r.Notes),
		}
		if r.PublishedAt != nil {
			fields = append(fields, zap.Time("published_at", *r.PublishedAt))
		}
		zap.L().Info("store: dry run, skipping evidence write", fields...)
	}
	return int64(len(rows)), nil
}

func (d *DryRunStore) Migrate(_ context.Context) error {
	zap.L().Info("store: dry run, skipping migrate")
	return nil
}

func (d *DryRunStore) Close() error {
	return d.inner.Close()
}
