package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/resilience"
	"github.com/sells-group/evidence-cli/internal/store"
)

// Defaults for Runner.
const (
	DefaultConcurrency = 4
	DefaultLeadLimit   = 500
)

// LeadProcessor handles one lead and reports how many candidates it assembled.
type LeadProcessor interface {
	Process(ctx context.Context, lead model.Lead) (int, error)
}

// Summary is the outcome of one run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Leads    int           `json:"leads"`
	Inserted int64         `json:"inserted"`
	Failures int64         `json:"failures"`
	Duration time.Duration `json:"duration"`
}

// String renders the final run line.
func (s Summary) String() string {
	return fmt.Sprintf("Run complete: %d inserts, %d failures", s.Inserted, s.Failures)
}

// Runner fans pending leads out to a LeadProcessor under a concurrency limit.
type Runner struct {
	store       store.Store
	proc        LeadProcessor
	concurrency int
	leadLimit   int
}

// NewRunner creates a Runner. Non-positive limits fall back to the defaults.
func NewRunner(st store.Store, proc LeadProcessor, concurrency, leadLimit int) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if leadLimit <= 0 {
		leadLimit = DefaultLeadLimit
	}
	return &Runner{store: st, proc: proc, concurrency: concurrency, leadLimit: leadLimit}
}

// Run loads pending leads and processes them. A lead failure is logged and
// counted but never stops its siblings; only failing to load leads is fatal.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", sum.RunID))

	leads, err := r.store.PendingLeads(ctx, r.leadLimit)
	if err != nil {
		return sum, eris.Wrap(err, "pipeline: load pending leads")
	}
	sum.Leads = len(leads)

	if len(leads) == 0 {
		log.Info("pipeline: no pending leads")
		sum.Duration = time.Since(start)
		return sum, nil
	}

	log.Info("pipeline: processing leads",
		zap.Int("leads", len(leads)),
		zap.Int("concurrency", r.concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	var inserted, failures atomic.Int64

	for _, lead := range leads {
		lead := lead
		lead = lead.Normalized()
		g.Go(func() error {
			n, err := r.processLead(gctx, lead)
			if err != nil {
				failures.Add(1)
				log.Error("pipeline: lead failed",
					zap.String("lead_id", lead.LeadID),
					zap.String("evidence_id", lead.EvidenceID),
					zap.String("error_type", resilience.ErrorType(err)),
					zap.Error(err),
				)
				return nil // don't abort the run on individual failure
			}
			inserted.Add(int64(n))
			return nil
		})
	}

	_ = g.Wait()

	sum.Inserted = inserted.Load()
	sum.Failures = failures.Load()
	sum.Duration = time.Since(start)

	log.Info("pipeline: run complete",
		zap.Int("leads", sum.Leads),
		zap.Int64("inserted", sum.Inserted),
		zap.Int64("failures", sum.Failures),
		zap.Duration("duration", sum.Duration),
	)
	return sum, nil
}

// processLead isolates a panic to the lead that caused it.
func (r *Runner) processLead(ctx context.Context, lead model.Lead) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, eris.Errorf("pipeline: panic processing lead %s: %v", lead.LeadID, rec)
		}
	}()
	return r.proc.Process(ctx, lead)
}
