package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/config"
	"github.com/sells-group/evidence-cli/internal/pipeline"
	"github.com/sells-group/evidence-cli/internal/scrape"
	"github.com/sells-group/evidence-cli/internal/store"
	"github.com/sells-group/evidence-cli/internal/urlnorm"
	"github.com/sells-group/evidence-cli/pkg/serper"
)

var (
	runLimit       int
	runConcurrency int
	runDryRun      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find evidence for pending leads",
	Long:  "Loads pending leads, searches for each under bounded concurrency, and upserts up to three evidence rows per lead. Per-lead failures are counted, not fatal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cfg)
		if err := cfg.Validate(config.ModeRun); err != nil {
			return err
		}

		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		_, err = runPipeline(ctx, cfg, st, cmd.OutOrStdout())
		return err
	},
}

func init() {
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max pending leads to load (overrides run.lead_limit)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "leads processed in parallel (overrides run.concurrency)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "search and classify without writing evidence")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags copies positive flag values over the loaded config.
func applyRunFlags(c *config.Config) {
	if runLimit > 0 {
		c.Run.LeadLimit = runLimit
	}
	if runConcurrency > 0 {
		c.Run.Concurrency = runConcurrency
	}
}

// runPipeline wires the search client, fetcher and processor around st and
// executes one run, printing the summary line to out.
func runPipeline(ctx context.Context, c *config.Config, st store.Store, out io.Writer) (pipeline.Summary, error) {
	if runDryRun {
		st = store.NewDryRun(st)
	}

	searchClient := serper.NewClient(c.Search.APIKey,
		serper.WithBaseURL(c.Search.BaseURL),
		serper.WithTimeout(time.Duration(c.Search.TimeoutSecs)*time.Second),
		serper.WithRateLimit(c.Search.RequestsPerSecond),
	)

	fetcher := scrape.NewLocalFetcher(
		scrape.WithUserAgent(c.Fetch.UserAgent),
		scrape.WithTimeout(time.Duration(c.Fetch.TimeoutSecs)*time.Second),
		scrape.WithMaxBodyBytes(c.Fetch.MaxBodyBytes),
	)

	policy := urlnorm.NewPolicy(c.Filter.BannedHosts, c.Filter.HardExcludes, c.Filter.ExcludePaths)

	proc := pipeline.NewProcessor(pipeline.SerperSearcher{Client: searchClient}, fetcher, st,
		pipeline.WithPolicy(policy),
		pipeline.WithMaxEvidence(c.Run.MaxEvidence),
	)

	sum, err := pipeline.NewRunner(st, proc, c.Run.Concurrency, c.Run.LeadLimit).Run(ctx)
	if err != nil {
		return sum, eris.Wrap(err, "run pipeline")
	}

	zap.L().Info("run finished",
		zap.String("run_id", sum.RunID),
		zap.Int("leads", sum.Leads),
		zap.Int64("inserted", sum.Inserted),
		zap.Int64("failures", sum.Failures),
		zap.Duration("duration", sum.Duration),
		zap.Bool("dry_run", runDryRun),
	)
	fmt.Fprintln(out, sum.String())
	return sum, nil
}
