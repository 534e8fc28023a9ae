package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/pbmd/forgescan/internal/forges"
	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/internal/pipeline"
	"github.com/pbmd/forgescan/internal/table"
)

var (
	enrichInput   string
	enrichOutput  string
	enrichNoSWH   bool
	enrichMaxWait time.Duration
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add repository metadata and Software Heritage status to extracted links",
	Long: `Enrich looks up every row whose Link_clean names both an owner and a
repository. The forge API supplies creation date, last update and fork
status; Software Heritage tells whether the repository has been archived
and when it was last visited.

Rows that cannot be looked up keep empty values. When a forge reports an
exhausted quota, the lookup waits for the quota to reset (at most
--max-wait) and is retried once.

Examples:
  forgescan enrich --in links.tsv -o enriched.tsv
  forgescan enrich --in links.tsv --workers 8 --no-swh
  FORGESCAN_GITHUB_TOKEN=ghp_... forgescan enrich --in links.tsv`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().StringVar(&enrichInput, "in", "-", "link TSV file (- for stdin)")
	enrichCmd.Flags().StringVarP(&enrichOutput, "output", "o", "-", "output TSV file (- for stdout)")
	enrichCmd.Flags().BoolVar(&enrichNoSWH, "no-swh", false, "skip the Software Heritage lookup")
	enrichCmd.Flags().DurationVar(&enrichMaxWait, "max-wait", pipeline.DefaultMaxRateLimitWait, "longest wait for a forge rate limit to reset")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	tbl, err := table.ReadFile(enrichInput)
	if err != nil {
		return err
	}

	ctx, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := logging.FromContext(ctx)
	progress := logging.NewProgress(logger)

	registry, err := a.metadataRegistry(forges.Default())
	if err != nil {
		return err
	}

	options := []pipeline.EnricherOption{
		pipeline.WithWorkers(a.cfg.Workers),
		pipeline.WithMaxRateLimitWait(enrichMaxWait),
		pipeline.WithProgress(func(s pipeline.ProgressSummary) {
			logger.Debug(s.String())
		}),
	}

	if !enrichNoSWH {
		options = append(options, pipeline.WithArchive(a.archive()))
	}

	logger.Info("enriching links", "rows", tbl.Len(), "forges", registry.List(), "swh", !enrichNoSWH)

	enrichErr := pipeline.EnrichTable(ctx, tbl, pipeline.NewEnricher(registry, options...))
	if enrichErr != nil && !pipeline.IsRecordError(enrichErr) {
		return fmt.Errorf("enrichment interrupted: %w", enrichErr)
	}

	if err := tbl.WriteFile(enrichOutput); err != nil {
		return err
	}

	if failed := len(multierr.Errors(enrichErr)); failed > 0 {
		logger.Warn("some rows could not be enriched", "failed", failed)
	}

	progress.Done(fmt.Sprintf("Enriched %d rows", tbl.Len()))

	return nil
}
