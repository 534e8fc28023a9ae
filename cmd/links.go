package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbmd/forgescan/internal/extractor"
	"github.com/pbmd/forgescan/internal/forges"
	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/internal/pipeline"
	"github.com/pbmd/forgescan/internal/table"
)

var (
	linksInput  string
	linksOutput string
	linksForge  string
)

// linksCmd represents the links command
var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Extract and normalize the forge link of every abstract",
	Long: `Links scans the Abstract column of an article table for the first link to
the forge, normalizes it and splits it into owner and repository. The
Link_raw, Link_clean, Owner and Repo columns are appended; every other
column is kept as is.

Examples:
  forgescan links --in articles.tsv -o links.tsv
  forgescan links --in articles.tsv --forge gitlab -o gitlab_links.tsv`,
	Args: cobra.NoArgs,
	RunE: runLinks,
}

func init() {
	rootCmd.AddCommand(linksCmd)

	linksCmd.Flags().StringVar(&linksInput, "in", "-", "article TSV file (- for stdin)")
	linksCmd.Flags().StringVarP(&linksOutput, "output", "o", "-", "output TSV file (- for stdout)")
	linksCmd.Flags().StringVar(&linksForge, "forge", "github", "forge to look for (name or domain)")
}

func runLinks(cmd *cobra.Command, args []string) error {
	forge, ok := forges.Default().Lookup(linksForge)
	if !ok {
		return fmt.Errorf("unknown forge %q (available: %v)", linksForge, forges.Default().Names())
	}

	tbl, err := table.ReadFile(linksInput)
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

	stats, err := pipeline.AnnotateLinks(tbl, extractor.NewLinkExtractor(forge.Domain), a.cfg.Workers)
	if err != nil {
		return err
	}

	if err := tbl.WriteFile(linksOutput); err != nil {
		return err
	}

	logger.Info("links extracted", "forge", forge.Domain, "with_link", stats.Found, "with_repo", stats.Complete)
	progress.Done(fmt.Sprintf("Processed %d abstracts", stats.Records))

	return nil
}
