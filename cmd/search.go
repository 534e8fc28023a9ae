package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbmd/forgescan/internal/forges"
	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/internal/table"
)

var (
	searchTerm     string
	searchForge    string
	searchFromYear int
	searchToYear   int
	searchOutput   string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List PMIDs of articles mentioning a forge, year by year",
	Long: `Search queries PubMed for every publication year of the range and writes
one row per PMID with the year it was first found in.

Years with more hits than a single ESearch page holds are split into
equal date windows.

Examples:
  forgescan search --from-year 2009 --to-year 2022 -o pmids.tsv
  forgescan search --forge gitlab --from-year 2015 --to-year 2020
  forgescan search --term 'github[tiab]' --from-year 2021 --to-year 2021`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchTerm, "term", "", "PubMed query term (default: the forge's term)")
	searchCmd.Flags().StringVar(&searchForge, "forge", "github", "forge whose query term is used")
	searchCmd.Flags().IntVar(&searchFromYear, "from-year", 2009, "first publication year")
	searchCmd.Flags().IntVar(&searchToYear, "to-year", time.Now().Year()-1, "last publication year")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "-", "output TSV file (- for stdout)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	term, err := resolveTerm(forges.Default(), searchTerm, searchForge)
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

	logger.Info("searching PubMed", "term", term, "from", searchFromYear, "to", searchToYear)

	hits, err := a.pubmed().SearchYears(ctx, term, searchFromYear, searchToYear)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := table.New(table.SearchColumns...)
	for _, hit := range hits {
		out.Append(table.Record{table.ColPMID: hit.PMID, table.ColYear: strconv.Itoa(hit.Year)})
	}

	if err := out.WriteFile(searchOutput); err != nil {
		return err
	}

	progress.Done(fmt.Sprintf("Found %d PMIDs", len(hits)))

	return nil
}

// resolveTerm returns term when set, otherwise the query term of the named
// forge.
func resolveTerm(catalog *forges.Catalog, term, forge string) (string, error) {
	if term != "" {
		return term, nil
	}

	f, ok := catalog.Lookup(forge)
	if !ok {
		return "", fmt.Errorf("unknown forge %q (available: %v)", forge, catalog.Names())
	}

	return f.Term, nil
}
