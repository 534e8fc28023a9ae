package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/internal/table"
	"github.com/pbmd/forgescan/pkg/pubmed"
)

var (
	fetchPMIDs     string
	fetchOutput    string
	fetchBatchSize int
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download article metadata and abstracts for a list of PMIDs",
	Long: `Fetch reads the PMID column of a TSV file (such as the output of
"forgescan search") and writes one row per article with its publication
date, DOI, journal, title and abstract.

Examples:
  forgescan fetch --pmids pmids.tsv -o articles.tsv
  forgescan fetch --pmids pmids.tsv --batch-size 50`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchPMIDs, "pmids", "-", "TSV file with a PMID column (- for stdin)")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "-", "output TSV file (- for stdout)")
	fetchCmd.Flags().IntVar(&fetchBatchSize, "batch-size", 200, "PMIDs per EFetch request")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetchBatchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive")
	}

	in, err := table.ReadFile(fetchPMIDs)
	if err != nil {
		return err
	}

	if err := in.Require(table.ColPMID); err != nil {
		return err
	}

	ctx, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := logging.FromContext(ctx)
	progress := logging.NewProgress(logger)
	client := a.pubmed()

	pmids := uniqueNonEmpty(in.Column(table.ColPMID))
	out := table.New(table.ArticleColumns...)

	for _, batch := range chunk(pmids, fetchBatchSize) {
		articles, err := client.FetchBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		byPMID := make(map[string]pubmed.Article, len(articles))
		for _, article := range articles {
			byPMID[article.PMID] = article
		}

		for _, pmid := range batch {
			article, ok := byPMID[pmid]
			if !ok {
				logger.Warn("no record returned", "pmid", pmid)
				continue
			}

			if missing := article.Missing(); len(missing) > 0 {
				logger.Debug("incomplete record", "pmid", pmid, "missing", strings.Join(missing, ", "))
			}

			out.Append(articleRecord(article))
		}

		logger.Debug("fetched batch", "articles", out.Len(), "of", len(pmids))
	}

	if err := out.WriteFile(fetchOutput); err != nil {
		return err
	}

	progress.Done(fmt.Sprintf("Fetched %d of %d articles", out.Len(), len(pmids)))

	return nil
}

func articleRecord(a pubmed.Article) table.Record {
	return table.Record{
		table.ColPMID:     a.PMID,
		table.ColPubDate:  a.PubDate,
		table.ColDOI:      a.DOI,
		table.ColJournal:  a.Journal,
		table.ColTitle:    a.Title,
		table.ColAbstract: a.Abstract,
	}
}

// uniqueNonEmpty trims values and drops blanks and repeats, keeping the
// first occurrence.
func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}

		seen[v] = true
		out = append(out, v)
	}

	return out
}

// chunk splits values into consecutive slices of at most size elements.
func chunk(values []string, size int) [][]string {
	var chunks [][]string

	for size < len(values) {
		chunks = append(chunks, values[:size:size])
		values = values[size:]
	}

	if len(values) > 0 {
		chunks = append(chunks, values)
	}

	return chunks
}
