package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbmd/forgescan/internal/forges"
	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/internal/stats"
	"github.com/pbmd/forgescan/internal/table"
)

var (
	statsFromYear int
	statsToYear   int
	statsForges   []string
	statsFormat   string
	hostsInput    string
	hostsTop      int
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count PubMed articles mentioning each forge, per publication year",
	Long: `Stats counts, for every forge and every publication year of the range, the
PubMed articles matching the forge's query term. Only hit counts are
requested, so the command is cheap even over long ranges.

Examples:
  forgescan stats --from-year 2009 --to-year 2022
  forgescan stats --forge github --forge gitlab --format json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

// statsHostsCmd represents the stats hosts command
var statsHostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Rank the hosts of all links cited in abstracts",
	Long: `Hosts scans every abstract of an article table for links of any kind and
counts them per host. Hosts are lowercased and a leading "www." is merged
into the bare host.

Examples:
  forgescan stats hosts --in articles.tsv
  forgescan stats hosts --in articles.tsv --top 20 --format json`,
	Args: cobra.NoArgs,
	RunE: runStatsHosts,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsHostsCmd)

	statsCmd.PersistentFlags().StringVar(&statsFormat, "format", stats.FormatTable, "output format (table, json)")

	statsCmd.Flags().IntVar(&statsFromYear, "from-year", 2009, "first publication year")
	statsCmd.Flags().IntVar(&statsToYear, "to-year", time.Now().Year()-1, "last publication year")
	statsCmd.Flags().StringSliceVar(&statsForges, "forge", nil, "forges to count (default: all)")

	statsHostsCmd.Flags().StringVar(&hostsInput, "in", "-", "article TSV file (- for stdin)")
	statsHostsCmd.Flags().IntVar(&hostsTop, "top", 0, "show only the N most cited hosts (0 for all)")
}

func runStats(cmd *cobra.Command, args []string) error {
	selected, err := forges.Default().Select(statsForges)
	if err != nil {
		return err
	}

	ctx, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	progress := logging.NewProgress(logging.FromContext(ctx))

	report, err := stats.Collect(ctx, a.pubmed(), selected, statsFromYear, statsToYear)
	if err != nil {
		return err
	}

	if err := stats.Render(cmd.OutOrStdout(), report, statsFormat); err != nil {
		return err
	}

	progress.Done(fmt.Sprintf("Counted %d forges over %d years", len(report.Series), len(report.Years())))

	return nil
}

func runStatsHosts(cmd *cobra.Command, args []string) error {
	tbl, err := table.ReadFile(hostsInput)
	if err != nil {
		return err
	}

	if err := tbl.Require(table.ColAbstract); err != nil {
		return err
	}

	hosts := stats.CountHosts(tbl.Column(table.ColAbstract))
	if hostsTop > 0 && len(hosts) > hostsTop {
		hosts = hosts[:hostsTop]
	}

	return stats.RenderHosts(cmd.OutOrStdout(), hosts, statsFormat)
}
