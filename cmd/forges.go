package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pbmd/forgescan/internal/forges"
)

var forgesJSON bool

// forgesCmd represents the forges command
var forgesCmd = &cobra.Command{
	Use:   "forges",
	Short: "List the source-code forges forgescan knows about",
	Long: `The forges command lists every forge of the built-in catalog: the domain
links are matched against, the PubMed term used to count articles and the
metadata API able to describe its repositories.

Examples:
  forgescan forges
  forgescan forges --json`,
	Args: cobra.NoArgs,
	RunE: runForges,
}

func init() {
	rootCmd.AddCommand(forgesCmd)

	forgesCmd.Flags().BoolVar(&forgesJSON, "json", false, "output as JSON")
}

func runForges(cmd *cobra.Command, args []string) error {
	catalog := forges.Default()

	if forgesJSON {
		return outputForgesJSON(cmd.OutOrStdout(), catalog)
	}

	outputForgesTable(cmd.OutOrStdout(), catalog)

	return nil
}

func outputForgesJSON(w io.Writer, catalog *forges.Catalog) error {
	type forgeInfo struct {
		Name    string   `json:"name"`
		Domain  string   `json:"domain"`
		Term    string   `json:"term"`
		API     string   `json:"api,omitempty"`
		Aliases []string `json:"aliases,omitempty"`
	}

	all := catalog.All()

	output := struct {
		Forges []forgeInfo `json:"forges"`
		Count  int         `json:"count"`
	}{
		Forges: make([]forgeInfo, 0, len(all)),
		Count:  len(all),
	}

	for _, f := range all {
		output.Forges = append(output.Forges, forgeInfo(f))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(output)
}

func outputForgesTable(w io.Writer, catalog *forges.Catalog) {
	all := catalog.All()

	fmt.Fprintf(w, "%s\n\n", styleTitle.Render(fmt.Sprintf("Known forges (%d)", len(all))))

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Forge", "Domain", "PubMed term", "Metadata", "Aliases"})

	for _, f := range all {
		api := f.API
		if api == "" {
			api = "-"
		}

		table.Append([]string{f.Name, f.Domain, f.Term, api, strings.Join(f.Aliases, ", ")})
	}

	table.Render()
}
