package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbmd/forgescan/internal/extractor"
	"github.com/pbmd/forgescan/internal/forges"
	"github.com/pbmd/forgescan/internal/table"
)

var (
	parseForge  string
	parseFormat string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [text...]",
	Short: "Extract, normalize and decompose the forge link of a piece of text",
	Long: `Parse runs the link extractor on each argument, or on each line of
standard input when no argument is given, and prints the raw link, the
normalized link, the owner and the repository.

Examples:
  forgescan parse 'Code is at https://github.com/foo/bar.git).'
  forgescan parse --format json < abstracts.txt
  echo 'see gitlab.com/group/tool' | forgescan parse --forge gitlab --format tsv`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseForge, "forge", "github", "forge to look for (name or domain)")
	parseCmd.Flags().StringVar(&parseFormat, "format", "human", "output format (human, json, tsv)")
}

func runParse(cmd *cobra.Command, args []string) error {
	forge, ok := forges.Default().Lookup(parseForge)
	if !ok {
		return fmt.Errorf("unknown forge %q (available: %v)", parseForge, forges.Default().Names())
	}

	texts := args
	if len(texts) == 0 {
		lines, err := readLines(cmd.InOrStdin())
		if err != nil {
			return err
		}

		texts = lines
	}

	ex := extractor.NewLinkExtractor(forge.Domain)

	records := make([]extractor.LinkRecord, len(texts))
	for i, text := range texts {
		records[i] = ex.Process(extractor.NormalizeText(text))
	}

	return printRecords(cmd.OutOrStdout(), records, parseFormat)
}

func printRecords(w io.Writer, records []extractor.LinkRecord, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(records)
	case "tsv":
		out := table.New(table.LinkColumns...)
		for _, rec := range records {
			out.Append(table.Record{
				table.ColLinkRaw:   rec.Raw,
				table.ColLinkClean: rec.Canonical,
				table.ColOwner:     rec.Identity.Owner,
				table.ColRepo:      rec.Identity.Repo,
			})
		}

		return out.Write(w)
	case "human":
		for i, rec := range records {
			if i > 0 {
				fmt.Fprintln(w)
			}

			fmt.Fprintln(w, humanRecord(rec))
		}

		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func humanRecord(rec extractor.LinkRecord) string {
	if !rec.Found() {
		return styleWarning.Render(iconMissing + " no link found")
	}

	lines := []string{
		styleTitle.Render(iconFound + " " + rec.Identity.String()),
		field("raw", rec.Raw, styleDim),
		field("link", rec.Canonical, styleLink),
		field("owner", rec.Identity.Owner, styleValue),
		field("repo", rec.Identity.Repo, styleValue),
	}

	return strings.Join(lines, "\n")
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return lines, nil
}
