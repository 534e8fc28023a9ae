package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Render writes the report in the given format.
func Render(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatTable, "":
		RenderTable(w, r)
		return nil
	case FormatJSON:
		return renderJSON(w, r)
	default:
		return fmt.Errorf("unsupported format %q (expected %s or %s)", format, FormatTable, FormatJSON)
	}
}

// RenderTable writes one row per year and one column per forge, with a
// totals footer.
func RenderTable(w io.Writer, r *Report) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	header := []string{"Year"}
	footer := []string{"Total"}

	for _, s := range r.Series {
		header = append(header, s.Forge)
		footer = append(footer, strconv.Itoa(s.Total()))
	}

	table.SetHeader(header)

	for i, year := range r.Years() {
		row := []string{strconv.Itoa(year)}

		for _, s := range r.Series {
			count := 0
			if i < len(s.Counts) {
				count = s.Counts[i].Count
			}

			row = append(row, strconv.Itoa(count))
		}

		table.Append(row)
	}

	table.SetFooter(footer)
	table.Render()
}

// RenderHosts writes host counts in the given format.
func RenderHosts(w io.Writer, hosts []HostCount, format string) error {
	switch format {
	case FormatTable, "":
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetHeader([]string{"Host", "Links"})

		for _, h := range hosts {
			table.Append([]string{h.Host, strconv.Itoa(h.Count)})
		}

		table.Render()

		return nil
	case FormatJSON:
		return renderJSON(w, hosts)
	default:
		return fmt.Errorf("unsupported format %q (expected %s or %s)", format, FormatTable, FormatJSON)
	}
}

func renderJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
