// Package table reads and writes the tab-separated files passed between
// forgescan stages.
//
// Every file starts with a header row. Stages look columns up by name and
// append their own; columns a stage does not know about are carried through
// unchanged.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Search output columns.
const (
	ColPMID = "PMID"
	ColYear = "Year"
)

// Article columns.
const (
	ColPubDate  = "PubDate"
	ColDOI      = "DOI"
	ColJournal  = "Journal"
	ColTitle    = "Title"
	ColAbstract = "Abstract"
)

// Link columns.
const (
	ColLinkRaw   = "Link_raw"
	ColLinkClean = "Link_clean"
	ColOwner     = "Owner"
	ColRepo      = "Repo"
)

// Enrichment columns.
const (
	ColRepoCreatedAt = "Repo_created_at"
	ColRepoUpdatedAt = "Repo_updated_at"
	ColFork          = "Fork"
	ColInSWH         = "In_SWH"
	ColArchivedAt    = "Archived_at"
)

var (
	// SearchColumns are written by the search stage.
	SearchColumns = []string{ColPMID, ColYear}

	// ArticleColumns are written by the fetch stage.
	ArticleColumns = []string{ColPMID, ColPubDate, ColDOI, ColJournal, ColTitle, ColAbstract}

	// LinkColumns are appended by the links stage.
	LinkColumns = []string{ColLinkRaw, ColLinkClean, ColOwner, ColRepo}

	// EnrichColumns are appended by the enrich stage.
	EnrichColumns = []string{ColRepoCreatedAt, ColRepoUpdatedAt, ColFork, ColInSWH, ColArchivedAt}
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing column")

// Record is one data row keyed by column name.
type Record map[string]string

// Table is a header plus its rows.
type Table struct {
	Columns []string
	Records []Record
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Read parses a tab-separated document. Short rows are padded with empty
// values; rows longer than the header are rejected.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: no header row")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}

		seen[name] = true
		columns[i] = name
	}

	t := &Table{Columns: columns}

	for line := 2; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		if len(fields) > len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", line, len(fields), len(columns))
		}

		rec := make(Record, len(columns))
		for i, name := range columns {
			if i < len(fields) {
				rec[name] = fields[i]
			} else {
				rec[name] = ""
			}
		}

		t.Records = append(t.Records, rec)
	}

	return t, nil
}

// ReadFile reads the table at path; "-" reads standard input.
func ReadFile(path string) (*Table, error) {
	if path == "-" {
		return Read(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// Write emits the header and every record in column order.
func (t *Table) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(t.Columns))
	for _, rec := range t.Records {
		for i, name := range t.Columns {
			row[i] = rec[name]
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// WriteFile writes the table to path; "-" writes standard output.
func (t *Table) WriteFile(path string) error {
	if path == "-" {
		return t.Write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	if err := t.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	return f.Close()
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}

	return false
}

// Require returns ErrMissingColumn naming the first absent column.
func (t *Table) Require(names ...string) error {
	for _, name := range names {
		if !t.Has(name) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	return nil
}

// EnsureColumns appends the columns that are not already present. Existing
// records get empty values for them.
func (t *Table) EnsureColumns(names ...string) {
	for _, name := range names {
		if t.Has(name) {
			continue
		}

		t.Columns = append(t.Columns, name)

		for _, rec := range t.Records {
			if _, ok := rec[name]; !ok {
				rec[name] = ""
			}
		}
	}
}

// Append adds a record. Keys outside Columns are dropped on write.
func (t *Table) Append(rec Record) {
	t.Records = append(t.Records, rec)
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.Records))
	for i, rec := range t.Records {
		values[i] = rec[name]
	}

	return values
}
