package cmd

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/pbmd/forgescan/internal/cache"
	"github.com/pbmd/forgescan/internal/config"
	"github.com/pbmd/forgescan/internal/extractor"
	"github.com/pbmd/forgescan/internal/forges"
	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/internal/table"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("forgescan %s: %v", strings.Join(args, " "), err)
	}

	return out.String()
}

func TestResolveTerm(t *testing.T) {
	catalog := forges.Default()

	tests := []struct {
		name    string
		term    string
		forge   string
		want    string
		wantErr bool
	}{
		{name: "explicit term wins", term: "foo[All Fields]", forge: "github", want: "foo[All Fields]"},
		{name: "forge by name", forge: "github", want: "github.com[Title/Abstract]"},
		{name: "forge by domain", forge: "gitlab.com", want: "https://gitlab[Title/Abstract]"},
		{name: "unknown forge", forge: "codeberg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTerm(catalog, tt.term, tt.forge)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveTerm() error = %v, wantErr %v", err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("resolveTerm() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		size   int
		want   [][]string
	}{
		{name: "empty", values: nil, size: 2, want: nil},
		{name: "exact", values: []string{"1", "2", "3", "4"}, size: 2, want: [][]string{{"1", "2"}, {"3", "4"}}},
		{name: "remainder", values: []string{"1", "2", "3"}, size: 2, want: [][]string{{"1", "2"}, {"3"}}},
		{name: "single chunk", values: []string{"1", "2"}, size: 200, want: [][]string{{"1", "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chunk(tt.values, tt.size); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chunk() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunkDoesNotAlias(t *testing.T) {
	values := []string{"1", "2", "3"}
	chunks := chunk(values, 2)

	chunks[0] = append(chunks[0], "x")

	if values[2] != "3" {
		t.Errorf("appending to a chunk overwrote the input: %v", values)
	}
}

func TestUniqueNonEmpty(t *testing.T) {
	got := uniqueNonEmpty([]string{" 12 ", "", "34", "12", "  ", "56"})
	want := []string{"12", "34", "56"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("uniqueNonEmpty() = %v, want %v", got, want)
	}
}

func TestMetadataRegistry(t *testing.T) {
	a := &app{
		cache:  cache.NewNullCache(),
		logger: logging.New(&bytes.Buffer{}, logging.Level(false, true)),
	}

	registry, err := a.metadataRegistry(forges.Default())
	if err != nil {
		t.Fatalf("metadataRegistry() error = %v", err)
	}

	if got := registry.List(); !reflect.DeepEqual(got, []string{"github.com", "gitlab.com"}) {
		t.Errorf("List() = %v", got)
	}

	for _, host := range []string{"www.github.com", "GitLab.com"} {
		if !registry.Has(host) {
			t.Errorf("Has(%q) = false", host)
		}
	}

	if registry.Has("bitbucket.org") {
		t.Error("bitbucket has no metadata API but was registered")
	}
}

func TestMetadataRegistryRejectsMismatchedAPI(t *testing.T) {
	catalog, err := forges.Parse([]byte(`
forges:
  - name: mirror
    domain: git.example.org
    term: mirror
    api: github
`))
	if err != nil {
		t.Fatal(err)
	}

	a := &app{cache: cache.NewNullCache(), cfg: config.Config{}}
	if _, err := a.metadataRegistry(catalog); err == nil {
		t.Error("expected an error for an api serving another host")
	}
}

func TestPrintRecordsTSV(t *testing.T) {
	records := []extractor.LinkRecord{
		extractor.Process("Code: https://github.com/foo/bar.git)."),
		{},
	}

	var buf bytes.Buffer
	if err := printRecords(&buf, records, "tsv"); err != nil {
		t.Fatalf("printRecords() error = %v", err)
	}

	tbl, err := table.Read(&buf)
	if err != nil {
		t.Fatalf("table.Read() error = %v", err)
	}

	if !reflect.DeepEqual(tbl.Columns, table.LinkColumns) {
		t.Errorf("columns = %v", tbl.Columns)
	}

	if tbl.Len() != 2 {
		t.Fatalf("got %d rows, want 2", tbl.Len())
	}

	row := tbl.Records[0]
	if row[table.ColLinkClean] != "https://github.com/foo/bar/" || row[table.ColOwner] != "foo" || row[table.ColRepo] != "bar" {
		t.Errorf("row = %v", row)
	}

	if err := printRecords(&buf, records, "xml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestParseCommand(t *testing.T) {
	t.Run("arguments as json", func(t *testing.T) {
		out := execute(t, "", "parse", "--forge", "github", "--format", "json",
			"see https://github.com/foo/bar.git", "nothing here")

		var records []extractor.LinkRecord
		if err := json.Unmarshal([]byte(out), &records); err != nil {
			t.Fatalf("invalid json %q: %v", out, err)
		}

		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}

		if records[0].Canonical != "https://github.com/foo/bar/" || records[0].Identity.Repo != "bar" {
			t.Errorf("record 0 = %+v", records[0])
		}

		if records[1].Found() {
			t.Errorf("record 1 = %+v, want empty", records[1])
		}
	})

	t.Run("stdin lines in human format", func(t *testing.T) {
		out := execute(t, "tool at gitlab.com/group/tool\n\nno link\n", "parse", "--forge", "gitlab", "--format", "human")

		for _, want := range []string{"group/tool", "https://gitlab.com/group/tool/", "no link found"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestForgesCommand(t *testing.T) {
	out := execute(t, "", "forges", "--json")

	var listing struct {
		Forges []struct {
			Name   string `json:"name"`
			Domain string `json:"domain"`
			API    string `json:"api"`
		} `json:"forges"`
		Count int `json:"count"`
	}

	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}

	if listing.Count != len(forges.Default().All()) || listing.Count != len(listing.Forges) {
		t.Errorf("count = %d, forges = %d", listing.Count, len(listing.Forges))
	}

	if listing.Forges[0].Name != "github" || listing.Forges[0].API != "github" {
		t.Errorf("first forge = %+v", listing.Forges[0])
	}
}
