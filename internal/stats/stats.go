// Package stats counts PubMed articles mentioning each forge per
// publication year, and tallies the link hosts cited in abstracts.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/pbmd/forgescan/internal/forges"
	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/pkg/pubmed"
)

// Counter returns the number of PubMed records matching a query.
// *pubmed.Client implements it.
type Counter interface {
	Count(ctx context.Context, q pubmed.Query) (int, error)
}

// YearCount is the number of articles published in one year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Series is the yearly article count of one forge.
type Series struct {
	Forge  string      `json:"forge"`
	Term   string      `json:"term"`
	Counts []YearCount `json:"counts"`
}

// Total sums the yearly counts.
func (s Series) Total() int {
	total := 0
	for _, c := range s.Counts {
		total += c.Count
	}

	return total
}

// Report holds one Series per forge over the same year range.
type Report struct {
	Series   []Series `json:"series"`
	FromYear int      `json:"from_year"`
	ToYear   int      `json:"to_year"`
}

// Years lists the years covered by the report.
func (r *Report) Years() []int {
	years := make([]int, 0, r.ToYear-r.FromYear+1)
	for y := r.FromYear; y <= r.ToYear; y++ {
		years = append(years, y)
	}

	return years
}

// Collect counts, for every forge and year, the articles matching the
// forge's query term.
func Collect(ctx context.Context, counter Counter, selected []forges.Forge, from, to int) (*Report, error) {
	if from > to {
		return nil, fmt.Errorf("invalid year range %d..%d", from, to)
	}

	logger := logging.FromContext(ctx)
	report := &Report{FromYear: from, ToYear: to}

	for _, forge := range selected {
		series := Series{Forge: forge.Name, Term: forge.Term}

		for year := from; year <= to; year++ {
			n, err := counter.Count(ctx, pubmed.YearQuery(forge.Term, year))
			if err != nil {
				return nil, fmt.Errorf("failed to count %s articles for %d: %w", forge.Name, year, err)
			}

			logger.Debug("counted articles", "forge", forge.Name, "year", year, "count", n)
			series.Counts = append(series.Counts, YearCount{Year: year, Count: n})
		}

		report.Series = append(report.Series, series)
	}

	return report, nil
}

// Histogram counts occurrences of each year in [from, to]. Years outside the
// range are ignored; years without occurrences get a zero count.
func Histogram(years []int, from, to int) []YearCount {
	if from > to {
		return nil
	}

	counts := make([]YearCount, to-from+1)
	for i := range counts {
		counts[i].Year = from + i
	}

	for _, y := range years {
		if y >= from && y <= to {
			counts[y-from].Count++
		}
	}

	return counts
}

// HitYears extracts the years of search hits.
func HitYears(hits []pubmed.Hit) []int {
	years := make([]int, len(hits))
	for i, h := range hits {
		years[i] = h.Year
	}

	sort.Ints(years)

	return years
}
