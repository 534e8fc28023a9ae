package pubmed

import (
	"context"
	"fmt"
	"time"
)

const dateLayout = "2006/01/02"

// Query is a search term optionally restricted to a publication-date window.
type Query struct {
	From time.Time
	To   time.Time
	Term string
}

// String renders the query in Entrez syntax.
func (q Query) String() string {
	if q.From.IsZero() || q.To.IsZero() {
		return q.Term
	}

	return fmt.Sprintf(`(%s) AND ("%s"[Date - Publication] : "%s"[Date - Publication])`,
		q.Term, q.From.Format(dateLayout), q.To.Format(dateLayout))
}

// YearQuery restricts term to the publications of one calendar year.
func YearQuery(term string, year int) Query {
	w := yearSpan(year)
	return Query{Term: term, From: w.From, To: w.To}
}

// Window is an inclusive range of days.
type Window struct {
	From time.Time
	To   time.Time
}

func yearSpan(year int) Window {
	return Window{
		From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// YearWindows splits a calendar year into n consecutive windows of equal
// length. The last window absorbs the remainder and always ends on
// December 31.
func YearWindows(year, n int) []Window {
	if n < 1 {
		n = 1
	}

	span := yearSpan(year)
	days := int(span.To.Sub(span.From).Hours()/24) + 1
	if n > days {
		n = days
	}

	size := days / n
	windows := make([]Window, 0, n)
	start := span.From

	for i := 0; i < n; i++ {
		end := start.AddDate(0, 0, size-1)
		if i == n-1 {
			end = span.To
		}

		windows = append(windows, Window{From: start, To: end})
		start = end.AddDate(0, 0, 1)
	}

	return windows
}

// BatchCount is the number of date windows needed so that each window
// holds at most MaxRetMax records, assuming an even spread over the year.
func BatchCount(count int) int {
	return count/MaxRetMax + 1
}

// Hit is a PMID together with the year it was searched under.
type Hit struct {
	PMID string
	Year int
}

// SearchYear lists every PMID matching term in the given publication year.
// When the year holds more records than one ESearch page, the year is split
// into BatchCount windows searched one by one. Duplicates keep their first
// occurrence.
func (c *Client) SearchYear(ctx context.Context, term string, year int) ([]string, error) {
	first, err := c.Search(ctx, YearQuery(term, year))
	if err != nil {
		return nil, err
	}

	if !first.Truncated() {
		return dedupe(first.IDs), nil
	}

	var ids []string

	for _, w := range YearWindows(year, BatchCount(first.Count)) {
		res, err := c.Search(ctx, Query{Term: term, From: w.From, To: w.To})
		if err != nil {
			return nil, fmt.Errorf("year %d window %s..%s: %w", year, w.From.Format(dateLayout), w.To.Format(dateLayout), err)
		}

		ids = append(ids, res.IDs...)
	}

	return dedupe(ids), nil
}

// SearchYears runs SearchYear for every year in [from, to]. A PMID found
// under several years is kept under the first one.
func (c *Client) SearchYears(ctx context.Context, term string, from, to int) ([]Hit, error) {
	if from > to {
		return nil, fmt.Errorf("invalid year range %d..%d", from, to)
	}

	seen := make(map[string]bool)

	var hits []Hit

	for year := from; year <= to; year++ {
		ids, err := c.SearchYear(ctx, term, year)
		if err != nil {
			return hits, err
		}

		for _, id := range ids {
			if seen[id] {
				continue
			}

			seen[id] = true

			hits = append(hits, Hit{PMID: id, Year: year})
		}
	}

	return hits, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}

		seen[id] = true

		out = append(out, id)
	}

	return out
}
