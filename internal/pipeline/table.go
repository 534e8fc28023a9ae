package pipeline

import (
	"context"
	"strconv"

	"github.com/pbmd/forgescan/internal/extractor"
	"github.com/pbmd/forgescan/internal/table"
)

// LinkStats counts the outcome of the links stage.
type LinkStats struct {
	Records  int
	Found    int
	Complete int
}

// AnnotateLinks fills the link columns of an article table from its
// Abstract column.
func AnnotateLinks(tbl *table.Table, ex *extractor.LinkExtractor, workers int) (LinkStats, error) {
	if err := tbl.Require(table.ColAbstract); err != nil {
		return LinkStats{}, err
	}

	tbl.EnsureColumns(table.LinkColumns...)

	records := Links(ex, tbl.Column(table.ColAbstract), workers)
	stats := LinkStats{Records: len(records)}

	for i, rec := range records {
		row := tbl.Records[i]
		row[table.ColLinkRaw] = rec.Raw
		row[table.ColLinkClean] = rec.Canonical
		row[table.ColOwner] = rec.Identity.Owner
		row[table.ColRepo] = rec.Identity.Repo

		if rec.Found() {
			stats.Found++
		}

		if rec.Identity.Complete() {
			stats.Complete++
		}
	}

	return stats, nil
}

// EnrichTable fills the enrichment columns of a link table. Values of rows
// that could not be enriched are left empty. The error combines per-row
// failures.
func EnrichTable(ctx context.Context, tbl *table.Table, e *Enricher) error {
	if err := tbl.Require(table.ColLinkClean); err != nil {
		return err
	}

	tbl.EnsureColumns(table.EnrichColumns...)

	tasks := TasksFor(tbl.Column(table.ColPMID), tbl.Column(table.ColLinkClean))

	results, err := e.Enrich(ctx, tbl.Len(), tasks)

	for i, res := range results {
		row := tbl.Records[i]

		if res.Info != nil {
			row[table.ColRepoCreatedAt] = res.Info.CreatedAt
			row[table.ColRepoUpdatedAt] = res.Info.UpdatedAt
			row[table.ColFork] = strconv.FormatBool(res.Info.Fork)
		}

		if res.Archive != nil {
			row[table.ColInSWH] = strconv.FormatBool(res.Archive.Archived)
			row[table.ColArchivedAt] = res.Archive.Date
		}
	}

	return err
}
