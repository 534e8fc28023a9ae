// Package pipeline runs the forgescan stages over whole tables: link
// extraction over abstracts, then metadata and archive enrichment of the
// extracted links.
package pipeline

import (
	"runtime"

	"github.com/sourcegraph/conc/iter"

	"github.com/pbmd/forgescan/internal/extractor"
)

// Links extracts one LinkRecord per abstract, in input order. Abstracts are
// NFKC-normalized before scanning. workers bounds the number of goroutines;
// zero or less uses GOMAXPROCS.
func Links(ex *extractor.LinkExtractor, abstracts []string, workers int) []extractor.LinkRecord {
	if ex == nil {
		ex = extractor.NewLinkExtractor(extractor.DefaultDomain)
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	mapper := iter.Mapper[string, extractor.LinkRecord]{MaxGoroutines: workers}

	return mapper.Map(abstracts, func(abstract *string) extractor.LinkRecord {
		return ex.Process(extractor.NormalizeText(*abstract))
	})
}
