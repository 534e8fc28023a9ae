// Package extractor locates forge links in article abstracts, canonicalizes
// them and decomposes them into an owner/repository pair.
//
// Everything in this package is pure string processing: no I/O, no shared
// mutable state. Extractors may be used from any number of goroutines.
package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LinkExtractor finds the first link to a given forge domain in free text.
type LinkExtractor struct {
	linkRegex *regexp.Regexp
	domain    string
}

// NewLinkExtractor creates an extractor for the given forge domain
// (e.g. "github.com"). An empty domain selects DefaultDomain.
func NewLinkExtractor(domain string) *LinkExtractor {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		domain = DefaultDomain
	}

	return &LinkExtractor{
		linkRegex: buildLinkRegex(domain),
		domain:    domain,
	}
}

// Domain returns the forge domain this extractor scans for.
func (e *LinkExtractor) Domain() string {
	return e.domain
}

// Extract returns the first substring of text that starts with the forge
// domain and runs up to the next stop character. Matching is
// case-insensitive. Later links in the same text are ignored. An empty
// string is returned when text is empty or holds no link.
func (e *LinkExtractor) Extract(text string) string {
	if text == "" {
		return ""
	}

	return e.linkRegex.FindString(text)
}

// Process runs extraction, canonicalization and decomposition on one abstract.
func (e *LinkExtractor) Process(abstract string) LinkRecord {
	raw := e.Extract(abstract)
	canonical := Canonicalize(raw)

	return LinkRecord{
		Raw:       raw,
		Canonical: canonical,
		Identity:  Decompose(canonical),
	}
}

var defaultExtractor = NewLinkExtractor(DefaultDomain)

// ExtractLink returns the first github.com link found in abstract, or "".
func ExtractLink(abstract string) string {
	return defaultExtractor.Extract(abstract)
}

// Process runs the default github.com extractor over abstract.
func Process(abstract string) LinkRecord {
	return defaultExtractor.Process(abstract)
}

// NormalizeText folds compatibility characters (full-width letters, ligatures,
// non-breaking spaces) to their canonical form so that abstracts harvested
// with mixed encodings still expose their links to the extractor.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	return norm.NFKC.String(text)
}
