package extractor

import (
	"regexp"
)

// DefaultDomain is the forge domain scanned for when none is configured.
const DefaultDomain = "github.com"

// httpsScheme is the scheme every canonical link starts with.
const httpsScheme = "https://"

const httpScheme = "http://"

// linkStopSet lists the characters that terminate a link match: ASCII
// whitespace, Unicode space separators, zero-width space, and the punctuation
// that closes a URL inside running text.
const linkStopSet = `\s\p{Zs}\x{200B},)}\];:'+>•`

// trailingClauseRegex matches a dot-delimited fragment glued to the end of a
// link, such as a second URL or the next sentence.
var trailingClauseRegex = regexp.MustCompile(`\.[a-z][^.]*$`)

// contaminationWords are leading words of a following sentence that end up
// concatenated to a link. Matched case-sensitively at the end of the link.
var contaminationWords = []string{"https", "Supplementary", "Communicated", "Contact"}

// bracketedTailRunes trigger dropping the last two runes when found in
// second-to-last position ("link)." or "link/.").
const bracketedTailRunes = `)/]"`

// bracketedTailNoise are the last runes that may be dropped together with a
// bracketedTailRunes rune.
const bracketedTailNoise = `.,)]"/`

// trailingPunctRunes are stripped from the end of a link one by one.
const trailingPunctRunes = `.]"/`

// vcsSuffix is the version-control suffix removed from clone URLs.
const vcsSuffix = ".git"

// buildLinkRegex returns the case-insensitive pattern matching domain followed
// by any run of non-stop characters.
func buildLinkRegex(domain string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(domain) + `[^` + linkStopSet + `]*`)
}
