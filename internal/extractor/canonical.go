package extractor

import (
	"strings"
	"unicode/utf8"
)

// Canonicalize turns a raw link match into a canonical link: https scheme,
// no doubled separators after the scheme, no trailing punctuation, quote or
// bracket, no ".git" suffix, exactly one trailing "/".
//
// The cleanup pass is repeated until the link stops changing, so applying
// Canonicalize to its own output is a no-op. Every pass after the first
// either shrinks the link or leaves it as is, which bounds the loop.
//
// An empty input, or one that has nothing left after the scheme once
// cleaned, yields "".
func Canonicalize(raw string) string {
	link := raw
	for {
		next := canonicalPass(link)
		if next == link {
			return next
		}

		link = next
	}
}

// canonicalPass applies the cleanup steps once, in order. Later steps rely on
// the earlier ones having run.
func canonicalPass(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	link = stripTrailingClause(link)
	link = stripContaminationWords(link)
	link = ensureHTTPS(link)
	link = collapseSeparators(link)
	link = strings.ReplaceAll(link, `\`, "")
	link = dropBracketedTail(link)
	link = trimTrailingPunct(link)
	link = strings.TrimSuffix(link, vcsSuffix)

	if strings.Trim(link[len(httpsScheme):], "/") == "" {
		return ""
	}

	if !strings.HasSuffix(link, "/") {
		link += "/"
	}

	return link
}

// stripTrailingClause removes a ".word..." fragment at the end of the link
// path. Dots in the host never count, so "code.google.com/p/x" keeps its
// domain while "github.com/a/b.https" loses ".https".
func stripTrailingClause(link string) string {
	rest := link[schemeLen(link):]

	slash := strings.Index(rest, "/")
	if slash < 0 {
		return link
	}

	host := link[:len(link)-len(rest)+slash]
	path := link[len(host):]
	if !strings.Contains(path, ".") {
		return link
	}

	return host + trailingClauseRegex.ReplaceAllString(path, "")
}

// stripContaminationWords removes sentence-leading words glued to the link.
func stripContaminationWords(link string) string {
	for _, word := range contaminationWords {
		link = strings.TrimSuffix(link, word)
	}

	return link
}

// ensureHTTPS prefixes the https scheme, upgrading a plain http one. The
// existing scheme is matched case-insensitively and written in lowercase.
func ensureHTTPS(link string) string {
	return httpsScheme + link[schemeLen(link):]
}

// schemeLen returns the length of a leading "https://" or "http://", in any
// case, or 0 when the link has no scheme.
func schemeLen(link string) int {
	for _, scheme := range []string{httpsScheme, httpScheme} {
		if len(link) >= len(scheme) && strings.EqualFold(link[:len(scheme)], scheme) {
			return len(scheme)
		}
	}

	return 0
}

// collapseSeparators folds runs of "/" after the scheme into a single one.
func collapseSeparators(link string) string {
	body := link[len(httpsScheme):]
	for strings.Contains(body, "//") {
		body = strings.ReplaceAll(body, "//", "/")
	}

	return httpsScheme + body
}

// dropBracketedTail drops the last two runes when the second-to-last one is a
// closing bracket, separator or quote and the last one is trailing noise, as
// in "link)." or "link/.". A final path segment such as "/R" is kept. The
// scheme itself is never touched.
func dropBracketedTail(link string) string {
	body := link[len(httpsScheme):]
	if utf8.RuneCountInString(body) < 2 {
		return link
	}

	last, lastSize := utf8.DecodeLastRuneInString(link)
	if last == utf8.RuneError && lastSize <= 1 {
		return link
	}

	if !strings.ContainsRune(bracketedTailNoise, last) {
		return link
	}

	prev, prevSize := utf8.DecodeLastRuneInString(link[:len(link)-lastSize])
	if !strings.ContainsRune(bracketedTailRunes, prev) {
		return link
	}

	return link[:len(link)-lastSize-prevSize]
}

// trimTrailingPunct strips trailing dots, closing brackets, quotes and
// separators, never reaching into the scheme.
func trimTrailingPunct(link string) string {
	for len(link) > len(httpsScheme) {
		last, size := utf8.DecodeLastRuneInString(link)
		if !strings.ContainsRune(trailingPunctRunes, last) {
			break
		}

		link = link[:len(link)-size]
	}

	return link
}
