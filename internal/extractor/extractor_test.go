package extractor

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

func TestNewLinkExtractor(t *testing.T) {
	testCases := []struct {
		domain   string
		expected string
	}{
		{domain: "", expected: DefaultDomain},
		{domain: "  GitLab.com ", expected: "gitlab.com"},
		{domain: "bitbucket.org", expected: "bitbucket.org"},
	}

	for _, tc := range testCases {
		e := NewLinkExtractor(tc.domain)
		if e == nil {
			t.Fatal("NewLinkExtractor returned nil")
		}

		if e.Domain() != tc.expected {
			t.Errorf("NewLinkExtractor(%q).Domain() = %q, want %q", tc.domain, e.Domain(), tc.expected)
		}
	}
}

func TestExtractLink(t *testing.T) {
	testCases := []struct {
		name     string
		abstract string
		expected string
	}{
		{
			name:     "empty abstract",
			abstract: "",
			expected: "",
		},
		{
			name:     "no forge mention",
			abstract: "We sequenced 42 samples and deposited them in GEO under GSE123456.",
			expected: "",
		},
		{
			name:     "trailing sentence dot kept for the canonicalizer",
			abstract: "See code at github.com/foo/bar.",
			expected: "github.com/foo/bar.",
		},
		{
			name:     "closing parenthesis stops the match",
			abstract: "Available at github.com/foo/bar/baz.git)",
			expected: "github.com/foo/bar/baz.git",
		},
		{
			name:     "parenthetical citation with scheme",
			abstract: "The tool is open source (see https://github.com/lab/tool) and documented.",
			expected: "github.com/lab/tool",
		},
		{
			name:     "case-insensitive domain",
			abstract: "Code: GitHub.com/Foo/Bar, data on request.",
			expected: "GitHub.com/Foo/Bar",
		},
		{
			name:     "only the first link is returned",
			abstract: "Sources at github.com/a/b and a mirror at github.com/c/d.",
			expected: "github.com/a/b",
		},
		{
			name:     "concatenated second URL stops at the colon",
			abstract: "github.com/a/b.https://gitlab.com/c/d",
			expected: "github.com/a/b.https",
		},
		{
			name:     "match reaching the end of the abstract",
			abstract: "Freely available at github.com/x/y",
			expected: "github.com/x/y",
		},
		{
			name:     "list bullet",
			abstract: "Availability: github.com/x/y\u2022Contact: someone@example.org",
			expected: "github.com/x/y",
		},
		{
			name:     "non-breaking space",
			abstract: "Implemented in R (github.com/x/y\u00a0under MIT).",
			expected: "github.com/x/y",
		},
		{
			name:     "url-encoded characters are kept",
			abstract: "Data at github.com/x/y%20z/tree/main; see below.",
			expected: "github.com/x/y%20z/tree/main",
		},
		{
			name:     "quoted link",
			abstract: "available from 'github.com/x/y' upon release",
			expected: "github.com/x/y",
		},
		{
			name:     "plus and greater-than",
			abstract: "<github.com/x/y> and github.com/z+more",
			expected: "github.com/x/y",
		},
		{
			name:     "closing bracket and brace",
			abstract: "[github.com/x/y] {github.com/z/w}",
			expected: "github.com/x/y",
		},
		{
			name:     "dot in domain is literal",
			abstract: "githubXcom/x/y is not a link",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractLink(tc.abstract); got != tc.expected {
				t.Errorf("ExtractLink(%q) = %q, want %q", tc.abstract, got, tc.expected)
			}
		})
	}
}

func TestLinkExtractorOtherForge(t *testing.T) {
	e := NewLinkExtractor("gitlab.com")

	abstract := "Mirrors: github.com/a/b and https://gitlab.com/group/project."
	if got := e.Extract(abstract); got != "gitlab.com/group/project." {
		t.Errorf("Extract() = %q, want %q", got, "gitlab.com/group/project.")
	}

	record := e.Process(abstract)
	if record.Canonical != "https://gitlab.com/group/project/" {
		t.Errorf("Canonical = %q, want %q", record.Canonical, "https://gitlab.com/group/project/")
	}
}

func TestCanonicalize(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "empty", raw: "", expected: ""},
		{name: "whitespace only", raw: "   ", expected: ""},
		{name: "trailing dot", raw: "github.com/foo/bar.", expected: "https://github.com/foo/bar/"},
		{name: "git suffix", raw: "github.com/foo/bar/baz.git", expected: "https://github.com/foo/bar/baz/"},
		{name: "git suffix and paren", raw: "github.com/foo/bar/baz.git)", expected: "https://github.com/foo/bar/baz/"},
		{name: "owner only", raw: "github.com/only-owner", expected: "https://github.com/only-owner/"},
		{name: "plain link untouched", raw: "github.com/a/b", expected: "https://github.com/a/b/"},
		{name: "glued second url", raw: "github.com/a/b.https", expected: "https://github.com/a/b/"},
		{name: "glued Supplementary", raw: "github.com/foo/barSupplementary", expected: "https://github.com/foo/bar/"},
		{name: "glued Contact", raw: "github.com/foo/barContact", expected: "https://github.com/foo/bar/"},
		{name: "glued Communicated", raw: "github.com/foo/barCommunicated", expected: "https://github.com/foo/bar/"},
		{name: "existing scheme", raw: "https://github.com/foo/bar", expected: "https://github.com/foo/bar/"},
		{name: "http upgraded", raw: "http://github.com/foo/bar", expected: "https://github.com/foo/bar/"},
		{name: "doubled separators", raw: "github.com//foo//bar", expected: "https://github.com/foo/bar/"},
		{name: "tripled separators", raw: "github.com///foo", expected: "https://github.com/foo/"},
		{name: "escaped underscore", raw: `github.com/foo\_bar`, expected: "https://github.com/foo_bar/"},
		{name: "doubled backslash", raw: `github.com/foo\\/bar`, expected: "https://github.com/foo/bar/"},
		{name: "paren then dot", raw: "github.com/foo/bar).", expected: "https://github.com/foo/bar/"},
		{name: "slash then dot", raw: "github.com/foo/bar/.", expected: "https://github.com/foo/bar/"},
		{name: "bracket then dot", raw: "github.com/foo/bar].", expected: "https://github.com/foo/bar/"},
		{name: "trailing quote", raw: `github.com/foo/bar"`, expected: "https://github.com/foo/bar/"},
		{name: "double trailing dot", raw: "github.com/foo/bar..", expected: "https://github.com/foo/bar/"},
		{name: "lone closing paren", raw: "github.com/foo/bar)", expected: "https://github.com/foo/bar/"},
		{name: "suffix exposed by cleanup", raw: "github.com/a/b.c.", expected: "https://github.com/a/b/"},
		{name: "dotted host kept", raw: "code.google.com/p/tool", expected: "https://code.google.com/p/tool/"},
		{name: "case preserved", raw: "GitHub.com/Foo/Bar", expected: "https://GitHub.com/Foo/Bar/"},
		{name: "surrounding whitespace", raw: "  github.com/foo/bar  ", expected: "https://github.com/foo/bar/"},
		{name: "separator only", raw: "/", expected: ""},
		{name: "dot only", raw: ".", expected: ""},
		{name: "paren only", raw: ")", expected: ""},
		{name: "contamination only", raw: "https", expected: ""},
		{name: "one-rune repository", raw: "github.com/x/R", expected: "https://github.com/x/R/"},
		{name: "one-rune repository then slash dot", raw: "github.com/x/R/.", expected: "https://github.com/x/R/"},
		{name: "one-rune repository then paren", raw: "github.com/r-lib/R)", expected: "https://github.com/r-lib/R/"},
		{name: "one-rune owner and repository", raw: "github.com/a/b", expected: "https://github.com/a/b/"},
		{name: "uppercase http scheme", raw: "HTTP://github.com/x", expected: "https://github.com/x/"},
		{name: "mixed-case https scheme", raw: "Https://GitHub.com/Foo/Bar", expected: "https://GitHub.com/Foo/Bar/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonicalize(tc.raw); got != tc.expected {
				t.Errorf("Canonicalize(%q) = %q, want %q", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestCanonicalizeProperties(t *testing.T) {
	bases := []string{
		"github.com/foo/bar",
		"github.com/only-owner",
		"GitHub.com/Foo/Bar/tree/main",
		"github.com//x//y",
		"http://github.com/a/b",
		"https://github.com/a/b",
		`github.com/a\b`,
		"github.com/a/b.c",
		"github.com/x/R",
		"HTTP://github.com/a/b",
		"github.com",
		"g",
		"",
	}

	tails := []string{
		"", ".", "..", ")", ").", "))", "/.", "/", "//", "].", "]]", `"`, `".`,
		".git", ".git)", ".git/", "Contact", "Supplementary.", ".https", ".v2.",
		"\\", " ", "•", ")/", `\"`,
	}

	for _, base := range bases {
		for _, tail := range tails {
			raw := base + tail
			once := Canonicalize(raw)
			twice := Canonicalize(once)

			if once != twice {
				t.Errorf("Canonicalize not idempotent for %q: %q then %q", raw, once, twice)
			}

			if once == "" {
				continue
			}

			if !strings.HasPrefix(once, "https://") {
				t.Errorf("Canonicalize(%q) = %q, missing https scheme", raw, once)
			}

			if !strings.HasSuffix(once, "/") || strings.HasSuffix(once, "//") {
				t.Errorf("Canonicalize(%q) = %q, want exactly one trailing separator", raw, once)
			}

			if strings.Contains(once[len("https://"):], "//") {
				t.Errorf("Canonicalize(%q) = %q, doubled separator after scheme", raw, once)
			}

			if strings.HasSuffix(once, ".git/") {
				t.Errorf("Canonicalize(%q) = %q, version-control suffix left", raw, once)
			}

			beforeSlash, _ := utf8.DecodeLastRuneInString(strings.TrimSuffix(once, "/"))
			if strings.ContainsRune(`.)]"`, beforeSlash) {
				t.Errorf("Canonicalize(%q) = %q, trailing artifact %q", raw, once, beforeSlash)
			}
		}
	}
}

func TestDecompose(t *testing.T) {
	testCases := []struct {
		name     string
		link     string
		expected RepoIdentity
	}{
		{name: "owner and repo", link: "https://github.com/foo/bar/", expected: RepoIdentity{Owner: "foo", Repo: "bar"}},
		{name: "extra depth ignored", link: "https://github.com/foo/bar/baz/", expected: RepoIdentity{Owner: "foo", Repo: "bar"}},
		{name: "owner only", link: "https://github.com/only-owner/", expected: RepoIdentity{Owner: "only-owner"}},
		{name: "host only", link: "https://github.com/", expected: RepoIdentity{}},
		{name: "no trailing separator", link: "https://github.com", expected: RepoIdentity{}},
		{name: "empty", link: "", expected: RepoIdentity{}},
		{name: "whitespace trimmed", link: "https://github.com/ foo / bar /", expected: RepoIdentity{Owner: "foo", Repo: "bar"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decompose(tc.link); got != tc.expected {
				t.Errorf("Decompose(%q) = %+v, want %+v", tc.link, got, tc.expected)
			}
		})
	}
}

func TestRepoIdentity(t *testing.T) {
	full := RepoIdentity{Owner: "foo", Repo: "bar"}
	if !full.Complete() || full.IsZero() || full.String() != "foo/bar" {
		t.Errorf("unexpected state for %+v", full)
	}

	ownerOnly := RepoIdentity{Owner: "foo"}
	if ownerOnly.Complete() || ownerOnly.IsZero() || ownerOnly.String() != "foo" {
		t.Errorf("unexpected state for %+v", ownerOnly)
	}

	if !(RepoIdentity{}).IsZero() {
		t.Error("zero identity should report IsZero")
	}
}

func TestProcessScenarios(t *testing.T) {
	testCases := []struct {
		name     string
		abstract string
		expected LinkRecord
	}{
		{
			name:     "sentence-final link",
			abstract: "See code at github.com/foo/bar.",
			expected: LinkRecord{
				Raw:       "github.com/foo/bar.",
				Canonical: "https://github.com/foo/bar/",
				Identity:  RepoIdentity{Owner: "foo", Repo: "bar"},
			},
		},
		{
			name:     "deep clone url",
			abstract: "Available at github.com/foo/bar/baz.git)",
			expected: LinkRecord{
				Raw:       "github.com/foo/bar/baz.git",
				Canonical: "https://github.com/foo/bar/baz/",
				Identity:  RepoIdentity{Owner: "foo", Repo: "bar"},
			},
		},
		{
			name:     "no forge link",
			abstract: "No software was developed for this study.",
			expected: LinkRecord{},
		},
		{
			name:     "owner without repository",
			abstract: "github.com/only-owner",
			expected: LinkRecord{
				Raw:       "github.com/only-owner",
				Canonical: "https://github.com/only-owner/",
				Identity:  RepoIdentity{Owner: "only-owner"},
			},
		},
		{
			name:     "two concatenated links",
			abstract: "github.com/a/b.https://gitlab.com/c/d",
			expected: LinkRecord{
				Raw:       "github.com/a/b.https",
				Canonical: "https://github.com/a/b/",
				Identity:  RepoIdentity{Owner: "a", Repo: "b"},
			},
		},
		{
			name:     "one-rune repository name",
			abstract: "The package is at github.com/x/R.",
			expected: LinkRecord{
				Raw:       "github.com/x/R.",
				Canonical: "https://github.com/x/R/",
				Identity:  RepoIdentity{Owner: "x", Repo: "R"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Process(tc.abstract)
			if got != tc.expected {
				t.Errorf("Process(%q) = %+v, want %+v", tc.abstract, got, tc.expected)
			}

			if got.Found() != (tc.expected.Raw != "") {
				t.Errorf("Found() = %v for %+v", got.Found(), got)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText(""); got != "" {
		t.Errorf("NormalizeText(\"\") = %q", got)
	}

	abstract := "Code at ｇｉｔｈｕｂ．ｃｏｍ/foo/bar."
	if got := ExtractLink(abstract); got != "" {
		t.Errorf("expected no match before normalization, got %q", got)
	}

	if got := ExtractLink(NormalizeText(abstract)); got != "github.com/foo/bar." {
		t.Errorf("ExtractLink(NormalizeText()) = %q, want %q", got, "github.com/foo/bar.")
	}

	if got := NormalizeText("a\u00a0b"); got != "a b" {
		t.Errorf("NormalizeText() = %q, want non-breaking space folded", got)
	}
}

func TestProcessConcurrent(t *testing.T) {
	abstracts := []string{
		"See code at github.com/foo/bar.",
		"Available at github.com/foo/bar/baz.git)",
		"nothing here",
		"github.com/only-owner",
	}

	expected := make([]LinkRecord, len(abstracts))
	for i, abstract := range abstracts {
		expected[i] = Process(abstract)
	}

	var wg sync.WaitGroup

	for worker := 0; worker < 8; worker++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < 50; i++ {
				idx := i % len(abstracts)
				if got := Process(abstracts[idx]); got != expected[idx] {
					t.Errorf("concurrent Process(%q) = %+v, want %+v", abstracts[idx], got, expected[idx])
				}
			}
		}()
	}

	wg.Wait()
}
