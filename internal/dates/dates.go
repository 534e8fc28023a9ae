// Package dates normalizes the assorted date formats returned by PubMed,
// forge APIs and Software Heritage to YYYY-MM-DD.
package dates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// Layout is the output format of every normalized date.
const Layout = "2006-01-02"

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ISO parses a timestamp or date in any format dateparse understands and
// returns its calendar date as written, without converting time zones.
// It returns "" when s is empty or unparseable.
func ISO(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return ""
	}

	return t.Format(Layout)
}

// FromParts builds a date from separate year, month and day fields, where
// month may be numeric ("5", "05") or an English abbreviation ("May").
func FromParts(year, month, day string) (string, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y <= 0 {
		return "", fmt.Errorf("invalid year %q", year)
	}

	m, err := Month(month)
	if err != nil {
		return "", err
	}

	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil || d < 1 || d > 31 {
		return "", fmt.Errorf("invalid day %q", day)
	}

	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), nil
}

// Month converts a numeric or abbreviated month name to 1..12.
func Month(s string) (int, error) {
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month out of range: %d", n)
		}

		return n, nil
	}

	if len(s) >= 3 {
		if n, ok := monthNumbers[strings.ToLower(s[:3])]; ok {
			return n, nil
		}
	}

	return 0, fmt.Errorf("invalid month %q", s)
}
