package stats

import (
	"regexp"
	"sort"
	"strings"
)

// urlRegex finds links with a scheme, a www. prefix, or a bare host
// followed by a path.
var urlRegex = regexp.MustCompile(`(?i)(?:https?://[^\s<>"]+|www\.[^\s<>"]+|\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.[a-z]{2,}/[^\s<>"]*)`)

// HostCount is the number of links pointing to one host.
type HostCount struct {
	Host  string `json:"host"`
	Count int    `json:"count"`
}

// LinkHost returns the lowercased host of link without any www. prefix,
// e.g. "https://WWW.GitHub.com/a" gives "github.com".
func LinkHost(link string) string {
	host := link
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}

	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}

	host = strings.ToLower(strings.TrimRight(host, ".,;:)]}'"))
	host = strings.TrimPrefix(host, "www.")

	return host
}

// CountHosts tallies the hosts of every link found in texts, most cited
// first; ties are ordered by host name.
func CountHosts(texts []string) []HostCount {
	counts := make(map[string]int)

	for _, text := range texts {
		for _, link := range urlRegex.FindAllString(text, -1) {
			if host := LinkHost(link); host != "" {
				counts[host]++
			}
		}
	}

	result := make([]HostCount, 0, len(counts))
	for host, n := range counts {
		result = append(result, HostCount{Host: host, Count: n})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}

		return result[i].Host < result[j].Host
	})

	return result
}
