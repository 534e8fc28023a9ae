package extractor

import "strings"

const (
	ownerSegment = 3
	repoSegment  = 4
	// minRepoSegments is the segment count below which a link has no
	// repository part: "https://host/owner/" splits into five segments,
	// "https://host/owner/repo/" into six.
	minRepoSegments = 6
)

// Decompose splits a canonical link into its owner and repository. Links too
// short to carry either part yield absent (empty) fields.
func Decompose(link string) RepoIdentity {
	var id RepoIdentity
	if link == "" {
		return id
	}

	segments := strings.Split(link, "/")
	if len(segments) > ownerSegment {
		id.Owner = strings.TrimSpace(segments[ownerSegment])
	}

	if len(segments) >= minRepoSegments {
		id.Repo = strings.TrimSpace(segments[repoSegment])
	}

	return id
}
