package extractor

// RepoIdentity is the (owner, repository) pair decomposed from a canonical link.
// An empty field means the value is absent.
type RepoIdentity struct {
	Owner string `json:"owner,omitempty"`
	Repo  string `json:"repo,omitempty"`
}

// Complete reports whether both owner and repository are present.
func (id RepoIdentity) Complete() bool {
	return id.Owner != "" && id.Repo != ""
}

// IsZero reports whether neither owner nor repository is present.
func (id RepoIdentity) IsZero() bool {
	return id.Owner == "" && id.Repo == ""
}

// String returns "owner/repo", or the owner alone when the repository is absent.
func (id RepoIdentity) String() string {
	if id.Repo == "" {
		return id.Owner
	}

	return id.Owner + "/" + id.Repo
}

// LinkRecord holds everything the core derives from a single abstract.
type LinkRecord struct {
	Raw       string       `json:"raw"`
	Canonical string       `json:"canonical"`
	Identity  RepoIdentity `json:"identity"`
}

// Found reports whether a forge link was located in the abstract.
func (r LinkRecord) Found() bool {
	return r.Raw != ""
}
