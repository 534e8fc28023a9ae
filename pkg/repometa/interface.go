// Package repometa fetches repository lifecycle metadata (creation date, last
// update, fork status) from forge APIs.
//
// Each forge is served by a Client implementation registered in a Registry
// under its host name.
package repometa

import (
	"context"
	"errors"
	"time"

	"github.com/pbmd/forgescan/internal/extractor"
)

// Client describes repositories hosted on one forge.
type Client interface {
	// Host returns the forge host the client serves, e.g. "github.com".
	Host() string

	// RepoInfo fetches metadata for a repository. Identities without a
	// repository part are rejected with ErrorTypeInvalid.
	RepoInfo(ctx context.Context, id extractor.RepoIdentity) (*RepoInfo, error)
}

// RepoInfo is the metadata kept for one repository. Dates are YYYY-MM-DD.
type RepoInfo struct {
	Host      string `json:"host"`
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	Fork      bool   `json:"fork"`
}

// ErrorType classifies repository lookup failures.
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeRateLimited ErrorType = "rate_limited"
	ErrorTypeNetwork     ErrorType = "network_error"
	ErrorTypeInvalid     ErrorType = "invalid_identity"
)

// Error is returned by Client implementations.
type Error struct {
	ResetAt time.Time
	Err     error
	Type    ErrorType
	Host    string
	Repo    string
	Message string
}

func (e *Error) Error() string {
	msg := string(e.Type) + ": " + e.Message
	if e.Host != "" && e.Repo != "" {
		msg += " (host: " + e.Host + ", repo: " + e.Repo + ")"
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the repository does not exist.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypeNotFound
}

// RateLimitReset returns the time at which a rate-limited forge accepts
// requests again. ok is false when err is not a rate-limit error.
func RateLimitReset(err error) (resetAt time.Time, ok bool) {
	var e *Error
	if errors.As(err, &e) && e.Type == ErrorTypeRateLimited {
		return e.ResetAt, true
	}

	return time.Time{}, false
}

// RequireRepo rejects identities that lack an owner or a repository.
func RequireRepo(host string, id extractor.RepoIdentity) error {
	if id.Complete() {
		return nil
	}

	return &Error{
		Type:    ErrorTypeInvalid,
		Host:    host,
		Repo:    id.String(),
		Message: "owner and repository are both required",
	}
}
