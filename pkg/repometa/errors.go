package repometa

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pbmd/forgescan/internal/extractor"
	"github.com/pbmd/forgescan/internal/httpclient"
)

// defaultRateLimitWait is used when a throttled response carries no reset
// header.
const defaultRateLimitWait = time.Hour

// ClassifyHTTPError converts an httpclient error into an *Error for the
// repository id on host. now is used to resolve relative reset headers.
func ClassifyHTTPError(host string, id extractor.RepoIdentity, err error, now time.Time) error {
	if err == nil {
		return nil
	}

	e := &Error{Host: host, Repo: id.String(), Err: err, Type: ErrorTypeNetwork, Message: err.Error()}

	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return e
	}

	switch {
	case se.StatusCode == http.StatusNotFound:
		e.Type = ErrorTypeNotFound
		e.Message = "repository not found"
	case se.StatusCode == http.StatusTooManyRequests,
		se.StatusCode == http.StatusForbidden && rateLimitExhausted(se.Header):
		e.Type = ErrorTypeRateLimited
		e.Message = "API rate limit exceeded"
		e.ResetAt = resetTime(se.Header, now)
	default:
		e.Message = se.Error()
	}

	return e
}

func rateLimitExhausted(h http.Header) bool {
	for _, key := range []string{"X-RateLimit-Remaining", "RateLimit-Remaining"} {
		if strings.TrimSpace(h.Get(key)) == "0" {
			return true
		}
	}

	return h.Get("Retry-After") != ""
}

// resetTime reads X-RateLimit-Reset / RateLimit-Reset (unix seconds) or
// Retry-After (seconds from now).
func resetTime(h http.Header, now time.Time) time.Time {
	for _, key := range []string{"X-RateLimit-Reset", "RateLimit-Reset"} {
		if secs, err := strconv.ParseInt(strings.TrimSpace(h.Get(key)), 10, 64); err == nil && secs > 0 {
			return time.Unix(secs, 0)
		}
	}

	if secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After"))); err == nil && secs >= 0 {
		return now.Add(time.Duration(secs) * time.Second)
	}

	return now.Add(defaultRateLimitWait)
}
