package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches responses with status 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork matches transport failures and 5xx responses.
	ErrNetwork = errors.New("network error")

	// ErrThrottled matches responses with status 429.
	ErrThrottled = errors.New("too many requests")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Header     http.Header
	URL        string
	Body       []byte
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Is lets errors.Is match the sentinel errors by status code.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrThrottled:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrNetwork:
		return e.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}

// Status returns the HTTP status carried by err, or 0 when err holds none.
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}

	return 0
}
