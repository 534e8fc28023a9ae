// Package swh checks whether a repository has been archived by Software
// Heritage.
package swh

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pbmd/forgescan/internal/dates"
	"github.com/pbmd/forgescan/internal/httpclient"
)

// DefaultBaseURL is the Software Heritage archive API endpoint.
const DefaultBaseURL = "https://archive.softwareheritage.org/api/1"

// ArchiveStatus is the archival state of one origin. Date is the day of the
// latest visit, YYYY-MM-DD, and empty when the origin is not archived.
type ArchiveStatus struct {
	Date     string `json:"date,omitempty"`
	Archived bool   `json:"archived"`
}

// Client queries the archive.
type Client struct {
	http        *httpclient.Client
	baseURL     string
	token       string
	httpOptions []httpclient.Option
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another archive endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithToken sends a bearer token, which raises the archive's rate limit.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPOptions passes options to the underlying HTTP client.
func WithHTTPOptions(options ...httpclient.Option) Option {
	return func(c *Client) {
		c.httpOptions = append(c.httpOptions, options...)
	}
}

// New creates a Client.
func New(options ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL}

	for _, option := range options {
		option(c)
	}

	var httpOptions []httpclient.Option
	if c.token != "" {
		httpOptions = append(httpOptions, httpclient.WithHeader("Authorization", "Bearer "+c.token))
	}

	c.http = httpclient.New(append(httpOptions, c.httpOptions...)...)

	return c
}

type visitResponse struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// Archived reports whether the origin at link has been visited by the
// archive. A missing origin is not an error.
func (c *Client) Archived(ctx context.Context, link string) (ArchiveStatus, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return ArchiveStatus{}, fmt.Errorf("empty origin URL")
	}

	if !strings.HasSuffix(link, "/") {
		link += "/"
	}

	endpoint := c.baseURL + "/origin/" + link + "visit/latest/"

	var visit visitResponse

	err := c.http.GetJSON(ctx, httpclient.Request{URL: endpoint}, &visit)
	if errors.Is(err, httpclient.ErrNotFound) {
		return ArchiveStatus{}, nil
	}

	if err != nil {
		return ArchiveStatus{}, fmt.Errorf("software heritage lookup for %s: %w", link, err)
	}

	return ArchiveStatus{Archived: true, Date: dates.ISO(visit.Date)}, nil
}
