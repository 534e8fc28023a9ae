// Package gitlab reads project metadata from the GitLab REST API (v4).
package gitlab

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pbmd/forgescan/internal/dates"
	"github.com/pbmd/forgescan/internal/extractor"
	"github.com/pbmd/forgescan/internal/httpclient"
	"github.com/pbmd/forgescan/pkg/repometa"
)

const (
	// Host is the forge host served by this client.
	Host = "gitlab.com"

	// DefaultBaseURL is the gitlab.com API endpoint.
	DefaultBaseURL = "https://gitlab.com/api/v4"
)

// Client fetches project metadata from GitLab.
type Client struct {
	http        *httpclient.Client
	now         func() time.Time
	baseURL     string
	token       string
	httpOptions []httpclient.Option
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends a personal access token in the PRIVATE-TOKEN header.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
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
	c := &Client{baseURL: DefaultBaseURL, now: time.Now}

	for _, option := range options {
		option(c)
	}

	var httpOptions []httpclient.Option
	if c.token != "" {
		httpOptions = append(httpOptions, httpclient.WithHeader("PRIVATE-TOKEN", c.token))
	}

	c.http = httpclient.New(append(httpOptions, c.httpOptions...)...)

	return c
}

// Host implements repometa.Client.
func (c *Client) Host() string {
	return Host
}

type projectResponse struct {
	ForkedFrom     *struct{ ID int } `json:"forked_from_project"`
	CreatedAt      string            `json:"created_at"`
	LastActivityAt string            `json:"last_activity_at"`
}

// RepoInfo implements repometa.Client. Projects are addressed by their
// URL-encoded "owner/repo" path.
func (c *Client) RepoInfo(ctx context.Context, id extractor.RepoIdentity) (*repometa.RepoInfo, error) {
	if err := repometa.RequireRepo(Host, id); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/projects/%s", c.baseURL, url.PathEscape(id.Owner+"/"+id.Repo))

	var data projectResponse
	if err := c.http.GetJSON(ctx, httpclient.Request{URL: endpoint}, &data); err != nil {
		return nil, repometa.ClassifyHTTPError(Host, id, err, c.now())
	}

	return &repometa.RepoInfo{
		Host:      Host,
		Owner:     id.Owner,
		Repo:      id.Repo,
		CreatedAt: dates.ISO(data.CreatedAt),
		UpdatedAt: dates.ISO(data.LastActivityAt),
		Fork:      data.ForkedFrom != nil,
	}, nil
}
