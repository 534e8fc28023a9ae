// Package github reads repository metadata from the GitHub REST API.
package github

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
	Host = "github.com"

	// DefaultBaseURL is the GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com"

	acceptHeader = "application/vnd.github.v3+json"
)

// Client fetches repository metadata from GitHub.
type Client struct {
	http        *httpclient.Client
	now         func() time.Time
	baseURL     string
	token       string
	httpOptions []httpclient.Option
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates requests with a personal access token, which
// raises the hourly request quota.
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

	httpOptions := []httpclient.Option{httpclient.WithHeader("Accept", acceptHeader)}
	if c.token != "" {
		httpOptions = append(httpOptions, httpclient.WithHeader("Authorization", "Bearer "+c.token))
	}

	c.http = httpclient.New(append(httpOptions, c.httpOptions...)...)

	return c
}

// Host implements repometa.Client.
func (c *Client) Host() string {
	return Host
}

type repoResponse struct {
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Fork      bool   `json:"fork"`
}

// RepoInfo implements repometa.Client.
func (c *Client) RepoInfo(ctx context.Context, id extractor.RepoIdentity) (*repometa.RepoInfo, error) {
	if err := repometa.RequireRepo(Host, id); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(id.Owner), url.PathEscape(id.Repo))

	var data repoResponse
	if err := c.http.GetJSON(ctx, httpclient.Request{URL: endpoint}, &data); err != nil {
		return nil, repometa.ClassifyHTTPError(Host, id, err, c.now())
	}

	return &repometa.RepoInfo{
		Host:      Host,
		Owner:     id.Owner,
		Repo:      id.Repo,
		CreatedAt: dates.ISO(data.CreatedAt),
		UpdatedAt: dates.ISO(data.UpdatedAt),
		Fork:      data.Fork,
	}, nil
}
