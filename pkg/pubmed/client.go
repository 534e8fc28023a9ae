// Package pubmed queries NCBI E-utilities for article identifiers and
// abstracts.
//
// ESearch is used to list and count PMIDs matching a query inside a
// publication-date window; EFetch returns the article XML that is turned into
// an Article. Requests are spaced according to the NCBI policy: 3 requests
// per second without an API key, 10 with one.
package pubmed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pbmd/forgescan/internal/httpclient"
)

const (
	// DefaultBaseURL is the E-utilities endpoint.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// MaxRetMax is the largest page ESearch returns for PubMed.
	MaxRetMax = 9999

	// RateWithoutKey and RateWithKey are the NCBI request rates per second.
	RateWithoutKey = 3
	RateWithKey    = 10

	database = "pubmed"
	toolName = "forgescan"
)

// ErrNotFound is returned when EFetch has no record for a PMID.
var ErrNotFound = errors.New("pubmed record not found")

// Client talks to E-utilities.
type Client struct {
	http        *httpclient.Client
	baseURL     string
	apiKey      string
	email       string
	httpOptions []httpclient.Option
	rate        int
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the NCBI API key, raising the request rate to RateWithKey.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithEmail sets the contact address sent along with the tool name.
func WithEmail(email string) Option {
	return func(c *Client) {
		c.email = email
	}
}

// WithBaseURL points the client at another E-utilities endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRateLimit overrides the number of requests per second. Zero disables
// spacing.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		c.rate = perSecond
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
	c := &Client{baseURL: DefaultBaseURL, rate: -1}

	for _, option := range options {
		option(c)
	}

	if c.rate < 0 {
		c.rate = RateWithoutKey
		if c.apiKey != "" {
			c.rate = RateWithKey
		}
	}

	httpOptions := append([]httpclient.Option{
		httpclient.WithMinInterval(httpclient.PerSecond(c.rate)),
	}, c.httpOptions...)
	c.http = httpclient.New(httpOptions...)

	return c
}

// Rate returns the configured number of requests per second.
func (c *Client) Rate() int {
	return c.rate
}

type esearchResponse struct {
	Result struct {
		Count string   `json:"count"`
		IDs   []string `json:"idlist"`
		Error string   `json:"ERROR,omitempty"`
	} `json:"esearchresult"`
	Error string `json:"error,omitempty"`
}

// SearchResult is one ESearch page.
type SearchResult struct {
	IDs   []string
	Count int
}

// Truncated reports whether more records matched than were returned.
func (r *SearchResult) Truncated() bool {
	return r.Count > len(r.IDs)
}

// Search returns up to MaxRetMax PMIDs matching q.
func (c *Client) Search(ctx context.Context, q Query) (*SearchResult, error) {
	return c.esearch(ctx, q, MaxRetMax)
}

// Count returns the number of records matching q without listing them.
func (c *Client) Count(ctx context.Context, q Query) (int, error) {
	res, err := c.esearch(ctx, q, 0)
	if err != nil {
		return 0, err
	}

	return res.Count, nil
}

func (c *Client) esearch(ctx context.Context, q Query, retmax int) (*SearchResult, error) {
	if strings.TrimSpace(q.Term) == "" {
		return nil, fmt.Errorf("search term cannot be empty")
	}

	params := c.params()
	params.Set("term", q.String())
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(retmax))

	var resp esearchResponse
	if err := c.http.GetJSON(ctx, httpclient.Request{URL: c.baseURL + "/esearch.fcgi", Query: params}, &resp); err != nil {
		return nil, fmt.Errorf("esearch %q: %w", q.Term, err)
	}

	if msg := firstNonEmpty(resp.Error, resp.Result.Error); msg != "" {
		return nil, fmt.Errorf("esearch %q: %s", q.Term, msg)
	}

	count, err := strconv.Atoi(resp.Result.Count)
	if err != nil {
		return nil, fmt.Errorf("esearch %q: invalid count %q", q.Term, resp.Result.Count)
	}

	return &SearchResult{Count: count, IDs: resp.Result.IDs}, nil
}

// Fetch retrieves one article.
func (c *Client) Fetch(ctx context.Context, pmid string) (*Article, error) {
	pmid = strings.TrimSpace(pmid)

	articles, err := c.FetchBatch(ctx, []string{pmid})
	if err != nil {
		return nil, err
	}

	for i := range articles {
		if articles[i].PMID == pmid {
			return &articles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, pmid)
}

// FetchBatch retrieves several articles in one EFetch call. Records PubMed
// does not return are silently absent from the result.
func (c *Client) FetchBatch(ctx context.Context, pmids []string) ([]Article, error) {
	ids := make([]string, 0, len(pmids))
	for _, id := range pmids {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, nil
	}

	params := c.params()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	params.Set("rettype", "abstract")

	body, err := c.http.GetBytes(ctx, httpclient.Request{URL: c.baseURL + "/efetch.fcgi", Query: params})
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(ids, ","))
		}

		return nil, fmt.Errorf("efetch %s: %w", strings.Join(ids, ","), err)
	}

	articles, err := ParseArticles(body)
	if err != nil {
		return nil, fmt.Errorf("efetch %s: %w", strings.Join(ids, ","), err)
	}

	return articles, nil
}

func (c *Client) params() url.Values {
	params := url.Values{}
	params.Set("db", database)
	params.Set("tool", toolName)

	if c.email != "" {
		params.Set("email", c.email)
	}

	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	return params
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
