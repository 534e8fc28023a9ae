// Package httpclient is the HTTP plumbing shared by the PubMed, forge and
// Software Heritage clients: retries with back-off, a minimum interval
// between requests, default headers and an optional response cache.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pbmd/forgescan/internal/cache"
)

// UserAgent is sent with every request.
const UserAgent = "forgescan/1.0 (+https://github.com/pbmd/forgescan)"

// Client issues GET requests against one API.
type Client struct {
	rest      *resty.Client
	cache     cache.Cache
	limiter   *Limiter
	namespace string
	cacheTTL  time.Duration
}

type settings struct {
	httpClient  *http.Client
	cache       cache.Cache
	headers     map[string]string
	namespace   string
	timeout     time.Duration
	retries     int
	retryWait   time.Duration
	maxWait     time.Duration
	minInterval time.Duration
	cacheTTL    time.Duration
}

// Option configures a Client.
type Option func(*settings)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(retries int) Option {
	return func(s *settings) {
		s.retries = retries
	}
}

// WithRetryWait sets the initial and maximum back-off between retries.
func WithRetryWait(wait, maxWait time.Duration) Option {
	return func(s *settings) {
		s.retryWait = wait
		s.maxWait = maxWait
	}
}

// WithMinInterval spaces consecutive requests at least interval apart.
func WithMinInterval(interval time.Duration) Option {
	return func(s *settings) {
		s.minInterval = interval
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(s *settings) {
		s.headers[key] = value
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

// WithCache stores successful response bodies in c for ttl. Keys are
// prefixed with namespace.
func WithCache(c cache.Cache, namespace string, ttl time.Duration) Option {
	return func(s *settings) {
		s.cache = c
		s.namespace = namespace
		s.cacheTTL = ttl
	}
}

// New creates a Client.
func New(options ...Option) *Client {
	s := &settings{
		headers:   map[string]string{"User-Agent": UserAgent},
		timeout:   30 * time.Second,
		retries:   3,
		retryWait: 500 * time.Millisecond,
		maxWait:   10 * time.Second,
	}

	for _, option := range options {
		option(s)
	}

	rest := resty.New()
	if s.httpClient != nil {
		rest = resty.NewWithClient(s.httpClient)
	}

	limiter := NewLimiter(s.minInterval)

	rest.SetTimeout(s.timeout).
		SetHeaders(s.headers).
		SetRetryCount(s.retries).
		SetRetryWaitTime(s.retryWait).
		SetRetryMaxWaitTime(s.maxWait).
		AddRetryCondition(shouldRetry).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})

	c := s.cache
	if c == nil {
		c = cache.NewNullCache()
	}

	return &Client{
		rest:      rest,
		cache:     c,
		limiter:   limiter,
		namespace: s.namespace,
		cacheTTL:  s.cacheTTL,
	}
}

// shouldRetry retries transport failures, throttling and server errors.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if resp == nil {
		return false
	}

	code := resp.StatusCode()

	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// Request describes one GET call.
type Request struct {
	URL     string
	Query   url.Values
	Headers map[string]string
	// NoCache bypasses the response cache for this call.
	NoCache bool
}

// GetBytes performs req and returns the body of a 2xx response. Any other
// status yields a *StatusError.
func (c *Client) GetBytes(ctx context.Context, req Request) ([]byte, error) {
	key := c.cacheKey(req)

	if !req.NoCache {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			return data, nil
		}
	}

	r := c.rest.R().SetContext(ctx).SetHeaders(req.Headers)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	resp, err := r.Get(req.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, fmt.Errorf("%w: GET %s: %v", ErrNetwork, req.URL, err)
	}

	if !resp.IsSuccess() {
		return nil, &StatusError{
			StatusCode: resp.StatusCode(),
			URL:        req.URL,
			Header:     resp.Header(),
			Body:       resp.Body(),
		}
	}

	body := resp.Body()
	if !req.NoCache {
		_ = c.cache.Set(ctx, key, body, c.cacheTTL)
	}

	return body, nil
}

// GetJSON performs req and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, req Request, v any) error {
	body, err := c.GetBytes(ctx, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL, err)
	}

	return nil
}

// cacheKey identifies a request. The api_key parameter is left out so
// credentials never end up in cache keys.
func (c *Client) cacheKey(req Request) string {
	query := url.Values{}
	for k, vs := range req.Query {
		if k == "api_key" {
			continue
		}

		query[k] = vs
	}

	key := c.namespace + req.URL
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}

	return key
}
