// Package api talks to the timeline REST API.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agnosto/chirp/config"
	"github.com/agnosto/chirp/headers"
	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/posts"
	"golang.org/x/time/rate"
)

const maxBodySize = 4 << 20

const (
	homeTimelinePath = "statuses/home_timeline.json"
	updatePath       = "statuses/update.json"
	likePath         = "favorites/create.json"
	unlikePath       = "favorites/destroy.json"
)

// Client is built once by the caller and shared; it holds no per-screen state.
type Client struct {
	baseURL    *url.URL
	pageSize   int
	headers    *headers.ClientHeaders
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithLimiter replaces the limiter derived from requests_per_minute.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url %q: %w", cfg.API.BaseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	rpm := cfg.API.RequestsPerMinute
	if rpm <= 0 {
		rpm = config.DefaultRequestsPerMinute
	}
	timeout := cfg.API.Timeout()
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSeconds * time.Second
	}
	pageSize := cfg.API.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}

	c := &Client{
		baseURL:    base,
		pageSize:   pageSize,
		headers:    headers.NewClientHeaders(cfg),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// HomeTimeline fetches the newest page.
func (c *Client) HomeTimeline(ctx context.Context) ([]posts.Post, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(c.pageSize))
	params.Set("since_id", "1")

	body, err := c.do(ctx, http.MethodGet, homeTimelinePath, params)
	if err != nil {
		return nil, err
	}
	return posts.ParsePostList(body)
}

// OlderThan fetches the page of posts strictly older than maxID. The API's
// max_id is inclusive, so the cursor itself is excluded by asking for maxID-1.
func (c *Client) OlderThan(ctx context.Context, maxID int64) ([]posts.Post, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(c.pageSize))
	params.Set("max_id", strconv.FormatInt(maxID-1, 10))

	body, err := c.do(ctx, http.MethodGet, homeTimelinePath, params)
	if err != nil {
		return nil, err
	}
	return posts.ParsePostList(body)
}

// Publish creates a post and returns it as the server stored it.
func (c *Client) Publish(ctx context.Context, text string) (posts.Post, error) {
	params := url.Values{}
	params.Set("status", text)
	return c.postAction(ctx, updatePath, params)
}

// Like marks id as liked and returns the server's copy of the post.
func (c *Client) Like(ctx context.Context, id int64) (posts.Post, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))
	return c.postAction(ctx, likePath, params)
}

// Unlike clears the like on id and returns the server's copy of the post.
func (c *Client) Unlike(ctx context.Context, id int64) (posts.Post, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))
	return c.postAction(ctx, unlikePath, params)
}

func (c *Client) postAction(ctx context.Context, path string, params url.Values) (posts.Post, error) {
	body, err := c.do(ctx, http.MethodPost, path, params)
	if err != nil {
		return posts.Post{}, err
	}
	return posts.ParsePost(body)
}

// do sends one request. GET params go in the query string, POST params are
// form encoded.
func (c *Client) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})
	var reqBody io.Reader
	if method == http.MethodGet {
		endpoint.RawQuery = params.Encode()
	} else {
		reqBody = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	requestID := c.headers.AddHeadersToRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Logger.Printf("[ERROR] %s %s (%s): %v", method, path, requestID, err)
		return nil, &TransportError{Method: method, Path: path, RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{
			Method:     method,
			Path:       path,
			RequestID:  requestID,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Err:        fmt.Errorf("failed to read body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Logger.Printf("[ERROR] %s %s (%s) returned %d", method, path, requestID, resp.StatusCode)
		return nil, &TransportError{
			Method:     method,
			Path:       path,
			RequestID:  requestID,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	return body, nil
}
