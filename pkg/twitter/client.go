package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"threadgrab/pkg/errors"
	"threadgrab/pkg/logger"
	"threadgrab/pkg/ratelimit"
)

// FailureRecorder receives a reason for every post that could not be
// processed
type FailureRecorder interface {
	Record(id, reason string)
}

// Client performs authenticated status lookups
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	limiter    ratelimit.Limiter
	failures   FailureRecorder
	logger     logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL points the client at another API host
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithLimiter paces requests through l
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client that authenticates with apiKey and records
// HTTP failures into failures
func NewClient(apiKey string, timeout time.Duration, failures FailureRecorder, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Accept":        "application/json",
			"User-Agent":    "threadgrab/1.0",
		},
		baseURL:  BaseURL,
		limiter:  ratelimit.Unlimited{},
		failures: failures,
		logger:   log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, err
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)

	return resp, nil
}

// FetchTweet looks up a single post by id.
//
// A non-2xx answer returns *errors.FetchError and records "<status> HTTP
// error" for the id. A request that never produced a usable answer returns
// *errors.TransportError and records nothing.
func (c *Client) FetchTweet(ctx context.Context, id string) (*Tweet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &errors.TransportError{PostID: id, Err: err}
	}

	url := GetStatusURL(c.baseURL, id)
	c.logger.DebugWithFields("fetching post", map[string]interface{}{
		"post_id": id,
		"url":     url,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errors.TransportError{PostID: id, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, &errors.TransportError{PostID: id, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fetchErr := &errors.FetchError{StatusCode: resp.StatusCode, PostID: id}
		if c.failures != nil {
			c.failures.Record(id, fetchErr.Reason())
		}
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fetchErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.TransportError{PostID: id, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var tweet Tweet
	if err := json.Unmarshal(body, &tweet); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"post_id":      id,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return nil, &errors.TransportError{PostID: id, Kind: errors.ErrorTypeParsing, Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}

	if tweet.IDStr == "" {
		tweet.IDStr = id
	}

	c.logger.DebugWithFields("fetched post", map[string]interface{}{
		"post_id":     tweet.IDStr,
		"in_reply_to": tweet.InReplyToStatusIDStr,
		"quoted":      tweet.QuotedStatusIDStr,
	})

	return &tweet, nil
}
