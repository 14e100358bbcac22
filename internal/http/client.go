// Package http provides the HTTP transport used by the Quickbase API client,
// wrapping hashicorp/go-retryablehttp with Quickbase auth headers, jittered
// exponential backoff, and structured request logging.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fieldworks-io/qbapi-client/internal/constants"
	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/hashicorp/go-retryablehttp"
)

// Request represents an HTTP request to the Quickbase API.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents an HTTP response from the Quickbase API.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the retrying HTTP client for the Quickbase API.
type Client struct {
	baseURL       string
	realmHostname string
	userToken     string
	httpClient    *retryablehttp.Client
	logger        qbapi.Logger
	userAgent     string
	debug         bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for request/response logging.
func WithLogger(logger qbapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables debug logging of requests and responses.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithRetryConfig overrides the retry attempt count and wait bounds.
func WithRetryConfig(attempts int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = attempts - 1
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// NewClient creates a transport for the given base URL and credentials.
func NewClient(baseURL, realmHostname, userToken string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryAttempts - 1
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil
	retryClient.CheckRetry = checkRetry
	retryClient.Backoff = jitterBackoff

	client := &Client{
		baseURL:       baseURL,
		realmHostname: realmHostname,
		userToken:     userToken,
		httpClient:    retryClient,
		userAgent:     constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil {
		retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				client.logger.Warn("Retrying request", map[string]interface{}{
					"method":  req.Method,
					"path":    req.URL.Path,
					"attempt": attempt + 1,
				})
			}
		}
	}

	return client
}

// checkRetry retries on connection errors, 429, and 5xx responses. Other 4xx
// responses are client mistakes and retrying cannot fix them.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return true, nil
	}

	return false, nil
}

// jitterBackoff computes min(waitMax, waitMin*2^attempt) scaled by a uniform
// factor in [0.5, 1.5). A Retry-After header on 429/502/503 overrides the
// computed delay.
func jitterBackoff(waitMin, waitMax time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil &&
		(resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusBadGateway ||
			resp.StatusCode == http.StatusServiceUnavailable) {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				return time.Duration(seconds) * time.Second
			}
		}
	}

	delay := float64(waitMin) * math.Pow(2, float64(attemptNum))
	if delay > float64(waitMax) {
		delay = float64(waitMax)
	}

	jitter := constants.RetryJitterMin + rand.Float64()*(constants.RetryJitterMax-constants.RetryJitterMin) //nolint:gosec // retry jitter does not need crypto randomness

	return time.Duration(delay * jitter)
}

// Do executes the request and returns the response. Non-2xx responses return
// both the parsed *qbapi.APIError and the response body for inspection.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader

	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("QB-Realm-Hostname", c.realmHostname)
	httpReq.Header.Set("Authorization", "QB-USER-TOKEN "+c.userToken)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	attempts := c.httpClient.RetryMax + 1

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &qbapi.TransportError{Path: req.Path, Attempts: attempts, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": httpResp.StatusCode,
			"url":    fullURL,
		})
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, qbapi.ParseAPIError(respBody, httpResp.StatusCode)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request, optionally with a JSON body.
func (c *Client) Delete(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Body: body})
}

// DownloadTo streams the response body for path into writer. It is used for
// file attachment content, which Quickbase serves base64-encoded.
func (c *Client) DownloadTo(ctx context.Context, path string, writer io.Writer) error {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("QB-Realm-Hostname", c.realmHostname)
	httpReq.Header.Set("Authorization", "QB-USER-TOKEN "+c.userToken)
	httpReq.Header.Set("User-Agent", c.userAgent)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &qbapi.TransportError{Path: path, Attempts: c.httpClient.RetryMax + 1, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode >= http.StatusBadRequest {
		respBody, readErr := io.ReadAll(httpResp.Body)
		if readErr != nil {
			return fmt.Errorf("reading error response: %w", readErr)
		}

		return qbapi.ParseAPIError(respBody, httpResp.StatusCode)
	}

	_, err = io.Copy(writer, httpResp.Body)
	if err != nil {
		return fmt.Errorf("writing download: %w", err)
	}

	return nil
}
