// Package http is the transport used by the resource clients: one JSON request
// in, status code and body out, with retries for transient failures.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/central-storage/csclient/internal/auth"
	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/pkg/csapi"
)

// Request describes a single API call. Path is relative to the client's base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Client performs API requests.
//
// Idempotent methods are retried on connection errors, 429 and 5xx. POST and
// PATCH are sent once because the server may already have applied them.
type Client struct {
	baseURL   string
	tokens    auth.TokenManager
	retrying  *retryablehttp.Client
	single    *retryablehttp.Client
	logger    csapi.Logger
	debug     bool
	userAgent string

	httpClient *http.Client
	retryMax   int
	waitMin    time.Duration
	waitMax    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger csapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig sets the retry budget and backoff bounds. A negative retryMax disables retries.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = max(retryMax, 0)

		if waitMin > 0 {
			c.waitMin = waitMin
		}

		if waitMax > 0 {
			c.waitMax = waitMax
		}
	}
}

// WithTimeout bounds each HTTP exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a transport for baseURL. tokens may be nil for anonymous access.
func NewClient(baseURL string, tokens auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		userAgent:  constants.DefaultUserAgent,
		httpClient: &http.Client{Timeout: constants.DefaultHTTPTimeout},
		retryMax:   constants.DefaultRetryMax,
		waitMin:    constants.DefaultRetryWaitMin,
		waitMax:    constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.retrying = client.newRetryClient(client.retryMax)
	client.single = client.newRetryClient(0)

	return client
}

func (c *Client) newRetryClient(retryMax int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = c.httpClient
	rc.RetryMax = retryMax
	rc.RetryWaitMin = c.waitMin
	rc.RetryWaitMax = c.waitMax
	rc.CheckRetry = retryablehttp.DefaultRetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil

	if c.logger != nil {
		rc.Logger = &leveledLogger{logger: c.logger}
		rc.RequestLogHook = c.logRetry
	}

	return rc
}

// BaseURL returns the API base the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req. A non-2xx status yields both the response and a *csapi.APIError;
// a failure without response yields a transport error and a nil response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        httpReq.URL.String(),
			"request_id": httpReq.Header.Get("X-Request-ID"),
		})
	}

	start := time.Now()

	httpResp, err := c.clientFor(req.Method).Do(httpReq)
	if err != nil {
		return nil, csapi.NewTransportError(fmt.Errorf("%s %s: %w", req.Method, req.Path, err))
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, csapi.NewTransportError(fmt.Errorf("reading response body: %w", err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
			"bytes":    len(body),
		})
	}

	if csapi.KindForStatus(resp.StatusCode) != nil {
		return resp, csapi.NewStatusError(resp.StatusCode, body)
	}

	return resp, nil
}

func (c *Client) clientFor(method string) *retryablehttp.Client {
	if method == http.MethodPost || method == http.MethodPatch {
		return c.single
	}

	return c.retrying
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body []byte

	if req.Body != nil {
		switch payload := req.Body.(type) {
		case []byte:
			body = payload
		default:
			encoded, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}

			body = encoded
		}
	}

	var rawBody interface{}
	if body != nil {
		rawBody = bytes.NewReader(body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) logRetry(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if attempt == 0 {
		return
	}

	c.logger.Warn("Retrying HTTP request", map[string]interface{}{
		"method":  req.Method,
		"url":     req.URL.String(),
		"attempt": attempt,
	})
}

// leveledLogger forwards retryablehttp warnings and errors. Its per-attempt
// debug chatter is dropped; Do logs requests itself when debug is enabled.
type leveledLogger struct {
	logger csapi.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])

		value := keysAndValues[i+1]
		if err, ok := value.(error); ok {
			value = err.Error()
		}

		fields[key] = value
	}

	return fields
}
