// Package client provides an HTTP client for OpenAI-compatible
// chat-completions APIs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/middleware"
	"github.com/felixgeelhaar/structout-go/transport"
)

// Version is the client library version reported in the User-Agent.
const Version = "1.0.0"

// Client calls an OpenAI-compatible chat-completions API.
type Client struct {
	opts    clientOptions
	handler middleware.HandlerFunc
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL          string
	httpClient       transport.Doer
	timeout          time.Duration
	userAgent        string
	organization     string
	maxRetries       int
	retryBaseDelay   time.Duration
	logger           middleware.Logger
	middlewares      []middleware.Middleware
	credentials      Credentials
	maxResponseBytes int64
}

// WithBaseURL sets the API base URL, e.g. for proxies or compatible
// local servers.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(d transport.Doer) Option {
	return func(o *clientOptions) {
		o.httpClient = d
	}
}

// WithTimeout sets the per-request timeout. It does not apply to
// streaming calls, which are bounded only by their context.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// WithOrganization sets the OpenAI-Organization header.
func WithOrganization(org string) Option {
	return func(o *clientOptions) {
		o.organization = org
	}
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) {
		o.maxRetries = n
	}
}

// WithRetryBaseDelay sets the base delay for retry backoff.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(o *clientOptions) {
		o.retryBaseDelay = d
	}
}

// WithLogger sets the logger for client events such as retries.
func WithLogger(l middleware.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithMiddleware appends middleware around the request path. The first
// listed wraps outermost.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(o *clientOptions) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

// WithCredentials sets the credential provider, overriding the API key
// passed to New.
func WithCredentials(creds Credentials) Option {
	return func(o *clientOptions) {
		o.credentials = creds
	}
}

// WithMaxResponseBytes caps how much of a response body is read.
func WithMaxResponseBytes(n int64) Option {
	return func(o *clientOptions) {
		o.maxResponseBytes = n
	}
}

// New creates a new client authenticating with the given API key.
func New(apiKey string, opts ...Option) *Client {
	options := clientOptions{
		baseURL:          api.DefaultBaseURL,
		timeout:          60 * time.Second,
		userAgent:        "structout-go/" + Version,
		maxRetries:       2,
		retryBaseDelay:   250 * time.Millisecond,
		logger:           middleware.NopLogger{},
		maxResponseBytes: 10 << 20,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.credentials == nil {
		options.credentials = StaticCredentials(apiKey)
	}
	if options.httpClient == nil {
		// The pooled client carries no timeout of its own so that
		// per-request contexts and streams govern their own lifetime.
		options.httpClient = transport.NewHTTPClient(transport.WithTimeout(0))
	}

	c := &Client{opts: options}
	c.handler = middleware.Chain(options.middlewares...)(c.send)
	return c
}

// CreateChatCompletion sends a chat-completions request and decodes the
// response. Non-2xx responses are returned as *api.Error.
func (c *Client) CreateChatCompletion(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error) {
	if req == nil {
		return nil, api.NewInvalidRequestError("request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Stream {
		return nil, api.NewInvalidRequestError("use CreateChatCompletionStream for streaming requests")
	}

	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	return c.handler(ctx, req)
}

// send is the innermost handler: marshal, retry, decode.
func (c *Client) send(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp *api.ChatCompletionResponse
	err = c.doWithRetry(ctx, func(ctx context.Context) error {
		r, err := c.roundTrip(ctx, payload)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// doWithRetry runs fn, retrying transient failures with quadratic
// backoff. A Retry-After hint from the server overrides the computed
// delay. Context cancellation is never retried.
func (c *Client) doWithRetry(ctx context.Context, fn func(context.Context) error) error {
	attempts := 0
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) || attempts >= c.opts.maxRetries {
			return err
		}
		attempts++

		delay := time.Duration(attempts*attempts) * c.opts.retryBaseDelay
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			delay = apiErr.RetryAfter
		}

		c.opts.logger.Debug("retrying request",
			middleware.F("attempt", attempts),
			middleware.F("delay", delay.String()),
			middleware.F("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// retryable reports whether err is worth another attempt.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	// Timeouts and other transport failures without an HTTP status are
	// transient.
	return true
}

// roundTrip performs a single HTTP exchange.
func (c *Client) roundTrip(ctx context.Context, payload []byte) (*api.ChatCompletionResponse, error) {
	httpReq, err := c.newRequest(ctx, payload)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.opts.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.opts.maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := api.DecodeErrorResponse(httpResp.StatusCode, body)
		apiErr.RetryAfter = parseRetryAfter(httpResp.Header.Get("Retry-After"))
		return nil, apiErr
	}

	var resp api.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// newRequest builds an authenticated POST to the completions endpoint.
func (c *Client) newRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	url := strings.TrimRight(c.opts.baseURL, "/") + api.PathChatCompletions
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.opts.userAgent)

	key, err := c.opts.credentials.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	if c.opts.organization != "" {
		req.Header.Set("OpenAI-Organization", c.opts.organization)
	}
	for k, v := range api.RequestMetaFromContext(ctx) {
		req.Header.Set(k, v)
	}

	return req, nil
}

// parseRetryAfter reads a Retry-After header value, either delay
// seconds or an HTTP date. Returns 0 when absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
