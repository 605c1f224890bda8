package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/structout-go/api"
)

// RetryOption configures the retry middleware.
type RetryOption func(*retryConfig)

type retryConfig struct {
	baseDelay time.Duration
	logger    Logger
}

// WithRetryBaseDelay sets the base delay for backoff between attempts.
func WithRetryBaseDelay(d time.Duration) RetryOption {
	return func(o *retryConfig) {
		o.baseDelay = d
	}
}

// WithRetryLogger sets the logger for retry events.
func WithRetryLogger(l Logger) RetryOption {
	return func(o *retryConfig) {
		o.logger = l
	}
}

// Retry returns middleware that retries transient failures with
// quadratic backoff, honoring Retry-After hints carried on API errors.
// Context cancellation is never retried. Use it to compose retry
// around handlers outside the client's built-in retry path.
func Retry(maxRetries int, opts ...RetryOption) Middleware {
	cfg := &retryConfig{
		baseDelay: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error) {
			attempts := 0
			for {
				resp, err := next(ctx, req)
				if err == nil {
					return resp, nil
				}
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if !isRetryable(err) || attempts >= maxRetries {
					return nil, err
				}
				attempts++

				delay := time.Duration(attempts*attempts) * cfg.baseDelay
				var apiErr *api.Error
				if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
					delay = apiErr.RetryAfter
				}

				if cfg.logger != nil {
					cfg.logger.Debug("retrying request",
						Field{Key: "model", Value: req.Model},
						Field{Key: "attempt", Value: attempts},
						Field{Key: "delay", Value: delay.String()},
					)
				}

				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
			}
		}
	}
}

// isRetryable reports whether err is worth another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
