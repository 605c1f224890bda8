package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/structout-go/api"
)

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc func(*api.ChatCompletionRequest) string
	logger  Logger
}

// WithRateLimitKeyFunc sets a function to extract a rate limit key from requests.
// This allows per-model or per-tenant rate limiting.
func WithRateLimitKeyFunc(fn func(*api.ChatCompletionRequest) string) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.keyFunc = fn
	}
}

// WithRateLimitLogger sets the logger for rate limit events.
func WithRateLimitLogger(l Logger) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.logger = l
	}
}

// RateLimit returns middleware that throttles outgoing requests using a
// token bucket algorithm, keyed per model by default. The rate is
// specified as requests per second. Burst allows short bursts above the
// rate limit. Requests over the limit fail with a 429-shaped error
// without reaching the API.
func RateLimit(rate int, burst int, opts ...RateLimitOption) Middleware {
	cfg := &rateLimitConfig{
		keyFunc: func(req *api.ChatCompletionRequest) string { return req.Model },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	// Create rate limiter with fortify
	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error) {
			key := cfg.keyFunc(req)

			if !limiter.Allow(ctx, key) {
				if cfg.logger != nil {
					cfg.logger.Warn("rate limit exceeded",
						Field{Key: "model", Value: req.Model},
						Field{Key: "key", Value: key},
					)
				}
				return nil, api.NewRateLimitError("client-side rate limit exceeded")
			}

			return next(ctx, req)
		}
	}
}

// RateLimitGlobal returns rate limiting middleware with a single shared
// bucket regardless of model.
func RateLimitGlobal(rate int, burst int, opts ...RateLimitOption) Middleware {
	allOpts := append([]RateLimitOption{
		WithRateLimitKeyFunc(func(_ *api.ChatCompletionRequest) string {
			return "global"
		}),
	}, opts...)
	return RateLimit(rate, burst, allOpts...)
}
