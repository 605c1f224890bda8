package middleware

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/structout-go/api"
)

// SizeLimitOption configures the size limit middleware.
type SizeLimitOption func(*sizeLimitConfig)

type sizeLimitConfig struct {
	logger Logger
}

// WithSizeLimitLogger sets the logger for size limit events.
func WithSizeLimitLogger(l Logger) SizeLimitOption {
	return func(o *sizeLimitConfig) {
		o.logger = l
	}
}

// SizeLimit returns middleware that rejects requests exceeding the specified size.
// The maxBytes parameter is the maximum allowed serialized size of the request,
// measured by marshaling it. Oversized payloads fail fast instead of earning a
// 413 from the server.
func SizeLimit(maxBytes int64, opts ...SizeLimitOption) Middleware {
	cfg := &sizeLimitConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error) {
			payload, err := json.Marshal(req)
			if err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}

			size := int64(len(payload))
			if size > maxBytes {
				if cfg.logger != nil {
					cfg.logger.Warn("request size limit exceeded",
						Field{Key: "model", Value: req.Model},
						Field{Key: "size", Value: size},
						Field{Key: "max", Value: maxBytes},
					)
				}
				return nil, api.NewInvalidRequestError(
					fmt.Sprintf("request size %d exceeds limit of %d bytes", size, maxBytes))
			}

			return next(ctx, req)
		}
	}
}

// Common size limit presets.
const (
	// KB is 1024 bytes.
	KB = 1024
	// MB is 1024 * 1024 bytes.
	MB = 1024 * 1024
)
