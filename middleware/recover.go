package middleware

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/structout-go/api"
)

// PanicHandler is called when a panic is recovered.
type PanicHandler func(ctx context.Context, req *api.ChatCompletionRequest, panicVal any) (*api.ChatCompletionResponse, error)

// Recover returns middleware that catches panics and converts them to errors.
// The panic value is included in the error message for debugging.
func Recover() Middleware {
	return RecoverWithHandler(defaultPanicHandler)
}

// RecoverWithHandler returns middleware that catches panics and calls the provided handler.
// This allows for custom panic handling such as logging or alerting.
func RecoverWithHandler(handler PanicHandler) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *api.ChatCompletionRequest) (resp *api.ChatCompletionResponse, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp, err = handler(ctx, req, r)
				}
			}()
			return next(ctx, req)
		}
	}
}

// defaultPanicHandler converts a panic value to an error.
func defaultPanicHandler(_ context.Context, _ *api.ChatCompletionRequest, panicVal any) (*api.ChatCompletionResponse, error) {
	switch v := panicVal.(type) {
	case error:
		return nil, fmt.Errorf("panic: %w", v)
	default:
		return nil, fmt.Errorf("panic: %v", v)
	}
}
