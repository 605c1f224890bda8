// Package middleware provides request/response middleware for
// chat-completions clients.
//
// A middleware wraps a HandlerFunc and returns a new HandlerFunc, so
// cross-cutting behavior such as logging, retries, or throttling runs
// before and after every API call without touching call sites.
//
// # Basic Usage
//
// Compose middleware into a single wrapper with Chain. The first
// middleware listed runs outermost:
//
//	chain := middleware.Chain(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
//	handler := chain(baseHandler)
//
// Or hand the stack to the client:
//
//	c := client.New(apiKey,
//	    client.WithMiddleware(middleware.DefaultStack(logger)...),
//	)
//
// # Available Middleware
//
//   - Recover: Catches panics and converts them to errors
//   - RequestID: Injects unique request IDs into the context and headers
//   - Timeout: Enforces request deadlines
//   - Logging: Logs request details, timing, and token usage
//   - OTel: OpenTelemetry client spans and metrics
//   - RateLimit: Client-side throttling, keyed per model by default
//   - Retry: Retries transient failures with quadratic backoff
//   - SizeLimit: Rejects oversized request payloads before sending
//
// # Default Stacks
//
// Two pre-built stacks cover the common cases:
//
//	// Recover + RequestID + Logging
//	stack := middleware.DefaultStack(logger)
//
//	// Recover + RequestID + Timeout + Logging
//	stack := middleware.DefaultStackWithTimeout(logger, 30*time.Second)
//
// # Custom Middleware
//
// Any function with the Middleware signature slots into a chain:
//
//	func ModelPin(model string) middleware.Middleware {
//	    return func(next middleware.HandlerFunc) middleware.HandlerFunc {
//	        return func(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error) {
//	            req.Model = model
//	            return next(ctx, req)
//	        }
//	    }
//	}
package middleware
