// Package structout provides a client SDK for OpenAI-compatible
// chat-completions APIs with first-class Structured Outputs support.
//
// structout-go aims to be the one-import way to call these APIs, providing:
//   - A schema value model matching the structured-outputs dialect
//   - Typed structured calls with automatic schema generation
//   - Gin-style middleware chains around the request path
//   - Function-calling tools built from plain Go functions
//   - SSE streaming and realtime WebSocket sessions
//
// Basic usage:
//
//	c := structout.New(os.Getenv("OPENAI_API_KEY"))
//
//	type Recipe struct {
//	    Name  string   `json:"name"`
//	    Steps []string `json:"steps"`
//	}
//
//	result, err := structout.Structured[Recipe](ctx, c, structout.StructuredRequest{
//	    Model:    "gpt-4o",
//	    Messages: []structout.Message{structout.UserMessage("a pancake recipe")},
//	})
package structout

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/client"
	"github.com/felixgeelhaar/structout-go/middleware"
	"github.com/felixgeelhaar/structout-go/realtime"
	"github.com/felixgeelhaar/structout-go/schema"
	"github.com/felixgeelhaar/structout-go/tools"
)

// Re-export core types for convenience

// Schema describes the shape of a structured-output value.
type Schema = schema.Schema

// Type is a schema type tag: a single kind or a union of kinds.
type Type = schema.Type

// Kind is a primitive type name from the closed set the dialect accepts.
type Kind = schema.Kind

// SchemaError is a schema construction or codec error.
type SchemaError = schema.Error

// The recognized schema kinds.
const (
	KindString  = schema.KindString
	KindNumber  = schema.KindNumber
	KindInteger = schema.KindInteger
	KindBoolean = schema.KindBoolean
	KindObject  = schema.KindObject
	KindArray   = schema.KindArray
	KindNull    = schema.KindNull
)

// Schema builder re-exports.
var (
	Object   = schema.Object
	String   = schema.String
	Number   = schema.Number
	Integer  = schema.Integer
	Boolean  = schema.Boolean
	Array    = schema.Array
	Enum     = schema.Enum
	Nullable = schema.Nullable
	AnyOf    = schema.AnyOf
	Ref      = schema.Ref
	Union    = schema.Union
	Optional = schema.Optional
)

// Generate builds a schema from a Go value's type.
var Generate = schema.Generate

// GenerateFromType builds a schema from a reflect.Type.
var GenerateFromType = schema.GenerateFromType

// Wire types
type Message = api.Message
type ChatCompletionRequest = api.ChatCompletionRequest
type ChatCompletionResponse = api.ChatCompletionResponse
type ChatCompletionChunk = api.ChatCompletionChunk
type Choice = api.Choice
type Usage = api.Usage
type ResponseFormat = api.ResponseFormat
type ToolDefinition = api.Tool
type ToolCall = api.ToolCall
type FunctionCall = api.FunctionCall

// APIError is an error envelope returned by the API.
type APIError = api.Error

// Message constructor re-exports.
var (
	SystemMessage    = api.SystemMessage
	UserMessage      = api.UserMessage
	AssistantMessage = api.AssistantMessage
	ToolMessage      = api.ToolMessage
)

// Response format re-exports.
var (
	TextFormat       = api.TextFormat
	JSONObjectFormat = api.JSONObjectFormat
	SchemaFormat     = api.SchemaFormat
)

// Message roles.
const (
	RoleSystem    = api.RoleSystem
	RoleUser      = api.RoleUser
	RoleAssistant = api.RoleAssistant
	RoleTool      = api.RoleTool
)

// Finish reasons reported per choice.
const (
	FinishStop          = api.FinishStop
	FinishLength        = api.FinishLength
	FinishToolCalls     = api.FinishToolCalls
	FinishContentFilter = api.FinishContentFilter
)

// Ptr returns a pointer to v, for the optional request fields.
func Ptr[T any](v T) *T {
	return api.Ptr(v)
}

// Client is the chat-completions client.
type Client = client.Client

// Option configures a Client.
type Option = client.Option

// Credentials resolves API keys per request.
type Credentials = client.Credentials

// Client option re-exports.
var (
	WithBaseURL          = client.WithBaseURL
	WithHTTPClient       = client.WithHTTPClient
	WithTimeout          = client.WithTimeout
	WithUserAgent        = client.WithUserAgent
	WithOrganization     = client.WithOrganization
	WithMaxRetries       = client.WithMaxRetries
	WithRetryBaseDelay   = client.WithRetryBaseDelay
	WithClientLogger     = client.WithLogger
	WithMiddleware       = client.WithMiddleware
	WithCredentials      = client.WithCredentials
	WithMaxResponseBytes = client.WithMaxResponseBytes
)

// Credential helper re-exports.
var (
	StaticCredentials = client.StaticCredentials
	EnvCredentials    = client.EnvCredentials
	ChainCredentials  = client.ChainCredentials
)

// New creates a new client authenticating with the given API key.
func New(apiKey string, opts ...Option) *Client {
	return client.New(apiKey, opts...)
}

// StructuredRequest describes a structured-output call.
type StructuredRequest = client.StructuredRequest

// RefusalError reports that the model declined to produce the requested
// output.
type RefusalError = client.RefusalError

// Structured sends a chat-completions request constrained to the schema
// of T and decodes the response into T.
func Structured[T any](ctx context.Context, c *Client, req StructuredRequest) (*client.StructuredResult[T], error) {
	return client.Structured[T](ctx, c, req)
}

// Middleware types
type Middleware = middleware.Middleware
type MiddlewareHandlerFunc = middleware.HandlerFunc
type Logger = middleware.Logger
type LogField = middleware.Field
type PanicHandler = middleware.PanicHandler
type RateLimitOption = middleware.RateLimitOption

// RateLimit re-exports for convenience.
var (
	RateLimit            = middleware.RateLimit
	RateLimitGlobal      = middleware.RateLimitGlobal
	WithRateLimitKeyFunc = middleware.WithRateLimitKeyFunc
	WithRateLimitLogger  = middleware.WithRateLimitLogger
)

// SizeLimit re-exports for convenience.
type SizeLimitOption = middleware.SizeLimitOption

var (
	SizeLimit           = middleware.SizeLimit
	WithSizeLimitLogger = middleware.WithSizeLimitLogger
)

// Size limit presets.
const (
	KB = middleware.KB
	MB = middleware.MB
)

// Retry re-exports for convenience.
type RetryOption = middleware.RetryOption

var (
	Retry           = middleware.Retry
	WithRetryLogger = middleware.WithRetryLogger
)

// Middleware re-exports

// Chain composes multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// Recover returns middleware that catches panics and converts them to errors.
func Recover() Middleware {
	return middleware.Recover()
}

// RecoverWithHandler returns middleware that catches panics and calls the
// provided handler.
func RecoverWithHandler(handler PanicHandler) Middleware {
	return middleware.RecoverWithHandler(handler)
}

// Timeout returns middleware that enforces a request deadline.
func Timeout(d time.Duration) Middleware {
	return middleware.Timeout(d)
}

// RequestID returns middleware that injects a unique request ID into the
// context and the outgoing request headers.
func RequestID() Middleware {
	return middleware.RequestID()
}

// RequestIDFromContext returns the request ID from the context, or empty
// string if not set.
func RequestIDFromContext(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

// Logging returns middleware that logs request details.
func Logging(logger Logger) Middleware {
	return middleware.Logging(logger)
}

// OTel returns middleware that adds OpenTelemetry tracing and metrics.
func OTel(opts ...middleware.OTelOption) Middleware {
	return middleware.OTel(opts...)
}

// DefaultMiddleware returns the recommended production middleware stack.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.DefaultStack(logger)
}

// DefaultMiddlewareWithTimeout returns the default stack with a timeout
// middleware.
func DefaultMiddlewareWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return middleware.DefaultStackWithTimeout(logger, timeout)
}

// LogF creates a new log field with the given key and value.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}

// ToolRegistry holds built tools and dispatches calls to them.
type ToolRegistry = tools.Registry

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return tools.NewRegistry()
}

// Tool starts building a function-calling tool with the given name.
//
// Example:
//
//	type SearchInput struct {
//	    Query string `json:"query"`
//	}
//
//	tool, err := structout.Tool("search").
//	    Description("Search for items").
//	    Handler(func(ctx context.Context, input SearchInput) ([]string, error) {
//	        return []string{"result1", "result2"}, nil
//	    }).
//	    Build()
func Tool(name string) *tools.Builder {
	return tools.New(name)
}

// ToolLoopOption configures RunTools.
type ToolLoopOption func(*toolLoopOptions)

type toolLoopOptions struct {
	maxRounds int
}

// WithMaxToolRounds caps how many model round trips RunTools makes before
// giving up. The default is 8.
func WithMaxToolRounds(n int) ToolLoopOption {
	return func(o *toolLoopOptions) {
		o.maxRounds = n
	}
}

// RunTools drives a conversation until the model stops asking for tools.
// Each requested call is dispatched through the registry and its result
// appended to the conversation before the next round trip. The request's
// tool list defaults to the registry's definitions when empty. The caller's
// request is not modified.
func RunTools(ctx context.Context, c *Client, reg *ToolRegistry, req *ChatCompletionRequest, opts ...ToolLoopOption) (*ChatCompletionResponse, error) {
	options := &toolLoopOptions{maxRounds: 8}
	for _, opt := range opts {
		opt(options)
	}

	work := *req
	work.Messages = append([]Message(nil), req.Messages...)
	if len(work.Tools) == 0 {
		work.Tools = reg.Definitions()
	}

	for round := 0; round < options.maxRounds; round++ {
		resp, err := c.CreateChatCompletion(ctx, &work)
		if err != nil {
			return nil, err
		}

		calls := resp.ToolCalls()
		if len(calls) == 0 {
			return resp, nil
		}

		work.Messages = append(work.Messages, resp.Choices[0].Message)
		for _, call := range calls {
			msg, err := reg.Dispatch(ctx, call)
			if err != nil {
				return nil, err
			}
			work.Messages = append(work.Messages, msg)
		}
	}

	return nil, fmt.Errorf("tool loop did not finish after %d rounds", options.maxRounds)
}

// RealtimeSession is a live WebSocket session with the realtime API.
type RealtimeSession = realtime.Session

// RealtimeOption configures a realtime session dial.
type RealtimeOption = realtime.Option

// RealtimeEvent is a server event from a realtime session.
type RealtimeEvent = realtime.Event

// DialRealtime opens a realtime WebSocket session.
func DialRealtime(ctx context.Context, opts ...RealtimeOption) (*RealtimeSession, error) {
	return realtime.Dial(ctx, opts...)
}
