// Package api defines the wire types for the chat completions API.
package api

import (
	"github.com/felixgeelhaar/structout-go/schema"
)

// ChatCompletionRequest is the body of a chat completions call.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Tools          []Tool          `json:"tools,omitempty"`
	// ToolChoice is a mode string ("none", "auto", "required") or a
	// ToolChoiceFunction value forcing one function.
	ToolChoice    any            `json:"tool_choice,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty"`
	TopP          *float64       `json:"top_p,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Stop          []string       `json:"stop,omitempty"`
	Seed          *int           `json:"seed,omitempty"`
	User          string         `json:"user,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
}

// Validate checks the request for fields the API will reject outright.
func (r *ChatCompletionRequest) Validate() error {
	if r.Model == "" {
		return NewInvalidRequestError("model is required")
	}
	if len(r.Messages) == 0 {
		return NewInvalidRequestError("at least one message is required")
	}
	return nil
}

// Message is one entry in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
	// Refusal is set instead of Content when the model declines a
	// structured-output request.
	Refusal    string     `json:"refusal,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// SystemMessage creates a system role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage creates a tool role message answering the given tool call.
func ToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: content}
}

// ResponseFormat selects how the model's reply is constrained.
type ResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *JSONSchemaFormat `json:"json_schema,omitempty"`
}

// JSONSchemaFormat names a schema the reply must match. This is where a
// schema.Schema tree crosses the wire.
type JSONSchemaFormat struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schema      *schema.Schema `json:"schema,omitempty"`
	Strict      *bool          `json:"strict,omitempty"`
}

// TextFormat returns the unconstrained response format.
func TextFormat() *ResponseFormat {
	return &ResponseFormat{Type: FormatText}
}

// JSONObjectFormat returns the legacy JSON-mode format: valid JSON with no
// particular shape.
func JSONObjectFormat() *ResponseFormat {
	return &ResponseFormat{Type: FormatJSONObject}
}

// SchemaFormat returns a response format constraining the reply to s under
// the given schema name, with strict mode on.
func SchemaFormat(name string, s *schema.Schema) *ResponseFormat {
	strict := true
	return &ResponseFormat{
		Type: FormatJSONSchema,
		JSONSchema: &JSONSchemaFormat{
			Name:   name,
			Schema: s,
			Strict: &strict,
		},
	}
}

// Tool declares a function the model may call.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes one callable function and the schema of its
// arguments.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  *schema.Schema `json:"parameters,omitempty"`
	Strict      *bool          `json:"strict,omitempty"`
}

// ToolChoiceFunction forces the model to call the named function.
type ToolChoiceFunction struct {
	Type     string         `json:"type"`
	Function FunctionTarget `json:"function"`
}

// FunctionTarget names a function.
type FunctionTarget struct {
	Name string `json:"name"`
}

// ForceTool returns a tool_choice value that forces the named function.
func ForceTool(name string) ToolChoiceFunction {
	return ToolChoiceFunction{
		Type:     ToolTypeFunction,
		Function: FunctionTarget{Name: name},
	}
}

// ToolCall is the model asking for a function to be run.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatCompletionResponse is the body of a successful completions call.
type ChatCompletionResponse struct {
	ID                string   `json:"id"`
	Object            string   `json:"object"`
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	Choices           []Choice `json:"choices"`
	Usage             *Usage   `json:"usage,omitempty"`
	SystemFingerprint string   `json:"system_fingerprint,omitempty"`
}

// Text returns the content of the first choice, or "" when there is none.
func (r *ChatCompletionResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ToolCalls returns the tool calls of the first choice.
func (r *ChatCompletionResponse) ToolCalls() []ToolCall {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	return r.Choices[0].Message.ToolCalls
}

// Choice is one candidate reply.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token accounting for a call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionChunk is one streamed fragment of a reply.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	// Usage arrives on the final chunk when stream_options asks for it.
	Usage *Usage `json:"usage,omitempty"`
}

// ChunkChoice is the streamed counterpart of Choice.
type ChunkChoice struct {
	Index        int    `json:"index"`
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Delta carries the incremental fields of a streamed message.
type Delta struct {
	Role      string     `json:"role,omitempty"`
	Content   string     `json:"content,omitempty"`
	Refusal   string     `json:"refusal,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// StreamOptions tunes streamed responses.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
}

// Ptr returns a pointer to v, for the optional request fields.
func Ptr[T any](v T) *T {
	return &v
}
