package realtime

import (
	"encoding/json"

	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/schema"
)

// Server event types the session emits. The protocol defines more;
// unrecognized types pass through with their raw payload intact.
const (
	EventSessionCreated   = "session.created"
	EventSessionUpdated   = "session.updated"
	EventResponseCreated  = "response.created"
	EventTextDelta        = "response.text.delta"
	EventTextDone         = "response.text.done"
	EventResponseDone     = "response.done"
	EventError            = "error"
	EventConversationItem = "conversation.item.created"
)

// Event is one message from the server. Type discriminates the payload;
// Raw holds the complete message for fields this envelope does not lift.
type Event struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitempty"`
	// Delta carries incremental text on response.text.delta events.
	Delta string `json:"delta,omitempty"`
	// Text carries the final text on response.text.done events.
	Text string `json:"text,omitempty"`
	// Error is populated on error events.
	Error *ErrorDetail `json:"error,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ErrorDetail is the error payload inside an error event.
type ErrorDetail struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// SessionConfig is the session.update payload.
type SessionConfig struct {
	Instructions    string        `json:"instructions,omitempty"`
	Modalities      []string      `json:"modalities,omitempty"`
	Temperature     *float64      `json:"temperature,omitempty"`
	Tools           []api.Tool    `json:"tools,omitempty"`
	ResponseFormat  *OutputFormat `json:"response_format,omitempty"`
	MaxOutputTokens int           `json:"max_response_output_tokens,omitempty"`
}

// OutputFormat constrains session text output, mirroring the
// completions response_format shape.
type OutputFormat struct {
	Type   string         `json:"type"`
	Name   string         `json:"name,omitempty"`
	Schema *schema.Schema `json:"schema,omitempty"`
}

// TextFormat returns an unconstrained text output format.
func TextFormat() *OutputFormat {
	return &OutputFormat{Type: api.FormatText}
}

// SchemaFormat returns an output format constrained to the given schema.
func SchemaFormat(name string, s *schema.Schema) *OutputFormat {
	return &OutputFormat{Type: api.FormatJSONSchema, Name: name, Schema: s}
}

// Client message envelopes.

type sessionUpdateMessage struct {
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

type conversationItemMessage struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

type conversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseCreateMessage struct {
	Type string `json:"type"`
}
