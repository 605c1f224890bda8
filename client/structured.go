package client

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/schema"
)

// StructuredRequest describes a structured-output call.
type StructuredRequest struct {
	Model    string
	Messages []api.Message

	// SchemaName names the response schema. Defaults to "response".
	SchemaName string

	// Schema constrains the model output. When nil it is generated
	// from the result type via schema.Generate.
	Schema *schema.Schema

	// Temperature overrides the model default when non-nil.
	Temperature *float64
}

// StructuredResult carries a decoded structured-output response.
type StructuredResult[T any] struct {
	// Value is the decoded output.
	Value T

	// Raw is the JSON text the model produced.
	Raw string

	// Response is the full API response, for usage and metadata.
	Response *api.ChatCompletionResponse
}

// RefusalError reports that the model declined to produce the
// requested output.
type RefusalError struct {
	Refusal string
}

// Error implements the error interface.
func (e *RefusalError) Error() string {
	return "model refused: " + e.Refusal
}

// Structured sends a chat-completions request constrained to the
// schema of T and decodes the response into T. When the request
// carries no schema, one is generated from T.
func Structured[T any](ctx context.Context, c *Client, req StructuredRequest) (*StructuredResult[T], error) {
	s := req.Schema
	if s == nil {
		generated, err := schema.GenerateFromType(reflect.TypeOf((*T)(nil)).Elem())
		if err != nil {
			return nil, fmt.Errorf("generate schema: %w", err)
		}
		s = generated
	}

	name := req.SchemaName
	if name == "" {
		name = "response"
	}

	chatReq := &api.ChatCompletionRequest{
		Model:          req.Model,
		Messages:       req.Messages,
		ResponseFormat: api.SchemaFormat(name, s),
		Temperature:    req.Temperature,
	}

	resp, err := c.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	result := &StructuredResult[T]{Response: resp}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return result, &RefusalError{Refusal: msg.Refusal}
	}

	result.Raw = msg.Content
	if err := json.Unmarshal([]byte(msg.Content), &result.Value); err != nil {
		return result, fmt.Errorf("decode structured content: %w", err)
	}
	return result, nil
}
