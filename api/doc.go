// Package api defines the wire types for the chat completions API: request
// and response envelopes, messages, tools, response formats, streaming
// chunks, and the flat error envelope.
//
// These types are plain data. The client package sends them; the schema
// package supplies the schema trees embedded in response formats and tool
// definitions.
//
// # Requests and Responses
//
// A minimal call:
//
//	req := &api.ChatCompletionRequest{
//	    Model: "gpt-4o",
//	    Messages: []api.Message{
//	        api.SystemMessage("You are terse."),
//	        api.UserMessage("What is the capital of France?"),
//	    },
//	}
//
// The response carries one or more choices; Text() shortcuts to the first:
//
//	resp.Text() // "Paris."
//
// # Structured Outputs
//
// SchemaFormat attaches a schema the reply must match:
//
//	req.ResponseFormat = api.SchemaFormat("person", schema.Object(map[string]*schema.Schema{
//	    "name": schema.String(),
//	    "age":  schema.Nullable(schema.KindInteger),
//	}))
//
// # Errors
//
// Failed calls decode into *Error. Every envelope field is optional; the
// HTTP status and any Retry-After hint are attached by the transport.
// Temporary() reports whether a retry could help:
//
//	var apiErr *api.Error
//	if errors.As(err, &apiErr) && apiErr.Temporary() {
//	    // back off and try again
//	}
package api
