package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/transport"
)

// Stream delivers chat-completion chunks as the server produces them.
type Stream struct {
	events *transport.EventReader
}

// CreateChatCompletionStream sends a streaming chat-completions request.
// The returned Stream must be closed. Streaming calls are bounded by
// ctx, not by the client timeout.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req *api.ChatCompletionRequest) (*Stream, error) {
	if req == nil {
		return nil, api.NewInvalidRequestError("request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	streamReq := *req
	streamReq.Stream = true

	payload, err := json.Marshal(&streamReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, payload)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	httpResp, err := c.opts.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, c.opts.maxResponseBytes))
		apiErr := api.DecodeErrorResponse(httpResp.StatusCode, body)
		apiErr.RetryAfter = parseRetryAfter(httpResp.Header.Get("Retry-After"))
		return nil, apiErr
	}

	return &Stream{events: transport.NewEventReader(httpResp.Body)}, nil
}

// Recv returns the next chunk. It returns io.EOF when the stream ends.
func (s *Stream) Recv() (*api.ChatCompletionChunk, error) {
	ev, err := s.events.Next()
	if err != nil {
		return nil, err
	}

	var chunk api.ChatCompletionChunk
	if err := json.Unmarshal(ev.Data, &chunk); err != nil {
		return nil, fmt.Errorf("decode chunk: %w", err)
	}
	return &chunk, nil
}

// Close releases the stream's connection.
func (s *Stream) Close() error {
	return s.events.Close()
}
