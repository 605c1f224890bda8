// Package testutil provides testing utilities for chat-completions clients.
//
// This package helps developers test code built on this SDK by providing a
// fake completions server with scripted responses, request capture, and
// assertion helpers.
//
// Example usage:
//
//	func TestMyAgent(t *testing.T) {
//	    srv := testutil.NewServer(t)
//	    srv.RespondText("Hello, World")
//
//	    c := testutil.NewTestClient(t, srv)
//	    resp, err := c.CreateChatCompletion(context.Background(), &api.ChatCompletionRequest{
//	        Model:    "gpt-4o-mini",
//	        Messages: []api.Message{api.UserMessage("greet the world")},
//	    })
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    if resp.Text() != "Hello, World" {
//	        t.Errorf("Text() = %q", resp.Text())
//	    }
//	}
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/client"
	"github.com/felixgeelhaar/structout-go/schema"
	"github.com/felixgeelhaar/structout-go/transport"
)

// RoundTripFunc adapts a function to http.RoundTripper for
// transport-level fakes, re-exported for test code.
type RoundTripFunc = transport.RoundTripFunc

// responder writes one scripted response.
type responder func(w http.ResponseWriter, req *api.ChatCompletionRequest)

// capturedRequest is one request the server received.
type capturedRequest struct {
	header http.Header
	body   []byte
	req    api.ChatCompletionRequest
}

// Server is a fake completions endpoint backed by httptest.Server.
// Responses are scripted with the Respond and Fail methods and consumed
// in order; when the script runs out, a plain text completion is
// served. All methods are safe for concurrent use.
type Server struct {
	t   testing.TB
	srv *httptest.Server

	mu       sync.Mutex
	captured []capturedRequest
	script   []responder
	failures int
	failErr  *api.Error
	delay    time.Duration

	completion atomic.Int64
}

// ServerOption configures the fake server.
type ServerOption func(*Server)

// WithResponseDelay delays every response by d. Useful for timeout and
// cancellation tests.
func WithResponseDelay(d time.Duration) ServerOption {
	return func(s *Server) {
		s.delay = d
	}
}

// NewServer starts a fake completions server. It is shut down
// automatically when the test ends.
func NewServer(t testing.TB, opts ...ServerOption) *Server {
	t.Helper()

	s := &Server{t: t}
	for _, opt := range opts {
		opt(s)
	}

	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the server's base URL, suitable for client.WithBaseURL.
func (s *Server) URL() string {
	return s.srv.URL
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.t.Errorf("testutil: read request body: %v", err)
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}

	var req api.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.t.Errorf("testutil: request body is not a completions request: %v", err)
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.captured = append(s.captured, capturedRequest{
		header: r.Header.Clone(),
		body:   body,
		req:    req,
	})

	var respond responder
	switch {
	case s.failures > 0:
		s.failures--
		failErr := s.failErr
		respond = func(w http.ResponseWriter, _ *api.ChatCompletionRequest) {
			writeError(w, failErr)
		}
	case len(s.script) > 0:
		respond = s.script[0]
		s.script = s.script[1:]
	default:
		respond = s.textResponder("OK")
	}
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	respond(w, &req)
}

// RespondText scripts a completion whose first choice is plain text.
func (s *Server) RespondText(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, s.textResponder(content))
}

// RespondJSON scripts a structured completion: v is marshaled and
// served as the message content, the way a structured-outputs reply
// arrives.
func (s *Server) RespondJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.t.Fatalf("testutil: marshal structured response: %v", err)
	}
	s.RespondText(string(data))
}

// RespondRefusal scripts a completion where the model declines.
func (s *Server) RespondRefusal(refusal string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, func(w http.ResponseWriter, req *api.ChatCompletionRequest) {
		resp := s.baseResponse(req)
		resp.Choices = []api.Choice{{
			Index:        0,
			Message:      api.Message{Role: api.RoleAssistant, Refusal: refusal},
			FinishReason: api.FinishStop,
		}}
		writeJSON(w, http.StatusOK, resp)
	})
}

// RespondToolCall scripts a completion asking for the named function.
func (s *Server) RespondToolCall(callID, name, arguments string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, func(w http.ResponseWriter, req *api.ChatCompletionRequest) {
		resp := s.baseResponse(req)
		resp.Choices = []api.Choice{{
			Index: 0,
			Message: api.Message{
				Role: api.RoleAssistant,
				ToolCalls: []api.ToolCall{{
					ID:   callID,
					Type: api.ToolTypeFunction,
					Function: api.FunctionCall{
						Name:      name,
						Arguments: arguments,
					},
				}},
			},
			FinishReason: api.FinishToolCalls,
		}}
		writeJSON(w, http.StatusOK, resp)
	})
}

// RespondWith scripts a fully caller-controlled completion.
func (s *Server) RespondWith(resp api.ChatCompletionResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, func(w http.ResponseWriter, _ *api.ChatCompletionRequest) {
		writeJSON(w, http.StatusOK, &resp)
	})
}

// RespondError scripts an error envelope with the given status.
func (s *Server) RespondError(status int, errType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, func(w http.ResponseWriter, _ *api.ChatCompletionRequest) {
		writeError(w, &api.Error{
			Message: message,
			Type:    errType,
			Status:  status,
		})
	})
}

// RespondStream scripts an SSE stream delivering the chunks as text
// deltas, a final stop chunk, and the [DONE] sentinel.
func (s *Server) RespondStream(chunks ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, func(w http.ResponseWriter, req *api.ChatCompletionRequest) {
		if !req.Stream {
			s.t.Errorf("testutil: streaming response scripted but request has stream=false")
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			s.t.Errorf("testutil: response writer does not support flushing")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		id := s.nextID()
		for _, content := range chunks {
			writeChunk(w, api.ChatCompletionChunk{
				ID:     id,
				Object: api.ObjectChatCompletionChunk,
				Model:  req.Model,
				Choices: []api.ChunkChoice{{
					Index: 0,
					Delta: api.Delta{Content: content},
				}},
			})
			flusher.Flush()
		}

		writeChunk(w, api.ChatCompletionChunk{
			ID:     id,
			Object: api.ObjectChatCompletionChunk,
			Model:  req.Model,
			Choices: []api.ChunkChoice{{
				Index:        0,
				Delta:        api.Delta{},
				FinishReason: api.FinishStop,
			}},
		})
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	})
}

// FailTimes makes the next n requests fail with the given status
// before any scripted responses are served.
func (s *Server) FailTimes(n, status int) {
	s.FailWith(n, &api.Error{
		Message: "injected failure",
		Type:    api.ErrorTypeServer,
		Status:  status,
	})
}

// FailWith makes the next n requests fail with the given error. A
// nonzero RetryAfter is sent as a Retry-After header.
func (s *Server) FailWith(n int, apiErr *api.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failErr = apiErr
}

// Requests returns the decoded requests received so far.
func (s *Server) Requests() []api.ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs := make([]api.ChatCompletionRequest, len(s.captured))
	for i, c := range s.captured {
		reqs[i] = c.req
	}
	return reqs
}

// LastRequest returns the most recent decoded request, failing the test
// when nothing has arrived yet.
func (s *Server) LastRequest() *api.ChatCompletionRequest {
	s.t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.captured) == 0 {
		s.t.Fatal("testutil: no requests received")
	}
	req := s.captured[len(s.captured)-1].req
	return &req
}

// LastHeader returns a header from the most recent request.
func (s *Server) LastHeader(key string) string {
	s.t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.captured) == 0 {
		s.t.Fatal("testutil: no requests received")
	}
	return s.captured[len(s.captured)-1].header.Get(key)
}

// RequestCount returns how many requests the server has received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.captured)
}

// Reset clears captured requests, the response script, and injected
// failures.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = nil
	s.script = nil
	s.failures = 0
	s.failErr = nil
}

func (s *Server) textResponder(content string) responder {
	return func(w http.ResponseWriter, req *api.ChatCompletionRequest) {
		resp := s.baseResponse(req)
		resp.Choices = []api.Choice{{
			Index:        0,
			Message:      api.AssistantMessage(content),
			FinishReason: api.FinishStop,
		}}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) baseResponse(req *api.ChatCompletionRequest) *api.ChatCompletionResponse {
	return &api.ChatCompletionResponse{
		ID:      s.nextID(),
		Object:  api.ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   req.Model,
		Usage:   &api.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func (s *Server) nextID() string {
	n := s.completion.Add(1)
	return "chatcmpl-test-" + strconv.FormatInt(n, 10)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, apiErr *api.Error) {
	if apiErr.RetryAfter > 0 {
		secs := int(apiErr.RetryAfter / time.Second)
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	writeJSON(w, apiErr.Status, map[string]*api.Error{"error": apiErr})
}

func writeChunk(w http.ResponseWriter, chunk api.ChatCompletionChunk) {
	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// NewTestClient returns a client wired to the fake server.
func NewTestClient(t testing.TB, s *Server, opts ...client.Option) *client.Client {
	t.Helper()

	options := append([]client.Option{client.WithBaseURL(s.URL())}, opts...)
	return client.New("test-key", options...)
}

// AssertSchemaEqual fails the test when the two schemas differ,
// printing both as JSON.
func AssertSchemaEqual(t testing.TB, want, got *schema.Schema) {
	t.Helper()

	if want.Equal(got) {
		return
	}

	wantJSON, err := json.MarshalIndent(want, "", "  ")
	if err != nil {
		wantJSON = []byte(fmt.Sprintf("<marshal failed: %v>", err))
	}
	gotJSON, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		gotJSON = []byte(fmt.Sprintf("<marshal failed: %v>", err))
	}
	t.Errorf("schemas differ\nwant:\n%s\ngot:\n%s", wantJSON, gotJSON)
}
