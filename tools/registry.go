package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/structout-go/api"
)

// Registry holds a set of tools and dispatches tool calls to them.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool to the registry. Registering a second tool under
// an already taken name is an error.
func (r *Registry) Register(t *Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.name]; exists {
		return fmt.Errorf("tool %q already registered", t.name)
	}
	r.tools[t.name] = t
	r.order = append(r.order, t.name)
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the wire representations of all registered tools
// in registration order, ready for ChatCompletionRequest.Tools.
func (r *Registry) Definitions() []api.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]api.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch runs the tool named by the call and wraps its result in the
// tool role reply message the API expects on the next turn.
func (r *Registry) Dispatch(ctx context.Context, call api.ToolCall) (api.Message, error) {
	t, ok := r.Get(call.Function.Name)
	if !ok {
		return api.Message{}, fmt.Errorf("unknown tool %q", call.Function.Name)
	}

	content, err := t.Call(ctx, json.RawMessage(call.Function.Arguments))
	if err != nil {
		return api.Message{}, fmt.Errorf("tool %q: %w", call.Function.Name, err)
	}

	return api.ToolMessage(call.ID, content), nil
}
