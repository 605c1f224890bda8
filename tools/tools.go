// Package tools builds typed function-calling tools from Go functions.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/schema"
)

// Tool is a callable function the model may invoke through tool calls.
type Tool struct {
	name        string
	description string
	parameters  *schema.Schema
	inputType   reflect.Type
	handler     any
	hasContext  bool
	pointerIn   bool
}

// Builder provides a fluent API for building tools.
type Builder struct {
	tool *Tool
	err  error
}

// New starts building a tool with the given name.
func New(name string) *Builder {
	b := &Builder{tool: &Tool{name: name}}
	if name == "" {
		b.err = fmt.Errorf("tool name is required")
	}
	return b
}

// Description sets the tool description.
func (b *Builder) Description(desc string) *Builder {
	if b.err != nil {
		return b
	}
	b.tool.description = desc
	return b
}

// Parameters sets an explicit argument schema. When omitted, the schema
// is generated from the handler's input struct.
func (b *Builder) Parameters(s *schema.Schema) *Builder {
	if b.err != nil {
		return b
	}
	b.tool.parameters = s
	return b
}

// Handler sets the tool handler function.
// Handler signature must be one of:
//   - func(input T) (R, error)
//   - func(ctx context.Context, input T) (R, error)
func (b *Builder) Handler(fn any) *Builder {
	if b.err != nil {
		return b
	}

	if err := b.validateHandler(fn); err != nil {
		b.err = err
		return b
	}

	b.tool.handler = fn
	return b
}

// Build finalizes the tool. Errors accumulated by earlier builder calls
// are returned here.
func (b *Builder) Build() (*Tool, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.tool.handler == nil {
		return nil, fmt.Errorf("tool %q has no handler", b.tool.name)
	}

	if b.tool.parameters == nil {
		params, err := schema.GenerateFromType(b.tool.inputType)
		if err != nil {
			return nil, fmt.Errorf("generate parameters for tool %q: %w", b.tool.name, err)
		}
		b.tool.parameters = params
	}

	return b.tool, nil
}

// validateHandler validates the handler function signature.
func (b *Builder) validateHandler(fn any) error {
	fnType := reflect.TypeOf(fn)

	if fnType == nil || fnType.Kind() != reflect.Func {
		return fmt.Errorf("handler must be a function, got %T", fn)
	}

	// Check number of inputs
	numIn := fnType.NumIn()
	if numIn < 1 || numIn > 2 {
		return fmt.Errorf("handler must have 1 or 2 parameters, got %d", numIn)
	}

	// Check for context as first param
	var inputParamIdx int
	if numIn == 2 {
		if !fnType.In(0).Implements(reflect.TypeOf((*context.Context)(nil)).Elem()) {
			return fmt.Errorf("first parameter must be context.Context when using 2 parameters")
		}
		b.tool.hasContext = true
		inputParamIdx = 1
	} else {
		inputParamIdx = 0
	}

	// Store input type
	inputType := fnType.In(inputParamIdx)
	if inputType.Kind() == reflect.Ptr {
		inputType = inputType.Elem()
		b.tool.pointerIn = true
	}
	b.tool.inputType = inputType

	// Check outputs
	if fnType.NumOut() != 2 {
		return fmt.Errorf("handler must return (result, error), got %d return values", fnType.NumOut())
	}

	// Second return must be error
	errType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errType) {
		return fmt.Errorf("second return value must be error")
	}

	return nil
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.name
}

// Definition returns the wire representation advertised to the model.
func (t *Tool) Definition() api.Tool {
	return api.Tool{
		Type: api.ToolTypeFunction,
		Function: api.ToolFunction{
			Name:        t.name,
			Description: t.description,
			Parameters:  t.parameters,
		},
	}
}

// Call runs the tool handler with the given JSON arguments and returns
// the handler result marshaled to JSON.
func (t *Tool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	// Create input value
	inputPtr := reflect.New(t.inputType)
	if err := json.Unmarshal(args, inputPtr.Interface()); err != nil {
		return "", fmt.Errorf("parse arguments for tool %q: %w", t.name, err)
	}

	// Build arguments
	fnVal := reflect.ValueOf(t.handler)
	var callArgs []reflect.Value

	if t.hasContext {
		callArgs = append(callArgs, reflect.ValueOf(ctx))
	}

	// Pass the input in whichever form the handler declared
	if t.pointerIn {
		callArgs = append(callArgs, inputPtr)
	} else {
		callArgs = append(callArgs, inputPtr.Elem())
	}

	// Call handler
	results := fnVal.Call(callArgs)

	// Extract result and error
	if errVal := results[1].Interface(); errVal != nil {
		return "", errVal.(error)
	}

	out, err := json.Marshal(results[0].Interface())
	if err != nil {
		return "", fmt.Errorf("marshal result of tool %q: %w", t.name, err)
	}
	return string(out), nil
}
