// Package structout benchmarks for key operations.
package structout_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/structout-go"
	"github.com/felixgeelhaar/structout-go/api"
	"github.com/felixgeelhaar/structout-go/middleware"
	"github.com/felixgeelhaar/structout-go/schema"
)

func benchmarkSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"name":    schema.String().Describe("Full name"),
		"age":     schema.Integer(),
		"emails":  schema.Array(schema.String()),
		"status":  schema.Enum("active", "inactive"),
		"address": schema.Ref("#/$defs/Address"),
	}).WithDefs(map[string]*schema.Schema{
		"Address": schema.Object(map[string]*schema.Schema{
			"street": schema.String(),
			"city":   schema.String(),
			"zip":    schema.Nullable(schema.KindString),
		}),
	})
}

// BenchmarkSchemaMarshal measures schema encoding.
func BenchmarkSchemaMarshal(b *testing.B) {
	b.Run("flat", func(b *testing.B) {
		s := schema.Object(map[string]*schema.Schema{
			"a": schema.String(),
			"b": schema.Integer(),
		})

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := json.Marshal(s); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("nested_with_defs", func(b *testing.B) {
		s := benchmarkSchema()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := json.Marshal(s); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkSchemaUnmarshal measures schema decoding.
func BenchmarkSchemaUnmarshal(b *testing.B) {
	data, err := json.Marshal(benchmarkSchema())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var s schema.Schema
		if err := json.Unmarshal(data, &s); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSchemaEqual measures deep equality on matching trees.
func BenchmarkSchemaEqual(b *testing.B) {
	left := benchmarkSchema()
	right := benchmarkSchema()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !left.Equal(right) {
			b.Fatal("trees should be equal")
		}
	}
}

// BenchmarkSchemaGeneration measures reflection-based schema generation.
func BenchmarkSchemaGeneration(b *testing.B) {
	type ComplexInput struct {
		Name        string   `json:"name"`
		Count       int      `json:"count"`
		Tags        []string `json:"tags"`
		Description string   `json:"description,omitempty" jsonschema:"description=Optional description"`
	}

	b.Run("simple_struct", func(b *testing.B) {
		type SimpleInput struct {
			A int `json:"a"`
			B int `json:"b"`
		}

		for i := 0; i < b.N; i++ {
			if _, err := schema.Generate(SimpleInput{}); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("complex_struct", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := schema.Generate(ComplexInput{}); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkMiddlewareChain measures middleware chain overhead.
func BenchmarkMiddlewareChain(b *testing.B) {
	baseHandler := func(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error) {
		return &api.ChatCompletionResponse{
			ID:     "chatcmpl-bench",
			Object: api.ObjectChatCompletion,
			Model:  req.Model,
			Choices: []api.Choice{{
				Message:      api.AssistantMessage("ok"),
				FinishReason: api.FinishStop,
			}},
		}, nil
	}

	req := &api.ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []api.Message{api.UserMessage("hi")},
	}

	b.Run("no_middleware", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := baseHandler(context.Background(), req); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("single_middleware", func(b *testing.B) {
		handler := middleware.Chain(middleware.RequestID())(baseHandler)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := handler(context.Background(), req); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("default_stack", func(b *testing.B) {
		stack := middleware.DefaultStack(middleware.NopLogger{})
		handler := middleware.Chain(stack...)(baseHandler)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := handler(context.Background(), req); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkToolCall measures tool dispatch through the reflection path.
func BenchmarkToolCall(b *testing.B) {
	type AddInput struct {
		A int `json:"a"`
		B int `json:"b"`
	}

	b.Run("plain", func(b *testing.B) {
		tool, err := structout.Tool("add").
			Handler(func(input AddInput) (int, error) {
				return input.A + input.B, nil
			}).
			Build()
		if err != nil {
			b.Fatal(err)
		}
		args := json.RawMessage(`{"a":2,"b":3}`)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := tool.Call(context.Background(), args); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("with_context", func(b *testing.B) {
		tool, err := structout.Tool("add").
			Handler(func(ctx context.Context, input AddInput) (int, error) {
				return input.A + input.B, nil
			}).
			Build()
		if err != nil {
			b.Fatal(err)
		}
		args := json.RawMessage(`{"a":2,"b":3}`)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := tool.Call(context.Background(), args); err != nil {
				b.Fatal(err)
			}
		}
	})
}
