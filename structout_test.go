package structout

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/structout-go/testutil"
)

func TestNew(t *testing.T) {
	c := New("sk-test")
	if c == nil {
		t.Fatal("expected client to be created")
	}
}

func TestSchemaFacade(t *testing.T) {
	s := Object(map[string]*Schema{
		"name": String().Describe("the name"),
		"age":  Integer(),
	})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"additionalProperties":false`) {
		t.Errorf("expected strict object, got %s", data)
	}
	if !strings.Contains(string(data), `"required":["age","name"]`) {
		t.Errorf("expected sorted required list, got %s", data)
	}

	generated, err := Generate(struct {
		Name string `json:"name"`
	}{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if kind, ok := generated.Type.Kind(); !ok || kind != KindObject {
		t.Errorf("generated Type = %v, want object", generated.Type)
	}
}

func TestRunTools(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.RespondToolCall("call_1", "get_weather", `{"city":"Berlin"}`)
	srv.RespondText("It is sunny in Berlin.")

	c := testutil.NewTestClient(t, srv)

	type weatherInput struct {
		City string `json:"city"`
	}
	tool, err := Tool("get_weather").
		Description("Current weather for a city").
		Handler(func(ctx context.Context, input weatherInput) (string, error) {
			return "sunny in " + input.City, nil
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	reg := NewToolRegistry()
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	req := &ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{UserMessage("weather in berlin?")},
	}

	resp, err := RunTools(context.Background(), c, reg, req)
	if err != nil {
		t.Fatalf("RunTools failed: %v", err)
	}
	if resp.Text() != "It is sunny in Berlin." {
		t.Errorf("Text() = %q", resp.Text())
	}
	if srv.RequestCount() != 2 {
		t.Errorf("RequestCount() = %d, want 2", srv.RequestCount())
	}

	t.Run("tool list defaults from registry", func(t *testing.T) {
		first := srv.Requests()[0]
		if len(first.Tools) != 1 {
			t.Fatalf("first request carried %d tools, want 1", len(first.Tools))
		}
		if first.Tools[0].Function.Name != "get_weather" {
			t.Errorf("tool name = %q", first.Tools[0].Function.Name)
		}
	})

	t.Run("second round carries the tool exchange", func(t *testing.T) {
		last := srv.LastRequest()
		if len(last.Messages) != 3 {
			t.Fatalf("second request carried %d messages, want 3", len(last.Messages))
		}
		if len(last.Messages[1].ToolCalls) != 1 {
			t.Errorf("assistant message carried %d tool calls, want 1", len(last.Messages[1].ToolCalls))
		}
		if last.Messages[2].Role != RoleTool {
			t.Errorf("Role = %q, want %q", last.Messages[2].Role, RoleTool)
		}
		if last.Messages[2].ToolCallID != "call_1" {
			t.Errorf("ToolCallID = %q, want %q", last.Messages[2].ToolCallID, "call_1")
		}
		if !strings.Contains(last.Messages[2].Content, "sunny in Berlin") {
			t.Errorf("tool result = %q", last.Messages[2].Content)
		}
	})

	t.Run("caller request is untouched", func(t *testing.T) {
		if len(req.Messages) != 1 {
			t.Errorf("caller messages grew to %d", len(req.Messages))
		}
		if req.Tools != nil {
			t.Error("caller tool list was filled in")
		}
	})
}

func TestRunTools_MaxRounds(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.RespondToolCall("call_1", "echo", `{"text":"a"}`)
	srv.RespondToolCall("call_2", "echo", `{"text":"b"}`)

	c := testutil.NewTestClient(t, srv)

	type echoInput struct {
		Text string `json:"text"`
	}
	tool, err := Tool("echo").
		Handler(func(ctx context.Context, input echoInput) (string, error) {
			return input.Text, nil
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	reg := NewToolRegistry()
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	req := &ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{UserMessage("loop")},
	}

	_, err = RunTools(context.Background(), c, reg, req, WithMaxToolRounds(1))
	if err == nil {
		t.Fatal("expected an error when the loop never finishes")
	}
	if !strings.Contains(err.Error(), "did not finish") {
		t.Errorf("error = %v", err)
	}
	if srv.RequestCount() != 1 {
		t.Errorf("RequestCount() = %d, want 1", srv.RequestCount())
	}
}

func TestRunTools_UnknownTool(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.RespondToolCall("call_1", "missing", `{}`)

	c := testutil.NewTestClient(t, srv)
	reg := NewToolRegistry()

	req := &ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{UserMessage("hi")},
	}

	_, err := RunTools(context.Background(), c, reg, req)
	if err == nil {
		t.Fatal("expected an error for a tool the registry does not know")
	}
	if !strings.Contains(err.Error(), "unknown tool") {
		t.Errorf("error = %v", err)
	}
}
