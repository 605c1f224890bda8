package schema

import (
	"encoding/json"
	"testing"
)

func TestObject(t *testing.T) {
	s := Object(map[string]*Schema{
		"b": String(),
		"a": Integer(),
		"c": Boolean(),
	})

	if !s.Type.Equal(KindObject.Type()) {
		t.Errorf("Type = %v, want object", s.Type)
	}
	if len(s.Required) != 3 || s.Required[0] != "a" || s.Required[1] != "b" || s.Required[2] != "c" {
		t.Errorf("Required = %v, want [a b c]", s.Required)
	}
	if s.AdditionalProperties == nil || *s.AdditionalProperties {
		t.Error("AdditionalProperties = nil or true, want false")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		name string
		node *Schema
		want Type
	}{
		{"String", String(), KindString.Type()},
		{"Number", Number(), KindNumber.Type()},
		{"Integer", Integer(), KindInteger.Type()},
		{"Boolean", Boolean(), KindBoolean.Type()},
		{"Array", Array(String()), KindArray.Type()},
		{"Enum", Enum("a", "b"), KindString.Type()},
		{"Nullable", Nullable(KindNumber), Optional(KindNumber)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.node.Type.Equal(tt.want) {
				t.Errorf("Type = %v, want %v", tt.node.Type, tt.want)
			}
		})
	}

	if got := Array(Integer()).Items; got == nil || !got.Type.Equal(KindInteger.Type()) {
		t.Errorf("Array items = %+v, want integer", got)
	}
	if got := Enum("x", "y").Enum; len(got) != 2 {
		t.Errorf("Enum values = %v, want [x y]", got)
	}
	if got := Ref("#/$defs/X").Ref; got != "#/$defs/X" {
		t.Errorf("Ref = %q, want #/$defs/X", got)
	}
	if got := AnyOf(String(), Integer()).AnyOf; len(got) != 2 {
		t.Errorf("AnyOf = %v, want 2 alternatives", got)
	}
}

func TestBuilderChaining(t *testing.T) {
	s := Object(map[string]*Schema{"x": String()}).
		Describe("wrapper").
		WithDefs(map[string]*Schema{"X": String()}).
		WithStrict(true)

	if s.Description != "wrapper" {
		t.Errorf("Description = %q, want %q", s.Description, "wrapper")
	}
	if len(s.Defs) != 1 {
		t.Errorf("Defs = %v, want one entry", s.Defs)
	}
	if s.Strict == nil || !*s.Strict {
		t.Error("Strict = nil or false, want true")
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Schema
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(s) {
		t.Errorf("round trip changed the tree: %s", data)
	}
}
