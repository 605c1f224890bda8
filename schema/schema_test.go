package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSchema_MarshalJSON(t *testing.T) {
	t.Run("ref suppresses every sibling field", func(t *testing.T) {
		f := false
		s := &Schema{
			Ref:                  "#/$defs/Person",
			Type:                 KindObject.Type(),
			Description:          "ignored",
			Properties:           map[string]*Schema{"x": String()},
			Required:             []string{"x"},
			AdditionalProperties: &f,
			Enum:                 []string{"a"},
			Strict:               &f,
		}

		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"$ref":"#/$defs/Person"}` {
			t.Errorf("Marshal = %s, want {\"$ref\":\"#/$defs/Person\"}", data)
		}
	})

	t.Run("emits exactly the present fields", func(t *testing.T) {
		f := false
		s := &Schema{
			Type:                 KindObject.Type(),
			Properties:           map[string]*Schema{"x": String()},
			Required:             []string{"x"},
			AdditionalProperties: &f,
		}

		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var result map[string]any
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("failed to parse result: %v", err)
		}

		want := []string{"type", "properties", "required", "additionalProperties"}
		if len(result) != len(want) {
			t.Errorf("emitted %d keys %v, want %d", len(result), keysOf(result), len(want))
		}
		for _, key := range want {
			if _, ok := result[key]; !ok {
				t.Errorf("missing key %q", key)
			}
		}
	})

	t.Run("empty schema encodes as an empty object", func(t *testing.T) {
		data, err := json.Marshal(&Schema{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "{}" {
			t.Errorf("Marshal = %s, want {}", data)
		}
	})

	t.Run("defs and anyOf use their wire keys", func(t *testing.T) {
		s := &Schema{
			Defs:  map[string]*Schema{"Person": String()},
			AnyOf: []*Schema{String(), Integer()},
		}

		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var result map[string]any
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("failed to parse result: %v", err)
		}
		if _, ok := result["$defs"]; !ok {
			t.Errorf("missing $defs key in %s", data)
		}
		if _, ok := result["anyOf"]; !ok {
			t.Errorf("missing anyOf key in %s", data)
		}
		if _, ok := result["defs"]; ok {
			t.Error("defs emitted without the $ prefix")
		}
	})

	t.Run("absent fields are omitted not null", func(t *testing.T) {
		data, err := json.Marshal(&Schema{Description: "just a description"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(string(data), "null") {
			t.Errorf("Marshal = %s, want no null values", data)
		}
		if string(data) != `{"description":"just a description"}` {
			t.Errorf("Marshal = %s", data)
		}
	})
}

func TestSchema_UnmarshalJSON(t *testing.T) {
	t.Run("ref short-circuits and ignores siblings", func(t *testing.T) {
		input := `{"$ref":"#/$defs/Person","type":"object","description":"lost"}`

		var s Schema
		if err := json.Unmarshal([]byte(input), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if s.Ref != "#/$defs/Person" {
			t.Errorf("Ref = %q, want %q", s.Ref, "#/$defs/Person")
		}
		if !s.Type.IsZero() {
			t.Errorf("Type = %v, want absent", s.Type)
		}
		if s.Description != "" {
			t.Errorf("Description = %q, want empty", s.Description)
		}
	})

	t.Run("ref ignores malformed siblings", func(t *testing.T) {
		// properties is the wrong shape, but $ref wins before it is read
		input := `{"$ref":"#/$defs/Person","properties":42}`

		var s Schema
		if err := json.Unmarshal([]byte(input), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Ref != "#/$defs/Person" {
			t.Errorf("Ref = %q, want %q", s.Ref, "#/$defs/Person")
		}
		if s.Properties != nil {
			t.Errorf("Properties = %v, want nil", s.Properties)
		}
	})

	t.Run("non-string ref fails naming the key", func(t *testing.T) {
		input := `{"$ref":42,"type":"string"}`

		var s Schema
		err := json.Unmarshal([]byte(input), &s)
		if err == nil {
			t.Fatal("expected an error for a numeric $ref")
		}
		var schemaErr *Error
		if !errors.As(err, &schemaErr) {
			t.Fatalf("error type = %T, want *Error", err)
		}
		if schemaErr.Code != CodeMalformedField {
			t.Errorf("Code = %d, want CodeMalformedField", schemaErr.Code)
		}
		if schemaErr.Key != "$ref" {
			t.Errorf("Key = %q, want %q", schemaErr.Key, "$ref")
		}
	})

	t.Run("null ref is absent and the node decodes inline", func(t *testing.T) {
		input := `{"$ref":null,"type":"string"}`

		var s Schema
		if err := json.Unmarshal([]byte(input), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Ref != "" {
			t.Errorf("Ref = %q, want empty", s.Ref)
		}
		if !s.Type.Equal(KindString.Type()) {
			t.Errorf("Type = %v, want string", s.Type)
		}
	})

	t.Run("enum-only document leaves everything else absent", func(t *testing.T) {
		var s Schema
		if err := json.Unmarshal([]byte(`{"enum":["a","b","c"]}`), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !s.Type.IsZero() {
			t.Errorf("Type = %v, want absent", s.Type)
		}
		if len(s.Enum) != 3 || s.Enum[0] != "a" || s.Enum[1] != "b" || s.Enum[2] != "c" {
			t.Errorf("Enum = %v, want [a b c]", s.Enum)
		}
		if s.Properties != nil || s.Items != nil || s.Required != nil ||
			s.AdditionalProperties != nil || s.Ref != "" || s.Defs != nil ||
			s.AnyOf != nil || s.Strict != nil {
			t.Error("expected every other field to be absent")
		}
	})

	t.Run("decodes a full object schema", func(t *testing.T) {
		input := `{
			"type": "object",
			"description": "a person",
			"properties": {
				"name": {"type": "string"},
				"age":  {"type": ["integer", "null"]}
			},
			"required": ["name", "age"],
			"additionalProperties": false,
			"strict": true
		}`

		var s Schema
		if err := json.Unmarshal([]byte(input), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !s.Type.Equal(KindObject.Type()) {
			t.Errorf("Type = %v, want object", s.Type)
		}
		if s.Description != "a person" {
			t.Errorf("Description = %q, want %q", s.Description, "a person")
		}
		if len(s.Properties) != 2 {
			t.Fatalf("expected 2 properties, got %d", len(s.Properties))
		}
		if !s.Properties["age"].Type.Equal(Optional(KindInteger)) {
			t.Errorf("age type = %v, want [integer,null]", s.Properties["age"].Type)
		}
		if len(s.Required) != 2 || s.Required[0] != "name" {
			t.Errorf("Required = %v, want [name age]", s.Required)
		}
		if s.AdditionalProperties == nil || *s.AdditionalProperties {
			t.Error("AdditionalProperties = nil or true, want false")
		}
		if s.Strict == nil || !*s.Strict {
			t.Error("Strict = nil or false, want true")
		}
	})

	t.Run("null valued keys are treated as absent", func(t *testing.T) {
		input := `{"type":null,"properties":null,"required":null,"strict":null}`

		var s Schema
		if err := json.Unmarshal([]byte(input), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !s.Equal(&Schema{}) {
			t.Errorf("decoded = %+v, want empty schema", s)
		}
	})

	t.Run("reports the malformed key", func(t *testing.T) {
		tests := []struct {
			name    string
			input   string
			wantKey string
		}{
			{"properties not an object", `{"properties":42}`, "properties"},
			{"property value not a schema", `{"properties":{"x":"nope"}}`, "properties"},
			{"items not a schema", `{"items":[1]}`, "items"},
			{"required not an array", `{"required":"name"}`, "required"},
			{"required member not a string", `{"required":[1]}`, "required"},
			{"enum members not strings", `{"enum":[1,2]}`, "enum"},
			{"additionalProperties not a bool", `{"additionalProperties":"no"}`, "additionalProperties"},
			{"strict not a bool", `{"strict":1}`, "strict"},
			{"defs not an object", `{"$defs":[]}`, "$defs"},
			{"anyOf not an array", `{"anyOf":{}}`, "anyOf"},
			{"anyOf member not a schema", `{"anyOf":[true]}`, "anyOf"},
			{"description not a string", `{"description":7}`, "description"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var s Schema
				err := json.Unmarshal([]byte(tt.input), &s)
				if err == nil {
					t.Fatal("expected error, got nil")
				}

				var serr *Error
				if !errors.As(err, &serr) {
					t.Fatalf("error is %T, want *Error", err)
				}
				if serr.Code != CodeMalformedField {
					t.Errorf("Code = %d, want %d", serr.Code, CodeMalformedField)
				}
				if serr.Key != tt.wantKey {
					t.Errorf("Key = %q, want %q", serr.Key, tt.wantKey)
				}
			})
		}
	})

	t.Run("bad type values propagate their own error", func(t *testing.T) {
		var s Schema
		err := json.Unmarshal([]byte(`{"type":"bogus"}`), &s)
		if !errors.Is(err, &Error{Code: CodeMalformedTypeTag}) {
			t.Errorf("error = %v, want CodeMalformedTypeTag", err)
		}

		err = json.Unmarshal([]byte(`{"type":42}`), &s)
		if !errors.Is(err, &Error{Code: CodeMalformedField}) {
			t.Errorf("error = %v, want CodeMalformedField", err)
		}
	})

	t.Run("rejects non-object documents", func(t *testing.T) {
		for _, input := range []string{`42`, `"schema"`, `[1,2]`, `true`} {
			var s Schema
			err := json.Unmarshal([]byte(input), &s)
			if err == nil {
				t.Fatalf("expected error for %s, got nil", input)
			}
			if !errors.Is(err, &Error{Code: CodeMalformedField}) {
				t.Errorf("error for %s = %v, want CodeMalformedField", input, err)
			}
		}
	})

	t.Run("caps decode depth", func(t *testing.T) {
		var b strings.Builder
		const levels = 200
		for i := 0; i < levels; i++ {
			b.WriteString(`{"items":`)
		}
		b.WriteString(`{"type":"string"}`)
		for i := 0; i < levels; i++ {
			b.WriteString(`}`)
		}

		var s Schema
		err := json.Unmarshal([]byte(b.String()), &s)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, &Error{Code: CodeExcessiveNesting}) {
			t.Errorf("error = %v, want CodeExcessiveNesting", err)
		}
	})

	t.Run("accepts realistic nesting", func(t *testing.T) {
		var b strings.Builder
		const levels = 50
		for i := 0; i < levels; i++ {
			b.WriteString(`{"items":`)
		}
		b.WriteString(`{"type":"string"}`)
		for i := 0; i < levels; i++ {
			b.WriteString(`}`)
		}

		var s Schema
		if err := json.Unmarshal([]byte(b.String()), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestSchema_RoundTrip(t *testing.T) {
	f := false
	strict := true
	trees := []struct {
		name string
		node *Schema
	}{
		{"string leaf", String()},
		{"nullable leaf", Nullable(KindInteger)},
		{"enum", Enum("red", "green", "blue")},
		{"array of objects", Array(Object(map[string]*Schema{"id": Integer()}))},
		{"anyOf", AnyOf(String(), Object(map[string]*Schema{"x": Number()}))},
		{"ref only", Ref("#/$defs/Node")},
		{
			"full object",
			&Schema{
				Type:        KindObject.Type(),
				Description: "a person",
				Properties: map[string]*Schema{
					"name": String().Describe("full name"),
					"age":  Nullable(KindInteger),
					"home": Ref("#/$defs/Address"),
				},
				Required:             []string{"name", "age", "home"},
				AdditionalProperties: &f,
				Defs: map[string]*Schema{
					"Address": Object(map[string]*Schema{
						"street": String(),
						"city":   String(),
					}),
				},
				Strict: &strict,
			},
		},
	}

	for _, tt := range trees {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.node)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var got Schema
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal %s: %v", data, err)
			}
			if !got.Equal(tt.node) {
				t.Errorf("round trip changed the tree\n encoded: %s\n decoded: %+v", data, got)
			}
		})
	}
}

func TestSchema_Equal(t *testing.T) {
	build := func() *Schema {
		f := false
		return &Schema{
			Type:        KindObject.Type(),
			Description: "a person",
			Properties: map[string]*Schema{
				"name": String(),
				"age":  Nullable(KindInteger),
			},
			Required:             []string{"name", "age"},
			AdditionalProperties: &f,
			Enum:                 nil,
			Defs:                 map[string]*Schema{"N": Integer()},
			AnyOf:                []*Schema{String(), Integer()},
		}
	}

	t.Run("independently built trees compare equal", func(t *testing.T) {
		if !build().Equal(build()) {
			t.Error("identical trees compared unequal")
		}
	})

	t.Run("map insertion order does not matter", func(t *testing.T) {
		a := &Schema{Properties: map[string]*Schema{}}
		for _, name := range []string{"a", "b", "c", "d"} {
			a.Properties[name] = String()
		}
		b := &Schema{Properties: map[string]*Schema{}}
		for _, name := range []string{"d", "c", "b", "a"} {
			b.Properties[name] = String()
		}
		if !a.Equal(b) {
			t.Error("insertion order affected equality")
		}
	})

	t.Run("nil and empty collections are equal", func(t *testing.T) {
		a := &Schema{Required: nil}
		b := &Schema{Required: []string{}}
		if !a.Equal(b) {
			t.Error("nil and empty required compared unequal")
		}
	})

	t.Run("any single change breaks equality", func(t *testing.T) {
		tr := true
		perturbations := []struct {
			name   string
			mutate func(*Schema)
		}{
			{"type", func(s *Schema) { s.Type = KindArray.Type() }},
			{"description", func(s *Schema) { s.Description = "someone" }},
			{"property type", func(s *Schema) { s.Properties["name"] = Integer() }},
			{"extra property", func(s *Schema) { s.Properties["extra"] = String() }},
			{"required entry", func(s *Schema) { s.Required[1] = "years" }},
			{"required order", func(s *Schema) { s.Required[0], s.Required[1] = s.Required[1], s.Required[0] }},
			{"additionalProperties value", func(s *Schema) { s.AdditionalProperties = &tr }},
			{"additionalProperties absent", func(s *Schema) { s.AdditionalProperties = nil }},
			{"defs entry", func(s *Schema) { s.Defs["N"] = Number() }},
			{"anyOf order", func(s *Schema) { s.AnyOf[0], s.AnyOf[1] = s.AnyOf[1], s.AnyOf[0] }},
			{"strict", func(s *Schema) { s.Strict = &tr }},
			{"ref", func(s *Schema) { s.Ref = "#/$defs/N" }},
		}

		for _, tt := range perturbations {
			t.Run(tt.name, func(t *testing.T) {
				a, b := build(), build()
				tt.mutate(b)
				if a.Equal(b) {
					t.Error("perturbed tree still compared equal")
				}
			})
		}
	})

	t.Run("nil receivers", func(t *testing.T) {
		var a *Schema
		if !a.Equal(nil) {
			t.Error("nil.Equal(nil) = false")
		}
		if a.Equal(&Schema{}) {
			t.Error("nil.Equal(empty) = true")
		}
		if (&Schema{}).Equal(nil) {
			t.Error("empty.Equal(nil) = true")
		}
	})
}

func TestSchema_Clone(t *testing.T) {
	original := Object(map[string]*Schema{
		"name": String(),
		"tags": Array(Enum("a", "b")),
	}).WithDefs(map[string]*Schema{"T": Integer()}).WithStrict(true)

	clone := original.Clone()
	if !clone.Equal(original) {
		t.Fatal("clone is not equal to the original")
	}

	clone.Properties["name"] = Integer()
	clone.Required[0] = "changed"
	*clone.Strict = false
	clone.Defs["T"] = String()

	want := Object(map[string]*Schema{
		"name": String(),
		"tags": Array(Enum("a", "b")),
	}).WithDefs(map[string]*Schema{"T": Integer()}).WithStrict(true)
	if !original.Equal(want) {
		t.Error("mutating the clone changed the original")
	}
}

func TestSchema_Validate(t *testing.T) {
	t.Run("accepts required names present in properties", func(t *testing.T) {
		s := Object(map[string]*Schema{"x": String(), "y": Integer()})
		if err := s.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects a required name missing from properties", func(t *testing.T) {
		s := Object(map[string]*Schema{"x": String()}).WithRequired("x", "ghost")
		err := s.Validate()
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, &Error{Code: CodeInvalidSchema}) {
			t.Errorf("error = %v, want CodeInvalidSchema", err)
		}
	})

	t.Run("finds violations in nested nodes", func(t *testing.T) {
		s := Object(map[string]*Schema{
			"child": Object(map[string]*Schema{"a": String()}).WithRequired("b"),
		})
		if err := s.Validate(); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("required without properties is unchecked", func(t *testing.T) {
		s := &Schema{Required: []string{"anything"}}
		if err := s.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("ref nodes are skipped", func(t *testing.T) {
		s := &Schema{Ref: "#/$defs/X", Required: []string{"ghost"}}
		if err := s.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
