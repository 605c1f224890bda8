// Package schema implements the schema value model for Structured Outputs.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// maxNestingDepth bounds decode recursion. Schema documents are often
// machine-generated and can nest deeply, but anything past this depth is
// treated as hostile input rather than a real schema.
const maxNestingDepth = 128

// Schema describes the shape of a structured-output value. All fields are
// optional; an absent field is omitted from the wire entirely.
//
// A tree is exclusively owned by whoever built it. Children in Properties,
// Items, Defs, and AnyOf belong to their parent; share a subtree between
// trees with Clone, not by aliasing. A published tree must be treated as
// immutable.
type Schema struct {
	// Type is the type tag. Absent for enum-only, ref-only, and
	// anyOf-only nodes.
	Type Type

	Description string

	Properties map[string]*Schema

	Items *Schema

	// Required lists property names the value must include. The target
	// API expects every property to be listed. Names are not checked
	// against Properties here; Validate offers that check.
	Required []string

	// AdditionalProperties set to false opts the object into the API's
	// strict mode.
	AdditionalProperties *bool

	Enum []string

	// Ref names a reusable schema from a $defs table elsewhere in the
	// same document. A node with Ref set encodes as {"$ref": ...} and
	// nothing else; every sibling field is suppressed on the wire.
	Ref string

	// Defs is a side table of reusable schemas addressed by Ref strings.
	Defs map[string]*Schema

	AnyOf []*Schema

	Strict *bool
}

// refWire is the entire wire form of a reference node.
type refWire struct {
	Ref string `json:"$ref"`
}

// schemaWire maps fields to their wire keys for inline nodes.
type schemaWire struct {
	Type                 Type               `json:"type,omitzero"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Defs                 map[string]*Schema `json:"$defs,omitempty"`
	AnyOf                []*Schema          `json:"anyOf,omitempty"`
	Strict               *bool              `json:"strict,omitempty"`
}

// MarshalJSON encodes the node for the wire. A node with Ref set encodes as
// exactly {"$ref": ...} no matter which other fields are populated.
// Otherwise only present fields are emitted; absent fields are omitted, not
// written as null.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s.Ref != "" {
		return json.Marshal(refWire{Ref: s.Ref})
	}
	return json.Marshal(schemaWire{
		Type:                 s.Type,
		Description:          s.Description,
		Properties:           s.Properties,
		Items:                s.Items,
		Required:             s.Required,
		AdditionalProperties: s.AdditionalProperties,
		Enum:                 s.Enum,
		Defs:                 s.Defs,
		AnyOf:                s.AnyOf,
		Strict:               s.Strict,
	})
}

// UnmarshalJSON decodes a schema object. When a $ref key is present the
// result has only Ref set and every other key is ignored, malformed or not,
// mirroring the encode short-circuit. Otherwise each field decodes
// independently from its wire key. A present key with the wrong JSON shape,
// $ref included, fails with a CodeMalformedField error naming the key.
// JSON null values are treated as absent.
func (s *Schema) UnmarshalJSON(data []byte) error {
	node, err := decodeSchema("", data, 0)
	if err != nil {
		return err
	}
	*s = *node
	return nil
}

func decodeSchema(key string, data []byte, depth int) (*Schema, error) {
	if depth >= maxNestingDepth {
		return nil, NewExcessiveNestingError(maxNestingDepth)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, NewMalformedFieldError(key, "a schema object")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewMalformedFieldError(key, "a schema object")
	}

	if refRaw, ok := raw["$ref"]; ok && !isNull(refRaw) {
		var ref string
		if err := json.Unmarshal(refRaw, &ref); err != nil {
			return nil, NewMalformedFieldError("$ref", "a string")
		}
		return &Schema{Ref: ref}, nil
	}

	node := &Schema{}
	if typeRaw, ok := raw["type"]; ok {
		t, err := decodeType(typeRaw)
		if err != nil {
			return nil, err
		}
		node.Type = t
	}
	if err := decodeStringField(raw, "description", &node.Description); err != nil {
		return nil, err
	}
	if propsRaw, ok := raw["properties"]; ok && !isNull(propsRaw) {
		props, err := decodeSchemaMap("properties", propsRaw, depth)
		if err != nil {
			return nil, err
		}
		node.Properties = props
	}
	if itemsRaw, ok := raw["items"]; ok && !isNull(itemsRaw) {
		items, err := decodeSchema("items", itemsRaw, depth+1)
		if err != nil {
			return nil, err
		}
		node.Items = items
	}
	if err := decodeStringsField(raw, "required", &node.Required); err != nil {
		return nil, err
	}
	if err := decodeBoolField(raw, "additionalProperties", &node.AdditionalProperties); err != nil {
		return nil, err
	}
	if err := decodeStringsField(raw, "enum", &node.Enum); err != nil {
		return nil, err
	}
	if defsRaw, ok := raw["$defs"]; ok && !isNull(defsRaw) {
		defs, err := decodeSchemaMap("$defs", defsRaw, depth)
		if err != nil {
			return nil, err
		}
		node.Defs = defs
	}
	if anyOfRaw, ok := raw["anyOf"]; ok && !isNull(anyOfRaw) {
		alts, err := decodeSchemaSlice("anyOf", anyOfRaw, depth)
		if err != nil {
			return nil, err
		}
		node.AnyOf = alts
	}
	if err := decodeBoolField(raw, "strict", &node.Strict); err != nil {
		return nil, err
	}
	return node, nil
}

func decodeSchemaMap(key string, data []byte, depth int) (map[string]*Schema, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewMalformedFieldError(key, "an object of schemas")
	}
	out := make(map[string]*Schema, len(raw))
	for name, childRaw := range raw {
		child, err := decodeSchema(key, childRaw, depth+1)
		if err != nil {
			return nil, err
		}
		out[name] = child
	}
	return out, nil
}

func decodeSchemaSlice(key string, data []byte, depth int) ([]*Schema, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, NewMalformedFieldError(key, "an array of schemas")
	}
	out := make([]*Schema, len(raws))
	for i, childRaw := range raws {
		child, err := decodeSchema(key, childRaw, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

func decodeStringField(raw map[string]json.RawMessage, key string, dst *string) error {
	data, ok := raw[key]
	if !ok || isNull(data) {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return NewMalformedFieldError(key, "a string")
	}
	return nil
}

func decodeStringsField(raw map[string]json.RawMessage, key string, dst *[]string) error {
	data, ok := raw[key]
	if !ok || isNull(data) {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return NewMalformedFieldError(key, "an array of strings")
	}
	return nil
}

func decodeBoolField(raw map[string]json.RawMessage, key string, dst **bool) error {
	data, ok := raw[key]
	if !ok || isNull(data) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return NewMalformedFieldError(key, "a boolean")
	}
	*dst = &b
	return nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// Equal reports deep structural equality. Maps compare by key set and
// per-key equality regardless of order; sequences compare element-wise in
// order; nil and empty collections are equal.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if !s.Type.Equal(other.Type) ||
		s.Description != other.Description ||
		s.Ref != other.Ref ||
		!equalBoolPtr(s.AdditionalProperties, other.AdditionalProperties) ||
		!equalBoolPtr(s.Strict, other.Strict) {
		return false
	}
	if !equalStrings(s.Required, other.Required) || !equalStrings(s.Enum, other.Enum) {
		return false
	}
	if !s.Items.Equal(other.Items) {
		return false
	}
	if !equalSchemaMap(s.Properties, other.Properties) || !equalSchemaMap(s.Defs, other.Defs) {
		return false
	}
	if len(s.AnyOf) != len(other.AnyOf) {
		return false
	}
	for i := range s.AnyOf {
		if !s.AnyOf[i].Equal(other.AnyOf[i]) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalBoolPtr(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalSchemaMap(a, b map[string]*Schema) bool {
	if len(a) != len(b) {
		return false
	}
	for name, child := range a {
		otherChild, ok := b[name]
		if !ok || !child.Equal(otherChild) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the tree. Trees are exclusively owned by
// their creator; cloning is how a subtree moves between owners.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Enum != nil {
		out.Enum = append([]string(nil), s.Enum...)
	}
	if s.AdditionalProperties != nil {
		v := *s.AdditionalProperties
		out.AdditionalProperties = &v
	}
	if s.Strict != nil {
		v := *s.Strict
		out.Strict = &v
	}
	out.Items = s.Items.Clone()
	out.Properties = cloneSchemaMap(s.Properties)
	out.Defs = cloneSchemaMap(s.Defs)
	if s.AnyOf != nil {
		out.AnyOf = make([]*Schema, len(s.AnyOf))
		for i, child := range s.AnyOf {
			out.AnyOf[i] = child.Clone()
		}
	}
	return &out
}

func cloneSchemaMap(m map[string]*Schema) map[string]*Schema {
	if m == nil {
		return nil
	}
	out := make(map[string]*Schema, len(m))
	for name, child := range m {
		out[name] = child.Clone()
	}
	return out
}

// Validate checks the documented-but-unchecked construction conventions:
// every Required name must appear in Properties when both are set,
// recursively through the tree. The codec never runs this check; the target
// API tolerates the mismatch and so do encode and decode.
func (s *Schema) Validate() error {
	if s == nil || s.Ref != "" {
		return nil
	}
	if len(s.Required) > 0 && s.Properties != nil {
		for _, name := range s.Required {
			if _, ok := s.Properties[name]; !ok {
				return NewInvalidSchemaError(fmt.Sprintf("required name %q is not in properties", name))
			}
		}
	}
	for _, child := range s.Properties {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	if err := s.Items.Validate(); err != nil {
		return err
	}
	for _, child := range s.Defs {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	for _, child := range s.AnyOf {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}
