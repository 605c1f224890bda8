package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Generate creates a schema from a Go value, restricted to what the
// structured-output endpoints accept: every object property is required,
// additional properties are disallowed, and optionality is expressed by
// unioning the property type with null rather than by leaving the property
// out.
//
// Pointer fields and fields tagged omitempty or omitzero become nullable.
// Struct tags are honored the usual way: the json tag controls naming and
// exclusion, and jsonschema:"description=...,enum=a|b|c" fills in the
// matching schema fields.
func Generate(v any) (*Schema, error) {
	return GenerateFromType(reflect.TypeOf(v))
}

// GenerateFromType creates a schema from a reflect.Type.
func GenerateFromType(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, NewInvalidSchemaError("cannot generate a schema for an untyped nil")
	}
	g := &generator{}
	return g.fromType(t, false)
}

// generator tracks the struct types on the current path so cycles fail
// instead of recursing forever. Schema trees are acyclic.
type generator struct {
	stack []reflect.Type
}

func (g *generator) fromType(t reflect.Type, nullable bool) (*Schema, error) {
	if t.Kind() == reflect.Ptr {
		return g.fromType(t.Elem(), true)
	}
	if t == timeType {
		return leaf(KindString, nullable), nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return g.structSchema(t, nullable)
	case reflect.String:
		return leaf(KindString, nullable), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return leaf(KindInteger, nullable), nil
	case reflect.Float32, reflect.Float64:
		return leaf(KindNumber, nullable), nil
	case reflect.Bool:
		return leaf(KindBoolean, nullable), nil
	case reflect.Slice, reflect.Array:
		return g.arraySchema(t, nullable)
	case reflect.Map:
		return nil, NewInvalidSchemaError("map types are not supported; define a struct with fixed fields")
	default:
		return nil, NewInvalidSchemaError(fmt.Sprintf("unsupported Go kind %s", t.Kind()))
	}
}

func (g *generator) structSchema(t reflect.Type, nullable bool) (*Schema, error) {
	for _, seen := range g.stack {
		if seen == t {
			return nil, NewInvalidSchemaError(fmt.Sprintf("type %s refers back to itself; schema trees are acyclic", t))
		}
	}
	g.stack = append(g.stack, t)
	defer func() { g.stack = g.stack[:len(g.stack)-1] }()

	out := leaf(KindObject, nullable)
	out.Properties = make(map[string]*Schema, t.NumField())
	out.AdditionalProperties = boolPtr(false)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		name, omitted := fieldName(field)
		if name == "-" {
			continue
		}

		fieldSchema, err := g.fromType(field.Type, omitted)
		if err != nil {
			return nil, err
		}
		applySchemaTag(field.Tag.Get("jsonschema"), fieldSchema)

		out.Properties[name] = fieldSchema
		out.Required = append(out.Required, name)
	}

	return out, nil
}

func (g *generator) arraySchema(t reflect.Type, nullable bool) (*Schema, error) {
	// []byte marshals as a base64 string, not an array
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return leaf(KindString, nullable), nil
	}
	items, err := g.fromType(t.Elem(), false)
	if err != nil {
		return nil, err
	}
	out := leaf(KindArray, nullable)
	out.Items = items
	return out, nil
}

func leaf(k Kind, nullable bool) *Schema {
	if nullable {
		return &Schema{Type: Optional(k)}
	}
	return &Schema{Type: k.Type()}
}

// fieldName resolves the wire name from the json tag and reports whether
// the field is marked omitempty or omitzero, which makes it nullable in
// the generated schema.
func fieldName(field reflect.StructField) (name string, omitted bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "-", false
	}

	name = field.Name
	if tag == "" {
		return name, false
	}

	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitted = true
		}
	}
	return name, omitted
}

func applySchemaTag(tag string, s *Schema) {
	if tag == "" {
		return
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)

		if strings.HasPrefix(part, "description=") {
			s.Description = strings.TrimPrefix(part, "description=")
			continue
		}

		if strings.HasPrefix(part, "enum=") {
			s.Enum = strings.Split(strings.TrimPrefix(part, "enum="), "|")
			continue
		}
	}
}
