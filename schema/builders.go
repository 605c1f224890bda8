package schema

import "sort"

// Object returns a strict object schema over the given properties: every
// property is listed as required, in sorted order, and additional
// properties are disallowed. This is the shape the structured-output
// endpoints accept without complaint.
func Object(properties map[string]*Schema) *Schema {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)
	return &Schema{
		Type:                 KindObject.Type(),
		Properties:           properties,
		Required:             required,
		AdditionalProperties: boolPtr(false),
	}
}

// String returns a string schema.
func String() *Schema {
	return &Schema{Type: KindString.Type()}
}

// Number returns a number schema.
func Number() *Schema {
	return &Schema{Type: KindNumber.Type()}
}

// Integer returns an integer schema.
func Integer() *Schema {
	return &Schema{Type: KindInteger.Type()}
}

// Boolean returns a boolean schema.
func Boolean() *Schema {
	return &Schema{Type: KindBoolean.Type()}
}

// Array returns an array schema with the given element schema.
func Array(items *Schema) *Schema {
	return &Schema{Type: KindArray.Type(), Items: items}
}

// Enum returns a string schema restricted to the given values.
func Enum(values ...string) *Schema {
	return &Schema{Type: KindString.Type(), Enum: values}
}

// Nullable returns a schema whose type is the union of k and null.
func Nullable(k Kind) *Schema {
	return &Schema{Type: Optional(k)}
}

// AnyOf returns a schema listing the given alternatives.
func AnyOf(alternatives ...*Schema) *Schema {
	return &Schema{AnyOf: alternatives}
}

// Ref returns a reference node pointing at a reusable schema, typically
// "#/$defs/Name".
func Ref(ref string) *Schema {
	return &Schema{Ref: ref}
}

// Describe sets the description and returns s for chaining.
func (s *Schema) Describe(description string) *Schema {
	s.Description = description
	return s
}

// WithDefs attaches a side table of reusable schemas and returns s.
func (s *Schema) WithDefs(defs map[string]*Schema) *Schema {
	s.Defs = defs
	return s
}

// WithRequired replaces the required list and returns s.
func (s *Schema) WithRequired(names ...string) *Schema {
	s.Required = names
	return s
}

// WithStrict sets the strict flag and returns s.
func (s *Schema) WithStrict(strict bool) *Schema {
	s.Strict = &strict
	return s
}

func boolPtr(b bool) *bool {
	return &b
}
