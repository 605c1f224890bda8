// Package schema implements the schema value model for Structured Outputs.
//
// A Schema describes the shape of a JSON value the model is asked to
// produce: objects with fixed properties, arrays, primitive types,
// enumerations, unions of types, and references to reusable sub-schemas.
// The dialect is the restricted subset the structured-output endpoints
// accept, not full JSON Schema.
//
// # Type Tags
//
// A type tag is a single kind or a union of kinds. Unions encode as an
// array of kind names and cannot nest:
//
//	schema.KindString.Type()                     // "string"
//	schema.Union(schema.KindInteger, schema.KindNull) // ["integer","null"]
//	schema.Optional(schema.KindInteger)          // same as above
//
// The target API requires every object property to appear in required, so
// Optional is how a schema marks a value the model may omit: the property
// is present but allowed to be null.
//
// # Building Schemas
//
// Construct nodes directly or with the builder helpers:
//
//	s := schema.Object(map[string]*schema.Schema{
//	    "name": schema.String().Describe("the person's name"),
//	    "age":  schema.Nullable(schema.KindInteger),
//	})
//
// Object lists every property as required and disallows additional
// properties, which is what strict mode expects.
//
// # References
//
// A node with Ref set is a pointer by name into a $defs side table. On the
// wire it is exactly {"$ref": "..."} and nothing else: encoding suppresses
// every sibling field, and decoding a $ref object ignores every sibling
// key, even a malformed one. A $ref holding anything but a string fails
// like any other malformed field.
//
//	address := schema.Object(map[string]*schema.Schema{
//	    "street": schema.String(),
//	    "city":   schema.String(),
//	})
//	person := schema.Object(map[string]*schema.Schema{
//	    "home": schema.Ref("#/$defs/Address"),
//	    "work": schema.Ref("#/$defs/Address"),
//	}).WithDefs(map[string]*schema.Schema{"Address": address})
//
// # Generating Schemas from Go Types
//
// Generate builds a schema from a struct by reflection:
//
//	type Person struct {
//	    Name string `json:"name" jsonschema:"description=full name"`
//	    Age  *int   `json:"age"`
//	}
//
//	s, err := schema.Generate(Person{})
//
// Every field becomes a required property; pointer and omitempty fields
// become nullable instead of optional. Maps and cyclic types are rejected.
//
// # Equality
//
// Equal compares trees structurally: maps by key set regardless of order,
// sequences element-wise in order. Two independently built trees with the
// same contents compare equal.
//
// # Errors
//
// Decode failures are typed *Error values: CodeMalformedTypeTag for an
// unrecognized type name (carrying the offending value), CodeMalformedField
// for a wire key holding the wrong JSON shape (carrying the key), and
// CodeExcessiveNesting for documents nested past the decode limit. Nothing
// is silently defaulted; match with errors.Is:
//
//	var s schema.Schema
//	if err := json.Unmarshal(data, &s); err != nil {
//	    if errors.Is(err, &schema.Error{Code: schema.CodeMalformedTypeTag}) {
//	        // bad type name in the document
//	    }
//	}
package schema
