package schema

import "fmt"

// Error codes for schema construction and codec failures.
const (
	// CodeMalformedTypeTag reports a type value that is not a recognized
	// kind name nor an array of recognized kind names.
	CodeMalformedTypeTag = iota + 1
	// CodeMalformedField reports a wire key whose value has the wrong JSON
	// shape.
	CodeMalformedField
	// CodeUnrepresentableUnion reports a union nested inside a union.
	// Union members are plain kinds, so the encoder cannot reach this
	// state today; the code is kept so it can report rather than panic if
	// the representation ever widens.
	CodeUnrepresentableUnion
	// CodeExcessiveNesting reports a schema document nested deeper than
	// the decode limit.
	CodeExcessiveNesting
	// CodeInvalidSchema reports a schema that violates a documented
	// construction convention, found by Validate or Generate.
	CodeInvalidSchema
)

// Error is a schema codec error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// Key is the wire key whose value was malformed, when known.
	Key string `json:"key,omitempty"`
	// Value is the offending type-tag value, when known.
	Value string `json:"value,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("schema: %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("schema: %s", e.Message)
}

// Is implements errors.Is comparison by error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewMalformedTypeTagError creates an error for an unrecognized type name.
// inUnion marks a bad member inside an array-form type.
func NewMalformedTypeTagError(value string, inUnion bool) *Error {
	msg := fmt.Sprintf("unrecognized type %q", value)
	if inUnion {
		msg = fmt.Sprintf("unrecognized type %q in union", value)
	}
	return &Error{Code: CodeMalformedTypeTag, Message: msg, Key: "type", Value: value}
}

// NewMalformedFieldError creates an error for a wire key holding the wrong
// JSON shape.
func NewMalformedFieldError(key, expected string) *Error {
	return &Error{Code: CodeMalformedField, Message: "expected " + expected, Key: key}
}

// NewExcessiveNestingError creates an error for a document nested past limit.
func NewExcessiveNestingError(limit int) *Error {
	return &Error{
		Code:    CodeExcessiveNesting,
		Message: fmt.Sprintf("schema nested deeper than %d levels", limit),
	}
}

// NewInvalidSchemaError creates a construction convention error.
func NewInvalidSchemaError(msg string) *Error {
	return &Error{Code: CodeInvalidSchema, Message: msg}
}
