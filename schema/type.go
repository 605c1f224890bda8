package schema

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind is a primitive type name from the closed set the structured-output
// dialect accepts.
type Kind string

// The recognized kinds. Nothing else is valid on the wire.
const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindNull    Kind = "null"
)

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean, KindObject, KindArray, KindNull:
		return true
	}
	return false
}

// Type returns the type tag for the single kind k.
func (k Kind) Type() Type {
	return Type{kind: k}
}

// Type is a schema type tag: a single primitive kind or a union of kinds.
// The zero value means no type is set. Union members are plain kinds, never
// types, so a union cannot contain another union.
//
// A single kind and a one-member union are distinct values: they encode as
// "string" and ["string"] respectively and do not compare equal.
type Type struct {
	kind  Kind
	union []Kind
}

// Union returns a type tag naming each kind as an alternative. Member order
// is preserved on the wire.
func Union(kinds ...Kind) Type {
	members := make([]Kind, len(kinds))
	copy(members, kinds)
	return Type{union: members}
}

// Optional returns the union of k and null. The target API requires every
// object property to be present, so a nullable type is how a schema says
// "this value may be missing".
func Optional(k Kind) Type {
	return Union(k, KindNull)
}

// IsZero reports whether no type is set. Zero types are omitted from
// encoded schemas.
func (t Type) IsZero() bool {
	return t.kind == "" && t.union == nil
}

// IsUnion reports whether t is a union of kinds.
func (t Type) IsUnion() bool {
	return t.union != nil
}

// Kind returns the single kind and true when t is neither a union nor zero.
func (t Type) Kind() (Kind, bool) {
	if t.union != nil || t.kind == "" {
		return "", false
	}
	return t.kind, true
}

// Kinds returns a copy of the union members in order, or nil when t is not
// a union.
func (t Type) Kinds() []Kind {
	if t.union == nil {
		return nil
	}
	members := make([]Kind, len(t.union))
	copy(members, t.union)
	return members
}

// Equal reports structural equality: the same variant and, for unions, the
// same members in the same order.
func (t Type) Equal(other Type) bool {
	if (t.union == nil) != (other.union == nil) {
		return false
	}
	if t.union == nil {
		return t.kind == other.kind
	}
	if len(t.union) != len(other.union) {
		return false
	}
	for i := range t.union {
		if t.union[i] != other.union[i] {
			return false
		}
	}
	return true
}

// String renders the tag for logs and test output.
func (t Type) String() string {
	if t.union == nil {
		return string(t.kind)
	}
	names := make([]string, len(t.union))
	for i, k := range t.union {
		names[i] = string(k)
	}
	return "[" + strings.Join(names, ",") + "]"
}

// MarshalJSON encodes a single kind as a bare string and a union as an
// array of kind names in member order. The zero type encodes as null; a
// Schema omits it instead of emitting it.
func (t Type) MarshalJSON() ([]byte, error) {
	if t.union != nil {
		return json.Marshal(t.union)
	}
	if t.kind == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t.kind))
}

// UnmarshalJSON decodes a bare string or an array of strings against the
// closed kind set. JSON null decodes to the zero type.
func (t *Type) UnmarshalJSON(data []byte) error {
	parsed, err := decodeType(data)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func decodeType(data []byte) (Type, error) {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		return Type{}, nil
	}
	if len(data) == 0 {
		return Type{}, NewMalformedFieldError("type", "a string or an array of strings")
	}
	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return Type{}, NewMalformedFieldError("type", "a string or an array of strings")
		}
		k := Kind(name)
		if !k.Valid() {
			return Type{}, NewMalformedTypeTagError(name, false)
		}
		return Type{kind: k}, nil
	case '[':
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return Type{}, NewMalformedFieldError("type", "a string or an array of strings")
		}
		members := make([]Kind, len(names))
		for i, name := range names {
			k := Kind(name)
			if !k.Valid() {
				return Type{}, NewMalformedTypeTagError(name, true)
			}
			members[i] = k
		}
		return Type{union: members}, nil
	default:
		return Type{}, NewMalformedFieldError("type", "a string or an array of strings")
	}
}
