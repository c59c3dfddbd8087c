// Package types implements the structural type model used by the checker.
//
// A Type is a small tagged value: scalar kinds carry no payload, Array and
// Option wrap an element type, Record names a table and Object lists fields.
// All functions in this package are pure.
package types

import (
	"strings"
)

// Kind identifies the shape of a Type.
type Kind uint8

// Type kinds.
const (
	// KindError marks a value whose type could not be determined. It is
	// assignable to and from everything so one root cause is reported once.
	KindError Kind = iota
	KindNull
	KindAny
	KindBool
	KindInt
	KindFloat
	KindDecimal
	KindNumber
	KindString
	KindDateTime
	KindDuration
	KindArray
	KindOption
	KindRecord
	KindObject
)

var kindNames = [...]string{
	KindError:    "error",
	KindNull:     "null",
	KindAny:      "any",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindNumber:   "number",
	KindString:   "string",
	KindDateTime: "datetime",
	KindDuration: "duration",
	KindArray:    "array",
	KindOption:   "option",
	KindRecord:   "record",
	KindObject:   "object",
}

// String returns the lower-case SurrealQL spelling of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Type is a SurrealQL value type.
type Type struct {
	Kind   Kind
	Elem   *Type   // Array, Option
	Table  string  // Record
	Fields []Field // Object
}

// Scalar types.
var (
	Error    = Type{Kind: KindError}
	Null     = Type{Kind: KindNull}
	Any      = Type{Kind: KindAny}
	Bool     = Type{Kind: KindBool}
	Int      = Type{Kind: KindInt}
	Float    = Type{Kind: KindFloat}
	Decimal  = Type{Kind: KindDecimal}
	Number   = Type{Kind: KindNumber}
	String   = Type{Kind: KindString}
	DateTime = Type{Kind: KindDateTime}
	Duration = Type{Kind: KindDuration}
)

// Array returns the type array<elem>.
func Array(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

// Option returns the type option<elem>.
func Option(elem Type) Type {
	return Type{Kind: KindOption, Elem: &elem}
}

// Record returns the type record<table>.
func Record(table string) Type {
	return Type{Kind: KindRecord, Table: table}
}

// ObjectOf returns an object type with the given fields.
func ObjectOf(fields ...Field) Type {
	return Type{Kind: KindObject, Fields: fields}
}

// IsError reports whether t is the error type.
func (t Type) IsError() bool { return t.Kind == KindError }

// IsOption reports whether t is option<_>.
func (t Type) IsOption() bool { return t.Kind == KindOption }

// IsNumeric reports whether t sits on the numeric lattice.
func (t Type) IsNumeric() bool { return numericRank(t) > 0 }

// Element returns the wrapped type of an Array or Option, or Error.
func (t Type) Element() Type {
	if t.Elem == nil {
		return Error
	}
	return *t.Elem
}

// Object returns the fields of an object type as an Object.
func (t Type) Object() Object {
	return Object{Fields: t.Fields}
}

// Unwrap strips any number of option layers.
func (t Type) Unwrap() Type {
	for t.Kind == KindOption && t.Elem != nil {
		t = *t.Elem
	}
	return t
}

// String returns the declared-type spelling, e.g. "option<array<int>>".
func (t Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Type) write(b *strings.Builder) {
	switch t.Kind {
	case KindArray, KindOption:
		b.WriteString(t.Kind.String())
		b.WriteByte('<')
		t.Element().write(b)
		b.WriteByte('>')
	case KindRecord:
		b.WriteString("record<")
		b.WriteString(t.Table)
		b.WriteByte('>')
	default:
		b.WriteString(t.Kind.String())
	}
}

// Equal reports structural equality. Object fields compare by name,
// independent of declaration order.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindArray, KindOption:
		return Equal(a.Element(), b.Element())
	case KindRecord:
		return a.Table == b.Table
	case KindObject:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		bo := b.Object()
		for _, f := range a.Fields {
			g, ok := bo.Field(f.Name)
			if !ok || !Equal(f.Type, g.Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// numericRank places numeric kinds on the widening lattice
// int < float < decimal < number. Non-numeric kinds rank 0.
func numericRank(t Type) int {
	switch t.Kind {
	case KindInt:
		return 1
	case KindFloat:
		return 2
	case KindDecimal:
		return 3
	case KindNumber:
		return 4
	default:
		return 0
	}
}
