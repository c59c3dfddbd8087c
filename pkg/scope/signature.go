package scope

import (
	"strings"

	"github.com/leapstack-labs/surqls/pkg/types"
)

// SlotKind describes how an argument slot is typed.
type SlotKind int

// SlotKind constants.
const (
	// SlotConcrete expects Slot.Type exactly (subject to assignability).
	SlotConcrete SlotKind = iota
	// SlotTypeParam binds the generic to the argument type, bounded by Slot.Type.
	SlotTypeParam
	// SlotGenericArray binds the generic to the element type of an array
	// argument, bounded by Slot.Type.
	SlotGenericArray
	// SlotGenericOption binds the generic to the inner type of an option
	// argument, bounded by Slot.Type.
	SlotGenericOption
)

// Slot is one declared parameter of a function.
type Slot struct {
	Name     string
	Kind     SlotKind
	Type     types.Type // concrete type, or the upper bound of a generic slot
	Optional bool
}

// Expected returns the type an argument in this slot is checked against.
func (s Slot) Expected() types.Type {
	switch s.Kind {
	case SlotGenericArray:
		return types.Array(s.Type)
	case SlotGenericOption:
		return types.Option(s.Type)
	default:
		return s.Type
	}
}

// String renders the slot as "name: type".
func (s Slot) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if s.Optional {
		b.WriteByte('?')
	}
	b.WriteString(": ")
	switch s.Kind {
	case SlotTypeParam:
		b.WriteString("T")
		if s.Type.Kind != types.KindAny {
			b.WriteString(" extends " + s.Type.String())
		}
	case SlotGenericArray:
		b.WriteString("array<T>")
		if s.Type.Kind != types.KindAny {
			b.WriteString(" where T extends " + s.Type.String())
		}
	case SlotGenericOption:
		b.WriteString("option<T>")
		if s.Type.Kind != types.KindAny {
			b.WriteString(" where T extends " + s.Type.String())
		}
	default:
		b.WriteString(s.Type.String())
	}
	return b.String()
}

// ReturnKind describes how the return type is derived.
type ReturnKind int

// ReturnKind constants.
const (
	ReturnFixed         ReturnKind = iota // Returns.Type
	ReturnBound                           // the bound generic
	ReturnArrayOfBound                    // array<bound generic>
	ReturnOptionOfBound                   // option<bound generic>
)

// Returns is a function's declared result.
type Returns struct {
	Kind ReturnKind
	Type types.Type // ReturnFixed only
}

// Signature declares a builtin function.
type Signature struct {
	Name        string
	Category    Category
	Description string
	Slots       []Slot
	Returns     Returns
}

// String renders the signature, e.g. "array::len(array: array<T>) -> int".
func (f Signature) String() string {
	parts := make([]string, len(f.Slots))
	for i, s := range f.Slots {
		parts[i] = s.String()
	}
	ret := "T"
	switch f.Returns.Kind {
	case ReturnFixed:
		ret = f.Returns.Type.String()
	case ReturnArrayOfBound:
		ret = "array<T>"
	case ReturnOptionOfBound:
		ret = "option<T>"
	}
	return f.Name + "(" + strings.Join(parts, ", ") + ") -> " + ret
}

// RequiredCount returns the number of non-optional leading slots.
func (f Signature) RequiredCount() int {
	n := 0
	for _, s := range f.Slots {
		if s.Optional {
			break
		}
		n++
	}
	return n
}

// Binding is the result of matching a call's argument types against a
// signature.
type Binding struct {
	// Expected holds the type each supplied argument is checked against.
	// Arguments beyond the declared slots have no entry.
	Expected []types.Type
	// Generic is the type bound to the signature's generic, if any slot bound it.
	Generic types.Type
	Bound   bool
	// Result is the call's return type.
	Result types.Type
}

// Bind matches argument types against f in order. A generic slot whose
// argument does not satisfy its bound binds the generic to Error. Several
// generic slots are merged with SharedSuperType.
func (f Signature) Bind(args []types.Type) Binding {
	var b Binding
	for i, arg := range args {
		if i >= len(f.Slots) {
			break
		}
		slot := f.Slots[i]
		b.Expected = append(b.Expected, slot.Expected())

		candidate, ok := slot.bind(arg)
		if !ok {
			continue
		}
		if !b.Bound {
			b.Generic, b.Bound = candidate, true
		} else {
			b.Generic = types.SharedSuperType(b.Generic, candidate)
		}
	}
	b.Result = f.result(b)
	return b
}

// bind returns the generic candidate contributed by arg, and false when the
// slot is concrete or the argument carries no information.
func (s Slot) bind(arg types.Type) (types.Type, bool) {
	switch s.Kind {
	case SlotTypeParam:
		if types.IsAssignableTo(arg, s.Type) {
			return arg, true
		}
		return types.Error, true
	case SlotGenericArray:
		if arg.Kind == types.KindError {
			return types.Error, true
		}
		if arg.Kind == types.KindArray && types.IsAssignableTo(arg.Element(), s.Type) {
			return arg.Element(), true
		}
		return types.Error, true
	case SlotGenericOption:
		switch arg.Kind {
		case types.KindNull:
			return types.Error, false
		case types.KindOption:
			if types.IsAssignableTo(arg.Element(), s.Type) {
				return arg.Element(), true
			}
			return types.Error, true
		default:
			if types.IsAssignableTo(arg, s.Type) {
				return arg, true
			}
			return types.Error, true
		}
	default:
		return types.Error, false
	}
}

func (f Signature) result(b Binding) types.Type {
	if f.Returns.Kind == ReturnFixed {
		return f.Returns.Type
	}
	if !b.Bound {
		return types.Any
	}
	if b.Generic.Kind == types.KindError {
		return types.Error
	}
	switch f.Returns.Kind {
	case ReturnArrayOfBound:
		return types.Array(b.Generic)
	case ReturnOptionOfBound:
		if b.Generic.IsOption() {
			return b.Generic
		}
		return types.Option(b.Generic)
	default:
		return b.Generic
	}
}
