package scope

import "github.com/leapstack-labs/surqls/pkg/types"

// Category classifies builtin functions by namespace.
type Category string

// Category constants for the builtin function namespaces.
const (
	CategoryAggregate Category = "aggregate"
	CategoryArray     Category = "array"
	CategoryMath      Category = "math"
	CategoryString    Category = "string"
	CategoryTime      Category = "time"
	CategoryType      Category = "type"
	CategoryRand      Category = "rand"
)

func concrete(name string, t types.Type) Slot {
	return Slot{Name: name, Kind: SlotConcrete, Type: t}
}

func param(name string, bound types.Type) Slot {
	return Slot{Name: name, Kind: SlotTypeParam, Type: bound}
}

func arrayOf(name string, bound types.Type) Slot {
	return Slot{Name: name, Kind: SlotGenericArray, Type: bound}
}

func optionOf(name string, bound types.Type) Slot {
	return Slot{Name: name, Kind: SlotGenericOption, Type: bound}
}

func fixed(t types.Type) Returns { return Returns{Kind: ReturnFixed, Type: t} }

var (
	sameAsBound     = Returns{Kind: ReturnBound}
	arrayOfBound    = Returns{Kind: ReturnArrayOfBound}
	optionOfBound   = Returns{Kind: ReturnOptionOfBound}
	optionalAnySlot = Slot{Name: "value", Kind: SlotConcrete, Type: types.Any, Optional: true}
)

// catalog lists the builtin functions known to the checker.
var catalog = []Signature{
	// ==================== AGGREGATE ====================
	{Name: "count", Category: CategoryAggregate, Description: "Count records, or truthy values", Slots: []Slot{optionalAnySlot}, Returns: fixed(types.Int)},

	// ==================== ARRAY ====================
	{Name: "array::len", Category: CategoryArray, Description: "Length of an array", Slots: []Slot{arrayOf("array", types.Any)}, Returns: fixed(types.Int)},
	{Name: "array::first", Category: CategoryArray, Description: "First element of an array", Slots: []Slot{arrayOf("array", types.Any)}, Returns: sameAsBound},
	{Name: "array::last", Category: CategoryArray, Description: "Last element of an array", Slots: []Slot{arrayOf("array", types.Any)}, Returns: sameAsBound},
	{Name: "array::pop", Category: CategoryArray, Description: "Last element of an array, or NONE when empty", Slots: []Slot{arrayOf("array", types.Any)}, Returns: optionOfBound},
	{Name: "array::distinct", Category: CategoryArray, Description: "Unique elements of an array", Slots: []Slot{arrayOf("array", types.Any)}, Returns: arrayOfBound},
	{Name: "array::flatten", Category: CategoryArray, Description: "Flatten one level of nested arrays", Slots: []Slot{arrayOf("array", types.Array(types.Any))}, Returns: sameAsBound},
	{Name: "array::push", Category: CategoryArray, Description: "Append a value to an array", Slots: []Slot{arrayOf("array", types.Any), param("value", types.Any)}, Returns: arrayOfBound},

	// ==================== MATH ====================
	{Name: "math::sum", Category: CategoryMath, Description: "Sum of numbers", Slots: []Slot{arrayOf("values", types.Number)}, Returns: sameAsBound},
	{Name: "math::max", Category: CategoryMath, Description: "Largest number", Slots: []Slot{arrayOf("values", types.Number)}, Returns: sameAsBound},
	{Name: "math::min", Category: CategoryMath, Description: "Smallest number", Slots: []Slot{arrayOf("values", types.Number)}, Returns: sameAsBound},
	{Name: "math::mean", Category: CategoryMath, Description: "Mean of numbers", Slots: []Slot{arrayOf("values", types.Number)}, Returns: fixed(types.Float)},
	{Name: "math::abs", Category: CategoryMath, Description: "Absolute value", Slots: []Slot{param("value", types.Number)}, Returns: sameAsBound},

	// ==================== STRING ====================
	{Name: "string::len", Category: CategoryString, Description: "Length of a string", Slots: []Slot{concrete("string", types.String)}, Returns: fixed(types.Int)},
	{Name: "string::lowercase", Category: CategoryString, Description: "Lower-case a string", Slots: []Slot{concrete("string", types.String)}, Returns: fixed(types.String)},
	{Name: "string::uppercase", Category: CategoryString, Description: "Upper-case a string", Slots: []Slot{concrete("string", types.String)}, Returns: fixed(types.String)},
	{Name: "string::trim", Category: CategoryString, Description: "Trim surrounding whitespace", Slots: []Slot{concrete("string", types.String)}, Returns: fixed(types.String)},
	{Name: "string::concat", Category: CategoryString, Description: "Concatenate two strings", Slots: []Slot{concrete("string", types.String), concrete("other", types.String)}, Returns: fixed(types.String)},

	// ==================== TIME ====================
	{Name: "time::now", Category: CategoryTime, Description: "Current datetime", Returns: fixed(types.DateTime)},

	// ==================== TYPE ====================
	{Name: "type::string", Category: CategoryType, Description: "Convert a value to a string", Slots: []Slot{concrete("value", types.Any)}, Returns: fixed(types.String)},
	{Name: "type::int", Category: CategoryType, Description: "Convert a value to an int", Slots: []Slot{concrete("value", types.Any)}, Returns: fixed(types.Int)},
	{Name: "type::thing", Category: CategoryType, Description: "Build a record id from a table and an id", Slots: []Slot{concrete("table", types.String), concrete("id", types.Any)}, Returns: fixed(types.Any)},
	{Name: "type::is::none", Category: CategoryType, Description: "Whether an optional value is NONE", Slots: []Slot{optionOf("value", types.Any)}, Returns: fixed(types.Bool)},

	// ==================== RAND ====================
	{Name: "rand::uuid", Category: CategoryRand, Description: "Random UUID string", Returns: fixed(types.String)},
}

// Builtins returns a fresh name-indexed copy of the builtin catalog.
func Builtins() map[string]Signature {
	out := make(map[string]Signature, len(catalog))
	for _, f := range catalog {
		out[f.Name] = f
	}
	return out
}
