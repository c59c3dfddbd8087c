package types

import (
	"fmt"
	"strings"
)

// Declared resolves a type written in a DEFINE FIELD clause, such as
// "option" with args [int]. Names are case-insensitive.
//
// Unknown names resolve to Any. A known generic name with the wrong number
// of arguments resolves to Error together with a descriptive error.
// record<t> takes a table name rather than a type; pass it through table.
func Declared(name string, args []Type, table string) (Type, error) {
	switch strings.ToLower(name) {
	case "any":
		return Any, nil
	case "bool", "boolean":
		return Bool, nil
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "decimal":
		return Decimal, nil
	case "number":
		return Number, nil
	case "string":
		return String, nil
	case "datetime":
		return DateTime, nil
	case "duration":
		return Duration, nil
	case "null":
		return Null, nil
	case "object":
		return ObjectOf(), nil
	case "array":
		switch len(args) {
		case 0:
			return Array(Any), nil
		case 1:
			return Array(args[0]), nil
		default:
			return Error, arityError(name, 1, len(args))
		}
	case "option":
		if len(args) != 1 {
			return Error, arityError(name, 1, len(args))
		}
		return Option(args[0]), nil
	case "record":
		if table == "" {
			return Error, fmt.Errorf("record type requires a table name")
		}
		return Record(table), nil
	default:
		return Any, nil
	}
}

func arityError(name string, want, got int) error {
	return fmt.Errorf("type %s expects %d argument(s), got %d", strings.ToLower(name), want, got)
}
