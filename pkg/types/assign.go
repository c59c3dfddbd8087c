package types

// IsAssignableTo reports whether a value of type value may be used where
// target is expected.
//
// Rules:
//   - Error is assignable to and from everything.
//   - Any accepts everything and is itself accepted only by Any.
//   - option<T> accepts null, T, and option<U> where U is assignable to T.
//   - array<T> is assignable to array<U> when T is assignable to U.
//   - An object is assignable to another when every field of the target has a
//     same-named field in the value with an assignable type. Extra fields are
//     ignored.
//   - record<a> is assignable to record<b> only when a == b.
//   - Numbers widen one way: int, float, decimal, number.
func IsAssignableTo(value, target Type) bool {
	if value.Kind == KindError || target.Kind == KindError {
		return true
	}
	if value.Kind == KindAny {
		return target.Kind == KindAny
	}
	if Equal(value, target) {
		return true
	}

	switch target.Kind {
	case KindAny:
		return true
	case KindOption:
		switch value.Kind {
		case KindNull:
			return true
		case KindOption:
			return IsAssignableTo(value.Element(), target.Element())
		default:
			return IsAssignableTo(value, target.Element())
		}
	case KindArray:
		return value.Kind == KindArray && IsAssignableTo(value.Element(), target.Element())
	case KindObject:
		if value.Kind != KindObject {
			return false
		}
		vo := value.Object()
		for _, f := range target.Fields {
			vf, ok := vo.Field(f.Name)
			if !ok || !IsAssignableTo(vf.Type, f.Type) {
				return false
			}
		}
		return true
	case KindRecord:
		return value.Kind == KindRecord && value.Table == target.Table
	case KindInt, KindFloat, KindDecimal, KindNumber:
		rank := numericRank(value)
		return rank > 0 && rank <= numericRank(target)
	}
	return false
}

// SharedSuperType returns the least upper bound of a and b. It types
// heterogeneous array literals and null-coalescing.
//
// Objects and records unify only when identical; any other pairing involving
// them yields Error rather than a field-wise merge.
func SharedSuperType(a, b Type) Type {
	if Equal(a, b) {
		return a
	}
	if a.Kind == KindError || b.Kind == KindError {
		return Error
	}
	if a.Kind == KindAny || b.Kind == KindAny {
		return Any
	}

	if a.Kind == KindNull {
		return optional(b)
	}
	if b.Kind == KindNull {
		return optional(a)
	}
	if a.Kind == KindOption || b.Kind == KindOption {
		inner := SharedSuperType(a.Unwrap(), b.Unwrap())
		if inner.Kind == KindError || inner.Kind == KindAny {
			return inner
		}
		return Option(inner)
	}

	if ra, rb := numericRank(a), numericRank(b); ra > 0 && rb > 0 {
		if ra >= rb {
			return a
		}
		return b
	}

	switch {
	case a.Kind == KindObject, b.Kind == KindObject, a.Kind == KindRecord, b.Kind == KindRecord:
		return Error
	}
	return Any
}

// Unify folds SharedSuperType left to right over ts. An empty list unifies
// to Any.
func Unify(ts []Type) Type {
	if len(ts) == 0 {
		return Any
	}
	out := ts[0]
	for _, t := range ts[1:] {
		out = SharedSuperType(out, t)
	}
	return out
}

func optional(t Type) Type {
	if t.Kind == KindOption {
		return t
	}
	return Option(t)
}
