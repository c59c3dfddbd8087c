package check

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/scope"
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// expr reports the problems inside expr and whether its type fits expected.
func (c *checker) expr(expr core.Expr, expected types.Type) {
	switch e := expr.Value.(type) {
	case *core.Object:
		c.objectFor(expr, e, expected)
		return

	case *core.Array:
		c.arrayFor(expr, e, expected)
		return

	case *core.Literal:
		c.literal(expr.Span, e)

	case *core.Identifier:
		if _, ok := c.sc.ResolveField(e.Name); !ok {
			c.report(core.Errorf(expr.Span, MsgUnknownField, e.Name))
			return
		}

	case *core.Variable:
		if _, ok := c.sc.Variable(e.Name); !ok {
			c.report(core.Errorf(expr.Span, MsgUnknownVariable, e.Name))
			return
		}

	case *core.Binary:
		c.binary(e)

	case *core.Unary:
		c.expr(e.Operand, types.Any)
		if e.Op.Value == token.MINUS {
			c.requireNumeric(e.Operand)
		}

	case *core.Access:
		c.access(e)

	case *core.Call:
		c.call(expr.Span, e)

	case *core.CodeBlock:
		c.nested(func() { c.statements(e.Statements) })

	case *core.Inline:
		c.nested(func() { c.statement(e.Statement) })
	}

	c.mismatch(expr, expected)
}

// mismatch reports expr when its type is known and does not fit expected.
func (c *checker) mismatch(expr core.Expr, expected types.Type) {
	t := c.typeOf(expr)
	if t.IsError() || types.IsAssignableTo(t, expected) {
		return
	}
	c.report(core.Errorf(expr.Span, MsgTypeMismatch, expected, t))
}

func (c *checker) literal(span token.Span, lit *core.Literal) {
	switch lit.Kind {
	case core.LiteralDateTime:
		if lit.Value == nil {
			c.report(core.Errorf(span, MsgInvalidDateTime, lit.Text))
		}
	case core.LiteralRecord:
		if !core.IsRecordID(lit.Text) {
			c.report(core.Errorf(span, MsgInvalidRecordID, lit.Text))
		}
	}
}

// ---------- Objects and Arrays ----------

// objectFor checks an object literal. Against an object type the entries
// are matched field by field; against Any only the values are checked.
func (c *checker) objectFor(expr core.Expr, obj *core.Object, expected types.Type) {
	target := expected.Unwrap()
	switch target.Kind {
	case types.KindObject:
		fields := target.Object()
		c.object(expr.Span, obj, &fields, false)
	case types.KindAny, types.KindError:
		c.object(expr.Span, obj, nil, false)
	default:
		c.object(expr.Span, obj, nil, false)
		c.mismatch(expr, expected)
	}
}

// object checks the entries of an object literal against fields. With nil
// fields every key is accepted. Partial objects may omit required fields.
func (c *checker) object(span token.Span, obj *core.Object, fields *types.Object, partial bool) {
	seen := make(map[string]core.Ident, len(obj.Entries))
	var valueless []core.Ident

	for _, entry := range obj.Entries {
		key := entry.Key
		if entry.Value == nil {
			valueless = append(valueless, key)
		}

		expected := types.Any
		if fields != nil {
			f, ok := fields.Field(key.Value)
			if !ok {
				c.report(core.Errorf(key.Span, MsgUnknownField, key.Value))
				if entry.Value != nil {
					c.expr(*entry.Value, types.Any)
				}
				continue
			}
			expected = f.Type
		}

		if prev, dup := seen[key.Value]; dup {
			c.report(core.Errorf(key.Span, MsgDuplicateEntry, key.Value))
			c.report(core.Infof(prev.Span, MsgPreviousEntry, key.Value))
			continue
		}
		seen[key.Value] = key

		if entry.Value != nil {
			c.expr(*entry.Value, expected)
		}
	}

	if len(valueless) > 0 {
		names := make([]string, len(valueless))
		for i, k := range valueless {
			names[i] = k.Value
		}
		c.report(core.Errorf(valueless[0].Span, MsgMissingValues, strings.Join(names, ", ")))
	}

	// The entries of an unclosed object may not all have been read.
	if fields == nil || partial || obj.Unclosed {
		return
	}
	var missing []string
	for _, name := range fields.RequiredNames() {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		c.report(core.Errorf(span, MsgMissingFields, strings.Join(missing, ", ")))
	}
}

// arrayFor checks each element against the expected element type.
func (c *checker) arrayFor(expr core.Expr, arr *core.Array, expected types.Type) {
	target := expected.Unwrap()
	elem := types.Any
	if target.Kind == types.KindArray {
		elem = target.Element()
	}
	for _, el := range arr.Elements {
		c.expr(el, elem)
	}
	if target.Kind != types.KindArray {
		c.mismatch(expr, expected)
	}
}

// ---------- Operators ----------

func (c *checker) binary(b *core.Binary) {
	c.expr(b.Left, types.Any)
	c.expr(b.Right, types.Any)

	switch op := b.Op.Value; {
	case isArithmetic(op):
		c.requireNumeric(b.Left)
		c.requireNumeric(b.Right)

	case isComparison(op):
		left, right := c.typeOf(b.Left), c.typeOf(b.Right)
		if left.IsError() || right.IsError() {
			return
		}
		if !types.IsAssignableTo(left, right) && !types.IsAssignableTo(right, left) {
			c.report(core.Errorf(spanOf(b.Left, b.Right), MsgCannotCompare, left, right))
		}
	}
}

// requireNumeric reports an operand of arithmetic whose type is known and
// not numeric.
func (c *checker) requireNumeric(expr core.Expr) {
	t := c.typeOf(expr)
	if t.IsError() || t.Kind == types.KindAny || t.IsNumeric() {
		return
	}
	c.report(core.Errorf(expr.Span, MsgExpectedNumeric, t))
}

// ---------- Access ----------

func (c *checker) access(a *core.Access) {
	c.expr(a.Base, types.Any)
	base := c.typeOf(a.Base)

	if a.Kind == core.AccessIndex {
		if a.Index != nil {
			c.expr(*a.Index, types.Int)
		}
		if base.IsError() {
			return
		}
		if inner := base.Unwrap(); inner.Kind != types.KindArray && inner.Kind != types.KindAny {
			c.report(core.Errorf(a.Base.Span, MsgNotIndexable, base))
		}
		return
	}

	if base.IsError() {
		return
	}
	inner, _ := peel(base)
	if inner.Kind == types.KindAny {
		return
	}
	obj, ok := c.fieldsOf(inner)
	if !ok {
		if inner.Kind != types.KindRecord {
			c.report(core.Errorf(a.Property.Span, MsgNoFields, base))
		}
		return
	}
	if _, ok := obj.Field(a.Property.Value); !ok {
		c.report(core.Errorf(a.Property.Span, MsgFieldNotExist, a.Property.Value))
	}
}

// ---------- Calls ----------

func (c *checker) call(span token.Span, call *core.Call) {
	name := call.Name.Value
	sig, ok := c.sc.Function(name)
	if !ok {
		c.report(core.Errorf(call.Name.Span, MsgUnknownFunction, name))
		if call.Args != nil {
			for _, a := range *call.Args {
				c.expr(a, types.Any)
			}
		}
		return
	}
	if call.Args == nil {
		return
	}

	args := *call.Args
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = c.typeOf(a)
	}
	binding := sig.Bind(argTypes)

	for i, a := range args {
		if i >= len(binding.Expected) {
			c.expr(a, types.Any)
			continue
		}
		c.expr(a, binding.Expected[i])
	}

	if len(args) > len(sig.Slots) {
		c.report(core.Errorf(span, MsgTooManyArguments, name, len(args)))
	}

	if missing := missingSlots(sig, len(args)); len(missing) > 0 {
		c.report(core.Errorf(span, "%s", missingMessage(name, missing)))
	}
}

// missingSlots returns the required slots not covered by n arguments.
func missingSlots(sig scope.Signature, n int) []scope.Slot {
	var out []scope.Slot
	for i := n; i < len(sig.Slots); i++ {
		if !sig.Slots[i].Optional {
			out = append(out, sig.Slots[i])
		}
	}
	return out
}

func missingMessage(name string, missing []scope.Slot) string {
	if len(missing) == 1 {
		return fmt.Sprintf(MsgMissingArgument, name, missing[0].Name)
	}
	quoted := make([]string, len(missing))
	for i, s := range missing {
		quoted[i] = "'" + s.Name + "'"
	}
	return fmt.Sprintf(MsgMissingArguments, name, len(missing), strings.Join(quoted, ", "))
}
