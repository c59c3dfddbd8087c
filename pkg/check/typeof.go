package check

import (
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/scope"
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// TypeOf returns the static type of expr under sc. Expressions that cannot
// be typed, because they reference something unknown or combine operands
// that do not fit, are Error.
func TypeOf(expr core.Expr, sc *scope.Scope) types.Type {
	return newChecker(sc).typeOf(expr)
}

// StatementType returns the type of the value a statement produces.
func StatementType(stmt core.Stmt, sc *scope.Scope) types.Type {
	return newChecker(sc).statementType(stmt)
}

func (c *checker) typeOf(expr core.Expr) types.Type {
	switch e := expr.Value.(type) {
	case *core.Literal:
		return literalType(e)

	case *core.Identifier:
		// Fields of an unknown row are not reported and must not cascade.
		if c.sc.Current() == nil {
			return types.Error
		}
		t, _ := c.sc.ResolveField(e.Name)
		return t

	case *core.Variable:
		if t, ok := c.sc.Variable(e.Name); ok {
			return t
		}
		return types.Error

	case *core.Binary:
		return c.binaryType(e)

	case *core.Unary:
		t := c.typeOf(e.Operand)
		if e.Op.Value == token.BANG {
			return types.Bool
		}
		return numericResult(t, t)

	case *core.Access:
		return c.accessType(e)

	case *core.Array:
		elems := make([]types.Type, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = c.typeOf(el)
		}
		return types.Array(types.Unify(elems))

	case *core.Object:
		var obj types.Object
		for _, entry := range e.Entries {
			if entry.Value == nil {
				continue
			}
			if _, dup := obj.Field(entry.Key.Value); dup {
				continue
			}
			obj = obj.With(types.NewField(entry.Key.Value, c.typeOf(*entry.Value)))
		}
		return obj.Type()

	case *core.Call:
		sig, ok := c.sc.Function(e.Name.Value)
		if !ok {
			return types.Error
		}
		var args []types.Type
		if e.Args != nil {
			for _, a := range *e.Args {
				args = append(args, c.typeOf(a))
			}
		}
		return sig.Bind(args).Result

	case *core.CodeBlock:
		// An unclosed block already has its parse error.
		if e.Unclosed {
			return types.Error
		}
		return c.blockType(e.Statements)

	case *core.Inline:
		var t types.Type
		c.nested(func() { t = c.statementType(e.Statement) })
		return t
	}
	return types.Error
}

func literalType(lit *core.Literal) types.Type {
	switch lit.Kind {
	case core.LiteralNull, core.LiteralNone:
		return types.Null
	case core.LiteralBool:
		return types.Bool
	case core.LiteralInt:
		return types.Int
	case core.LiteralFloat:
		return types.Float
	case core.LiteralDecimal:
		return types.Decimal
	case core.LiteralString:
		return types.String
	case core.LiteralDuration:
		return types.Duration
	case core.LiteralDateTime:
		if lit.Value == nil {
			return types.Error
		}
		return types.DateTime
	case core.LiteralRecord:
		if table, ok := core.RecordTable(lit.Text); ok {
			return types.Record(table)
		}
		return types.Error
	}
	return types.Error
}

func isArithmetic(op token.TokenType) bool {
	switch op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		return true
	}
	return false
}

func isComparison(op token.TokenType) bool {
	switch op {
	case token.EQ, token.EQEQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		return true
	}
	return false
}

func (c *checker) binaryType(b *core.Binary) types.Type {
	left, right := c.typeOf(b.Left), c.typeOf(b.Right)
	switch op := b.Op.Value; {
	case isArithmetic(op):
		return numericResult(left, right)
	case op == token.COALESCE:
		if left.IsError() {
			return types.Error
		}
		return types.SharedSuperType(left.Unwrap(), right)
	default:
		return types.Bool
	}
}

// numericResult types an arithmetic operation. Unknown operands stay
// unknown; anything non-numeric is Error.
func numericResult(left, right types.Type) types.Type {
	switch {
	case left.IsError() || right.IsError():
		return types.Error
	case left.Kind == types.KindAny || right.Kind == types.KindAny:
		return types.Any
	case left.IsNumeric() && right.IsNumeric():
		return types.SharedSuperType(left, right)
	default:
		return types.Error
	}
}

// peel strips option and array layers from t, returning the innermost type
// and the stripped kinds, outermost first.
func peel(t types.Type) (types.Type, []types.Kind) {
	var layers []types.Kind
	for t.Kind == types.KindOption || t.Kind == types.KindArray {
		layers = append(layers, t.Kind)
		t = t.Element()
	}
	return t, layers
}

// wrap reapplies layers removed by peel.
func wrap(t types.Type, layers []types.Kind) types.Type {
	if t.IsError() {
		return t
	}
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i] == types.KindArray {
			t = types.Array(t)
		} else {
			t = types.Option(t)
		}
	}
	return t
}

// fieldsOf returns the fields reachable through an object or record type.
func (c *checker) fieldsOf(t types.Type) (types.Object, bool) {
	switch t.Kind {
	case types.KindObject:
		return t.Object(), true
	case types.KindRecord:
		return c.sc.Table(t.Table)
	default:
		return types.Object{}, false
	}
}

func (c *checker) accessType(a *core.Access) types.Type {
	base := c.typeOf(a.Base)
	if base.IsError() {
		return types.Error
	}

	if a.Kind == core.AccessIndex {
		inner := base.Unwrap()
		switch inner.Kind {
		case types.KindAny:
			return types.Any
		case types.KindArray:
			if base.IsOption() {
				return types.Option(inner.Element())
			}
			return inner.Element()
		default:
			return types.Error
		}
	}

	inner, layers := peel(base)
	if inner.Kind == types.KindAny {
		return types.Any
	}
	obj, ok := c.fieldsOf(inner)
	if !ok {
		return types.Error
	}
	f, ok := obj.Field(a.Property.Value)
	if !ok {
		return types.Error
	}
	return wrap(f.Type, layers)
}

// blockType returns the type of the last statement of a block, with LET
// bindings inside the block applied in order.
func (c *checker) blockType(stmts []core.Stmt) types.Type {
	t := types.Null
	c.nested(func() {
		for _, stmt := range stmts {
			t = c.statementType(stmt)
			if let, ok := stmt.Value.(*core.Let); ok && let.Name != nil {
				vt := types.Error
				if let.Value != nil {
					vt = c.typeOf(*let.Value)
				}
				c.sc.BindVariable(let.Name.Value, vt)
			}
		}
	})
	return t
}

func (c *checker) statementType(stmt core.Stmt) types.Type {
	switch s := stmt.Value.(type) {
	case *core.Create:
		return tableRows(s.Target)
	case *core.Update:
		return tableRows(s.Target)
	case *core.Delete:
		return types.Array(types.Any)
	case *core.Select:
		return c.selectType(s)
	case *core.Return:
		return c.typeOf(s.Value)
	case *core.Let, *core.DefineTable, *core.DefineField:
		return types.Null
	}
	return types.Error
}

func tableRows(t *core.Table) types.Type {
	if t == nil || !t.Value.Found {
		return types.Array(types.Any)
	}
	return types.Array(t.Value.Object.Type())
}

// selectType builds the row type of a SELECT from its projections. Star
// keeps the table's fields; projections without a name contribute nothing.
func (c *checker) selectType(s *core.Select) types.Type {
	var row types.Type
	c.nested(func() {
		var fields types.Object
		if s.From != nil {
			if !s.From.Value.Found {
				row = types.Array(types.Any)
				return
			}
			table := s.From.Value.Object
			c.sc.SetCurrent(&table)
		} else {
			c.sc.SetCurrent(&types.Object{})
		}

		for _, proj := range s.Projections {
			p := proj.Value
			if p.Star {
				if cur := c.sc.Current(); cur != nil {
					for _, f := range cur.Fields {
						fields = fields.With(f)
					}
				}
				continue
			}
			t := c.typeOf(p.Expr)
			switch {
			case p.Alias != nil:
				fields = fields.With(types.NewField(p.Alias.Value, t))
				c.sc.AddAlias(p.Alias.Value, t)
			case projectionName(p.Expr) != "":
				fields = fields.With(types.NewField(projectionName(p.Expr), t))
			}
		}
		row = types.Array(fields.Type())
	})
	return row
}

// projectionName is the field name an unaliased projection produces.
func projectionName(expr core.Expr) string {
	switch e := expr.Value.(type) {
	case *core.Identifier:
		return e.Name
	case *core.Access:
		if e.Kind == core.AccessProperty {
			return e.Property.Value
		}
	}
	return ""
}
