package check

import (
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/scope"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// TypeAt finds the innermost expression covering offset and returns it with
// its type. The type is computed with the row of the enclosing statement and
// the LET bindings made before it. ok is false when no expression covers
// offset.
func TypeAt(stmts []core.Stmt, offset int, sc *scope.Scope) (expr core.Expr, t types.Type, ok bool) {
	c := newChecker(sc)
	return c.stmtsAt(stmts, offset)
}

func (c *checker) stmtsAt(stmts []core.Stmt, offset int) (core.Expr, types.Type, bool) {
	for _, stmt := range stmts {
		if stmt.Span.Contains(offset) {
			return c.stmtAt(stmt, offset)
		}
		// Earlier statements only matter for their bindings.
		c.statement(stmt)
	}
	return core.Expr{}, types.Error, false
}

func (c *checker) stmtAt(stmt core.Stmt, offset int) (core.Expr, types.Type, bool) {
	c.sc.SetCurrent(&types.Object{})
	if t := core.RowTable(stmt.Value); t != nil {
		switch stmt.Value.(type) {
		case *core.Create, *core.Update, *core.Delete, *core.Select:
			c.target(t)
		}
	}
	return c.exprAt(core.StatementExprs(stmt.Value), offset)
}

func (c *checker) exprAt(exprs []core.Expr, offset int) (core.Expr, types.Type, bool) {
	for _, e := range exprs {
		if !e.Span.Contains(offset) {
			continue
		}

		var (
			inner core.Expr
			t     types.Type
			found bool
		)
		switch n := e.Value.(type) {
		case *core.Inline:
			c.nested(func() { inner, t, found = c.stmtAt(n.Statement, offset) })
		case *core.CodeBlock:
			c.nested(func() { inner, t, found = c.stmtsAt(n.Statements, offset) })
		default:
			inner, t, found = c.exprAt(core.Children(e.Value), offset)
		}
		if found {
			return inner, t, true
		}
		return e, c.typeOf(e), true
	}
	return core.Expr{}, types.Error, false
}

// Members returns the fields reachable with a property access on a value of
// type t: object fields, or the fields of the table a record points to.
// Option and array layers are looked through.
func Members(t types.Type, sc *scope.Scope) (types.Object, bool) {
	inner, _ := peel(t)
	return newChecker(sc).fieldsOf(inner)
}
