// Package check is the type-directed diagnostics engine.
//
// Check walks parsed statements against the scope they were parsed with and
// reports positioned diagnostics. Every AST shape the parser can produce,
// including recovered ones with missing payloads, has a defined result.
//
// A node whose type is already Error is not reported again by the nodes
// that consume it, so one mistake yields one diagnostic.
package check

import (
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/scope"
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// checker carries the per-pass scope overlay and collected diagnostics.
type checker struct {
	sc    *scope.Scope
	diags []core.Diagnostic
}

func newChecker(sc *scope.Scope) *checker {
	if sc == nil {
		sc = scope.New(nil)
	}
	return &checker{sc: sc.Clone()}
}

// Check returns the diagnostics for stmts in source order. LET bindings are
// visible to the statements after them. sc is not modified.
func Check(stmts []core.Stmt, sc *scope.Scope) []core.Diagnostic {
	c := newChecker(sc)
	c.statements(stmts)
	return core.SortDiagnostics(c.diags)
}

// DiagnosticsForType checks expr against the expected type.
func DiagnosticsForType(expr core.Expr, expected types.Type, sc *scope.Scope) []core.Diagnostic {
	c := newChecker(sc)
	c.expr(expr, expected)
	return core.SortDiagnostics(c.diags)
}

func (c *checker) report(d core.Diagnostic) {
	c.diags = append(c.diags, d)
}

// nested runs fn on a copy of the scope so bindings and the current row
// made inside fn do not leak out.
func (c *checker) nested(fn func()) {
	saved := c.sc
	c.sc = saved.Clone()
	fn()
	c.sc = saved
}

func (c *checker) statements(stmts []core.Stmt) {
	for _, stmt := range stmts {
		c.statement(stmt)
	}
}

func (c *checker) statement(stmt core.Stmt) {
	c.sc.SetCurrent(&types.Object{})

	switch s := stmt.Value.(type) {
	case *core.Create:
		c.target(s.Target)
		if s.Content != nil {
			c.content(*s.Content, s.Target, false)
		}
		c.transforms(s.Transforms)

	case *core.Update:
		c.target(s.Target)
		if s.Content != nil {
			c.content(*s.Content, s.Target, s.Merge)
		}
		c.transforms(s.Transforms)

	case *core.Delete:
		c.target(s.Target)
		c.transforms(s.Transforms)

	case *core.Select:
		if s.From != nil {
			c.target(s.From)
		}
		for _, proj := range s.Projections {
			if proj.Value.Star {
				continue
			}
			c.expr(proj.Value.Expr, types.Any)
			if proj.Value.Alias != nil {
				c.sc.AddAlias(proj.Value.Alias.Value, c.typeOf(proj.Value.Expr))
			}
		}
		c.transforms(s.Transforms)

	case *core.Return:
		c.expr(s.Value, types.Any)

	case *core.Let:
		t := types.Error
		if s.Value != nil {
			c.expr(*s.Value, types.Any)
			t = c.typeOf(*s.Value)
		}
		if s.Name != nil {
			c.sc.BindVariable(s.Name.Value, t)
		}

	case *core.DefineTable:
		c.defineTable(stmt.Span, s)

	case *core.DefineField:
		c.defineField(stmt.Span, s)

	case *core.Invalid:
		// Reported by the parser.
	}
}

// target reports an unknown table and rebinds the current row.
func (c *checker) target(t *core.Table) {
	if t == nil {
		c.sc.SetCurrent(nil)
		return
	}
	if !t.Value.Found {
		c.report(core.Errorf(t.Span, MsgTableNotFound, t.Value.Name))
		c.sc.SetCurrent(nil)
		return
	}
	row := t.Value.Object
	c.sc.SetCurrent(&row)
}

// content checks a CONTENT or MERGE payload against the target table.
// Partial content may omit declared fields.
func (c *checker) content(expr core.Expr, t *core.Table, partial bool) {
	if t == nil || !t.Value.Found {
		c.expr(expr, types.Any)
		return
	}
	if obj, ok := expr.Value.(*core.Object); ok {
		fields := t.Value.Object
		c.object(expr.Span, obj, &fields, partial)
		return
	}
	c.expr(expr, t.Value.Object.Type())
}

func (c *checker) transforms(ts []core.Transform) {
	for _, tr := range ts {
		if tr.Value.Value == nil {
			continue
		}
		expected := types.Any
		switch tr.Value.Kind {
		case core.ClauseLimit, core.ClauseSkip:
			expected = types.Int
		}
		c.expr(*tr.Value.Value, expected)
	}
}

func spanOf(exprs ...core.Expr) token.Span {
	span := exprs[0].Span
	for _, e := range exprs[1:] {
		span = span.Join(e.Span)
	}
	return span
}
