package core

// Children returns the direct sub-expressions of e in source order.
// Statements held by inline expressions and code blocks are not entered;
// use StatementExprs on them.
func Children(e Expression) []Expr {
	switch n := e.(type) {
	case *Binary:
		return []Expr{n.Left, n.Right}
	case *Unary:
		return []Expr{n.Operand}
	case *Access:
		if n.Index != nil {
			return []Expr{n.Base, *n.Index}
		}
		return []Expr{n.Base}
	case *Array:
		return n.Elements
	case *Object:
		var out []Expr
		for _, entry := range n.Entries {
			if entry.Value != nil {
				out = append(out, *entry.Value)
			}
		}
		return out
	case *Call:
		if n.Args != nil {
			return *n.Args
		}
	}
	return nil
}

// StatementExprs returns the expressions held directly by s, in source
// order: projections, content, values and transform payloads.
func StatementExprs(s Statement) []Expr {
	var out []Expr
	content := func(e *Expr) {
		if e != nil {
			out = append(out, *e)
		}
	}

	switch n := s.(type) {
	case *Create:
		content(n.Content)
		out = append(out, transformExprs(n.Transforms)...)
	case *Update:
		content(n.Content)
		out = append(out, transformExprs(n.Transforms)...)
	case *Delete:
		out = append(out, transformExprs(n.Transforms)...)
	case *Select:
		for _, p := range n.Projections {
			if !p.Value.Star {
				out = append(out, p.Value.Expr)
			}
		}
		out = append(out, transformExprs(n.Transforms)...)
	case *Return:
		out = append(out, n.Value)
	case *Let:
		content(n.Value)
	}
	return out
}

func transformExprs(ts []Transform) []Expr {
	var out []Expr
	for _, t := range ts {
		if t.Value.Value != nil {
			out = append(out, *t.Value.Value)
		}
	}
	return out
}

// RowTable returns the table whose rows s operates on, or nil.
func RowTable(s Statement) *Table {
	switch n := s.(type) {
	case *Create:
		return n.Target
	case *Update:
		return n.Target
	case *Delete:
		return n.Target
	case *Select:
		return n.From
	case *DefineField:
		return n.Table
	case *DefineTable:
		return n.Name
	}
	return nil
}
