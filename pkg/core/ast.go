package core

import (
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// Expression is the tagged union of expression nodes.
type Expression interface {
	exprNode() // Marker method to distinguish expressions
}

// Statement is the tagged union of statement nodes.
type Statement interface {
	stmtNode() // Marker method to distinguish statements
}

// Expr is an expression paired with its source span.
type Expr = token.Spanned[Expression]

// Stmt is a statement paired with its source span.
type Stmt = token.Spanned[Statement]

// Ident is a name paired with its source span.
type Ident = token.Spanned[string]

// TableRef is a table name resolved against the schema while parsing.
// Found is false when the schema has no such table; Object is then empty.
type TableRef struct {
	Name   string
	Found  bool
	Object types.Object
}

// Table is a resolved table reference paired with its span.
type Table = token.Spanned[TableRef]

// FieldRef is a field path resolved against a table while parsing.
type FieldRef struct {
	Path  []string
	Found bool
	Type  types.Type
}
