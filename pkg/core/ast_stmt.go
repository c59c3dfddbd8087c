package core

import (
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// ---------- Statement Types ----------

// Create represents CREATE table [CONTENT expr] transforms...
type Create struct {
	Target     *Table
	Content    *Expr
	Transforms []Transform
}

func (*Create) stmtNode() {}

// Update represents UPDATE table [CONTENT|MERGE expr] transforms...
// Merge marks partial content: declared fields may be omitted.
type Update struct {
	Target     *Table
	Content    *Expr
	Merge      bool
	Transforms []Transform
}

func (*Update) stmtNode() {}

// Delete represents DELETE table transforms...
type Delete struct {
	Target     *Table
	Transforms []Transform
}

func (*Delete) stmtNode() {}

// Projection is one item of a SELECT list.
type Projection struct {
	Star  bool
	Expr  Expr   // zero when Star
	Alias *Ident // AS alias
}

// Select represents SELECT projections FROM table transforms...
type Select struct {
	Projections []token.Spanned[Projection]
	From        *Table
	Transforms  []Transform
}

func (*Select) stmtNode() {}

// Return represents RETURN expr. A bare RETURN carries a null literal.
type Return struct {
	Value Expr
}

func (*Return) stmtNode() {}

// Let represents LET $name = expr. Either part is nil when it failed to parse.
type Let struct {
	Name  *Ident
	Value *Expr
}

func (*Let) stmtNode() {}

// Permission is the PERMISSIONS clause of a DEFINE statement.
type Permission int

// Permission values.
const (
	PermissionUnset Permission = iota
	PermissionFull
	PermissionNone
)

// DefineTable represents DEFINE TABLE name [PERMISSIONS ...].
type DefineTable struct {
	Name        *Table
	Permissions Permission
}

func (*DefineTable) stmtNode() {}

// TypeExpr is a type as written in source, e.g. option<array<int>>.
// Resolved is filled in by the parser.
type TypeExpr struct {
	Name     string
	Args     []token.Spanned[TypeExpr]
	Resolved types.Type
}

// DefineField represents
// DEFINE FIELD a.b.c ON [TABLE] table [TYPE type] [PERMISSIONS ...].
//
// Path holds the dotted name segments. Remote is the same path resolved
// against the schema table named by Table.
type DefineField struct {
	Path        []Ident
	Remote      FieldRef
	Table       *Table
	Type        *token.Spanned[TypeExpr]
	Permissions Permission
}

func (*DefineField) stmtNode() {}

// Invalid covers a run of tokens that could not be parsed as a statement.
type Invalid struct{}

func (*Invalid) stmtNode() {}

// ---------- Transforms ----------

// ClauseKind identifies a transform clause.
type ClauseKind int

// ClauseKind constants.
const (
	ClauseWhere ClauseKind = iota
	ClauseLimit
	ClauseSkip
	ClauseGroupBy
	ClauseOrderBy
)

// String returns the clause keyword.
func (k ClauseKind) String() string {
	switch k {
	case ClauseWhere:
		return "WHERE"
	case ClauseLimit:
		return "LIMIT"
	case ClauseSkip:
		return "SKIP"
	case ClauseGroupBy:
		return "GROUP BY"
	case ClauseOrderBy:
		return "ORDER BY"
	default:
		return "UNKNOWN"
	}
}

// Clause is a transform attached to a CRUD statement. Value is nil when the
// keyword parsed but its expression did not.
type Clause struct {
	Kind       ClauseKind
	Value      *Expr
	Descending bool // ORDER BY ... DESC
}

// Transform is a clause paired with its span.
type Transform = token.Spanned[Clause]
