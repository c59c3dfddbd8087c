package core

import "github.com/leapstack-labs/surqls/pkg/token"

// ---------- Expression Types ----------

// LiteralKind identifies the kind of a literal.
type LiteralKind int

// LiteralKind constants, one per literal token kind.
const (
	LiteralNull LiteralKind = iota
	LiteralNone
	LiteralBool
	LiteralInt
	LiteralFloat
	LiteralDecimal
	LiteralString
	LiteralDateTime
	LiteralDuration
	LiteralRecord
)

// Literal represents a literal value.
//
// Value holds the decoded payload: bool, int64, float64, an arbitrary
// precision decimal, string, time.Time, time.Duration or nil. A DateTime
// literal whose text is not a valid timestamp keeps a nil Value.
type Literal struct {
	Kind  LiteralKind
	Text  string
	Value any
}

func (*Literal) exprNode() {}

// Identifier is a bare name, resolved against the current row.
type Identifier struct {
	Name string
}

func (*Identifier) exprNode() {}

// Variable is a $name reference.
type Variable struct {
	Name string
}

func (*Variable) exprNode() {}

// Binary represents a binary expression.
type Binary struct {
	Left  Expr
	Op    token.Spanned[token.TokenType]
	Right Expr
}

func (*Binary) exprNode() {}

// Unary represents a prefix expression (! or -).
type Unary struct {
	Op      token.Spanned[token.TokenType]
	Operand Expr
}

func (*Unary) exprNode() {}

// AccessKind distinguishes property access from indexing.
type AccessKind int

// AccessKind constants.
const (
	AccessProperty AccessKind = iota
	AccessIndex
)

// Access represents base.property or base[index].
// Index is nil when the index expression failed to parse.
type Access struct {
	Base     Expr
	Kind     AccessKind
	Property Ident
	Index    *Expr
}

func (*Access) exprNode() {}

// Array represents an array literal.
type Array struct {
	Elements []Expr
}

func (*Array) exprNode() {}

// ObjectEntry is one key of an object literal. Value is nil when the entry
// was recovered from a malformed "key: value" pair.
type ObjectEntry struct {
	Key   Ident
	Value *Expr
}

// Object represents an object literal. Unclosed is set when the closing
// brace is missing.
type Object struct {
	Entries  []ObjectEntry
	Unclosed bool
}

func (*Object) exprNode() {}

// Call represents a namespaced function call such as string::len($s).
// Args is nil when the name was not followed by an argument list.
type Call struct {
	Name Ident // parts joined with "::"
	Args *[]Expr
}

func (*Call) exprNode() {}

// CodeBlock represents { stmt; stmt }. Unclosed is set when the closing
// brace is missing.
type CodeBlock struct {
	Statements []Stmt
	Unclosed   bool
}

func (*CodeBlock) exprNode() {}

// Inline represents a parenthesized statement used as a value.
type Inline struct {
	Statement Stmt
}

func (*Inline) exprNode() {}
