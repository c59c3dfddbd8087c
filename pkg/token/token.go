// Package token defines the token types produced by the SurrealQL lexer.
//
// Token kinds are plain constants so the parser can switch on them directly.
// Keywords, operators and punctuation each occupy a contiguous range, which
// keeps the classification helpers (IsKeyword, IsOperator, IsPunctuation) cheap.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

//nolint:revive // ALL_CAPS names follow the keyword spelling
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL
	NEWLINE // one or more blank lines

	// Literals
	IDENT    // person, name
	VARIABLE // $name
	INT      // 42
	FLOAT    // 4.2, 42f
	DECIMAL  // 4.2dec
	STRING   // "hello"
	DATETIME // "2024-01-01T00:00:00Z", d"..."
	DURATION // 1h30m
	RECORD   // "person:tobie", r"..."
	BOOL     // true, false

	// Operators
	EQ       // =
	EQEQ     // ==
	NE       // !=
	LT       // <
	LE       // <=
	GT       // >
	GE       // >=
	AND_AND  // &&
	OR_OR    // ||
	COALESCE // ??
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	BANG     // !

	// Punctuation
	HASH      // #
	DOT       // .
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	DCOLON    // ::
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	LPAREN    // (
	RPAREN    // )

	// Keywords (alphabetical)
	AND
	AS
	ASC
	BY
	CONTENT
	CREATE
	DEFINE
	DELETE
	DESC
	FIELD
	FROM
	FULL
	GROUP
	INSERT
	LET
	LIMIT
	MERGE
	NONE
	NOT
	NULL
	ON
	OR
	ORDER
	PERMISSIONS
	RETURN
	SELECT
	SKIP
	TABLE
	TYPE
	UPDATE
	WHERE
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	NEWLINE: "NEWLINE",

	IDENT:    "IDENT",
	VARIABLE: "VARIABLE",
	INT:      "INT",
	FLOAT:    "FLOAT",
	DECIMAL:  "DECIMAL",
	STRING:   "STRING",
	DATETIME: "DATETIME",
	DURATION: "DURATION",
	RECORD:   "RECORD",
	BOOL:     "BOOL",

	EQ:       "=",
	EQEQ:     "==",
	NE:       "!=",
	LT:       "<",
	LE:       "<=",
	GT:       ">",
	GE:       ">=",
	AND_AND:  "&&",
	OR_OR:    "||",
	COALESCE: "??",
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	BANG:     "!",

	HASH:      "#",
	DOT:       ".",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
	DCOLON:    "::",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	LPAREN:    "(",
	RPAREN:    ")",

	AND:         "AND",
	AS:          "AS",
	ASC:         "ASC",
	BY:          "BY",
	CONTENT:     "CONTENT",
	CREATE:      "CREATE",
	DEFINE:      "DEFINE",
	DELETE:      "DELETE",
	DESC:        "DESC",
	FIELD:       "FIELD",
	FROM:        "FROM",
	FULL:        "FULL",
	GROUP:       "GROUP",
	INSERT:      "INSERT",
	LET:         "LET",
	LIMIT:       "LIMIT",
	MERGE:       "MERGE",
	NONE:        "NONE",
	NOT:         "NOT",
	NULL:        "NULL",
	ON:          "ON",
	OR:          "OR",
	ORDER:       "ORDER",
	PERMISSIONS: "PERMISSIONS",
	RETURN:      "RETURN",
	SELECT:      "SELECT",
	SKIP:        "SKIP",
	TABLE:       "TABLE",
	TYPE:        "TYPE",
	UPDATE:      "UPDATE",
	WHERE:       "WHERE",
}

// keywords maps lower-cased identifiers to their keyword token types.
var keywords = map[string]TokenType{
	"and":         AND,
	"as":          AS,
	"asc":         ASC,
	"by":          BY,
	"content":     CONTENT,
	"create":      CREATE,
	"define":      DEFINE,
	"delete":      DELETE,
	"desc":        DESC,
	"field":       FIELD,
	"from":        FROM,
	"full":        FULL,
	"group":       GROUP,
	"insert":      INSERT,
	"let":         LET,
	"limit":       LIMIT,
	"merge":       MERGE,
	"none":        NONE,
	"not":         NOT,
	"null":        NULL,
	"on":          ON,
	"or":          OR,
	"order":       ORDER,
	"permissions": PERMISSIONS,
	"return":      RETURN,
	"select":      SELECT,
	"skip":        SKIP,
	"table":       TABLE,
	"type":        TYPE,
	"update":      UPDATE,
	"where":       WHERE,
}

// LookupIdent returns the keyword token type for an already lower-cased
// identifier, or IDENT when it is not a keyword.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keywords returns the keyword spellings, used for completion.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= AND && t <= WHERE
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= EQ && t <= BANG
}

// IsPunctuation returns true if the token type is punctuation.
func IsPunctuation(t TokenType) bool {
	return t >= HASH && t <= RPAREN
}

// IsLiteral returns true if the token type carries a literal value.
func IsLiteral(t TokenType) bool {
	return t >= INT && t <= BOOL
}

// IsStatementStart reports whether a statement may begin with the token type.
// Statement-level recovery skips to the next such token.
func IsStatementStart(t TokenType) bool {
	switch t {
	case CREATE, UPDATE, DELETE, SELECT, DEFINE, LET, RETURN:
		return true
	default:
		return false
	}
}

// Token is a lexical token. It carries no position of its own; the lexer
// always pairs it with a source span (see Spanned).
//
// Literal holds the token payload: the decoded contents for string-like
// tokens, the name without '$' for variables, the original spelling for
// identifiers and keywords, and the source text for everything else.
type Token struct {
	Type    TokenType
	Literal string
}

// String implements fmt.Stringer.
func (t Token) String() string {
	switch {
	case t.Type == EOF, t.Type == NEWLINE:
		return t.Type.String()
	case t.Type == VARIABLE:
		return "$" + t.Literal
	case t.Type == STRING, t.Type == DATETIME, t.Type == RECORD:
		return fmt.Sprintf("%q", t.Literal)
	default:
		return t.Literal
	}
}
