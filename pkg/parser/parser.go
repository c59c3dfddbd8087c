// Package parser provides the SurrealQL lexer and an error-recovering
// recursive descent parser.
//
// # Usage
//
//	toks, lexErrs := parser.Lex(src)
//	stmts, parseErrs := parser.Parse(toks, sc)
//
// Parsing never stops at the first error. Each statement, clause, object
// entry and list element recovers on its own, so one mistake produces one
// error and the rest of the file still parses.
//
// # Grammar Overview
//
//	file        → stmt { (";" | NEWLINE) stmt }
//	stmt        → create | update | delete | select | define | let | return
//	create      → CREATE table [CONTENT expr] {transform}
//	update      → UPDATE table [(CONTENT | MERGE) expr] {transform}
//	delete      → DELETE table {transform}
//	select      → SELECT projection {"," projection} [FROM table] {transform}
//	transform   → WHERE expr | LIMIT expr | SKIP expr | GROUP BY expr | ORDER BY expr [ASC|DESC]
//	let         → LET $name "=" expr
//	return      → RETURN [expr]
//
// Table and field names are resolved against the scope as they are parsed.
// See each file for the detailed grammar of that section.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/scope"
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// Parser parses a token stream into spanned statements.
type Parser struct {
	toks    []token.Spanned[token.Token]
	idx     int
	token   token.Spanned[token.Token] // current token
	prevEnd token.Position             // end of the last consumed token
	nesting int                        // depth of (), [] and {}; NEWLINE is insignificant inside
	scope   *scope.Scope
	errors  []*ParseError
}

// NewParser creates a parser over toks. Table names are resolved against sc.
// The parser works on a per-pass overlay of sc and leaves sc unchanged.
func NewParser(toks []token.Spanned[token.Token], sc *scope.Scope) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Value.Type != token.EOF {
		var end token.Span
		if len(toks) > 0 {
			end = token.Span{Start: toks[len(toks)-1].Span.End, End: toks[len(toks)-1].Span.End}
		} else {
			end = token.Span{Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 1}}
		}
		toks = append(toks[:len(toks):len(toks)], token.At(token.Token{Type: token.EOF}, end))
	}
	if sc == nil {
		sc = scope.New(nil)
	}
	p := &Parser{
		toks:  toks,
		scope: sc.Clone(),
	}
	p.token = toks[0]
	p.prevEnd = toks[0].Span.Start
	return p
}

// Parse parses all statements in toks.
func Parse(toks []token.Spanned[token.Token], sc *scope.Scope) ([]core.Stmt, []*ParseError) {
	p := NewParser(toks, sc)
	stmts := p.ParseStatements()
	return stmts, p.errors
}

// ParseString lexes and parses src, returning lexer and parser errors.
func ParseString(src string, sc *scope.Scope) ([]core.Stmt, []*LexError, []*ParseError) {
	toks, lexErrs := Lex(src)
	stmts, parseErrs := Parse(toks, sc)
	return stmts, lexErrs, parseErrs
}

// Errors returns the errors collected so far.
func (p *Parser) Errors() []*ParseError {
	return p.errors
}

// ---------- Token Helpers ----------

// nextToken advances to the next token. Inside brackets blank lines are
// insignificant and skipped.
func (p *Parser) nextToken() {
	if p.token.Value.Type == token.EOF {
		return
	}
	p.prevEnd = p.token.Span.End
	p.idx++
	p.token = p.toks[p.idx]
	if p.nesting > 0 {
		p.skipNewlines()
	}
}

// skipNewlines skips NEWLINE tokens without moving prevEnd.
func (p *Parser) skipNewlines() {
	for p.token.Value.Type == token.NEWLINE {
		p.idx++
		p.token = p.toks[p.idx]
	}
}

// skipNewlinesIf skips NEWLINE tokens when the first token after them
// satisfies pred. It lets clauses continue after a blank line.
func (p *Parser) skipNewlinesIf(pred func(token.TokenType) bool) {
	if !p.check(token.NEWLINE) {
		return
	}
	i := p.idx
	for p.toks[i].Value.Type == token.NEWLINE {
		i++
	}
	if pred(p.toks[i].Value.Type) {
		p.skipNewlines()
	}
}

// peekType returns the type of the token after the current one.
func (p *Parser) peekType() token.TokenType {
	i := p.idx + 1
	for i < len(p.toks) && p.nesting > 0 && p.toks[i].Value.Type == token.NEWLINE {
		i++
	}
	if i >= len(p.toks) {
		return token.EOF
	}
	return p.toks[i].Value.Type
}

// open enters a bracketed region.
func (p *Parser) open() {
	p.nesting++
	p.skipNewlines()
}

// close leaves a bracketed region. Call it before consuming the closer so
// a blank line after the closer stays significant.
func (p *Parser) close() {
	if p.nesting > 0 {
		p.nesting--
	}
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Value.Type == t
}

// checkAny returns true if the current token is any of the given types.
func (p *Parser) checkAny(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			return true
		}
	}
	return false
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.match(t) {
		return true
	}
	p.errorExpected(t.String())
	return false
}

// spanFrom returns the span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start token.Position) token.Span {
	end := p.prevEnd
	if end.Offset < start.Offset {
		end = start
	}
	return token.Span{Start: start, End: end}
}

// ---------- Errors ----------

// addError records an error. Only the first error at a given offset is
// kept, so nested constructs failing on the same token report once.
func (p *Parser) addError(span token.Span, msg string, expected ...string) {
	if n := len(p.errors); n > 0 && p.errors[n-1].Span.Start.Offset == span.Start.Offset {
		return
	}
	p.errors = append(p.errors, &ParseError{Span: span, Message: msg, Expected: expected})
}

// errorExpected reports the current token as unexpected.
func (p *Parser) errorExpected(expected ...string) {
	if p.check(token.EOF) {
		p.addError(p.token.Span, fmt.Sprintf(ErrUnexpectedEOF, describe(expected)), expected...)
		return
	}
	p.addError(p.token.Span, fmt.Sprintf(ErrUnexpectedToken, p.token.Value.String(), describe(expected)), expected...)
}

// ---------- Statement List ----------

// ParseStatements parses statements until end of input.
func (p *Parser) ParseStatements() []core.Stmt {
	return p.parseStatementList(token.EOF)
}

// parseStatementList parses statements until EOF or the given closer.
// Statements are separated by ';' or a blank line; a statement keyword
// directly after a complete statement also starts a new one.
func (p *Parser) parseStatementList(closer token.TokenType) []core.Stmt {
	var stmts []core.Stmt
	for {
		for p.checkAny(token.SEMICOLON, token.NEWLINE) {
			p.nextToken()
		}
		if p.check(token.EOF) || p.check(closer) {
			return stmts
		}

		stmts = append(stmts, p.parseStatement(closer))

		switch {
		case p.checkAny(token.SEMICOLON, token.NEWLINE, token.EOF), p.check(closer):
		case token.IsStatementStart(p.token.Value.Type):
		default:
			p.errorExpected(";", "new statement")
			stmts = append(stmts, p.skipStatement(p.token.Span.Start, closer))
		}
	}
}

// parseStatement dispatches on the statement keyword.
func (p *Parser) parseStatement(closer token.TokenType) core.Stmt {
	// Each statement starts with a fresh current row.
	p.scope.SetCurrent(&types.Object{})
	start := p.token.Span.Start

	switch p.token.Value.Type {
	case token.CREATE:
		return p.parseCreate()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.SELECT:
		return p.parseSelect()
	case token.DEFINE:
		if stmt, ok := p.parseDefine(); ok {
			return stmt
		}
		return p.skipStatement(start, closer)
	case token.LET:
		return p.parseLet()
	case token.RETURN:
		return p.parseReturn(closer)
	default:
		if closer == token.RBRACE {
			return p.parseBlockValue(start, closer)
		}
		p.addError(p.token.Span, fmt.Sprintf(ErrUnexpectedToken, p.token.Value.String(), "statement"), statementKeywords...)
		return p.skipStatement(start, closer)
	}
}

// parseBlockValue reads a bare expression inside a code block as an
// implicit RETURN.
func (p *Parser) parseBlockValue(start token.Position, closer token.TokenType) core.Stmt {
	expr, ok := p.parseExpression()
	if !ok {
		return p.skipStatement(start, closer)
	}
	return token.At[core.Statement](&core.Return{Value: expr}, p.spanFrom(start))
}

var statementKeywords = []string{"CREATE", "UPDATE", "DELETE", "SELECT", "DEFINE", "LET", "RETURN"}

// skipStatement consumes tokens up to the next statement boundary and
// returns an Invalid statement spanning from start.
func (p *Parser) skipStatement(start token.Position, closer token.TokenType) core.Stmt {
	for {
		p.skipUntil(func(t token.TokenType) bool {
			return token.IsStatementStart(t) || t == token.SEMICOLON || t == token.NEWLINE || t == closer
		})
		// A stray closing bracket belongs to no enclosing construct here.
		if p.checkAny(token.RPAREN, token.RBRACKET, token.RBRACE) && !p.check(closer) {
			p.nextToken()
			continue
		}
		break
	}
	return token.At[core.Statement](&core.Invalid{}, p.spanFrom(start))
}

// skipUntil consumes tokens until stop matches at bracket depth zero, EOF,
// or a closing bracket that belongs to an enclosing construct.
// It always consumes at least one token unless already at a boundary.
func (p *Parser) skipUntil(stop func(token.TokenType) bool) {
	depth := 0
	for !p.check(token.EOF) {
		t := p.token.Value.Type
		if depth == 0 && stop(t) {
			return
		}
		switch t {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		}
		p.nextToken()
	}
}

// skipPast consumes tokens through the matching closer of a bracketed
// region the parser is currently inside. A ';' at the region's own depth
// means the closer is missing; the region ends there without consuming it.
func (p *Parser) skipPast(closer token.TokenType) {
	p.skipUntil(func(t token.TokenType) bool { return t == closer || t == token.SEMICOLON })
	p.close()
	p.match(closer)
}
