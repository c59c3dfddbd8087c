package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
)

// ---------- Primary Expressions ----------

// parsePrimary parses an atom.
//
//	primary → literal | $name | call | ident | "(" expr ")" | "(" stmt ")"
//	        | "[" [expr {"," expr}] "]" | object | block
func (p *Parser) parsePrimary() (core.Expr, bool) {
	switch p.token.Value.Type {
	case token.INT, token.FLOAT, token.DECIMAL, token.STRING, token.DATETIME,
		token.DURATION, token.RECORD, token.BOOL, token.NULL, token.NONE:
		return p.parseLiteral(), true

	case token.VARIABLE:
		v := token.At[core.Expression](&core.Variable{Name: p.token.Value.Literal}, p.token.Span)
		p.nextToken()
		return v, true

	case token.LPAREN:
		return p.parseParen()

	case token.LBRACKET:
		return p.parseArray()

	case token.LBRACE:
		return p.parseBrace()

	case token.IDENT:
		if next := p.peekType(); next == token.DCOLON || next == token.LPAREN {
			return p.parseCall()
		}
		id := token.At[core.Expression](&core.Identifier{Name: p.token.Value.Literal}, p.token.Span)
		p.nextToken()
		return id, true
	}

	// Keywords double as function namespaces: type::string(...).
	if token.IsKeyword(p.token.Value.Type) && p.peekType() == token.DCOLON {
		return p.parseCall()
	}

	p.addError(p.token.Span, ErrExpectedExpression, "expression")
	return core.Expr{}, false
}

// parseLiteral converts the current literal token and decodes its value.
func (p *Parser) parseLiteral() core.Expr {
	tok := p.token
	p.nextToken()

	lit := &core.Literal{Text: tok.Value.Literal}
	text := tok.Value.Literal
	switch tok.Value.Type {
	case token.NULL:
		lit.Kind = core.LiteralNull
	case token.NONE:
		lit.Kind = core.LiteralNone
	case token.BOOL:
		lit.Kind = core.LiteralBool
		lit.Value = strings.EqualFold(text, "true")
	case token.INT:
		lit.Kind = core.LiteralInt
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			lit.Value = n
		}
	case token.FLOAT:
		lit.Kind = core.LiteralFloat
		if f, err := strconv.ParseFloat(strings.TrimSuffix(text, "f"), 64); err == nil {
			lit.Value = f
		}
	case token.DECIMAL:
		lit.Kind = core.LiteralDecimal
		if d, err := decimal.NewFromString(strings.TrimSuffix(text, "dec")); err == nil {
			lit.Value = d
		}
	case token.STRING:
		lit.Kind = core.LiteralString
		lit.Value = text
	case token.RECORD:
		lit.Kind = core.LiteralRecord
		lit.Value = text
	case token.DATETIME:
		lit.Kind = core.LiteralDateTime
		if t, err := time.Parse(time.RFC3339, text); err == nil {
			lit.Value = t
		}
	case token.DURATION:
		lit.Kind = core.LiteralDuration
		if d, err := ParseDuration(text); err == nil {
			lit.Value = d
		}
	}
	return token.At[core.Expression](lit, tok.Span)
}

// Calendar units that time.ParseDuration does not know.
const (
	day  = 24 * time.Hour
	week = 7 * day
	year = 365 * day
)

// ParseDuration parses a duration literal such as "1h30m" or "2w".
// Supported units are ns, us, ms, s, m, h, d, w and y.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	var total time.Duration
	rest := s
	for rest != "" {
		n := countDigits(rest)
		if n == 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		value, err := strconv.ParseInt(rest[:n], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		unitLen := durationUnitAt(rest[n:])
		if unitLen == 0 {
			return 0, fmt.Errorf("invalid duration %q: missing unit", s)
		}
		unit := rest[n : n+unitLen]
		rest = rest[n+unitLen:]

		var scale time.Duration
		switch unit {
		case "ns":
			scale = time.Nanosecond
		case "us":
			scale = time.Microsecond
		case "ms":
			scale = time.Millisecond
		case "s":
			scale = time.Second
		case "m":
			scale = time.Minute
		case "h":
			scale = time.Hour
		case "d":
			scale = day
		case "w":
			scale = week
		case "y":
			scale = year
		}
		total += time.Duration(value) * scale
	}
	return total, nil
}

// ---------- Function Calls ----------

// parseCall parses a possibly namespaced function call. The argument list
// is optional so a bare name like "time::now" still resolves.
//
//	call → name {"::" name} ["(" [expr {"," expr}] ")"]
func (p *Parser) parseCall() (core.Expr, bool) {
	start := p.token.Span.Start
	parts := []string{p.token.Value.Literal}
	p.nextToken()
	for p.match(token.DCOLON) {
		part, ok := p.parseName("function name")
		if !ok {
			return core.Expr{}, false
		}
		parts = append(parts, part.Value)
	}
	call := &core.Call{Name: token.At(strings.Join(parts, "::"), p.spanFrom(start))}

	if p.check(token.LPAREN) {
		p.nextToken()
		p.open()
		args, ok := p.parseExprList(token.RPAREN)
		if !ok {
			return core.Expr{}, false
		}
		call.Args = &args
	}
	return token.At[core.Expression](call, p.spanFrom(start)), true
}

// parseExprList parses comma separated expressions up to closer and
// consumes it. The caller has already opened the region. Each element
// recovers on its own.
func (p *Parser) parseExprList(closer token.TokenType) ([]core.Expr, bool) {
	elems := []core.Expr{}
	for !p.check(closer) && !p.check(token.EOF) {
		if expr, ok := p.parseExpression(); ok {
			elems = append(elems, expr)
		} else {
			p.skipUntil(func(t token.TokenType) bool { return t == token.COMMA || t == closer })
		}
		if p.match(token.COMMA) {
			continue
		}
		if !p.check(closer) {
			p.errorExpected(",", closer.String())
			p.skipPast(closer)
			return elems, true
		}
	}
	p.close()
	if !p.match(closer) {
		p.errorExpected(closer.String())
	}
	return elems, true
}

// ---------- Grouping ----------

// parseParen parses a parenthesized expression or an inline statement.
func (p *Parser) parseParen() (core.Expr, bool) {
	start := p.token.Span.Start
	p.nextToken() // consume (
	p.open()

	if token.IsStatementStart(p.token.Value.Type) {
		// The inner statement gets its own row; the outer one is restored after.
		saved := p.scope.Current()
		stmt := p.parseStatement(token.RPAREN)
		p.scope.SetCurrent(saved)
		if !p.check(token.RPAREN) {
			p.errorExpected(")")
			p.skipPast(token.RPAREN)
		} else {
			p.close()
			p.nextToken()
		}
		return token.At[core.Expression](&core.Inline{Statement: stmt}, p.spanFrom(start)), true
	}

	expr, ok := p.parseExpression()
	if !ok {
		p.skipPast(token.RPAREN)
		return core.Expr{}, false
	}
	if !p.check(token.RPAREN) {
		p.errorExpected(")")
		p.skipPast(token.RPAREN)
		return core.Expr{}, false
	}
	p.close()
	p.nextToken()
	// Parentheses only group; the span covers them.
	return token.At(expr.Value, p.spanFrom(start)), true
}

// parseArray parses an array literal.
func (p *Parser) parseArray() (core.Expr, bool) {
	start := p.token.Span.Start
	p.nextToken() // consume [
	p.open()
	elems, ok := p.parseExprList(token.RBRACKET)
	if !ok {
		return core.Expr{}, false
	}
	return token.At[core.Expression](&core.Array{Elements: elems}, p.spanFrom(start)), true
}

// ---------- Objects and Blocks ----------

// parseBrace parses an object literal or a code block. "{}" and a name
// followed by ":", "," or "}" start an object; anything else is a block.
func (p *Parser) parseBrace() (core.Expr, bool) {
	start := p.token.Span.Start
	p.nextToken() // consume {
	p.open()

	if p.check(token.RBRACE) || p.isObjectKey() {
		return p.parseObject(start)
	}
	return p.parseCodeBlock(start)
}

func (p *Parser) isObjectKey() bool {
	if !p.isName() && !p.checkAny(token.STRING, token.RECORD) {
		return false
	}
	switch p.peekType() {
	case token.COLON:
		return true
	case token.COMMA, token.RBRACE:
		return !token.IsStatementStart(p.token.Value.Type)
	default:
		return false
	}
}

// parseObject parses the entries of an object literal. A key without a
// value keeps a nil Value; the checker reports it.
//
//	object → "{" [entry {"," entry} [","]] "}"
//	entry  → key [":" expr]
func (p *Parser) parseObject(start token.Position) (core.Expr, bool) {
	obj := &core.Object{}
	atEntryEnd := func(t token.TokenType) bool { return t == token.COMMA || t == token.RBRACE }

	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if !p.isName() && !p.checkAny(token.STRING, token.RECORD) {
			p.errorExpected("field name")
			p.skipUntil(atEntryEnd)
		} else {
			entry := core.ObjectEntry{Key: token.At(p.token.Value.Literal, p.token.Span)}
			p.nextToken()

			if p.match(token.COLON) {
				if !atEntryEnd(p.token.Value.Type) {
					if value, ok := p.parseExpression(); ok {
						entry.Value = &value
					} else {
						p.skipUntil(atEntryEnd)
					}
				}
			} else if !atEntryEnd(p.token.Value.Type) {
				p.errorExpected(":")
				p.skipUntil(atEntryEnd)
			}
			obj.Entries = append(obj.Entries, entry)
		}

		if p.match(token.COMMA) {
			continue
		}
		if !p.check(token.RBRACE) {
			p.errorExpected(",", "}")
			p.skipUntil(atEntryEnd)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	p.close()
	if !p.match(token.RBRACE) {
		p.errorExpected("}")
		obj.Unclosed = true
	}
	return token.At[core.Expression](obj, p.spanFrom(start)), true
}

// parseCodeBlock parses "{ stmt; ... }". A bare expression inside a block
// is read as the value the block returns.
func (p *Parser) parseCodeBlock(start token.Position) (core.Expr, bool) {
	saved := p.scope.Current()
	stmts := p.parseStatementList(token.RBRACE)
	p.scope.SetCurrent(saved)

	block := &core.CodeBlock{Statements: stmts}
	p.close()
	if !p.match(token.RBRACE) {
		p.errorExpected("}")
		block.Unclosed = true
	}
	return token.At[core.Expression](block, p.spanFrom(start)), true
}
