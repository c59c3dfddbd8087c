package parser

import (
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
)

// Operator precedence levels, lowest to highest.
const (
	precedenceNone = iota
	precedenceOr
	precedenceAnd
	precedenceComparison
	precedenceAddition
	precedenceMultiply
	precedenceUnary
)

// ---------- Expression Parsing (Pratt Parser) ----------

// parseExpression parses an expression. On failure the offending token is
// reported and left in place, and ok is false.
//
//	expr    → unary {binop unary}
//	unary   → ("!" | NOT | "-") unary | postfix
//	postfix → primary {"." name | "[" expr "]"}
func (p *Parser) parseExpression() (core.Expr, bool) {
	return p.parseExpressionWithPrecedence(precedenceOr)
}

// parseExpressionWithPrecedence parses an expression where every binary
// operator binds at least as tightly as minPrec.
func (p *Parser) parseExpressionWithPrecedence(minPrec int) (core.Expr, bool) {
	left, ok := p.parsePrefixExpr()
	if !ok {
		return core.Expr{}, false
	}

	for {
		prec := p.getInfixPrecedence()
		if prec == precedenceNone || prec < minPrec {
			return left, true
		}
		left, ok = p.parseInfixExpr(left, prec)
		if !ok {
			return core.Expr{}, false
		}
	}
}

// parsePrefixExpr parses unary operators, then a postfix expression.
func (p *Parser) parsePrefixExpr() (core.Expr, bool) {
	switch p.token.Value.Type {
	case token.BANG, token.NOT, token.MINUS:
		start := p.token.Span.Start
		op := token.At(p.token.Value.Type, p.token.Span)
		if op.Value == token.NOT {
			op.Value = token.BANG
		}
		p.nextToken()
		operand, ok := p.parseExpressionWithPrecedence(precedenceUnary)
		if !ok {
			return core.Expr{}, false
		}
		return token.At[core.Expression](&core.Unary{Op: op, Operand: operand}, p.spanFrom(start)), true
	default:
		return p.parsePostfixExpr()
	}
}

// getInfixPrecedence returns the precedence of the current token as an
// infix operator, or precedenceNone.
func (p *Parser) getInfixPrecedence() int {
	switch p.token.Value.Type {
	case token.OR_OR, token.OR, token.COALESCE:
		return precedenceOr
	case token.AND_AND, token.AND:
		return precedenceAnd
	case token.EQ, token.EQEQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		return precedenceComparison
	case token.PLUS, token.MINUS, token.PERCENT:
		return precedenceAddition
	case token.STAR, token.SLASH:
		return precedenceMultiply
	default:
		return precedenceNone
	}
}

// parseInfixExpr parses the operator and right operand of a binary
// expression. Word operators are normalized to their symbol form.
func (p *Parser) parseInfixExpr(left core.Expr, prec int) (core.Expr, bool) {
	op := token.At(p.token.Value.Type, p.token.Span)
	switch op.Value {
	case token.AND:
		op.Value = token.AND_AND
	case token.OR:
		op.Value = token.OR_OR
	}
	p.nextToken()

	// Parse right operand with higher precedence (left-associative)
	right, ok := p.parseExpressionWithPrecedence(prec + 1)
	if !ok {
		return core.Expr{}, false
	}
	span := left.Span.Join(right.Span)
	return token.At[core.Expression](&core.Binary{Left: left, Op: op, Right: right}, span), true
}

// parsePostfixExpr parses a primary expression followed by any number of
// property accesses and indexes.
func (p *Parser) parsePostfixExpr() (core.Expr, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return core.Expr{}, false
	}
	start := expr.Span.Start

	for {
		switch {
		case p.check(token.DOT):
			p.nextToken()
			prop, ok := p.parseName("field name")
			if !ok {
				return core.Expr{}, false
			}
			access := &core.Access{Base: expr, Kind: core.AccessProperty, Property: prop}
			expr = token.At[core.Expression](access, p.spanFrom(start))

		case p.check(token.LBRACKET):
			p.nextToken()
			p.open()
			access := &core.Access{Base: expr, Kind: core.AccessIndex}
			if index, ok := p.parseExpression(); ok {
				access.Index = &index
				if p.check(token.RBRACKET) {
					p.close()
					p.nextToken()
				} else {
					p.errorExpected("]")
					p.skipPast(token.RBRACKET)
				}
			} else {
				p.skipPast(token.RBRACKET)
			}
			expr = token.At[core.Expression](access, p.spanFrom(start))

		default:
			return expr, true
		}
	}
}
