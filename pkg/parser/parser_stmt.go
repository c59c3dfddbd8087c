package parser

import (
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
)

// isClauseKeyword reports whether t starts a transform clause.
func isClauseKeyword(t token.TokenType) bool {
	switch t {
	case token.WHERE, token.LIMIT, token.SKIP, token.ORDER, token.GROUP:
		return true
	default:
		return false
	}
}

// isClauseBoundary reports whether t ends the payload of a clause.
func isClauseBoundary(t token.TokenType) bool {
	return isClauseKeyword(t) || token.IsStatementStart(t) ||
		t == token.SEMICOLON || t == token.NEWLINE || t == token.EOF ||
		t == token.CONTENT || t == token.MERGE || t == token.FROM
}

// recoverClause skips the rest of a malformed clause payload.
func (p *Parser) recoverClause() {
	p.skipUntil(isClauseBoundary)
}

// isName reports whether the current token can be used as a name.
// Keywords are accepted so tables and fields may be called "type" or "table".
func (p *Parser) isName() bool {
	return p.check(token.IDENT) || token.IsKeyword(p.token.Value.Type)
}

// parseName consumes a name token.
func (p *Parser) parseName(what string) (core.Ident, bool) {
	if !p.isName() {
		p.errorExpected(what)
		return core.Ident{}, false
	}
	tok := p.token
	p.nextToken()
	return token.At(tok.Value.Literal, tok.Span), true
}

// ---------- Target Table ----------

// parseTarget parses the table name of a CRUD statement, resolves it, and
// rebinds the current row to it.
//
//	target → ident
func (p *Parser) parseTarget() *core.Table {
	if !p.check(token.IDENT) {
		p.errorExpected("table name")
		if !isClauseBoundary(p.token.Value.Type) && !p.checkAny(token.LBRACE, token.RBRACE, token.RPAREN) {
			p.nextToken()
		}
		p.scope.SetCurrent(nil)
		return nil
	}
	name := token.At(p.token.Value.Literal, p.token.Span)
	p.nextToken()

	table := p.resolveTable(name)
	if table.Value.Found {
		p.scope.SetCurrent(&table.Value.Object)
	} else {
		p.scope.SetCurrent(nil)
	}
	return &table
}

// resolveTable looks a table name up in the scope.
func (p *Parser) resolveTable(name core.Ident) core.Table {
	obj, ok := p.scope.Table(name.Value)
	return token.At(core.TableRef{Name: name.Value, Found: ok, Object: obj}, name.Span)
}

// ---------- CRUD Statements ----------

// parseCreate parses a CREATE statement.
//
//	create → CREATE target [CONTENT expr] {transform}
func (p *Parser) parseCreate() core.Stmt {
	start := p.token.Span.Start
	p.nextToken() // consume CREATE

	stmt := &core.Create{Target: p.parseTarget()}
	p.skipNewlinesIf(func(t token.TokenType) bool { return t == token.CONTENT || isClauseKeyword(t) })
	if p.match(token.CONTENT) {
		stmt.Content = p.parseClauseExpr()
	}
	stmt.Transforms = p.parseTransforms()
	return token.At[core.Statement](stmt, p.spanFrom(start))
}

// parseUpdate parses an UPDATE statement.
//
//	update → UPDATE target [(CONTENT | MERGE) expr] {transform}
func (p *Parser) parseUpdate() core.Stmt {
	start := p.token.Span.Start
	p.nextToken() // consume UPDATE

	stmt := &core.Update{Target: p.parseTarget()}
	p.skipNewlinesIf(func(t token.TokenType) bool {
		return t == token.CONTENT || t == token.MERGE || isClauseKeyword(t)
	})
	switch {
	case p.match(token.CONTENT):
		stmt.Content = p.parseClauseExpr()
	case p.match(token.MERGE):
		stmt.Merge = true
		stmt.Content = p.parseClauseExpr()
	}
	stmt.Transforms = p.parseTransforms()
	return token.At[core.Statement](stmt, p.spanFrom(start))
}

// parseDelete parses a DELETE statement.
//
//	delete → DELETE target {transform}
func (p *Parser) parseDelete() core.Stmt {
	start := p.token.Span.Start
	p.nextToken() // consume DELETE

	stmt := &core.Delete{Target: p.parseTarget()}
	stmt.Transforms = p.parseTransforms()
	return token.At[core.Statement](stmt, p.spanFrom(start))
}

// parseSelect parses a SELECT statement.
//
//	select     → SELECT projection {"," projection} [FROM target] {transform}
//	projection → "*" | expr [AS name]
func (p *Parser) parseSelect() core.Stmt {
	start := p.token.Span.Start
	p.nextToken() // consume SELECT

	stmt := &core.Select{}
	for {
		if proj, ok := p.parseProjection(); ok {
			stmt.Projections = append(stmt.Projections, proj)
		} else {
			p.skipUntil(func(t token.TokenType) bool { return t == token.COMMA || isClauseBoundary(t) })
		}
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}

	p.skipNewlinesIf(func(t token.TokenType) bool { return t == token.FROM || isClauseKeyword(t) })
	if p.match(token.FROM) {
		stmt.From = p.parseTarget()
	}
	stmt.Transforms = p.parseTransforms()
	return token.At[core.Statement](stmt, p.spanFrom(start))
}

func (p *Parser) parseProjection() (token.Spanned[core.Projection], bool) {
	start := p.token.Span.Start
	if p.match(token.STAR) {
		return token.At(core.Projection{Star: true}, p.spanFrom(start)), true
	}

	expr, ok := p.parseExpression()
	if !ok {
		return token.Spanned[core.Projection]{}, false
	}
	proj := core.Projection{Expr: expr}
	if p.match(token.AS) {
		if alias, ok := p.parseName("alias"); ok {
			proj.Alias = &alias
		}
	}
	return token.At(proj, p.spanFrom(start)), true
}

// parseClauseExpr parses a clause payload, recovering to the next clause
// boundary on failure.
func (p *Parser) parseClauseExpr() *core.Expr {
	expr, ok := p.parseExpression()
	if !ok {
		p.recoverClause()
		return nil
	}
	return &expr
}

// ---------- Transforms ----------

// parseTransforms parses zero or more transform clauses.
//
//	transform → WHERE expr | LIMIT expr | SKIP expr
//	          | GROUP BY expr | ORDER BY expr [ASC | DESC]
func (p *Parser) parseTransforms() []core.Transform {
	var out []core.Transform
	for {
		p.skipNewlinesIf(isClauseKeyword)
		start := p.token.Span.Start

		var clause core.Clause
		switch p.token.Value.Type {
		case token.WHERE:
			clause.Kind = core.ClauseWhere
		case token.LIMIT:
			clause.Kind = core.ClauseLimit
		case token.SKIP:
			clause.Kind = core.ClauseSkip
		case token.GROUP:
			clause.Kind = core.ClauseGroupBy
		case token.ORDER:
			clause.Kind = core.ClauseOrderBy
		default:
			return out
		}
		p.nextToken()

		if clause.Kind == core.ClauseGroupBy || clause.Kind == core.ClauseOrderBy {
			if !p.expect(token.BY) {
				p.recoverClause()
				out = append(out, token.At(clause, p.spanFrom(start)))
				continue
			}
		}

		clause.Value = p.parseClauseExpr()
		if clause.Kind == core.ClauseOrderBy && clause.Value != nil {
			if p.match(token.DESC) {
				clause.Descending = true
			} else {
				p.match(token.ASC)
			}
		}
		out = append(out, token.At(clause, p.spanFrom(start)))
	}
}

// ---------- LET / RETURN ----------

// parseLet parses a LET statement. A missing name or value is recovered as nil.
//
//	let → LET $name "=" expr
func (p *Parser) parseLet() core.Stmt {
	start := p.token.Span.Start
	p.nextToken() // consume LET

	stmt := &core.Let{}
	if p.check(token.VARIABLE) {
		name := token.At(p.token.Value.Literal, p.token.Span)
		stmt.Name = &name
		p.nextToken()
	} else {
		p.errorExpected("variable")
		if p.check(token.IDENT) {
			p.nextToken()
		}
	}

	if !p.match(token.EQ) {
		p.errorExpected("=")
		if isClauseBoundary(p.token.Value.Type) {
			return token.At[core.Statement](stmt, p.spanFrom(start))
		}
	}
	stmt.Value = p.parseClauseExpr()
	return token.At[core.Statement](stmt, p.spanFrom(start))
}

// parseReturn parses a RETURN statement. A bare RETURN returns null.
//
//	return → RETURN [expr]
func (p *Parser) parseReturn(closer token.TokenType) core.Stmt {
	start := p.token.Span.Start
	kw := p.token.Span
	p.nextToken() // consume RETURN

	null := token.At[core.Expression](&core.Literal{Kind: core.LiteralNull, Text: "null"}, kw)
	if isClauseBoundary(p.token.Value.Type) || p.check(closer) {
		return token.At[core.Statement](&core.Return{Value: null}, p.spanFrom(start))
	}
	value := null
	if expr := p.parseClauseExpr(); expr != nil {
		value = *expr
	}
	return token.At[core.Statement](&core.Return{Value: value}, p.spanFrom(start))
}
