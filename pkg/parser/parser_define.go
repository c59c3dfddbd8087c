package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// parseDefine parses a DEFINE statement. It returns false when the keyword
// after DEFINE is not TABLE or FIELD; the caller then skips the statement.
//
//	define       → DEFINE (define_table | define_field)
//	define_table → TABLE name [permissions]
//	define_field → FIELD name {"." name} ON [TABLE] name [TYPE type] [permissions]
//	permissions  → PERMISSIONS (FULL | NONE)
func (p *Parser) parseDefine() (core.Stmt, bool) {
	start := p.token.Span.Start
	p.nextToken() // consume DEFINE

	switch {
	case p.match(token.TABLE):
		return p.parseDefineTable(start), true
	case p.match(token.FIELD):
		return p.parseDefineField(start), true
	default:
		p.errorExpected("TABLE", "FIELD")
		return core.Stmt{}, false
	}
}

func (p *Parser) parseDefineTable(start token.Position) core.Stmt {
	stmt := &core.DefineTable{}
	if name, ok := p.parseName("table name"); ok {
		table := p.resolveTable(name)
		stmt.Name = &table
	}
	stmt.Permissions = p.parsePermissions()
	return token.At[core.Statement](stmt, p.spanFrom(start))
}

func (p *Parser) parseDefineField(start token.Position) core.Stmt {
	stmt := &core.DefineField{}

	if name, ok := p.parseName("field name"); ok {
		stmt.Path = append(stmt.Path, name)
		for p.match(token.DOT) {
			part, ok := p.parseName("field name")
			if !ok {
				break
			}
			stmt.Path = append(stmt.Path, part)
		}
	}

	if p.expect(token.ON) {
		p.match(token.TABLE)
		if name, ok := p.parseName("table name"); ok {
			table := p.resolveTable(name)
			stmt.Table = &table
		}
	}
	stmt.Remote = resolveFieldPath(stmt.Table, stmt.Path)

	if p.match(token.TYPE) {
		if typ, ok := p.parseType(); ok {
			stmt.Type = &typ
		} else {
			p.skipUntil(func(t token.TokenType) bool {
				return t == token.PERMISSIONS || isClauseBoundary(t)
			})
		}
	}
	stmt.Permissions = p.parsePermissions()
	return token.At[core.Statement](stmt, p.spanFrom(start))
}

// resolveFieldPath walks path through the fields of a resolved table,
// descending into object fields.
func resolveFieldPath(table *core.Table, path []core.Ident) core.FieldRef {
	ref := core.FieldRef{Path: make([]string, len(path))}
	for i, part := range path {
		ref.Path[i] = part.Value
	}
	if table == nil || !table.Value.Found || len(path) == 0 {
		return ref
	}

	fields := table.Value.Object
	for i, name := range ref.Path {
		f, ok := fields.Field(name)
		if !ok {
			return ref
		}
		if i == len(ref.Path)-1 {
			ref.Found = true
			ref.Type = f.Type
			return ref
		}
		inner := f.Type.Unwrap()
		if inner.Kind != types.KindObject {
			return ref
		}
		fields = inner.Object()
	}
	return ref
}

func (p *Parser) parsePermissions() core.Permission {
	if !p.match(token.PERMISSIONS) {
		return core.PermissionUnset
	}
	switch {
	case p.match(token.FULL):
		return core.PermissionFull
	case p.match(token.NONE):
		return core.PermissionNone
	default:
		p.errorExpected("FULL", "NONE")
		return core.PermissionUnset
	}
}

// ---------- Types ----------

// parseType parses a declared type and resolves it.
//
//	type → name ["<" type {"," type} ">"]
func (p *Parser) parseType() (token.Spanned[core.TypeExpr], bool) {
	start := p.token.Span.Start
	name, ok := p.parseName("type")
	if !ok {
		return token.Spanned[core.TypeExpr]{}, false
	}

	te := core.TypeExpr{Name: name.Value}
	if p.match(token.LT) {
		for {
			arg, ok := p.parseType()
			if !ok {
				return token.Spanned[core.TypeExpr]{}, false
			}
			te.Args = append(te.Args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
		if !p.expect(token.GT) {
			return token.Spanned[core.TypeExpr]{}, false
		}
	}

	span := p.spanFrom(start)
	resolved, err := resolveTypeExpr(te)
	if err != nil {
		p.addError(span, fmt.Sprintf(ErrInvalidType, err))
	}
	te.Resolved = resolved
	return token.At(te, span), true
}

// resolveTypeExpr maps a written type to a types.Type. The argument of
// record<...> names a table rather than a type.
func resolveTypeExpr(te core.TypeExpr) (types.Type, error) {
	if strings.EqualFold(te.Name, "record") {
		switch len(te.Args) {
		case 0:
			return types.Declared(te.Name, nil, "")
		case 1:
			return types.Declared(te.Name, nil, te.Args[0].Value.Name)
		default:
			return types.Error, fmt.Errorf("type record expects 1 argument(s), got %d", len(te.Args))
		}
	}
	args := make([]types.Type, len(te.Args))
	for i, a := range te.Args {
		args[i] = a.Value.Resolved
	}
	return types.Declared(te.Name, args, "")
}

// ParseDeclaredType parses a standalone type such as "option<array<int>>".
func ParseDeclaredType(src string) (types.Type, error) {
	toks, lexErrs := Lex(src)
	if len(lexErrs) > 0 {
		return types.Error, lexErrs[0]
	}
	p := NewParser(toks, nil)
	te, ok := p.parseType()
	if !ok || len(p.errors) > 0 {
		if len(p.errors) > 0 {
			return types.Error, p.errors[0]
		}
		return types.Error, fmt.Errorf("invalid type %q", src)
	}
	if !p.check(token.EOF) {
		p.errorExpected("end of type")
		return types.Error, p.errors[0]
	}
	return te.Value.Resolved, nil
}
