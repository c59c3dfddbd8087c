package lsp

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/surqls/pkg/analysis"
	"github.com/leapstack-labs/surqls/pkg/check"
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/scope"
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// Sort groups, so fields come before variables, functions and keywords.
const (
	sortField    = "0"
	sortVariable = "1"
	sortFunction = "2"
	sortKeyword  = "3"
)

// tableKeywords are followed by a table name.
var tableKeywords = []token.TokenType{token.FROM, token.CREATE, token.UPDATE, token.DELETE, token.ON, token.TABLE}

// completer holds what one completion request needs.
type completer struct {
	doc    *Document
	result *analysis.Document
	scope  *scope.Scope
	offset int
	prefix string
}

// getCompletions returns completion items for the given position.
func (s *Server) getCompletions(params CompletionParams) []CompletionItem {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	offset := doc.PositionToOffset(params.Position)
	c := &completer{
		doc:    doc,
		result: s.analyzed(doc),
		scope:  s.analyzer.Scope(),
		offset: offset,
		prefix: doc.WordBefore(offset),
	}
	return c.complete()
}

func (c *completer) complete() []CompletionItem {
	wordStart := c.offset - len(c.prefix)
	before := c.doc.TextBefore(wordStart)

	switch {
	case strings.HasSuffix(before, "$"):
		return c.variables()
	case strings.HasSuffix(before, "::"):
		return c.functions(c.doc.WordBefore(wordStart - 2))
	case strings.HasSuffix(before, "."):
		return c.members(wordStart - 1)
	}

	if prev, ok := c.previousToken(wordStart); ok && slices.Contains(tableKeywords, prev.Type) {
		return c.tables()
	}

	var items []CompletionItem
	if row, ok := c.rowTable(); ok {
		items = append(items, c.fields(row)...)
	}
	items = append(items, c.variables()...)
	items = append(items, c.functions("")...)
	items = append(items, c.keywords()...)
	return items
}

func (c *completer) matches(label string) bool {
	return strings.HasPrefix(strings.ToLower(label), strings.ToLower(c.prefix))
}

// keywords offers what the parser expected at the cursor, or every keyword
// when the text there parsed cleanly.
func (c *completer) keywords() []CompletionItem {
	var words []string
	for _, e := range c.result.ExpectedAt(c.offset) {
		if token.LookupIdent(strings.ToLower(e)) != token.IDENT {
			words = append(words, strings.ToUpper(e))
		}
	}
	if len(words) == 0 {
		for _, k := range token.Keywords() {
			words = append(words, strings.ToUpper(k))
		}
	}
	slices.Sort(words)
	words = slices.Compact(words)

	var items []CompletionItem
	for _, w := range words {
		if c.matches(w) {
			items = append(items, CompletionItem{Label: w, Kind: CompletionItemKindKeyword, SortText: sortKeyword + w})
		}
	}
	return items
}

func (c *completer) tables() []CompletionItem {
	var items []CompletionItem
	for _, name := range c.scope.TableNames() {
		if c.matches(name) {
			items = append(items, CompletionItem{Label: name, Kind: CompletionItemKindClass, Detail: "table"})
		}
	}
	return items
}

func (c *completer) fields(obj types.Object) []CompletionItem {
	var items []CompletionItem
	for _, f := range obj.Fields {
		if c.matches(f.Name) {
			items = append(items, CompletionItem{
				Label:    f.Name,
				Kind:     CompletionItemKindField,
				Detail:   f.Type.String(),
				SortText: sortField + f.Name,
			})
		}
	}
	return items
}

// variables offers session variables and the LET bindings made before the
// cursor, with their types.
func (c *completer) variables() []CompletionItem {
	sc := c.scope.Clone()
	for _, stmt := range c.result.Statements {
		if stmt.Span.End.Offset > c.offset {
			break
		}
		let, ok := stmt.Value.(*core.Let)
		if !ok || let.Name == nil {
			continue
		}
		t := types.Error
		if let.Value != nil {
			t = check.TypeOf(*let.Value, sc)
		}
		sc.BindVariable(let.Name.Value, t)
	}

	var items []CompletionItem
	for _, name := range sc.VariableNames() {
		if !c.matches(name) {
			continue
		}
		t, _ := sc.Variable(name)
		items = append(items, CompletionItem{
			Label:    "$" + name,
			Kind:     CompletionItemKindVariable,
			Detail:   t.String(),
			SortText: sortVariable + name,
		})
	}
	return items
}

// functions offers the functions of namespace, or the namespaces and plain
// functions when namespace is empty.
func (c *completer) functions(namespace string) []CompletionItem {
	var items []CompletionItem
	seen := make(map[string]bool)
	for _, name := range c.scope.FunctionNames() {
		sig, _ := c.scope.Function(name)

		if namespace != "" {
			rest, ok := strings.CutPrefix(name, namespace+"::")
			if ok && c.matches(rest) {
				items = append(items, CompletionItem{
					Label:    rest,
					Kind:     CompletionItemKindFunction,
					Detail:   sig.String(),
					SortText: sortFunction + rest,
				})
			}
			continue
		}

		head, _, nested := strings.Cut(name, "::")
		if !c.matches(head) || seen[head] {
			continue
		}
		seen[head] = true
		if nested {
			items = append(items, CompletionItem{Label: head, Kind: CompletionItemKindModule, Detail: "namespace", SortText: sortFunction + head})
		} else {
			items = append(items, CompletionItem{Label: head, Kind: CompletionItemKindFunction, Detail: sig.String(), SortText: sortFunction + head})
		}
	}
	return items
}

// members offers the fields reachable from the dotted path ending at the
// dot at offset dot, starting from the current row.
func (c *completer) members(dot int) []CompletionItem {
	row, ok := c.rowTable()
	if !ok {
		return nil
	}

	path := dottedPath(c.doc.TextBefore(dot))
	if len(path) == 0 {
		return nil
	}

	obj := row
	for _, name := range path {
		f, ok := obj.Field(name)
		if !ok {
			return nil
		}
		if obj, ok = check.Members(f.Type, c.scope); !ok {
			return nil
		}
	}
	return c.fields(obj)
}

// dottedPath returns the a.b.c chain at the end of text.
func dottedPath(text string) []string {
	start := len(text)
	for start > 0 && (isWordChar(text[start-1]) || text[start-1] == '.') {
		start--
	}
	chain := strings.Trim(text[start:], ".")
	if chain == "" {
		return nil
	}
	return strings.Split(chain, ".")
}

// previousToken returns the last significant token ending at or before offset.
func (c *completer) previousToken(offset int) (token.Token, bool) {
	var prev token.Token
	found := false
	for _, t := range c.result.Tokens {
		if t.Span.End.Offset > offset {
			break
		}
		if t.Value.Type == token.NEWLINE || t.Value.Type == token.EOF {
			continue
		}
		prev, found = t.Value, true
	}
	return prev, found
}

// rowTable finds the table named by the statement around the cursor. It
// reads tokens rather than the AST so that it works while the statement
// being typed does not parse.
func (c *completer) rowTable() (types.Object, bool) {
	toks := c.result.Tokens
	start, end := 0, len(toks)
	for i, t := range toks {
		if t.Value.Type != token.SEMICOLON {
			continue
		}
		if t.Span.End.Offset <= c.offset {
			start = i + 1
		} else {
			end = i
			break
		}
	}

	for i := start; i < end-1; i++ {
		switch toks[i].Value.Type {
		case token.FROM, token.CREATE, token.UPDATE, token.DELETE, token.ON:
			next := i + 1
			if toks[next].Value.Type == token.TABLE && next+1 < end {
				next++
			}
			if toks[next].Value.Type == token.IDENT {
				return c.scope.Table(toks[next].Value.Literal)
			}
		}
	}
	return types.Object{}, false
}
