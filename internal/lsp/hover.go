package lsp

import (
	"fmt"

	"github.com/leapstack-labs/surqls/pkg/check"
	"github.com/leapstack-labs/surqls/pkg/core"
)

// getHover describes the innermost expression under the cursor with its
// type, or the signature for a function call. It returns nil when there is
// nothing to describe.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	result := s.analyzed(doc)
	sc := s.analyzer.Scope()
	offset := doc.PositionToOffset(params.Position)

	expr, t, ok := check.TypeAt(result.Statements, offset, sc)
	if !ok {
		return nil
	}

	text := fmt.Sprintf("%s: %s", expr.Span.Text(doc.Content), t)
	if call, isCall := expr.Value.(*core.Call); isCall {
		if sig, found := sc.Function(call.Name.Value); found {
			text = sig.String()
		}
	}

	r := doc.SpanToRange(expr.Span)
	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: "```surql\n" + text + "\n```"},
		Range:    &r,
	}
}
