package lsp

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surqls/internal/testutil"
	"github.com/leapstack-labs/surqls/pkg/analysis"
)

// newTestServer returns a server whose documents are driven directly.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	return NewServer(strings.NewReader(""), io.Discard, analysis.New(testTables(), analysis.DefaultOptions(), logger), logger)
}

func labels(items []CompletionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

// completeAt opens text with a | marking the cursor and returns the
// completions there.
func completeAt(t *testing.T, srv *Server, text string) []CompletionItem {
	t.Helper()
	cursor := strings.Index(text, "|")
	require.GreaterOrEqual(t, cursor, 0, "missing cursor")
	text = text[:cursor] + text[cursor+1:]

	uri := "file:///work/complete.surql"
	doc := srv.documents.Open(uri, text, 1)
	srv.analyzer.Invalidate(uri)
	return srv.getCompletions(CompletionParams{TextDocumentPositionParams: TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     doc.OffsetToPosition(cursor),
	}})
}

func TestGetCompletions(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		exclude []string
	}{
		{"fields of the row table", "select | from person", []string{"name", "age", "friend", "SELECT"}, nil},
		{"field prefix", "select na| from person", []string{"name"}, []string{"age"}},
		{"tables after FROM", "select * from |", []string{"person"}, []string{"name", "SELECT"}},
		{"tables after CREATE with prefix", "create pe|", []string{"person"}, nil},
		{"tables after ON TABLE", "define field x on table |", []string{"person"}, nil},
		{"object members", "select address.| from person", []string{"city"}, []string{"name"}},
		{"record members", "select friend.| from person", []string{"name", "age"}, []string{"city"}},
		{"nested record members", "select friend.address.c| from person", []string{"city"}, nil},
		{"unknown member path", "select nope.| from person", nil, []string{"name", "city"}},
		{"function namespace", "return string::|", []string{"len", "lowercase", "concat"}, []string{"string::len", "sum"}},
		{"function namespace prefix", "return math::m|", []string{"max", "min", "mean"}, []string{"sum"}},
		{"namespaces and plain functions", "return |", []string{"string", "math", "count"}, []string{"len"}},
		{"variables", "let $who = 'x'; let $n = 1; return $|", []string{"$who", "$n"}, []string{"name"}},
		{"variables after the cursor are hidden", "return $|; let $later = 1", nil, []string{"$later"}},
		{"statement keywords", "sel|", []string{"SELECT"}, []string{"CREATE"}},
		{"no row outside statements", "return |", nil, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels(completeAt(t, newTestServer(t), tt.text))
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, x := range tt.exclude {
				assert.NotContains(t, got, x)
			}
		})
	}
}

func TestGetCompletions_Details(t *testing.T) {
	srv := newTestServer(t)

	items := completeAt(t, srv, "let $n = 1; return $|")
	require.Len(t, items, 1)
	assert.Equal(t, CompletionItem{Label: "$n", Kind: CompletionItemKindVariable, Detail: "int", SortText: sortVariable + "n"}, items[0])

	items = completeAt(t, srv, "select ag| from person")
	require.NotEmpty(t, items)
	assert.Equal(t, CompletionItem{Label: "age", Kind: CompletionItemKindField, Detail: "option<int>", SortText: sortField + "age"}, items[0])

	items = completeAt(t, srv, "return string::le|")
	require.Len(t, items, 1)
	assert.Equal(t, CompletionItemKindFunction, items[0].Kind)
	assert.True(t, strings.HasPrefix(items[0].Detail, "string::len("), items[0].Detail)
}

func TestGetCompletions_ExpectedKeywords(t *testing.T) {
	srv := newTestServer(t)

	got := labels(completeAt(t, srv, "define |"))
	assert.Contains(t, got, "TABLE")
	assert.Contains(t, got, "FIELD")
	assert.NotContains(t, got, "SELECT", "only what the parser expects here")
}

func TestGetCompletions_UnknownDocument(t *testing.T) {
	srv := newTestServer(t)
	assert.Nil(t, srv.getCompletions(CompletionParams{TextDocumentPositionParams: TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///missing.surql"},
	}}))
}

func TestDottedPath(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"select address", []string{"address"}},
		{"select friend.address", []string{"friend", "address"}},
		{"select ", nil},
		{"", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, dottedPath(tt.text), tt.text)
	}
}

func TestGetHover(t *testing.T) {
	srv := newTestServer(t)
	uri := "file:///work/hover.surql"

	hoverAt := func(text string) *Hover {
		cursor := strings.Index(text, "|")
		text = text[:cursor] + text[cursor+1:]
		doc := srv.documents.Open(uri, text, 1)
		srv.analyzer.Invalidate(uri)
		return srv.getHover(HoverParams{TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: uri},
			Position:     doc.OffsetToPosition(cursor),
		}})
	}

	h := hoverAt("select fr|iend.name from person")
	require.NotNil(t, h)
	assert.Equal(t, MarkupKindMarkdown, h.Contents.Kind)
	assert.Contains(t, h.Contents.Value, "friend: option<record<person>>")

	h = hoverAt("let $x = [1, 2]; return $|x")
	require.NotNil(t, h)
	assert.Contains(t, h.Contents.Value, "$x: array<int>")

	h = hoverAt("return str|ing::len('a')")
	require.NotNil(t, h)
	assert.Contains(t, h.Contents.Value, "string::len(")

	assert.Nil(t, hoverAt("ret|urn 1"))
}
