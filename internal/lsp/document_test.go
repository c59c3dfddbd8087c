package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surqls/pkg/token"
)

func TestDocumentStore_OpenGetClose(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/query.surql"
	content := "SELECT * FROM person"

	store.Open(uri, content, 1)

	doc := store.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, uri, doc.URI)
	assert.Equal(t, content, doc.Content)
	assert.Equal(t, 1, doc.Version)

	store.Close(uri)
	assert.Nil(t, store.Get(uri))
}

func TestDocumentStore_Update(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/query.surql"
	first := store.Open(uri, "RETURN 1", 1)

	doc := store.Update(uri, "RETURN 2\nRETURN 3", 2)
	require.NotNil(t, doc)
	assert.Equal(t, "RETURN 2\nRETURN 3", store.Get(uri).Content)
	assert.Equal(t, 2, store.Get(uri).Version)
	assert.Equal(t, []int{0, 9}, store.Get(uri).Lines)

	assert.Equal(t, "RETURN 1", first.Content, "earlier snapshots are not mutated")

	assert.Nil(t, store.Update(uri, "RETURN 0", 1), "stale version")
	assert.Equal(t, 2, store.Get(uri).Version)

	assert.Nil(t, store.Update("file:///other.surql", "RETURN 1", 1), "unknown document")
}

func TestDocumentStore_List(t *testing.T) {
	store := NewDocumentStore()

	store.Open("file:///c.surql", "RETURN 3", 1)
	store.Open("file:///a.surql", "RETURN 1", 1)
	store.Open("file:///b.surql", "RETURN 2", 1)

	assert.Equal(t, []string{"file:///a.surql", "file:///b.surql", "file:///c.surql"}, store.List())
}

func TestComputeLineOffsets(t *testing.T) {
	tests := []struct {
		content  string
		expected []int
	}{
		{"", []int{0}},
		{"abc", []int{0}},
		{"a\nb", []int{0, 2}},
		{"a\nb\nc", []int{0, 2, 4}},
		{"\n\n\n", []int{0, 1, 2, 3}},
		{"line1\r\nline2", []int{0, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.expected, computeLineOffsets(tt.content))
		})
	}
}

func TestDocument_Positions(t *testing.T) {
	// 😀 is four bytes and two UTF-16 units, é two bytes and one unit.
	doc := newDocument("file:///t.surql", "a😀b\nxé y\n", 1)

	tests := []struct {
		name   string
		offset int
		pos    Position
	}{
		{"start", 0, Position{0, 0}},
		{"before emoji", 1, Position{0, 1}},
		{"after emoji", 5, Position{0, 3}},
		{"end of first line", 6, Position{0, 4}},
		{"second line start", 7, Position{1, 0}},
		{"after accent", 10, Position{1, 2}},
		{"last char", 11, Position{1, 3}},
		{"end of document", 13, Position{2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pos, doc.OffsetToPosition(tt.offset))
			assert.Equal(t, tt.offset, doc.PositionToOffset(tt.pos))
		})
	}
}

func TestDocument_PositionClamping(t *testing.T) {
	doc := newDocument("file:///t.surql", "abc\nde", 1)

	assert.Equal(t, 3, doc.PositionToOffset(Position{0, 100}), "past line end")
	assert.Equal(t, 6, doc.PositionToOffset(Position{9, 0}), "past last line")
	assert.Equal(t, Position{1, 2}, doc.OffsetToPosition(100))
	assert.Equal(t, Position{0, 0}, doc.OffsetToPosition(-4))

	var missing *Document
	assert.Equal(t, 0, missing.PositionToOffset(Position{1, 1}))
	assert.Equal(t, Position{}, missing.OffsetToPosition(3))
}

func TestDocument_SpanToRange(t *testing.T) {
	doc := newDocument("file:///t.surql", "RETURN 1;\nRETURN 'ü'", 1)
	span := token.Span{
		Start: token.Position{Line: 2, Column: 8, Offset: 17},
		End:   token.Position{Line: 2, Column: 12, Offset: 21},
	}

	assert.Equal(t, Range{Start: Position{1, 7}, End: Position{1, 10}}, doc.SpanToRange(span))
}

func TestDocument_WordBefore(t *testing.T) {
	doc := newDocument("file:///t.surql", "SELECT na FROM person", 1)

	tests := []struct {
		offset int
		want   string
	}{
		{0, ""},
		{6, "SELECT"},
		{7, ""},
		{9, "na"},
		{8, "n"},
		{100, "person"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, doc.WordBefore(tt.offset), "offset %d", tt.offset)
	}
	assert.Equal(t, "SELECT n", doc.TextBefore(8))
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///home/user/query.surql", "/home/user/query.surql"},
		{"file:///tmp/with%20space.surql", "/tmp/with space.surql"},
		{"/already/a/path.surql", "/already/a/path.surql"},
		{"untitled:Untitled-1", "untitled:Untitled-1"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, URIToPath(tt.uri))
		})
	}
}

func TestPathToURI(t *testing.T) {
	assert.Equal(t, "file:///home/user/query.surql", PathToURI("/home/user/query.surql"))
	assert.Equal(t, "file:///tmp/with%20space.surql", PathToURI("/tmp/with space.surql"))
	assert.Equal(t, "file:///x.surql", PathToURI("file:///x.surql"))
}

func TestIsWordChar(t *testing.T) {
	for _, c := range []byte("azAZ09_") {
		assert.True(t, isWordChar(c), "%q", c)
	}
	for _, c := range []byte(" .$:-(") {
		assert.False(t, isWordChar(c), "%q", c)
	}
}
