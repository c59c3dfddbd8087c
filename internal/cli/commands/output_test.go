package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
)

func span(line, startCol, endLine, endCol int) token.Span {
	return token.Span{
		Start: token.Position{Line: line, Column: startCol},
		End:   token.Position{Line: endLine, Column: endCol},
	}
}

func TestCaret(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		span      token.Span
		wantPad   int
		wantWidth int
	}{
		{"ascii", "select * from nobody", span(1, 15, 1, 21), 14, 6},
		{"wide characters before", "'日本' nobody", span(1, 10, 1, 16), 7, 6},
		{"wide characters inside", "return '日本'", span(1, 8, 1, 16), 7, 6},
		{"tab indent", "\tnobody", span(1, 2, 1, 8), 4, 6},
		{"empty span", "select", span(1, 7, 1, 7), 6, 1},
		{"multi-line span", "select {", span(1, 8, 3, 2), 7, 1},
		{"past end of line", "abc", span(1, 2, 1, 40), 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad, width := caret(tt.line, tt.span)
			assert.Equal(t, tt.wantPad, pad, "pad")
			assert.Equal(t, tt.wantWidth, width, "width")
		})
	}
}

func TestSourceLine(t *testing.T) {
	src := "return 1;\r\nselect x\nlast"

	tests := []struct {
		name   string
		pos    token.Position
		want   string
		wantOK bool
	}{
		{"first line", token.Position{Line: 1, Column: 1, Offset: 0}, "return 1;", true},
		{"middle line", token.Position{Line: 2, Column: 8, Offset: 18}, "select x", true},
		{"no trailing newline", token.Position{Line: 3, Column: 3, Offset: 22}, "last", true},
		{"invalid position", token.Position{}, "", false},
		{"offset past end", token.Position{Line: 9, Column: 1, Offset: 99}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sourceLine(src, tt.pos)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintDiagnostic(t *testing.T) {
	src := "RETURN 1;\nSELECT * FROM nobody;\n"
	d := core.Errorf(token.Span{
		Start: token.Position{Line: 2, Column: 15, Offset: 24},
		End:   token.Position{Line: 2, Column: 21, Offset: 30},
	}, "Table '%s' not found", "nobody")

	var buf bytes.Buffer
	printDiagnostic(&buf, NewStyles(&buf, "never"), "q.surql", src, d)

	want := "q.surql:2:15: error: Table 'nobody' not found\n" +
		"   2 | SELECT * FROM nobody;\n" +
		"     |               ^^^^^^\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteStructured_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeStructured(&buf, "xml", []FileReport{}))
}
