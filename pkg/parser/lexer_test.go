package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surqls/pkg/parser"
	"github.com/leapstack-labs/surqls/pkg/token"
)

// lexTypes returns the token types of src without the trailing EOF.
func lexTypes(t *testing.T, src string) []token.TokenType {
	t.Helper()
	toks, _ := parser.Lex(src)
	require.NotEmpty(t, toks)
	require.Equal(t, token.EOF, toks[len(toks)-1].Value.Type)

	out := make([]token.TokenType, 0, len(toks)-1)
	for _, tok := range toks[:len(toks)-1] {
		out = append(out, tok.Value.Type)
	}
	return out
}

func TestLex_TokenKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.TokenType
	}{
		{"keywords any case", "select FROM Where", []token.TokenType{token.SELECT, token.FROM, token.WHERE}},
		{"identifier", "person", []token.TokenType{token.IDENT}},
		{"variable", "$name", []token.TokenType{token.VARIABLE}},
		{"bools", "true FALSE", []token.TokenType{token.BOOL, token.BOOL}},
		{"int", "42", []token.TokenType{token.INT}},
		{"float", "1.5", []token.TokenType{token.FLOAT}},
		{"float suffix", "2f", []token.TokenType{token.FLOAT}},
		{"decimal suffix", "3dec", []token.TokenType{token.DECIMAL}},
		{"fractional decimal", "1.5dec", []token.TokenType{token.DECIMAL}},
		{"duration", "10m", []token.TokenType{token.DURATION}},
		{"compound duration", "1h30m", []token.TokenType{token.DURATION}},
		{"milliseconds", "5ms", []token.TokenType{token.DURATION}},
		{"string", `"hello"`, []token.TokenType{token.STRING}},
		{"single quoted", `'hello'`, []token.TokenType{token.STRING}},
		{"sniffed datetime", `"2024-01-02T03:04:05Z"`, []token.TokenType{token.DATETIME}},
		{"sniffed record", `"person:tobie"`, []token.TokenType{token.RECORD}},
		{"datetime prefix", `d"not a date"`, []token.TokenType{token.DATETIME}},
		{"record prefix", `r'person:1'`, []token.TokenType{token.RECORD}},
		{"string prefix wins over sniffing", `s"person:tobie"`, []token.TokenType{token.STRING}},
		{"prefix letter alone is an identifier", "d", []token.TokenType{token.IDENT}},
		{
			"longest match operators",
			"= == != <= >= && || ?? :: :",
			[]token.TokenType{
				token.EQ, token.EQEQ, token.NE, token.LE, token.GE,
				token.AND_AND, token.OR_OR, token.COALESCE, token.DCOLON, token.COLON,
			},
		},
		{
			"punctuation",
			"{ } [ ] ( ) , ; . #",
			[]token.TokenType{
				token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET, token.LPAREN, token.RPAREN,
				token.COMMA, token.SEMICOLON, token.DOT, token.HASH,
			},
		},
		{"namespaced call", "string::len($s)", []token.TokenType{
			token.IDENT, token.DCOLON, token.IDENT, token.LPAREN, token.VARIABLE, token.RPAREN,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexTypes(t, tt.src))
		})
	}
}

func TestLex_KeywordKeepsSpelling(t *testing.T) {
	toks, errs := parser.Lex("Select")
	require.Empty(t, errs)
	assert.Equal(t, token.SELECT, toks[0].Value.Type)
	assert.Equal(t, "Select", toks[0].Value.Literal)
}

func TestLex_Newlines(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.TokenType
	}{
		{"single newline is whitespace", "a\nb", []token.TokenType{token.IDENT, token.IDENT}},
		{"blank line separates", "a\n\nb", []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT}},
		{"runs collapse", "a\n\n\n\n b", []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT}},
		{"comment between breaks", "a\n-- note\n\nb", []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT}},
		{"comment line is not blank", "a\n-- note\nb", []token.TokenType{token.IDENT, token.IDENT}},
		{"indented comment line", "a\n  // note  \n  b", []token.TokenType{token.IDENT, token.IDENT}},
		{"block comment line", "a\n/* note */\nb", []token.TokenType{token.IDENT, token.IDENT}},
		{"blank line before comment", "a\n\n-- note\nb", []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT}},
		{"trailing comment then blank", "a -- note\n\nb", []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT}},
		{"crlf", "a\r\n\r\nb", []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexTypes(t, tt.src))
		})
	}
}

func TestLex_Comments(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"dash comment", "a -- comment\n"},
		{"slash comment", "a // comment"},
		{"block comment", "/* one\ntwo */ a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, errs := parser.Lex(tt.src)
			require.Empty(t, errs)
			require.Len(t, toks, 2)
			assert.Equal(t, "a", toks[0].Value.Literal)
		})
	}

	t.Run("unterminated block comment", func(t *testing.T) {
		_, errs := parser.Lex("a /* never closed")
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "unterminated block comment")
	})
}

func TestLex_StringEscapes(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    string
		wantErr string
	}{
		{"newline", `"a\nb"`, "a\nb", ""},
		{"tab", `"a\tb"`, "a\tb", ""},
		{"quotes", `"say \"hi\""`, `say "hi"`, ""},
		{"single in single", `'it\'s'`, "it's", ""},
		{"backslash", `"a\\b"`, `a\b`, ""},
		{"slash", `"a\/b"`, "a/b", ""},
		{"unicode", `"é"`, "é", ""},
		{"bad unicode", `"\u00zz"`, "�zz", "invalid unicode character"},
		{"bad escape", `"a\qb"`, "ab", "invalid escape sequence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, errs := parser.Lex(tt.src)
			require.Len(t, toks, 2)
			assert.Equal(t, tt.want, toks[0].Value.Literal)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
			} else {
				require.Len(t, errs, 1)
				assert.Contains(t, errs[0].Message, tt.wantErr)
			}
		})
	}
}

func TestLex_UnterminatedString(t *testing.T) {
	toks, errs := parser.Lex("\"abc\nselect")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "unterminated string")

	// Lexing resumes on the next line.
	types := lexTypes(t, "\"abc\nselect")
	assert.Equal(t, []token.TokenType{token.STRING, token.SELECT}, types)
	assert.Equal(t, "abc", toks[0].Value.Literal)
}

func TestLex_Errors(t *testing.T) {
	t.Run("unknown character is skipped", func(t *testing.T) {
		toks, errs := parser.Lex("a @ b")
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "unexpected character")
		assert.Equal(t, []token.TokenType{token.IDENT, token.IDENT}, lexTypes(t, "a @ b"))
		assert.Equal(t, "b", toks[1].Value.Literal)
	})

	t.Run("lone ampersand", func(t *testing.T) {
		_, errs := parser.Lex("a & b")
		require.Len(t, errs, 1)
	})

	t.Run("dollar without name", func(t *testing.T) {
		_, errs := parser.Lex("$ 1")
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "variable name")
	})

	t.Run("integer overflow", func(t *testing.T) {
		toks, errs := parser.Lex("99999999999999999999")
		require.Len(t, errs, 1)
		assert.Equal(t, token.DECIMAL, toks[0].Value.Type)
	})
}

// Token spans are ordered, never overlap, and the gaps between them hold
// only whitespace and comments.
func TestLex_SpansCoverSource(t *testing.T) {
	src := strings.Join([]string{
		"-- people",
		"create person content { name: \"tobie\", age: 3 };",
		"",
		"",
		"select name, age /* inline */ from person where age >= 1h30m;",
		"let $x = [1, 2.5, 3dec] ?? none",
	}, "\n")

	toks, errs := parser.Lex(src)
	require.Empty(t, errs)

	prev := 0
	for _, tok := range toks {
		span := tok.Span
		require.True(t, span.IsValid(), "invalid span for %s", tok.Value)
		require.GreaterOrEqual(t, span.Start.Offset, prev, "token %s overlaps its predecessor", tok.Value)

		gap := strings.TrimSpace(stripComments(src[prev:span.Start.Offset]))
		assert.Empty(t, gap, "unexpected text before %s", tok.Value)
		prev = span.End.Offset
	}
	assert.Equal(t, len(src), prev)
}

func stripComments(s string) string {
	var b strings.Builder
	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "--"), strings.HasPrefix(s, "//"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return b.String()
			}
			s = s[i:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return b.String()
			}
			s = s[i+2:]
		default:
			b.WriteByte(s[0])
			s = s[1:]
		}
	}
	return b.String()
}

func TestLex_Positions(t *testing.T) {
	toks, _ := parser.Lex("select\n  name")
	require.Len(t, toks, 3)

	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Span.Start)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 9}, toks[1].Span.Start)
	assert.Equal(t, token.Position{Line: 2, Column: 7, Offset: 13}, toks[1].Span.End)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1h30m", want: "1h30m0s"},
		{in: "5ms", want: "5ms"},
		{in: "2d", want: "48h0m0s"},
		{in: "1w", want: "168h0m0s"},
		{in: "1y", want: "8760h0m0s"},
		{in: "", wantErr: true},
		{in: "h", wantErr: true},
		{in: "10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := parser.ParseDuration(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}
