package parser

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
)

// durationUnits is ordered so two-letter units win over their one-letter prefixes.
var durationUnits = []string{"ns", "us", "ms", "s", "m", "h", "d", "w", "y"}

// Lexer tokenizes SurrealQL input. It never stops at a bad character:
// problems are collected as LexErrors and lexing continues.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based, in bytes)

	errors []*LexError
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
	l.readChar()
	return l
}

// Lex tokenizes the whole input. The returned tokens end with EOF.
func Lex(input string) ([]token.Spanned[token.Token], []*LexError) {
	l := NewLexer(input)
	var toks []token.Spanned[token.Token]
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Value.Type == token.EOF {
			break
		}
	}
	return toks, l.errors
}

// Errors returns the errors collected so far.
func (l *Lexer) Errors() []*LexError {
	return l.errors
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos > len(l.input) {
		return
	}
	if l.readPos > 0 {
		if l.ch == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// advance consumes n characters.
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		l.readChar()
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// currentPos returns the position of the current character.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

func (l *Lexer) addError(span token.Span, msg string) {
	l.errors = append(l.errors, &LexError{Span: span, Message: msg})
}

func (l *Lexer) spanFrom(start token.Position) token.Span {
	return token.Span{Start: start, End: l.currentPos()}
}

func (l *Lexer) emit(t token.TokenType, literal string, start token.Position) token.Spanned[token.Token] {
	return token.At(token.Token{Type: t, Literal: literal}, l.spanFrom(start))
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Spanned[token.Token] {
	for {
		if nl, ok := l.skipTrivia(); ok {
			return nl
		}

		start := l.currentPos()
		if l.atEOF() {
			return token.At(token.Token{Type: token.EOF}, token.Span{Start: start, End: start})
		}

		switch {
		case (l.ch == 'r' || l.ch == 'd' || l.ch == 's' || l.ch == 'R' || l.ch == 'D' || l.ch == 'S') &&
			(l.peekChar() == '"' || l.peekChar() == '\''):
			prefix := l.ch | 0x20 // lower-case
			l.readChar()
			return l.readString(start, prefix)
		case isIdentStart(l.ch):
			return l.readIdentifier(start)
		case isDigit(l.ch):
			return l.readNumber(start)
		case l.ch == '"' || l.ch == '\'':
			return l.readString(start, 0)
		case l.ch == '$':
			l.readChar()
			if !isIdentStart(l.ch) {
				l.addError(l.spanFrom(start), ErrExpectedVariableName)
				continue
			}
			name := l.readWord()
			return l.emit(token.VARIABLE, name, start)
		}

		if tok, ok := l.readSymbol(start); ok {
			return tok
		}

		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.advance(size)
		l.addError(l.spanFrom(start), unexpectedChar(r))
	}
}

// skipTrivia skips whitespace and comments. When the skipped run contains a
// blank line, it returns a NEWLINE token covering the line breaks. A line
// holding only a comment is not blank.
func (l *Lexer) skipTrivia() (token.Spanned[token.Token], bool) {
	var first, last token.Position
	breaks := 0 // line breaks with only whitespace between them
	blank := false

	for !l.atEOF() {
		switch {
		case l.ch == '\n':
			if !first.IsValid() {
				first = l.currentPos()
			}
			breaks++
			blank = blank || breaks >= 2
			l.readChar()
			last = l.currentPos()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-', l.ch == '/' && l.peekChar() == '/':
			breaks = 0
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			breaks = 0
			start := l.currentPos()
			l.advance(2)
			for !l.atEOF() && (l.ch != '*' || l.peekChar() != '/') {
				l.readChar()
			}
			if l.atEOF() {
				l.addError(l.spanFrom(start), ErrUnterminatedComment)
			} else {
				l.advance(2)
			}
		default:
			return l.newline(first, last, blank)
		}
	}
	return l.newline(first, last, blank)
}

func (l *Lexer) newline(first, last token.Position, blank bool) (token.Spanned[token.Token], bool) {
	if !blank {
		return token.Spanned[token.Token]{}, false
	}
	span := token.Span{Start: first, End: last}
	return token.At(token.Token{Type: token.NEWLINE, Literal: span.Text(l.input)}, span), true
}

// readWord consumes [A-Za-z0-9_]* and returns it.
func (l *Lexer) readWord() string {
	start := l.pos
	for !l.atEOF() && isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readIdentifier(start token.Position) token.Spanned[token.Token] {
	word := l.readWord()
	lower := strings.ToLower(word)
	if lower == "true" || lower == "false" {
		return l.emit(token.BOOL, lower, start)
	}
	return l.emit(token.LookupIdent(lower), word, start)
}

// readNumber reads an integer, float, decimal or duration literal.
// The literal keeps its source text, suffix included.
func (l *Lexer) readNumber(start token.Position) token.Spanned[token.Token] {
	rest := l.input[l.pos:]
	digits := countDigits(rest)

	if strings.HasPrefix(rest[digits:], "dec") {
		l.advance(digits + 3)
		return l.emit(token.DECIMAL, rest[:digits+3], start)
	}
	if n := scanDuration(rest); n > 0 {
		l.advance(n)
		return l.emit(token.DURATION, rest[:n], start)
	}

	n := digits
	isFloat := false
	if n+1 < len(rest) && rest[n] == '.' && isDigit(rest[n+1]) {
		n++
		n += countDigits(rest[n:])
		isFloat = true
	}

	switch {
	case strings.HasPrefix(rest[n:], "dec"):
		l.advance(n + 3)
		return l.emit(token.DECIMAL, rest[:n+3], start)
	case strings.HasPrefix(rest[n:], "f") && (n+1 >= len(rest) || !isIdentChar(rest[n+1])):
		l.advance(n + 1)
		return l.emit(token.FLOAT, rest[:n+1], start)
	case isFloat:
		l.advance(n)
		return l.emit(token.FLOAT, rest[:n], start)
	}

	l.advance(n)
	if _, err := strconv.ParseInt(rest[:n], 10, 64); err != nil {
		l.addError(l.spanFrom(start), ErrIntegerOverflow)
		return l.emit(token.DECIMAL, rest[:n], start)
	}
	return l.emit(token.INT, rest[:n], start)
}

// scanDuration returns the length of the longest run of (digits, unit) pairs
// at the start of s, or 0.
func scanDuration(s string) int {
	end := 0
	for {
		d := countDigits(s[end:])
		if d == 0 {
			return end
		}
		unit := durationUnitAt(s[end+d:])
		if unit == 0 {
			return end
		}
		end += d + unit
	}
}

func durationUnitAt(s string) int {
	for _, u := range durationUnits {
		if strings.HasPrefix(s, u) {
			return len(u)
		}
	}
	return 0
}

// readString reads a quoted string starting at the opening quote. prefix is
// 'd', 'r' or 's' for the explicit forms, or 0 for a bare literal.
func (l *Lexer) readString(start token.Position, prefix byte) token.Spanned[token.Token] {
	quote := l.ch
	l.readChar()

	var b strings.Builder
	for {
		if l.atEOF() || l.ch == '\n' {
			l.addError(l.spanFrom(start), ErrUnterminatedString)
			break
		}
		if l.ch == quote {
			l.readChar()
			break
		}
		if l.ch == '\\' {
			l.readEscape(&b)
			continue
		}
		b.WriteByte(l.ch)
		l.readChar()
	}

	value := b.String()
	return l.emit(classifyString(value, prefix), value, start)
}

// readEscape decodes one backslash escape into b.
func (l *Lexer) readEscape(b *strings.Builder) {
	start := l.currentPos()
	l.readChar() // backslash
	switch l.ch {
	case '\\', '/', '"', '\'':
		b.WriteByte(l.ch)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		l.readChar()
		hex := l.input[l.pos:]
		n := 0
		for n < 4 && n < len(hex) && isHexDigit(hex[n]) {
			n++
		}
		l.advance(n)
		code, err := strconv.ParseUint(hex[:n], 16, 32)
		if n < 4 || err != nil || !utf8.ValidRune(rune(code)) {
			b.WriteRune(utf8.RuneError)
			l.addError(l.spanFrom(start), ErrInvalidUnicode)
			return
		}
		b.WriteRune(rune(code))
		return
	default:
		if l.atEOF() || l.ch == '\n' {
			return
		}
		l.readChar()
		l.addError(l.spanFrom(start), ErrInvalidEscape)
		return
	}
	l.readChar()
}

// classifyString picks the token type of a string literal. Explicit prefixes
// win; a bare literal is sniffed by content.
func classifyString(value string, prefix byte) token.TokenType {
	switch prefix {
	case 'd':
		return token.DATETIME
	case 'r':
		return token.RECORD
	case 's':
		return token.STRING
	}
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return token.DATETIME
	}
	if core.IsRecordID(value) {
		return token.RECORD
	}
	return token.STRING
}

// readSymbol reads an operator or punctuation token using longest match.
func (l *Lexer) readSymbol(start token.Position) (token.Spanned[token.Token], bool) {
	two := func(next byte, long, short token.TokenType) token.Spanned[token.Token] {
		if l.peekChar() == next {
			l.advance(2)
			return l.emit(long, long.String(), start)
		}
		l.readChar()
		return l.emit(short, short.String(), start)
	}
	single := func(t token.TokenType) token.Spanned[token.Token] {
		l.readChar()
		return l.emit(t, t.String(), start)
	}

	switch l.ch {
	case '=':
		return two('=', token.EQEQ, token.EQ), true
	case '!':
		return two('=', token.NE, token.BANG), true
	case '<':
		return two('=', token.LE, token.LT), true
	case '>':
		return two('=', token.GE, token.GT), true
	case ':':
		return two(':', token.DCOLON, token.COLON), true
	case '&', '|', '?':
		if l.peekChar() != l.ch {
			return token.Spanned[token.Token]{}, false
		}
		t := token.AND_AND
		switch l.ch {
		case '|':
			t = token.OR_OR
		case '?':
			t = token.COALESCE
		}
		l.advance(2)
		return l.emit(t, t.String(), start), true
	case '+':
		return single(token.PLUS), true
	case '-':
		return single(token.MINUS), true
	case '*':
		return single(token.STAR), true
	case '/':
		return single(token.SLASH), true
	case '%':
		return single(token.PERCENT), true
	case '#':
		return single(token.HASH), true
	case '.':
		return single(token.DOT), true
	case ',':
		return single(token.COMMA), true
	case ';':
		return single(token.SEMICOLON), true
	case '{':
		return single(token.LBRACE), true
	case '}':
		return single(token.RBRACE), true
	case '[':
		return single(token.LBRACKET), true
	case ']':
		return single(token.RBRACKET), true
	case '(':
		return single(token.LPAREN), true
	case ')':
		return single(token.RPAREN), true
	}
	return token.Spanned[token.Token]{}, false
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	return n
}
