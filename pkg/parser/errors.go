package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/surqls/pkg/token"
)

// ParseError represents a parsing error with position information.
// Expected lists the tokens that would have been accepted, for completion.
type ParseError struct {
	Span     token.Span
	Message  string
	Expected []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// LexError represents a lexical analysis error.
type LexError struct {
	Span    token.Span
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken      = "unexpected token %s, expected %s"
	ErrUnexpectedEOF        = "unexpected end of input, expected %s"
	ErrInvalidStatement     = "invalid statement"
	ErrExpectedExpression   = "expected expression"
	ErrUnterminatedString   = "unterminated string literal"
	ErrUnterminatedComment  = "unterminated block comment"
	ErrInvalidUnicode       = "invalid unicode character"
	ErrInvalidEscape        = "invalid escape sequence"
	ErrIntegerOverflow      = "integer literal out of range"
	ErrExpectedVariableName = "expected variable name after '$'"
	ErrUnexpectedChar       = "unexpected character %q"
	ErrInvalidType          = "invalid type: %s"
)

func unexpectedChar(r rune) string {
	return fmt.Sprintf(ErrUnexpectedChar, r)
}

// describe renders an expected-token set for messages.
func describe(expected []string) string {
	switch len(expected) {
	case 0:
		return "something else"
	case 1:
		return expected[0]
	default:
		return strings.Join(expected[:len(expected)-1], ", ") + " or " + expected[len(expected)-1]
	}
}
