package analysis

import (
	"time"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/parser"
	"github.com/leapstack-labs/surqls/pkg/token"
)

// Document holds the results of one analysis pass over a source text.
type Document struct {
	URI     string
	Version int
	Content string

	Tokens      []token.Spanned[token.Token]
	Statements  []core.Stmt
	LexErrors   []*parser.LexError
	ParseErrors []*parser.ParseError

	// Diagnostics combines lexer, parser and checker findings in source
	// order, after severity filtering and capping.
	Diagnostics []core.Diagnostic

	AnalyzedAt time.Time

	// generation is the analyzer's schema generation the pass ran against.
	generation uint64
}

// HasErrors reports whether any error-severity diagnostic was produced.
func (d *Document) HasErrors() bool {
	for _, diag := range d.Diagnostics {
		if diag.Severity == core.SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of diagnostics per severity.
func (d *Document) Counts() map[core.Severity]int {
	counts := make(map[core.Severity]int)
	for _, diag := range d.Diagnostics {
		counts[diag.Severity]++
	}
	return counts
}

// ExpectedAt returns the tokens the parser would have accepted at offset,
// taken from the parse error that starts there. Completion uses it to offer
// keywords.
func (d *Document) ExpectedAt(offset int) []string {
	for i := len(d.ParseErrors) - 1; i >= 0; i-- {
		e := d.ParseErrors[i]
		if e.Span.Start.Offset <= offset && offset <= e.Span.End.Offset {
			return e.Expected
		}
	}
	return nil
}

// errorDiagnostics converts lexer and parser errors to diagnostics.
func errorDiagnostics(lexErrs []*parser.LexError, parseErrs []*parser.ParseError) []core.Diagnostic {
	out := make([]core.Diagnostic, 0, len(lexErrs)+len(parseErrs))
	for _, e := range lexErrs {
		out = append(out, core.Errorf(e.Span, "%s", e.Message))
	}
	for _, e := range parseErrs {
		out = append(out, core.Errorf(e.Span, "%s", e.Message))
	}
	return out
}
