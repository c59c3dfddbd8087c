package core

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/surqls/pkg/token"
)

// Diagnostic is a positioned problem report.
type Diagnostic struct {
	Range    token.Span `json:"range" yaml:"range"`
	Severity Severity   `json:"severity" yaml:"severity"`
	Message  string     `json:"message" yaml:"message"`
}

// String formats the diagnostic as "line:col: severity: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message)
}

// Errorf builds an error-severity diagnostic.
func Errorf(span token.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Range: span, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-severity diagnostic.
func Warnf(span token.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Range: span, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Infof builds an informational diagnostic.
func Infof(span token.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Range: span, Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

// SortDiagnostics orders diagnostics by start offset, then end offset, then
// severity, and drops exact duplicates. The input slice is reused.
func SortDiagnostics(diags []Diagnostic) []Diagnostic {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Range.Start.Offset != b.Range.Start.Offset {
			return a.Range.Start.Offset < b.Range.Start.Offset
		}
		if a.Range.End.Offset != b.Range.End.Offset {
			return a.Range.End.Offset < b.Range.End.Offset
		}
		return a.Severity < b.Severity
	})
	out := diags[:0]
	for _, d := range diags {
		if len(out) > 0 && d == out[len(out)-1] {
			continue
		}
		out = append(out, d)
	}
	return out
}
