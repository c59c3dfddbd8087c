package lsp

import (
	"github.com/leapstack-labs/surqls/pkg/analysis"
	"github.com/leapstack-labs/surqls/pkg/core"
)

// diagnosticSource tags every published diagnostic.
const diagnosticSource = "surqls"

// publishDiagnostics sends the diagnostics of result for doc.
func (s *Server) publishDiagnostics(doc *Document, result *analysis.Document) {
	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: toLSPDiagnostics(doc, result.Diagnostics),
	})
}

// toLSPDiagnostics converts byte-span diagnostics to LSP positions.
func toLSPDiagnostics(doc *Document, diags []core.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, Diagnostic{
			Range:    doc.SpanToRange(d.Range),
			Severity: toLSPSeverity(d.Severity),
			Source:   diagnosticSource,
			Message:  d.Message,
		})
	}
	return out
}

// toLSPSeverity converts a diagnostic severity to the LSP value.
func toLSPSeverity(sev core.Severity) DiagnosticSeverity {
	switch sev {
	case core.SeverityError:
		return DiagnosticSeverityError
	case core.SeverityWarning:
		return DiagnosticSeverityWarning
	case core.SeverityInfo:
		return DiagnosticSeverityInformation
	case core.SeverityHint:
		return DiagnosticSeverityHint
	default:
		return DiagnosticSeverityError
	}
}
