package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

// NewStyles builds styles for w. color is one of auto, always or never;
// auto colors only when w is a terminal.
func NewStyles(w io.Writer, color string) *Styles {
	r := lipgloss.NewRenderer(w)
	switch color {
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	default:
		if !isTerminal(w) {
			r.SetColorProfile(termenv.Ascii)
		}
	}

	return &Styles{
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Info:    r.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    r.NewStyle().Bold(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func getSeverityStyle(styles *Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	case core.SeverityInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}

// newTable starts a light-style table mirrored to w. Headers keep the
// case they are given.
func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row(header))
	return t
}

// DiagnosticReport is the structured form of a diagnostic. Lines and
// columns are 1-based; columns count bytes.
type DiagnosticReport struct {
	Severity  string `json:"severity" yaml:"severity"`
	Message   string `json:"message" yaml:"message"`
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	EndColumn int    `json:"end_column" yaml:"end_column"`
}

// FileReport holds the diagnostics of one file.
type FileReport struct {
	File        string             `json:"file" yaml:"file"`
	Diagnostics []DiagnosticReport `json:"diagnostics" yaml:"diagnostics"`
}

func newDiagnosticReport(d core.Diagnostic) DiagnosticReport {
	return DiagnosticReport{
		Severity:  d.Severity.String(),
		Message:   d.Message,
		Line:      d.Range.Start.Line,
		Column:    d.Range.Start.Column,
		EndLine:   d.Range.End.Line,
		EndColumn: d.Range.End.Column,
	}
}

// writeStructured encodes v as json or yaml.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// printDiagnostic writes one diagnostic with the offending source line and
// a caret underline:
//
//	query.surql:1:15: error: Table 'nobody' not found
//	   1 | select * from nobody
//	     |               ^^^^^^
func printDiagnostic(w io.Writer, styles *Styles, name, src string, d core.Diagnostic) {
	style := getSeverityStyle(styles, d.Severity)
	_, _ = fmt.Fprintf(w, "%s %s %s\n",
		styles.Bold.Render(fmt.Sprintf("%s:%d:%d:", name, d.Range.Start.Line, d.Range.Start.Column)),
		style.Render(d.Severity.String()+":"),
		d.Message)

	line, ok := sourceLine(src, d.Range.Start)
	if !ok {
		return
	}
	pad, width := caret(line, d.Range)
	gutter := fmt.Sprintf("%4d | ", d.Range.Start.Line)
	_, _ = fmt.Fprintf(w, "%s%s\n", styles.Muted.Render(gutter), expandTabs(line))
	_, _ = fmt.Fprintf(w, "%s%s%s\n",
		styles.Muted.Render(strings.Repeat(" ", len(gutter)-2)+"| "),
		strings.Repeat(" ", pad),
		style.Render(strings.Repeat("^", width)))
}

// sourceLine returns the text of the line holding pos, without its line
// break.
func sourceLine(src string, pos token.Position) (string, bool) {
	if !pos.IsValid() || pos.Offset > len(src) {
		return "", false
	}
	start := pos.Offset - (pos.Column - 1)
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src) - start
	}
	return strings.TrimRight(src[start:start+end], "\r"), true
}

// caret returns the display width before the span and of the span on line.
// Spans running past the line are cut at its end; the underline is always
// at least one cell wide.
func caret(line string, span token.Span) (pad, width int) {
	from := min(span.Start.Column-1, len(line))
	to := len(line)
	if span.End.Line == span.Start.Line {
		to = min(max(span.End.Column-1, from), len(line))
	}
	pad = runewidth.StringWidth(expandTabs(line[:from]))
	width = max(runewidth.StringWidth(expandTabs(line[from:to])), 1)
	return pad, width
}

// expandTabs keeps caret columns aligned with tab-indented source.
func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
