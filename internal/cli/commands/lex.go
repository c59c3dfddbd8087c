package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surqls/internal/config"
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/parser"
	"github.com/leapstack-labs/surqls/pkg/token"
)

// ErrLexFailed is returned when the input has lexical errors.
var ErrLexFailed = errors.New("lexical errors found")

// TokenReport is the structured form of a token.
type TokenReport struct {
	Kind   string `json:"kind" yaml:"kind"`
	Text   string `json:"text" yaml:"text"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// NewLexCommand creates the lex command.
func NewLexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lex FILE",
		Short: "Print the tokens of a SurrealQL file",
		Long: `Print the token stream the lexer produces for a file, one row per token
with its kind, text and line:column position. Use "-" to read from
standard input.`,
		Example: `  surqls lex query.surql
  echo 'select * from person' | surqls lex -`,
		Args: cobra.ExactArgs(1),
		RunE: runLex,
	}
}

func runLex(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig(cmd.Context())

	src, err := readSource(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	toks, lexErrs := parser.Lex(src)
	reports := make([]TokenReport, 0, len(toks))
	for _, t := range toks {
		reports = append(reports, TokenReport{
			Kind:   t.Value.Type.String(),
			Text:   t.Value.String(),
			Line:   t.Span.Start.Line,
			Column: t.Span.Start.Column,
		})
	}

	if cfg.Output.Format == "text" {
		printTokens(cmd.OutOrStdout(), reports)
		styles := NewStyles(cmd.ErrOrStderr(), cfg.Output.Color)
		for _, e := range lexErrs {
			printDiagnostic(cmd.ErrOrStderr(), styles, args[0], src, core.Diagnostic{
				Range:    e.Span,
				Severity: core.SeverityError,
				Message:  e.Message,
			})
		}
	} else if err := writeStructured(cmd.OutOrStdout(), cfg.Output.Format, reports); err != nil {
		return err
	}

	if len(lexErrs) > 0 {
		return fmt.Errorf("%w: %d", ErrLexFailed, len(lexErrs))
	}
	return nil
}

func printTokens(w io.Writer, reports []TokenReport) {
	t := newTable(w, "#", "Kind", "Text", "Position")
	for i, r := range reports {
		if r.Kind == token.EOF.String() {
			continue
		}
		t.AppendRow(table.Row{i + 1, r.Kind, r.Text, fmt.Sprintf("%d:%d", r.Line, r.Column)})
	}
	t.Render()
}
