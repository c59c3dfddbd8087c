package commands

import (
	"errors"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/surqls/internal/config"
	"github.com/leapstack-labs/surqls/pkg/core"
)

// ErrCheckFailed is returned when a checked file has error diagnostics.
var ErrCheckFailed = errors.New("check found errors")

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check SurrealQL files for errors",
		Long: `Lex, parse and type-check SurrealQL files against the configured schema.

Diagnostics are printed with the offending source line. The command exits
with a non-zero status when any file has an error diagnostic. Use "-" to
read from standard input.`,
		Example: `  # Check queries against the schema files
  surqls check --schema 'schema/*.surql' queries/*.surql

  # Machine-readable output
  surqls check --format json query.surql`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}

	styles := NewStyles(cmd.OutOrStdout(), cfg.Output.Color)
	var reports []FileReport
	failed := false
	for _, path := range args {
		src, err := readSource(path, cmd.InOrStdin())
		if err != nil {
			return err
		}

		doc := analyzer.Analyze(src)
		logger.Debug("checked file", "file", path, "diagnostics", len(doc.Diagnostics))
		if doc.HasErrors() {
			failed = true
		}

		report := FileReport{File: path, Diagnostics: []DiagnosticReport{}}
		for _, d := range doc.Diagnostics {
			report.Diagnostics = append(report.Diagnostics, newDiagnosticReport(d))
		}
		reports = append(reports, report)

		if cfg.Output.Format == "text" {
			for _, d := range doc.Diagnostics {
				printDiagnostic(cmd.OutOrStdout(), styles, path, src, d)
			}
		}
	}

	if cfg.Output.Format == "text" {
		printSummary(cmd.OutOrStdout(), reports)
	} else if err := writeStructured(cmd.OutOrStdout(), cfg.Output.Format, reports); err != nil {
		return err
	}

	if failed {
		return ErrCheckFailed
	}
	return nil
}

// printSummary renders a per-file count of diagnostics by severity.
func printSummary(w io.Writer, reports []FileReport) {
	severities := []core.Severity{core.SeverityError, core.SeverityWarning, core.SeverityInfo, core.SeverityHint}
	titleCaser := cases.Title(language.English)

	header := []any{"File"}
	for _, sev := range severities {
		header = append(header, titleCaser.String(sev.String()))
	}
	t := newTable(w, header...)

	for _, r := range reports {
		counts := make(map[string]int)
		for _, d := range r.Diagnostics {
			counts[d.Severity]++
		}
		row := table.Row{r.File}
		for _, sev := range severities {
			row = append(row, counts[sev.String()])
		}
		t.AppendRow(row)
	}
	t.Render()
}
