package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surqls/internal/config"
	"github.com/leapstack-labs/surqls/pkg/analysis"
	"github.com/leapstack-labs/surqls/pkg/check"
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
)

const (
	replPrompt     = "surqls> "
	replContinue   = "   ...> "
	replInputLabel = "<input>"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var historyFile string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Check SurrealQL statements interactively",
		Long: `Start an interactive session that checks each statement against the
configured schema and prints its result type.

Input is collected until a line ends with a semicolon. Variables bound
with LET stay visible to later inputs.`,
		Example: `  surqls repl --schema 'schema/*.surql'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, historyFile)
		},
	}

	cmd.Flags().StringVar(&historyFile, "history", "", "File to keep input history in")
	return cmd
}

func runREPL(cmd *cobra.Command, historyFile string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)

	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		// The tables that did load are still useful interactively.
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	session := &replSession{
		analyzer: analyzer,
		out:      cmd.OutOrStdout(),
		styles:   NewStyles(cmd.OutOrStdout(), cfg.Output.Color),
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(session.out, "SurrealQL REPL")
	_, _ = fmt.Fprintln(session.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(session.out)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		if buffer.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ".") {
				if quit := session.dotCommand(trimmed); quit {
					return nil
				}
				continue
			}
		}

		buffer.WriteString(line)
		buffer.WriteString("\n")
		if !strings.HasSuffix(trimmed, ";") {
			rl.SetPrompt(replContinue)
			continue
		}
		rl.SetPrompt(replPrompt)

		session.eval(buffer.String())
		buffer.Reset()
	}
}

// replSession evaluates REPL input against one analyzer.
type replSession struct {
	analyzer *analysis.Analyzer
	out      io.Writer
	styles   *Styles
}

// eval checks input and prints its diagnostics, or the type of each
// statement when it has no errors. The LET bindings of error-free input are
// kept for later inputs.
func (s *replSession) eval(input string) {
	doc := s.analyzer.Analyze(input)
	for _, d := range doc.Diagnostics {
		printDiagnostic(s.out, s.styles, replInputLabel, input, d)
	}
	if doc.HasErrors() {
		counts := doc.Counts()
		_, _ = fmt.Fprintln(s.out, s.styles.Error.Render(
			fmt.Sprintf("%d error(s), %d warning(s)", counts[core.SeverityError], counts[core.SeverityWarning])))
		return
	}

	sc := s.analyzer.Scope()
	for _, stmt := range doc.Statements {
		if let, ok := stmt.Value.(*core.Let); ok && let.Name != nil && let.Value != nil {
			t := check.TypeOf(*let.Value, sc)
			sc.BindVariable(let.Name.Value, t)
			_, _ = fmt.Fprintf(s.out, "$%s: %s\n", let.Name.Value, t)
			continue
		}
		_, _ = fmt.Fprintln(s.out, check.StatementType(stmt, sc))
	}
	s.analyzer.KeepBindings(doc)
}

// dotCommand runs a REPL command and reports whether the session should end.
func (s *replSession) dotCommand(line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".tables":
		sc := s.analyzer.Scope()
		t := newTable(s.out, "Table", "Fields")
		for _, name := range sc.TableNames() {
			obj, _ := sc.Table(name)
			t.AppendRow(table.Row{name, len(obj.Fields)})
		}
		t.Render()

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.out, "Usage: .schema <table>")
			return false
		}
		obj, ok := s.analyzer.Scope().Table(parts[1])
		if !ok {
			_, _ = fmt.Fprintln(s.out, s.styles.Error.Render(fmt.Sprintf("Table '%s' not found", parts[1])))
			return false
		}
		t := newTable(s.out, "Field", "Type")
		for _, f := range obj.Fields {
			t.AppendRow(table.Row{f.Name, f.Type.String()})
		}
		t.Render()

	case ".vars":
		sc := s.analyzer.Scope()
		t := newTable(s.out, "Variable", "Type")
		for _, name := range sc.VariableNames() {
			v, _ := sc.Variable(name)
			t.AppendRow(table.Row{"$" + name, v.String()})
		}
		t.Render()

	case ".functions":
		prefix := ""
		if len(parts) > 1 {
			prefix = parts[1]
		}
		sc := s.analyzer.Scope()
		t := newTable(s.out, "Function", "Signature")
		for _, name := range sc.FunctionNames() {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			sig, _ := sc.Function(name)
			t.AppendRow(table.Row{name, sig.String()})
		}
		t.Render()

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.out, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help               Show this help message
  .tables             List the tables of the schema
  .schema <table>     Show the fields of a table
  .vars               List bound variables and their types
  .functions [prefix] List builtin functions
  .clear              Clear the screen
  .quit / .exit       Exit the REPL

Tips:
  - Statements run when a line ends with a semicolon (;)
  - LET $name = ... keeps $name for later inputs
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and statement keywords at the
// start of a line.
func newREPLCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".vars"),
		readline.PcItem(".functions"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
	}
	for _, kw := range token.Keywords() {
		if token.IsStatementStart(token.LookupIdent(kw)) {
			items = append(items, readline.PcItem(strings.ToUpper(kw)))
		}
	}
	return readline.NewPrefixCompleter(items...)
}
