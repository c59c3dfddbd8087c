// Package cli provides the command-line interface for surqls.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surqls/internal/cli/commands"
	"github.com/leapstack-labs/surqls/internal/config"
	"github.com/leapstack-labs/surqls/pkg/core"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command. Log output goes to
// stderr.
func NewRootCmd(stderr io.Writer) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "surqls",
		Short: "surqls - SurrealQL language tools",
		Long: `surqls checks SurrealQL against a schema.

It lexes, parses and type-checks queries, reporting unknown tables and
fields, type mismatches and bad function calls. The same analysis backs
the check command, an interactive REPL and a language server for editors.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(stderr, cfg.LogLevel)
			if cfg.File != "" {
				logger.Info("using config file", "path", cfg.File)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./surqls.yaml)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.StringSlice("schema", nil, "Glob patterns of schema files with DEFINE statements")
	flags.Bool("watch", false, "Reload the schema when its files change (lsp)")
	flags.StringP("format", "f", "", "Output format (text|json|yaml)")
	flags.String("color", "", "Colorize output (auto|always|never)")
	flags.Int("max-diagnostics", 0, "Maximum diagnostics per document (0 for no limit)")
	flags.String("min-severity", "", "Least severe diagnostic to report (error|warning|info|hint)")

	completeValues := func(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", completeValues(config.LogLevels))
	_ = rootCmd.RegisterFlagCompletionFunc("format", completeValues(config.OutputFormats))
	_ = rootCmd.RegisterFlagCompletionFunc("color", completeValues(config.ColorModes))
	_ = rootCmd.RegisterFlagCompletionFunc("min-severity", completeValues([]string{
		core.SeverityError.String(),
		core.SeverityWarning.String(),
		core.SeverityInfo.String(),
		core.SeverityHint.String(),
	}))

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewLexCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewLSPCommand(Version))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command with args.
func Execute(ctx context.Context, args []string) error {
	rootCmd := NewRootCmd(os.Stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for surqls.

To load completions:

Bash:
  $ source <(surqls completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ surqls completion bash > /etc/bash_completion.d/surqls
  # macOS:
  $ surqls completion bash > $(brew --prefix)/etc/bash_completion.d/surqls

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ surqls completion zsh > "${fpath[1]}/_surqls"

Fish:
  $ surqls completion fish | source

PowerShell:
  PS> surqls completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
