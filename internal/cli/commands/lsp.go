package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surqls/internal/config"
	"github.com/leapstack-labs/surqls/internal/lsp"
	"github.com/leapstack-labs/surqls/pkg/analysis"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for IDE integration.

The server communicates over stdin/stdout using JSON-RPC. Documents are
checked against the configured schema files; with --watch the schema is
reloaded whenever one of them changes.`,
		Example: `  # Start LSP server (usually called by an IDE)
  surqls lsp --schema 'schema/*.surql' --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	analyzer := analysis.New(nil, analysisOptions(cfg), logger)
	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), analyzer, logger)
	server.SetVersion(version)

	if err := startSchema(ctx, server, cfg); err != nil {
		// A broken schema file must not keep the editor from getting a server.
		logger.Warn("schema unavailable", "error", err)
	}

	return server.Run(ctx)
}

// startSchema loads the configured schema and starts watching it.
func startSchema(ctx context.Context, server *lsp.Server, cfg *config.Config) error {
	if len(cfg.Schema) == 0 {
		return nil
	}
	loadErr := server.ReloadSchema(ctx, cfg.Schema)
	if cfg.Watch {
		if err := server.WatchSchema(ctx, cfg.Schema); err != nil {
			return err
		}
	}
	return loadErr
}
