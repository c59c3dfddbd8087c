package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/surqls/internal/config"
	"github.com/leapstack-labs/surqls/pkg/analysis"
	"github.com/leapstack-labs/surqls/pkg/schema"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// analysisOptions maps the diagnostics section of cfg to analyzer options.
func analysisOptions(cfg *config.Config) analysis.Options {
	return analysis.Options{
		MaxDiagnostics: cfg.Diagnostics.Max,
		MinSeverity:    cfg.Diagnostics.MinSeverity,
	}
}

// newAnalyzer builds an analyzer for the configured schema. When some
// schema files fail to load, the analyzer still gets the tables of the
// others and the error is returned alongside it.
func newAnalyzer(ctx context.Context, cfg *config.Config) (*analysis.Analyzer, error) {
	logger := config.GetLogger(ctx)

	var tables map[string]types.Object
	var loadErr error
	if len(cfg.Schema) > 0 {
		tables, loadErr = schema.LoadFiles(ctx, cfg.Schema)
		if loadErr != nil {
			loadErr = fmt.Errorf("failed to load schema: %w", loadErr)
		}
		logger.Debug("schema loaded", "tables", len(tables), "patterns", cfg.Schema)
	}
	return analysis.New(tables, analysisOptions(cfg), logger), loadErr
}

// readSource reads a file, or standard input when path is "-".
func readSource(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // reading user-specified files is the point
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
