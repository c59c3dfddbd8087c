package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/leapstack-labs/surqls/"

// TestLayering keeps the analysis packages stacked: each may import the
// standard library plus only the listed packages. The core packages never
// reach into internal/ and never log.
func TestLayering(t *testing.T) {
	tests := []struct {
		pkg     string
		allowed []string
	}{
		{"token", nil},
		{"types", nil},
		{"core", []string{"pkg/token", "pkg/types"}},
		{"scope", []string{"pkg/types"}},
		{"parser", []string{"pkg/token", "pkg/types", "pkg/core", "pkg/scope", "github.com/shopspring/decimal"}},
		{"check", []string{"pkg/token", "pkg/types", "pkg/core", "pkg/scope"}},
		{"schema", []string{"pkg/types", "pkg/core", "pkg/parser", "golang.org/x/sync/errgroup"}},
	}

	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			for file, imports := range packageImports(t, filepath.Join("..", tt.pkg)) {
				for _, imp := range imports {
					if !strings.Contains(imp, ".") {
						assert.NotEqual(t, "log/slog", imp, "%s: core packages return diagnostics instead of logging", file)
						continue
					}
					name := strings.TrimPrefix(imp, modulePath)
					assert.True(t, slices.Contains(tt.allowed, name), "%s imports forbidden package %s", file, imp)
				}
			}
		})
	}
}

// packageImports returns the imports of each non-test Go file in dir.
func packageImports(t *testing.T, dir string) map[string][]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	fset := token.NewFileSet()
	out := make(map[string][]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			out[name] = append(out[name], strings.Trim(imp.Path.Value, `"`))
		}
	}
	require.NotEmpty(t, out, "no Go files in %s", dir)
	return out
}
