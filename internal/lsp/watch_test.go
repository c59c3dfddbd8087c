package lsp

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surqls/pkg/analysis"
)

func writeSchema(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestServer_ReloadSchema(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, filepath.Join(dir, "a.surql"), "DEFINE TABLE post;\nDEFINE FIELD title ON post TYPE string;\n")
	writeSchema(t, filepath.Join(dir, "b.surql"), "DEFINE FIELD oops ON TABLE\n")

	srv := newTestServer(t)
	err := srv.ReloadSchema(context.Background(), []string{filepath.Join(dir, "*.surql")})
	require.Error(t, err, "b.surql does not parse")
	assert.Contains(t, err.Error(), "b.surql")

	post, ok := srv.analyzer.Scope().Table("post")
	require.True(t, ok, "tables from good files are installed")
	assert.Contains(t, post.Names(), "title")
	_, ok = srv.analyzer.Scope().Table("person")
	assert.False(t, ok, "the schema is replaced, not merged")

	err = srv.ReloadSchema(context.Background(), []string{filepath.Join(dir, "missing.surql")})
	require.ErrorIs(t, err, os.ErrNotExist)
	_, ok = srv.analyzer.Scope().Table("post")
	assert.True(t, ok, "a failed reload keeps the previous schema")
}

func TestServer_WatchSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.surql")
	writeSchema(t, path, "DEFINE TABLE post;\n")

	// The watcher outlives the test body, so it must not log through t.
	srv := NewServer(strings.NewReader(""), io.Discard, analysis.New(nil, analysis.DefaultOptions(), nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	patterns := []string{filepath.Join(dir, "*.surql")}
	require.NoError(t, srv.ReloadSchema(ctx, patterns))
	require.NoError(t, srv.WatchSchema(ctx, patterns))

	writeSchema(t, path, "DEFINE TABLE post;\nDEFINE TABLE comment;\n")

	require.Eventually(t, func() bool {
		_, ok := srv.analyzer.Scope().Table("comment")
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	// Files outside the patterns are ignored.
	writeSchema(t, filepath.Join(dir, "notes.txt"), "DEFINE TABLE ignored;\n")
	time.Sleep(3 * reloadDelay)
	_, ok := srv.analyzer.Scope().Table("ignored")
	assert.False(t, ok)
}

func TestWatchDirs(t *testing.T) {
	got := watchDirs([]string{"/a/schema/*.surql", "/a/schema/x.surql", "/b/*/defs/*.surql"})
	assert.Equal(t, []string{"/a/schema", "/b"}, got)
}

func TestMatchesAny(t *testing.T) {
	patterns := []string{"/a/*.surql", "/b/exact.surql"}
	assert.True(t, matchesAny(patterns, "/a/x.surql"))
	assert.True(t, matchesAny(patterns, "/b/exact.surql"))
	assert.False(t, matchesAny(patterns, "/a/x.txt"))
	assert.False(t, matchesAny(patterns, "/b/other.surql"))
}
