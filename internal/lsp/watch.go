package lsp

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/surqls/pkg/schema"
)

// reloadDelay coalesces bursts of file events into one reload.
const reloadDelay = 100 * time.Millisecond

// ReloadSchema loads the schema files matching patterns, installs the
// tables in the analyzer and re-publishes diagnostics for open documents.
// Files that fail to load are reported in the returned error; the tables
// from the remaining files are still installed.
func (s *Server) ReloadSchema(ctx context.Context, patterns []string) error {
	tables, err := schema.LoadFiles(ctx, patterns)
	if tables != nil {
		s.analyzer.SetSchema(tables)
		s.logger.Info("schema loaded", "tables", len(tables), "patterns", patterns)
		s.refreshAll()
	}
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	return nil
}

// WatchSchema reloads the schema whenever a file matching patterns is
// written, created, removed or renamed, until ctx is cancelled.
func (s *Server) WatchSchema(ctx context.Context, patterns []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, dir := range watchDirs(patterns) {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		s.logger.Debug("watching schema directory", "dir", dir)
	}

	go s.watchLoop(ctx, watcher, patterns)
	return nil
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, patterns []string) {
	defer func() { _ = watcher.Close() }()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !matchesAny(patterns, event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(reloadDelay, func() {
				s.logger.Info("schema change detected", "file", filepath.Base(name))
				if err := s.ReloadSchema(ctx, patterns); err != nil {
					s.logger.Warn("schema reload failed", "error", err)
					s.sendNotification("window/showMessage", &ShowMessageParams{
						Type:    MessageTypeWarning,
						Message: err.Error(),
					})
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

// watchDirs returns the directories to watch for patterns: the part of
// each pattern before its first glob segment.
func watchDirs(patterns []string) []string {
	var dirs []string
	for _, pattern := range patterns {
		dir := filepath.Dir(pattern)
		for dir != filepath.Dir(dir) && strings.ContainsAny(dir, "*?[") {
			dir = filepath.Dir(dir)
		}
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
