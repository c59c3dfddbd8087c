// Package schema builds table definitions from DEFINE TABLE and DEFINE FIELD
// statements.
//
// Schema text goes through the same lexer and parser as user documents. Each
// file is parsed against its own empty scope, so files can be loaded in
// parallel and in any order; FromStatements merges the results.
package schema

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/parser"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// IDField is the implicit record id every table carries.
const IDField = "id"

// LoadError describes a schema file that could not be read or parsed.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schema %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FromStatements collects the tables and fields defined by stmts. A field
// path a.b.c is stored as c inside the object fields a and a.b, which are
// created when missing. Fields without a TYPE clause are any. Other
// statements are ignored.
func FromStatements(stmts []core.Stmt) map[string]types.Object {
	tables := make(map[string]types.Object)
	for _, stmt := range stmts {
		switch s := stmt.Value.(type) {
		case *core.DefineTable:
			if s.Name == nil {
				continue
			}
			if _, ok := tables[s.Name.Value.Name]; !ok {
				tables[s.Name.Value.Name] = types.Object{}
			}

		case *core.DefineField:
			if s.Table == nil || len(s.Path) == 0 {
				continue
			}
			path := make([]string, len(s.Path))
			for i, seg := range s.Path {
				path[i] = seg.Value
			}
			t := types.Any
			if s.Type != nil {
				t = s.Type.Value.Resolved
			}
			name := s.Table.Value.Name
			tables[name] = setPath(tables[name], path, t)
		}
	}

	for name, obj := range tables {
		tables[name] = withID(name, obj)
	}
	return tables
}

// withID puts the implicit id field first unless the table declares one.
func withID(table string, obj types.Object) types.Object {
	if _, ok := obj.Field(IDField); ok {
		return obj
	}
	fields := make([]types.Field, 0, len(obj.Fields)+1)
	fields = append(fields, types.NewField(IDField, types.Option(types.Record(table))))
	fields = append(fields, obj.Fields...)
	return types.Object{Fields: fields}
}

// setPath stores t at path inside obj.
func setPath(obj types.Object, path []string, t types.Type) types.Object {
	existing, found := obj.Field(path[0])

	if len(path) == 1 {
		if found {
			t = mergeObjects(existing.Type, t)
		}
		return obj.With(types.NewField(path[0], t))
	}

	parent := types.ObjectOf()
	if found && existing.Type.Unwrap().Kind == types.KindObject {
		parent = existing.Type
	}
	inner := setPath(parent.Unwrap().Object(), path[1:], t)
	return obj.With(types.NewField(path[0], rewrap(parent, inner.Type())))
}

// mergeObjects keeps the nested fields of old when an object field is
// redefined as an object, so a.b defined before a survives.
func mergeObjects(old, t types.Type) types.Type {
	if old.Unwrap().Kind != types.KindObject || t.Unwrap().Kind != types.KindObject {
		return t
	}
	merged := old.Unwrap().Object()
	for _, f := range t.Unwrap().Fields {
		merged = merged.With(f)
	}
	return rewrap(t, merged.Type())
}

// rewrap replaces the innermost non-option type of outer with inner.
func rewrap(outer, inner types.Type) types.Type {
	if outer.IsOption() {
		return types.Option(rewrap(outer.Element(), inner))
	}
	return inner
}

// FromSource parses schema text and returns the tables it defines. Tables
// are returned even when the text has syntax errors; the errors are joined
// into err.
func FromSource(src string) (map[string]types.Object, error) {
	stmts, lexErrs, parseErrs := parser.ParseString(src, nil)
	errs := make([]error, 0, len(lexErrs)+len(parseErrs))
	for _, e := range lexErrs {
		errs = append(errs, e)
	}
	for _, e := range parseErrs {
		errs = append(errs, e)
	}
	return FromStatements(stmts), errors.Join(errs...)
}

// LoadFiles expands the glob patterns and loads every matching file
// concurrently. Definitions merge in sorted file order. Files that fail to
// read or parse are reported as *LoadError values joined into err, and the
// definitions that did parse are still returned.
func LoadFiles(ctx context.Context, patterns []string) (map[string]types.Object, error) {
	files, err := expand(patterns)
	if err != nil {
		return nil, err
	}

	results := make([][]core.Stmt, len(files))
	fileErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(file) //nolint:gosec // G304: path comes from the configured schema globs
			if err != nil {
				fileErrs[i] = &LoadError{File: file, Err: err}
				return nil
			}
			stmts, lexErrs, parseErrs := parser.ParseString(string(content), nil)
			results[i] = stmts
			if len(lexErrs) > 0 {
				fileErrs[i] = &LoadError{File: file, Err: lexErrs[0]}
			} else if len(parseErrs) > 0 {
				fileErrs[i] = &LoadError{File: file, Err: parseErrs[0]}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []core.Stmt
	for _, stmts := range results {
		all = append(all, stmts...)
	}
	return FromStatements(all), errors.Join(fileErrs...)
}

// expand resolves glob patterns to a sorted list of unique files. A pattern
// without glob characters must name an existing file.
func expand(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid schema pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			return nil, &LoadError{File: pattern, Err: os.ErrNotExist}
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}
