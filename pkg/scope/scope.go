// Package scope holds the symbol environment shared by the parser and the
// checker: the schema registry, the type of the current row, let-bindings
// and the builtin function catalog.
package scope

import (
	"sort"

	"github.com/leapstack-labs/surqls/pkg/types"
)

// Scope is the analysis environment for one session.
//
// Tables and functions are canonical and persist across passes. The current
// row and the variables are per-pass state: callers take a Clone before
// mutating them so the canonical scope is left as it was.
//
// A Scope is not safe for concurrent use. The lex, parse and check pipeline
// must hold exclusive access for the whole pass.
type Scope struct {
	tables    map[string]types.Object
	functions map[string]Signature
	current   *types.Object
	variables map[string]types.Type
}

// New creates a scope over the given table definitions with the builtin
// function catalog. tables may be nil.
func New(tables map[string]types.Object) *Scope {
	if tables == nil {
		tables = make(map[string]types.Object)
	}
	return &Scope{
		tables:    tables,
		functions: Builtins(),
		current:   &types.Object{},
		variables: make(map[string]types.Type),
	}
}

// Clone returns a scope sharing tables and functions with s but owning a
// copy of the current row and the variables.
func (s *Scope) Clone() *Scope {
	vars := make(map[string]types.Type, len(s.variables))
	for k, v := range s.variables {
		vars[k] = v
	}
	var current *types.Object
	if s.current != nil {
		c := s.current.Clone()
		current = &c
	}
	return &Scope{
		tables:    s.tables,
		functions: s.functions,
		current:   current,
		variables: vars,
	}
}

// SetTables replaces the schema registry. It is called whenever the backing
// schema changes, never during a pass.
func (s *Scope) SetTables(tables map[string]types.Object) {
	if tables == nil {
		tables = make(map[string]types.Object)
	}
	s.tables = tables
}

// Table looks up a table definition by name.
func (s *Scope) Table(name string) (types.Object, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// TableNames returns the defined table names in sorted order.
func (s *Scope) TableNames() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns the schema registry. Callers must not modify it.
func (s *Scope) Tables() map[string]types.Object {
	return s.tables
}

// SetCurrent rebinds the current row. A nil row means the row type is
// unknown (for example, the target table does not exist); identifiers then
// resolve to Any without being reported.
func (s *Scope) SetCurrent(row *types.Object) {
	if row == nil {
		s.current = nil
		return
	}
	c := row.Clone()
	s.current = &c
}

// Current returns the current row, or nil when it is unknown.
func (s *Scope) Current() *types.Object {
	return s.current
}

// AddAlias adds or overwrites a field of the current row.
func (s *Scope) AddAlias(name string, t types.Type) {
	if s.current == nil {
		return
	}
	updated := s.current.With(types.NewField(name, t))
	s.current = &updated
}

// ResolveField looks up a field of the current row. When the row is unknown
// every name resolves to Any.
func (s *Scope) ResolveField(name string) (types.Type, bool) {
	if s.current == nil {
		return types.Any, true
	}
	f, ok := s.current.Field(name)
	if !ok {
		return types.Error, false
	}
	return f.Type, true
}

// BindVariable binds $name to t.
func (s *Scope) BindVariable(name string, t types.Type) {
	s.variables[name] = t
}

// Variable looks up a bound variable.
func (s *Scope) Variable(name string) (types.Type, bool) {
	t, ok := s.variables[name]
	return t, ok
}

// VariableNames returns the bound variable names in sorted order.
func (s *Scope) VariableNames() []string {
	names := make([]string, 0, len(s.variables))
	for name := range s.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Function looks up a function signature by its namespaced name.
func (s *Scope) Function(name string) (Signature, bool) {
	f, ok := s.functions[name]
	return f, ok
}

// FunctionNames returns the catalog names in sorted order.
func (s *Scope) FunctionNames() []string {
	names := make([]string, 0, len(s.functions))
	for name := range s.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
