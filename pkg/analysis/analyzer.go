// Package analysis runs the lex, parse and check pipeline over documents.
//
// An Analyzer owns the schema scope and serializes passes: one pass runs at a
// time, and a schema change never interleaves with a pass. Results are cached
// per URI and version so repeated requests for the same text are free.
package analysis

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/surqls/pkg/check"
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/parser"
	"github.com/leapstack-labs/surqls/pkg/scope"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// Options control which diagnostics a pass reports.
type Options struct {
	// MaxDiagnostics caps the diagnostics per document. Zero means no cap.
	MaxDiagnostics int
	// MinSeverity drops diagnostics less severe than it.
	MinSeverity core.Severity
}

// DefaultOptions reports everything.
func DefaultOptions() Options {
	return Options{MinSeverity: core.SeverityHint}
}

// Analyzer analyzes documents against a schema.
type Analyzer struct {
	// mu guards scope and serializes passes.
	mu    sync.Mutex
	scope *scope.Scope
	opts  Options

	// generation counts schema changes. It only moves under mu.
	generation atomic.Uint64

	documents   map[string]*Document
	documentsMu sync.RWMutex

	logger *slog.Logger
}

// New creates an Analyzer for the given table definitions.
func New(tables map[string]types.Object, opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{
		scope:     scope.New(tables),
		opts:      opts,
		documents: make(map[string]*Document),
		logger:    logger,
	}
}

// SetSchema replaces the table definitions and drops every cached result.
func (a *Analyzer) SetSchema(tables map[string]types.Object) {
	a.mu.Lock()
	a.scope.SetTables(tables)
	gen := a.generation.Add(1)
	a.InvalidateAll()
	a.mu.Unlock()

	a.logger.Debug("schema replaced", "tables", len(tables), "generation", gen)
}

// Scope returns a snapshot of the analyzer's scope.
func (a *Analyzer) Scope() *scope.Scope {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scope.Clone()
}

// Analyze runs one uncached pass over src.
func (a *Analyzer) Analyze(src string) *Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.analyze("", src, 0)
}

func (a *Analyzer) analyze(uri, src string, version int) *Document {
	start := time.Now()
	doc := &Document{URI: uri, Version: version, Content: src, generation: a.generation.Load()}

	doc.Tokens, doc.LexErrors = parser.Lex(src)
	doc.Statements, doc.ParseErrors = parser.Parse(doc.Tokens, a.scope)

	diags := errorDiagnostics(doc.LexErrors, doc.ParseErrors)
	diags = append(diags, check.Check(doc.Statements, a.scope)...)
	doc.Diagnostics = a.filter(core.SortDiagnostics(diags))
	doc.AnalyzedAt = time.Now()

	a.logger.Debug("analyzed document",
		"uri", uri,
		"version", version,
		"statements", len(doc.Statements),
		"diagnostics", len(doc.Diagnostics),
		"duration", time.Since(start))
	return doc
}

func (a *Analyzer) filter(diags []core.Diagnostic) []core.Diagnostic {
	out := diags[:0]
	for _, d := range diags {
		if d.Severity.AtLeast(a.opts.MinSeverity) {
			out = append(out, d)
		}
	}
	if a.opts.MaxDiagnostics > 0 && len(out) > a.opts.MaxDiagnostics {
		out = out[:a.opts.MaxDiagnostics]
	}
	return out
}

// GetOrAnalyze returns the cached result for uri when it is at least as new
// as version and was built against the current schema, and otherwise
// analyzes content and caches it.
func (a *Analyzer) GetOrAnalyze(uri, content string, version int) *Document {
	if doc := a.current(a.Get(uri), version); doc != nil {
		return doc
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	doc := a.analyze(uri, content, version)
	return a.store(doc)
}

// current returns doc when it can answer a request for version.
func (a *Analyzer) current(doc *Document, version int) *Document {
	if doc == nil || doc.Version < version || doc.generation != a.generation.Load() {
		return nil
	}
	return doc
}

// store caches doc and returns the result to serve. A document from an
// older schema generation is returned but never cached, and a newer cached
// version wins over doc.
func (a *Analyzer) store(doc *Document) *Document {
	a.documentsMu.Lock()
	defer a.documentsMu.Unlock()
	if doc.generation != a.generation.Load() {
		return doc
	}
	if cur, ok := a.documents[doc.URI]; ok && cur.Version > doc.Version && cur.generation == doc.generation {
		return cur
	}
	a.documents[doc.URI] = doc
	return doc
}

// Get returns the cached result for uri, or nil.
func (a *Analyzer) Get(uri string) *Document {
	a.documentsMu.RLock()
	defer a.documentsMu.RUnlock()
	return a.documents[uri]
}

// Invalidate removes a document from the cache.
func (a *Analyzer) Invalidate(uri string) {
	a.documentsMu.Lock()
	defer a.documentsMu.Unlock()
	delete(a.documents, uri)
}

// InvalidateAll clears the entire document cache.
func (a *Analyzer) InvalidateAll() {
	a.documentsMu.Lock()
	defer a.documentsMu.Unlock()
	a.documents = make(map[string]*Document)
}

// KeepBindings makes the LET bindings of doc visible to later passes, so an
// interactive session can refer to variables from earlier inputs.
func (a *Analyzer) KeepBindings(doc *Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, stmt := range doc.Statements {
		let, ok := stmt.Value.(*core.Let)
		if !ok || let.Name == nil {
			continue
		}
		t := types.Error
		if let.Value != nil {
			t = check.TypeOf(*let.Value, a.scope)
		}
		a.scope.BindVariable(let.Name.Value, t)
	}
}
