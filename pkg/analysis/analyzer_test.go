package analysis_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surqls/internal/testutil"
	"github.com/leapstack-labs/surqls/pkg/analysis"
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/types"
)

func personSchema() map[string]types.Object {
	return map[string]types.Object{
		"person": {Fields: []types.Field{
			types.NewField("name", types.String),
			types.NewField("age", types.Option(types.Int)),
		}},
	}
}

func newAnalyzer(t *testing.T, opts analysis.Options) *analysis.Analyzer {
	t.Helper()
	return analysis.New(personSchema(), opts, testutil.NewTestLogger(t))
}

func messages(diags []core.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"valid content", `create person content { name: "a" }`, nil},
		{"one type error", `create person content { name: "a", age: "x" }`,
			[]string{"Expected type option<int>, found type string"}},
		{"unknown and missing", `create person content { nickname: "a" }`,
			[]string{"Missing fields: name", "Unknown field 'nickname'"}},
		{"lexer error", `return "unterminated`,
			[]string{"unterminated string literal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newAnalyzer(t, analysis.DefaultOptions()).Analyze(tt.src)
			if len(tt.want) == 0 {
				assert.Empty(t, doc.Diagnostics)
				assert.False(t, doc.HasErrors())
				return
			}
			assert.Equal(t, tt.want, messages(doc.Diagnostics))
			assert.True(t, doc.HasErrors())
		})
	}
}

func TestAnalyze_MalformedStatementReportsOnce(t *testing.T) {
	doc := newAnalyzer(t, analysis.DefaultOptions()).Analyze("creat person;\ncreate person content { name: \"a\" }")
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, 1, doc.Diagnostics[0].Range.Start.Line)
	assert.Len(t, doc.Statements, 2)
}

func TestAnalyze_Filtering(t *testing.T) {
	src := `define table ghost; create person content { name: "a", name: "b" }`

	t.Run("all severities", func(t *testing.T) {
		doc := newAnalyzer(t, analysis.DefaultOptions()).Analyze(src)
		assert.Equal(t, map[core.Severity]int{
			core.SeverityError:   1,
			core.SeverityWarning: 1,
			core.SeverityInfo:    1,
		}, doc.Counts())
	})

	t.Run("warnings and up", func(t *testing.T) {
		doc := newAnalyzer(t, analysis.Options{MinSeverity: core.SeverityWarning}).Analyze(src)
		assert.Equal(t, []string{
			"Table not defined on database",
			"Duplicated entry for field 'name'",
		}, messages(doc.Diagnostics))
	})

	t.Run("capped", func(t *testing.T) {
		doc := newAnalyzer(t, analysis.Options{MinSeverity: core.SeverityHint, MaxDiagnostics: 1}).Analyze(src)
		assert.Equal(t, []string{"Table not defined on database"}, messages(doc.Diagnostics))
	})
}

func TestAnalyzer_SetSchema(t *testing.T) {
	a := newAnalyzer(t, analysis.DefaultOptions())
	src := `select * from post`

	doc := a.GetOrAnalyze("file:///a.surql", src, 1)
	assert.Equal(t, []string{"Table 'post' not found"}, messages(doc.Diagnostics))

	a.SetSchema(map[string]types.Object{"post": {}})
	assert.Nil(t, a.Get("file:///a.surql"), "schema change drops cached results")

	doc = a.GetOrAnalyze("file:///a.surql", src, 1)
	assert.Empty(t, doc.Diagnostics)

	_, ok := a.Scope().Table("person")
	assert.False(t, ok)
}

func TestAnalyzer_Cache(t *testing.T) {
	a := newAnalyzer(t, analysis.DefaultOptions())
	uri := "file:///a.surql"

	first := a.GetOrAnalyze(uri, `return 1`, 2)
	assert.Same(t, first, a.GetOrAnalyze(uri, `return "changed"`, 2), "same version is served from cache")
	assert.Same(t, first, a.GetOrAnalyze(uri, `return "older"`, 1), "older versions never replace newer ones")

	second := a.GetOrAnalyze(uri, `return $x`, 3)
	assert.NotSame(t, first, second)
	assert.Equal(t, 3, second.Version)
	assert.Equal(t, []string{"Unknown variable 'x'"}, messages(second.Diagnostics))

	a.Invalidate(uri)
	assert.Nil(t, a.Get(uri))
}

func TestAnalyzer_KeepBindings(t *testing.T) {
	a := newAnalyzer(t, analysis.DefaultOptions())

	doc := a.Analyze(`let $p = (select * from person)`)
	require.Empty(t, doc.Diagnostics)
	a.KeepBindings(doc)

	doc = a.Analyze(`return $p.name`)
	assert.Empty(t, doc.Diagnostics)

	typ, ok := a.Scope().Variable("p")
	require.True(t, ok)
	assert.Equal(t, types.KindArray, typ.Kind)

	doc = a.Analyze(`return $p.nope`)
	assert.Equal(t, []string{"Field nope does not exist"}, messages(doc.Diagnostics))
}

func TestAnalyzer_Concurrent(t *testing.T) {
	a := newAnalyzer(t, analysis.DefaultOptions())

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%4 == 0 {
				a.SetSchema(personSchema())
			}
			doc := a.GetOrAnalyze("file:///a.surql", `create person content { name: "a" }`, i)
			assert.Empty(t, doc.Diagnostics)
		}()
	}
	wg.Wait()
}

func TestDocument_ExpectedAt(t *testing.T) {
	doc := newAnalyzer(t, analysis.DefaultOptions()).Analyze("selec")
	require.NotEmpty(t, doc.ParseErrors)
	assert.Contains(t, doc.ExpectedAt(0), "SELECT")
	assert.Nil(t, doc.ExpectedAt(100))
}
