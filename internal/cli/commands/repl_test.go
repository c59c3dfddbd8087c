package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surqls/internal/testutil"
	"github.com/leapstack-labs/surqls/pkg/analysis"
	"github.com/leapstack-labs/surqls/pkg/schema"
)

func newTestSession(t *testing.T) (*replSession, *bytes.Buffer) {
	t.Helper()
	tables, err := schema.FromSource(testutil.PersonSchema)
	require.NoError(t, err)

	var out bytes.Buffer
	return &replSession{
		analyzer: analysis.New(tables, analysis.DefaultOptions(), testutil.NewTestLogger(t)),
		out:      &out,
		styles:   NewStyles(&out, "never"),
	}, &out
}

func TestREPL_Eval(t *testing.T) {
	s, out := newTestSession(t)

	s.eval("LET $adults = SELECT name FROM person WHERE age >= 18;\n")
	assert.Contains(t, out.String(), "$adults: array<object>")

	out.Reset()
	s.eval("RETURN $adults;\n")
	assert.Contains(t, out.String(), "array<object>", "bindings survive across inputs")

	out.Reset()
	s.eval("SELECT * FROM nobody;\n")
	assert.Contains(t, out.String(), "<input>:1:15: error: Table 'nobody' not found")
	assert.Contains(t, out.String(), "1 error(s), 0 warning(s)")
}

func TestREPL_EvalDropsBindingsOfFailedInput(t *testing.T) {
	s, out := newTestSession(t)

	s.eval("LET $x = 1; SELECT * FROM nobody;\n")
	out.Reset()

	s.eval("RETURN $x;\n")
	assert.Contains(t, out.String(), "Unknown variable 'x'")
}

func TestREPL_DotCommands(t *testing.T) {
	tests := []struct {
		line     string
		quit     bool
		contains []string
	}{
		{".help", false, []string{".schema <table>", "semicolon"}},
		{".tables", false, []string{"person"}},
		{".schema person", false, []string{"name", "string", "option<int>", "address"}},
		{".schema", false, []string{"Usage: .schema <table>"}},
		{".schema nobody", false, []string{"Table 'nobody' not found"}},
		{".functions string::", false, []string{"string::len", "-> int"}},
		{".vars", false, []string{"Variable"}},
		{".bogus", false, []string{"Unknown command: .bogus"}},
		{".quit", true, nil},
		{".EXIT", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, out := newTestSession(t)
			assert.Equal(t, tt.quit, s.dotCommand(tt.line))
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestREPL_VarsAfterLet(t *testing.T) {
	s, out := newTestSession(t)
	s.eval("LET $n = 'x';\n")
	out.Reset()

	s.dotCommand(".vars")
	assert.Contains(t, out.String(), "$n")
	assert.Contains(t, out.String(), "string")
}

func TestREPLCompleter(t *testing.T) {
	completer := newREPLCompleter()
	var names []string
	for _, child := range completer.GetChildren() {
		names = append(names, string(child.GetName()))
	}
	assert.Contains(t, names, ".schema ")
	assert.Contains(t, names, "SELECT ")
	assert.NotContains(t, names, "FROM ")
}

func TestNewStyles_ColorModes(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "x", NewStyles(&buf, "never").Error.Render("x"))
	assert.Equal(t, "x", NewStyles(&buf, "auto").Error.Render("x"), "a buffer is not a terminal")
	assert.Contains(t, NewStyles(&buf, "always").Error.Render("x"), "\x1b[")
}

