package check_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surqls/pkg/check"
	"github.com/leapstack-labs/surqls/pkg/parser"
	"github.com/leapstack-labs/surqls/pkg/types"
)

func TestTypeAt(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		at       string // first occurrence marks the offset
		nth      int    // skip this many earlier occurrences
		wantText string
		want     types.Type
	}{
		{"projection field", "select name from person", "name", 0, "name", types.String},
		{"where field", "select * from person where age > 1", "age", 0, "age", types.Option(types.Int)},
		{"binary operand literal", "select * from person where age > 1", "1", 0, "1", types.Int},
		{"property access", "select friend.name from person", "name", 0, "friend.name", types.Option(types.String)},
		{"let binding before", "let $x = 1; return $x + 2", "$x", 1, "$x", types.Int},
		{"inline statement row", "return (select age from person)", "age", 0, "age", types.Option(types.Int)},
		{"call argument", "return string::len('abc')", "'abc'", 0, "'abc'", types.String},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := testScope()
			stmts, _, parseErrs := parser.ParseString(tt.src, sc)
			require.Empty(t, parseErrs)

			offset := -1
			from := 0
			for i := 0; i <= tt.nth; i++ {
				idx := strings.Index(tt.src[from:], tt.at)
				require.GreaterOrEqual(t, idx, 0)
				offset = from + idx
				from = offset + 1
			}

			expr, got, ok := check.TypeAt(stmts, offset, sc)
			require.True(t, ok)
			assert.Equal(t, tt.wantText, expr.Span.Text(tt.src))
			assert.True(t, types.Equal(tt.want, got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestTypeAt_NoExpression(t *testing.T) {
	sc := testScope()
	src := "return 1;  "
	stmts, _, parseErrs := parser.ParseString(src, sc)
	require.Empty(t, parseErrs)

	_, _, ok := check.TypeAt(stmts, 2, sc)
	assert.False(t, ok, "keyword is not an expression")

	_, _, ok = check.TypeAt(stmts, len(src)-1, sc)
	assert.False(t, ok, "trailing whitespace")
}

func TestMembers(t *testing.T) {
	sc := testScope()

	obj, ok := check.Members(types.Option(types.Record("person")), sc)
	require.True(t, ok)
	assert.Equal(t, personFields().Names(), obj.Names())

	obj, ok = check.Members(types.Array(types.ObjectOf(types.NewField("city", types.String))), sc)
	require.True(t, ok)
	assert.Equal(t, []string{"city"}, obj.Names())

	_, ok = check.Members(types.Int, sc)
	assert.False(t, ok)

	_, ok = check.Members(types.Record("missing"), sc)
	assert.False(t, ok)
}
