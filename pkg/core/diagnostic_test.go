package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/surqls/pkg/token"
)

func span(start, end int) token.Span {
	return token.Span{
		Start: token.Position{Line: 1, Column: start + 1, Offset: start},
		End:   token.Position{Line: 1, Column: end + 1, Offset: end},
	}
}

func TestSortDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		Errorf(span(10, 12), "b"),
		Infof(span(0, 4), "note"),
		Errorf(span(0, 4), "a"),
		Errorf(span(10, 12), "b"),
		Warnf(span(5, 6), "w"),
	}

	got := SortDiagnostics(diags)

	assert.Len(t, got, 4)
	assert.Equal(t, "a", got[0].Message)
	assert.Equal(t, "note", got[1].Message)
	assert.Equal(t, "w", got[2].Message)
	assert.Equal(t, "b", got[3].Message)
}

func TestDiagnosticString(t *testing.T) {
	d := Errorf(span(4, 7), "Unknown field '%s'", "x")
	assert.Equal(t, "1:5: error: Unknown field 'x'", d.String())
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		in     string
		want   Severity
		wantOK bool
	}{
		{"error", SeverityError, true},
		{"WARN", SeverityWarning, true},
		{"information", SeverityInfo, true},
		{"hint", SeverityHint, true},
		{"fatal", SeverityWarning, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSeverity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}

	assert.True(t, SeverityError.AtLeast(SeverityWarning))
	assert.False(t, SeverityHint.AtLeast(SeverityWarning))

	var s Severity
	assert.NoError(t, s.UnmarshalText([]byte("info")))
	assert.Equal(t, SeverityInfo, s)
	assert.Error(t, s.UnmarshalText([]byte("loud")))

	text, err := SeverityWarning.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "warning", string(text))
}
