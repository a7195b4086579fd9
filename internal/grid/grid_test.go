package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellOutOfBounds(t *testing.T) {
	g := Grid{{"a", "b"}, {"c"}}

	assert.Equal(t, "a", g.Cell(0, 0))
	assert.Equal(t, "", g.Cell(0, 5))
	assert.Equal(t, "", g.Cell(1, 1))
	assert.Equal(t, "", g.Cell(9, 0))
	assert.Equal(t, "", g.Cell(-1, 0))
}

func TestCellTrimsWhitespace(t *testing.T) {
	g := Grid{{"  EVSE ID  ", "\tSession\t"}}

	assert.Equal(t, "EVSE ID", g.Cell(0, 0))
	assert.Equal(t, "Session", g.Cell(0, 1))
}

func TestColumnCountRaggedRows(t *testing.T) {
	g := Grid{{"a"}, {"a", "b", "c"}, {"a", "b"}}

	assert.Equal(t, 3, g.ColumnCount())
	assert.Equal(t, 3, g.RowCount())
}

func TestColumnSampling(t *testing.T) {
	g := Grid{
		{"header"},
		{"one"},
		{""},
		{"two"},
		{"three"},
	}

	// Empty cells are skipped, limit caps the sample.
	assert.Equal(t, []string{"one", "two"}, g.Column(0, 1, 2))
	assert.Equal(t, []string{"one", "two", "three"}, g.Column(0, 1, 0))
	assert.Empty(t, g.Column(5, 1, 0))
}

func TestIsRowEmpty(t *testing.T) {
	g := Grid{{"", "  ", "\t"}, {"", "x"}}

	assert.True(t, g.IsRowEmpty(0))
	assert.False(t, g.IsRowEmpty(1))
	assert.True(t, g.IsRowEmpty(7))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain integer", "21", 21, true},
		{"plain decimal", "10.00", 10, true},
		{"comma decimal", "12,50", 12.5, true},
		{"thousands separator", "1,234.56", 1234.56, true},
		{"leading euro symbol", "€ 10.00", 10, true},
		{"leading dollar symbol", "$15.25", 15.25, true},
		{"negative", "-3.5", -3.5, true},
		{"surrounding whitespace", "  42  ", 42, true},
		{"empty", "", 0, false},
		{"text", "EUR", 0, false},
		{"mixed", "10 kWh", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("12,50"))
	assert.False(t, IsNumeric("Session ID"))
}
