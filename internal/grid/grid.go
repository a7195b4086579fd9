// =============================================================================
// Invoice Combiner - Grid Data Model
// =============================================================================
//
// This package defines the raw tabular data model shared by the decoders and
// the schema-inference engine. A Grid is nothing more than the cells of one
// decoded file: rows of untyped string cells, exactly as the billing system
// exported them. All interpretation (which row is the header, which column is
// the price) happens downstream.
//
// The decoders own a Grid until they hand it to the normalizer; after that it
// is treated as read-only. No Grid is ever shared between files.
//
// =============================================================================

package grid

import (
	"strconv"
	"strings"
)

// =============================================================================
// GRID TYPES
// =============================================================================

// Format identifies the source file format of a decoded grid.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Grid is a decoded file as rows of raw string cells. Rows may have unequal
// lengths; missing trailing cells are treated as empty.
type Grid [][]string

// Source wraps one decoded file together with its identity. This is the unit
// of work handed to the normalizer.
type Source struct {
	// FileName is the base name of the input file, used in reports.
	FileName string

	// Format is the source file format tag.
	Format Format

	// Grid holds the decoded cells.
	Grid Grid
}

// =============================================================================
// GRID METHODS
// =============================================================================

// RowCount returns the number of rows in the grid.
func (g Grid) RowCount() int {
	return len(g)
}

// Cell returns the cell at (row, col), or "" when the coordinates fall
// outside the grid. Values are returned trimmed of surrounding whitespace.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// ColumnCount returns the widest row length in the grid. Billing exports are
// frequently ragged, so the widest row defines the column space.
func (g Grid) ColumnCount() int {
	max := 0
	for _, row := range g {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Column returns up to limit trimmed, non-empty cell values of one column,
// starting at startRow. A limit <= 0 means no limit. This is the sampling
// primitive used by the content heuristics.
func (g Grid) Column(col, startRow, limit int) []string {
	var values []string
	for row := startRow; row < len(g); row++ {
		v := g.Cell(row, col)
		if v == "" {
			continue
		}
		values = append(values, v)
		if limit > 0 && len(values) >= limit {
			break
		}
	}
	return values
}

// IsRowEmpty reports whether a row contains only empty cells.
func (g Grid) IsRowEmpty(row int) bool {
	if row < 0 || row >= len(g) {
		return true
	}
	for _, cell := range g[row] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// NUMERIC CELL HELPERS
// =============================================================================

// ParseNumber parses a cell value as a number. It accepts the formats seen in
// real invoice exports: comma decimal separators ("12,50"), surrounding
// whitespace, and a leading currency symbol or sign. The second return value
// reports whether the cell parsed.
func ParseNumber(value string) (float64, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, false
	}

	// Strip a single leading currency symbol. Exports occasionally embed the
	// symbol into the price cell itself.
	for _, sym := range []string{"$", "€", "£", "¥"} {
		if strings.HasPrefix(v, sym) {
			v = strings.TrimSpace(strings.TrimPrefix(v, sym))
			break
		}
	}

	// European exports use the comma as a decimal separator. Only substitute
	// when the value contains no dot, so "1,234.56" is not mangled.
	if strings.Contains(v, ",") && !strings.Contains(v, ".") {
		v = strings.ReplaceAll(v, ",", ".")
	} else if strings.Contains(v, ",") {
		// Thousands separators.
		v = strings.ReplaceAll(v, ",", "")
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNumeric reports whether a cell value parses as a number.
func IsNumeric(value string) bool {
	_, ok := ParseNumber(value)
	return ok
}
