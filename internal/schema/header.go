// =============================================================================
// Invoice Combiner - Header Row Detection
// =============================================================================
//
// Vendor exports rarely start with the header: there are report titles,
// legal lines, blank padding, sometimes a logo cell. The detector scans the
// leading rows and scores each as a header candidate:
//
//   1. fraction of non-empty cells       (headers are densely filled)
//   2. fraction of non-numeric cells     (headers are labels, data is values)
//   3. uniqueness of the non-empty cells (headers do not repeat labels)
//
// The best-scoring row above the eligibility thresholds wins; ties go to the
// earliest row. When no row qualifies the detector fails - it must never
// fall back to "row 0", because silently misreading a header-less sheet is
// worse than rejecting it.
//
// =============================================================================

package schema

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/invoice-combiner/internal/config"
	"github.com/ginjaninja78/invoice-combiner/internal/grid"
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// HeaderNotFoundError reports that no row in the scanned window qualified as
// a header row.
type HeaderNotFoundError struct {
	// RowsScanned is how many leading rows were examined.
	RowsScanned int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("no header row found in the first %d rows", e.RowsScanned)
}

// =============================================================================
// HEADER DETECTOR
// =============================================================================

// HeaderCandidate is a scored header-row candidate. It only exists
// transiently during detection.
type HeaderCandidate struct {
	Row   int
	Score float64
}

// HeaderDetector locates the header row of a grid.
type HeaderDetector struct {
	scanRows   int
	minFilled  float64
	minTextual float64
}

// Composite score weights. The textual signal separates headers from data
// most reliably, so it carries the largest weight.
const (
	weightFilled  = 0.35
	weightTextual = 0.45
	weightUnique  = 0.20
)

// NewHeaderDetector creates a detector from the heuristic configuration.
func NewHeaderDetector(h config.Heuristics) *HeaderDetector {
	return &HeaderDetector{
		scanRows:   h.HeaderScanRows,
		minFilled:  h.HeaderMinFilled,
		minTextual: h.HeaderMinTextual,
	}
}

// Detect scans the leading rows of the grid and returns the most
// header-like row.
//
// PARAMETERS:
//   - g: The raw grid of one file.
//
// RETURNS:
//   - The winning HeaderCandidate.
//   - A *HeaderNotFoundError when no row clears the thresholds.
func (d *HeaderDetector) Detect(g grid.Grid) (HeaderCandidate, error) {
	limit := d.scanRows
	if limit > g.RowCount() {
		limit = g.RowCount()
	}

	width := g.ColumnCount()
	best := HeaderCandidate{Row: -1}

	for row := 0; row < limit; row++ {
		score, eligible := d.scoreRow(g, row, width)
		if !eligible {
			continue
		}
		// Strictly greater: on equal scores the earliest row keeps winning,
		// because operators put headers near the top.
		if best.Row < 0 || score > best.Score {
			best = HeaderCandidate{Row: row, Score: score}
		}
	}

	if best.Row < 0 {
		return HeaderCandidate{}, &HeaderNotFoundError{RowsScanned: limit}
	}
	return best, nil
}

// scoreRow computes the composite score of one candidate row and whether it
// clears the eligibility thresholds.
func (d *HeaderDetector) scoreRow(g grid.Grid, row, width int) (float64, bool) {
	if width == 0 {
		return 0, false
	}

	nonEmpty := 0
	textual := 0
	seen := make(map[string]bool)
	unique := 0

	for col := 0; col < width; col++ {
		cell := g.Cell(row, col)
		if cell == "" {
			continue
		}
		nonEmpty++
		if !grid.IsNumeric(cell) {
			textual++
		}
		key := strings.ToLower(cell)
		if !seen[key] {
			seen[key] = true
			unique++
		}
	}

	// A header needs at least two labels to be worth mapping.
	if nonEmpty < 2 {
		return 0, false
	}

	filledFrac := float64(nonEmpty) / float64(width)
	textualFrac := float64(textual) / float64(nonEmpty)
	uniqueFrac := float64(unique) / float64(nonEmpty)

	if filledFrac < d.minFilled || textualFrac < d.minTextual {
		return 0, false
	}

	score := weightFilled*filledFrac + weightTextual*textualFrac + weightUnique*uniqueFrac
	return score, true
}
