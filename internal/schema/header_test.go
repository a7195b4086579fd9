package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoice-combiner/internal/config"
	"github.com/ginjaninja78/invoice-combiner/internal/grid"
)

func testHeuristics() config.Heuristics {
	return config.Heuristics{
		HeaderScanRows:    20,
		HeaderMinFilled:   0.6,
		HeaderMinTextual:  0.6,
		SampleRows:        20,
		MatchThreshold:    0.6,
		VATRatioTolerance: 0.05,
	}
}

func TestDetectHeaderOnFirstRow(t *testing.T) {
	g := grid.Grid{
		{"EVSE ID", "Session ID", "Currency", "Price"},
		{"E1", "S1", "EUR", "10.00"},
	}

	candidate, err := NewHeaderDetector(testHeuristics()).Detect(g)
	require.NoError(t, err)
	assert.Equal(t, 0, candidate.Row)
}

func TestDetectHeaderBelowPreamble(t *testing.T) {
	// Report title, blank padding, then the real header. The data rows below
	// it are numeric-heavy and must not outscore it.
	g := grid.Grid{
		{"Monthly Invoice Report"},
		{},
		{"Generated", "2024-03-01"},
		{"EVSE ID", "Session ID", "Currency", "Net", "Gross", "VAT %"},
		{"E1", "S1", "EUR", "100.00", "121.00", "21"},
		{"E2", "S2", "EUR", "50.00", "60.50", "21"},
	}

	candidate, err := NewHeaderDetector(testHeuristics()).Detect(g)
	require.NoError(t, err)
	assert.Equal(t, 3, candidate.Row)
}

func TestDetectNeverDefaultsToRowZero(t *testing.T) {
	// Numbers everywhere: nothing qualifies, so detection must fail rather
	// than return row 0.
	g := grid.Grid{
		{"1", "2", "3"},
		{"4", "5", "6"},
	}

	_, err := NewHeaderDetector(testHeuristics()).Detect(g)
	require.Error(t, err)

	var notFound *HeaderNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 2, notFound.RowsScanned)
}

func TestDetectTieGoesToEarliestRow(t *testing.T) {
	// Two identical label rows score identically; the first one wins.
	g := grid.Grid{
		{"EVSE ID", "Session ID", "Currency"},
		{"EVSE ID", "Session ID", "Currency"},
	}

	candidate, err := NewHeaderDetector(testHeuristics()).Detect(g)
	require.NoError(t, err)
	assert.Equal(t, 0, candidate.Row)
}

func TestDetectHonorsScanWindow(t *testing.T) {
	h := testHeuristics()
	h.HeaderScanRows = 2

	g := grid.Grid{
		{"1", "2"},
		{"3", "4"},
		{"EVSE ID", "Session ID"},
	}

	_, err := NewHeaderDetector(h).Detect(g)
	require.Error(t, err)
}

func TestDetectSingleLabelRowIneligible(t *testing.T) {
	// One non-empty cell is not enough to map columns from, even if it is
	// textual.
	g := grid.Grid{
		{"Report"},
		{"Summary"},
	}

	_, err := NewHeaderDetector(testHeuristics()).Detect(g)
	require.Error(t, err)
}

func TestDetectPrefersDenserLabelRow(t *testing.T) {
	g := grid.Grid{
		{"Invoice", "", "", "2024", ""},
		{"EVSE ID", "Session ID", "Currency", "Price", "VAT"},
		{"E1", "S1", "EUR", "10.00", "21"},
	}

	candidate, err := NewHeaderDetector(testHeuristics()).Detect(g)
	require.NoError(t, err)
	assert.Equal(t, 1, candidate.Row)
}
