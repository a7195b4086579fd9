package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoice-combiner/internal/config"
	"github.com/ginjaninja78/invoice-combiner/internal/grid"
	"github.com/ginjaninja78/invoice-combiner/internal/normalize"
)

func newTestMerger(concurrency int) *Merger {
	h := config.Heuristics{
		HeaderScanRows:    20,
		HeaderMinFilled:   0.6,
		HeaderMinTextual:  0.6,
		SampleRows:        20,
		MatchThreshold:    0.6,
		VATRatioTolerance: 0.05,
	}
	return New(normalize.New(config.DefaultAliases(), h), concurrency)
}

func source(name string, g grid.Grid) *grid.Source {
	return &grid.Source{FileName: name, Format: grid.FormatCSV, Grid: g}
}

func TestMergeMixedBatch(t *testing.T) {
	// File A normalizes; File B has no header row at all.
	fileA := source("a.csv", grid.Grid{
		{"EVSE", "Session", "Currency", "Net", "Gross", "VAT%"},
		{"E1", "S1", "EUR", "10.00", "12.10", "21"},
	})
	fileB := source("b.csv", grid.Grid{
		{"1", "2", "3"},
		{"", "", ""},
		{"4", "5", "6"},
	})

	output := newTestMerger(1).Merge([]*grid.Source{fileA, fileB})

	require.Len(t, output.Rows, 1)
	assert.Equal(t, normalize.CanonicalRow{
		EquipmentID: "E1",
		SessionID:   "S1",
		Currency:    "EUR",
		Price:       10.0,
	}, output.Rows[0])

	require.Len(t, output.Failures, 1)
	assert.Equal(t, "b.csv", output.Failures[0].FileName)
	assert.Equal(t, normalize.StageHeader, output.Failures[0].Stage)
}

func TestMergePreservesInputOrderUnderConcurrency(t *testing.T) {
	var sources []*grid.Source
	for i := 0; i < 40; i++ {
		sources = append(sources, source(fmt.Sprintf("f%02d.csv", i), grid.Grid{
			{"EVSE ID", "Session ID", "Currency", "Net Price"},
			{fmt.Sprintf("E%02d", i), fmt.Sprintf("S%02d", i), "EUR", "10.00"},
		}))
	}

	output := newTestMerger(8).Merge(sources)

	require.Len(t, output.Rows, 40)
	for i, row := range output.Rows {
		assert.Equal(t, fmt.Sprintf("E%02d", i), row.EquipmentID)
	}
	require.Len(t, output.Stats, 40)
	assert.Equal(t, "f00.csv", output.Stats[0].FileName)
	assert.Equal(t, "f39.csv", output.Stats[39].FileName)
}

func TestMergeRowCountInvariant(t *testing.T) {
	// Output rows = sum over successful files of (data rows - skipped rows).
	fileA := source("a.csv", grid.Grid{
		{"EVSE ID", "Session ID", "Currency", "Net Price"},
		{"E1", "S1", "EUR", "10.00"},
		{"E2", "", "EUR", "11.00"}, // skipped
		{"E3", "S3", "EUR", "12.00"},
	})
	fileB := source("b.csv", grid.Grid{
		{"EVSE ID", "Session ID", "Currency", "Net Price"},
		{"E4", "S4", "EUR", "13.00"},
	})

	output := newTestMerger(2).Merge([]*grid.Source{fileA, fileB})

	total := 0
	for _, stat := range output.Stats {
		if !stat.Failed {
			total += stat.Rows
		}
	}
	assert.Equal(t, len(output.Rows), total)
	assert.Equal(t, 3, len(output.Rows))

	assert.Equal(t, 2, output.Stats[0].Rows)
	assert.Equal(t, 1, output.Stats[0].Skipped)
	assert.Equal(t, 1, output.Stats[1].Rows)
}

func TestMergeAllFilesFail(t *testing.T) {
	fileA := source("a.csv", grid.Grid{{"1", "2"}, {"3", "4"}})
	fileB := source("b.csv", grid.Grid{{"5", "6"}, {"7", "8"}})

	output := newTestMerger(2).Merge([]*grid.Source{fileA, fileB})

	require.NotNil(t, output)
	assert.Empty(t, output.Rows)
	assert.Len(t, output.Failures, 2)
	assert.True(t, output.Stats[0].Failed)
	assert.True(t, output.Stats[1].Failed)
}

func TestMergeEmptyBatch(t *testing.T) {
	output := newTestMerger(4).Merge(nil)

	require.NotNil(t, output)
	assert.Empty(t, output.Rows)
	assert.Empty(t, output.Failures)
	assert.Empty(t, output.Stats)
}
