package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoice-combiner/internal/config"
	"github.com/ginjaninja78/invoice-combiner/internal/grid"
)

func newTestClassifier() *Classifier {
	return NewClassifier(config.DefaultAliases(), testHeuristics())
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EVSE_ID", "evse id"},
		{"Evse-Id", "evse id"},
		{"  Session   ID  ", "session id"},
		{"VAT %", "vat"},
		{"Price (net)", "price net"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.in), "input %q", tt.in)
	}
}

func TestClassifyStandardHeader(t *testing.T) {
	g := grid.Grid{
		{"EVSE ID", "Session ID", "Currency", "Net Price", "VAT Rate"},
		{"E1", "S1", "EUR", "100.00", "21"},
		{"E2", "S2", "EUR", "50.00", "21"},
	}

	mapping := newTestClassifier().Classify(g, 0)

	col, ok := mapping.Column(RoleEquipmentID)
	require.True(t, ok)
	assert.Equal(t, 0, col)

	col, ok = mapping.Column(RoleSessionID)
	require.True(t, ok)
	assert.Equal(t, 1, col)

	col, ok = mapping.Column(RoleCurrency)
	require.True(t, ok)
	assert.Equal(t, 2, col)

	// Monetary columns are nominated, not assigned.
	require.Len(t, mapping.PriceCandidates, 2)
	net := mapping.PriceCandidates[0]
	assert.Equal(t, 3, net.Index)
	assert.True(t, net.MatchesNet)
	assert.False(t, net.MatchesGross)

	vat := mapping.PriceCandidates[1]
	assert.Equal(t, 4, vat.Index)
	assert.True(t, vat.MatchesVAT)
}

func TestClassifyVendorSpellings(t *testing.T) {
	// Same roles under a different vendor's naming, shuffled column order.
	g := grid.Grid{
		{"transaction_id", "AMOUNT", "Charge Point ID", "curr"},
		{"T-1001", "12,50", "CP-7", "EUR"},
		{"T-1002", "8,00", "CP-9", "EUR"},
	}

	mapping := newTestClassifier().Classify(g, 0)

	col, ok := mapping.Column(RoleSessionID)
	require.True(t, ok)
	assert.Equal(t, 0, col)

	col, ok = mapping.Column(RoleEquipmentID)
	require.True(t, ok)
	assert.Equal(t, 2, col)

	col, ok = mapping.Column(RoleCurrency)
	require.True(t, ok)
	assert.Equal(t, 3, col)

	require.Len(t, mapping.PriceCandidates, 1)
	assert.Equal(t, 1, mapping.PriceCandidates[0].Index)
	assert.Equal(t, "AMOUNT", mapping.PriceCandidates[0].Label)
}

func TestClassifyCurrencyTieBreakByContent(t *testing.T) {
	// Two headers matching currency aliases equally well; the column whose
	// values look like ISO codes wins.
	g := grid.Grid{
		{"Currency Note", "Currency Used", "Session ID", "EVSE ID"},
		{"see appendix", "EUR", "S1", "E1"},
		{"see appendix", "SEK", "S2", "E2"},
	}

	mapping := newTestClassifier().Classify(g, 0)

	col, ok := mapping.Column(RoleCurrency)
	require.True(t, ok)
	assert.Equal(t, 1, col)
}

func TestClassifyIdentifierTieBreakByUniqueness(t *testing.T) {
	// Both headers match the "session" alias equally well; the column whose
	// values vary per row is the identifier, the repeating one is descriptive.
	g := grid.Grid{
		{"Session Type", "Session Ref"},
		{"AC", "S-001"},
		{"AC", "S-002"},
		{"AC", "S-003"},
	}

	mapping := newTestClassifier().Classify(g, 0)

	col, ok := mapping.Column(RoleSessionID)
	require.True(t, ok)
	assert.Equal(t, 1, col)
}

func TestClassifyLeavesUnknownColumnsUnclassified(t *testing.T) {
	g := grid.Grid{
		{"EVSE ID", "Session ID", "Currency", "Driver Comment"},
		{"E1", "S1", "EUR", "slow charger"},
	}

	mapping := newTestClassifier().Classify(g, 0)

	assert.False(t, mapping.Assigned(3))
	assert.Empty(t, mapping.PriceCandidates)
}

func TestClassifyTextColumnNotNominatedAsPrice(t *testing.T) {
	// A header matching a price alias whose content is text must not become
	// a candidate.
	g := grid.Grid{
		{"EVSE ID", "Session ID", "Currency", "Price"},
		{"E1", "S1", "EUR", "on request"},
		{"E2", "S2", "EUR", "n/a"},
	}

	mapping := newTestClassifier().Classify(g, 0)
	assert.Empty(t, mapping.PriceCandidates)
}

func TestClassifyMissingRoleAbsent(t *testing.T) {
	g := grid.Grid{
		{"EVSE ID", "Price"},
		{"E1", "10.00"},
	}

	mapping := newTestClassifier().Classify(g, 0)

	_, ok := mapping.Column(RoleSessionID)
	assert.False(t, ok)
	_, ok = mapping.Column(RoleCurrency)
	assert.False(t, ok)
}

func TestSimilarityTiers(t *testing.T) {
	assert.Equal(t, 1.0, similarity("evse id", "evse id"))
	assert.Equal(t, 0.95, similarity("id evse", "evse id"))
	assert.Equal(t, 0.8, similarity("charge point id number", "charge point id"))
	assert.InDelta(t, 0.35, similarity("point total", "charge point"), 1e-9)
	assert.Equal(t, 0.0, similarity("", "evse id"))
}
