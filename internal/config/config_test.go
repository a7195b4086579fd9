package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMainConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./input", config.InputDir)
	assert.Equal(t, "./output/combined_invoices.csv", config.OutputFile)
	assert.Equal(t, 4, config.MaxConcurrency)
	assert.Equal(t, 20, config.Heuristics.HeaderScanRows)
	assert.Equal(t, 0.6, config.Heuristics.HeaderMinFilled)
	assert.Equal(t, 0.6, config.Heuristics.MatchThreshold)
	assert.Equal(t, 0.05, config.Heuristics.VATRatioTolerance)
}

func TestLoadMainConfigOverrides(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
input_dir: /data/in
max_concurrency: 2
heuristics:
  header_scan_rows: 5
  match_threshold: 0.8
`)

	config, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", config.InputDir)
	assert.Equal(t, 2, config.MaxConcurrency)
	assert.Equal(t, 5, config.Heuristics.HeaderScanRows)
	assert.Equal(t, 0.8, config.Heuristics.MatchThreshold)
	// Unset fields still fall back to defaults.
	assert.Equal(t, "./output/combined_invoices.csv", config.OutputFile)
	assert.Equal(t, 20, config.Heuristics.SampleRows)
}

func TestLoadMainConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative concurrency", "max_concurrency: -1"},
		{"scan rows below one", "heuristics:\n  header_scan_rows: -3"},
		{"threshold above one", "heuristics:\n  match_threshold: 1.5"},
		{"filled fraction above one", "heuristics:\n  header_min_filled: 2.0"},
		{"negative tolerance", "heuristics:\n  vat_ratio_tolerance: -0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "config.yaml", tt.body)
			_, err := LoadMainConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadMainConfigRejectsMalformedYAML(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "input_dir: [unclosed")
	_, err := LoadMainConfig(path)
	require.Error(t, err)
}

func TestDefaultAliasesCoverAllRoles(t *testing.T) {
	aliases := DefaultAliases()

	assert.NotEmpty(t, aliases.EquipmentID)
	assert.NotEmpty(t, aliases.SessionID)
	assert.NotEmpty(t, aliases.Currency)
	assert.NotEmpty(t, aliases.Price)
	assert.NotEmpty(t, aliases.Net)
	assert.NotEmpty(t, aliases.Gross)
	assert.NotEmpty(t, aliases.VATRate)

	assert.Contains(t, aliases.EquipmentID, "evse id")
	assert.Contains(t, aliases.SessionID, "transaction id")
}

func TestLoadAliasesOverlay(t *testing.T) {
	path := writeTempFile(t, "aliases.yaml", `
equipment_id:
  - "ladepunkt"
  - "saeule"
`)

	aliases, err := LoadAliases(path)
	require.NoError(t, err)

	// The overridden role is replaced entirely.
	assert.Equal(t, []string{"ladepunkt", "saeule"}, aliases.EquipmentID)
	// Other roles keep the built-ins.
	assert.Equal(t, DefaultAliases().SessionID, aliases.SessionID)
}

func TestLoadAliasesEmptyPathReturnsDefaults(t *testing.T) {
	aliases, err := LoadAliases("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAliases(), aliases)
}

func TestLoadAliasesMissingFileFails(t *testing.T) {
	_, err := LoadAliases(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
