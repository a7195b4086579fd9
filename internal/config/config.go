// =============================================================================
// Invoice Combiner - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. There are two configuration surfaces:
//
//   1. Main Config (config.yaml): directories, output settings, concurrency,
//      and the heuristic tuning parameters of the schema-inference engine.
//   2. Alias Config (aliases.yaml, optional): the header-alias tables that
//      map vendor column names onto canonical roles. See aliases.go.
//
// ARCHITECTURE:
//   The configuration system is designed to be:
//   - Data-driven: new vendor naming conventions are added by editing YAML,
//     never by touching classifier code
//   - Self-defaulting: the tool runs with no config file at all
//   - Validated: thresholds are sanity-checked on load
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for invoice files to combine.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputFile is the path of the combined canonical table. The extension
	// selects the serialization: .csv or .xlsx.
	// Default: "./output/combined_invoices.csv"
	OutputFile string `yaml:"output_file"`

	// ArchiveDir is where successfully processed input files are moved.
	// Leave empty to keep inputs in place.
	ArchiveDir string `yaml:"archive_dir"`

	// ErrorLogDir is where per-run error logs are written when files fail.
	// Default: "./logs"
	ErrorLogDir string `yaml:"error_log_dir"`

	// =========================================================================
	// DATABASE SETTINGS
	// =========================================================================

	// DatabasePath is the SQLite invoice archive. Combined rows are inserted
	// after every run; duplicate session IDs are skipped, not overwritten.
	// Leave empty to disable persistence.
	DatabasePath string `yaml:"database_path"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of files normalized in parallel.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// AliasFile optionally points to a YAML file overriding the built-in
	// header-alias tables.
	AliasFile string `yaml:"alias_file"`

	// Heuristics tunes the schema-inference engine.
	Heuristics Heuristics `yaml:"heuristics"`
}

// =============================================================================
// HEURISTICS STRUCTURE
// =============================================================================

// Heuristics holds the tuning parameters of the detection engine. The
// defaults come from the behavior of real vendor exports; they are exposed
// here so an odd export can be accommodated without a code change.
type Heuristics struct {
	// HeaderScanRows is the number of leading rows inspected when locating
	// the header row.
	// Default: 20
	HeaderScanRows int `yaml:"header_scan_rows"`

	// HeaderMinFilled is the minimum fraction of non-empty cells a row needs
	// to qualify as a header candidate.
	// Default: 0.6
	HeaderMinFilled float64 `yaml:"header_min_filled"`

	// HeaderMinTextual is the minimum fraction of non-numeric cells a row
	// needs to qualify as a header candidate. Data rows are dominated by
	// numeric and ID-like values, header rows by labels.
	// Default: 0.6
	HeaderMinTextual float64 `yaml:"header_min_textual"`

	// SampleRows is how many data rows the content heuristics sample per
	// column when classifying and when resolving the price.
	// Default: 20
	SampleRows int `yaml:"sample_rows"`

	// MatchThreshold is the minimum alias-similarity score for a column to
	// be assigned a role.
	// Default: 0.6
	MatchThreshold float64 `yaml:"match_threshold"`

	// VATRatioTolerance is the relative tolerance used when testing whether
	// two price candidates relate as gross = net * (1 + vat/100). Vendor
	// data carries rounding noise, so an exact test would never fire.
	// Default: 0.05
	VATRatioTolerance float64 `yaml:"vat_ratio_tolerance"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file exists but cannot be read or parsed.
//
// A missing file is not an error: the tool is expected to run with built-in
// defaults when no config.yaml is present.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// Run on defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputFile == "" {
		config.OutputFile = "./output/combined_invoices.csv"
	}
	if config.ErrorLogDir == "" {
		config.ErrorLogDir = "./logs"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}

	h := &config.Heuristics
	if h.HeaderScanRows == 0 {
		h.HeaderScanRows = 20
	}
	if h.HeaderMinFilled == 0 {
		h.HeaderMinFilled = 0.6
	}
	if h.HeaderMinTextual == 0 {
		h.HeaderMinTextual = 0.6
	}
	if h.SampleRows == 0 {
		h.SampleRows = 20
	}
	if h.MatchThreshold == 0 {
		h.MatchThreshold = 0.6
	}
	if h.VATRatioTolerance == 0 {
		h.VATRatioTolerance = 0.05
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	h := config.Heuristics
	if h.HeaderScanRows < 1 {
		return fmt.Errorf("header_scan_rows must be at least 1, got %d", h.HeaderScanRows)
	}
	if h.HeaderMinFilled < 0 || h.HeaderMinFilled > 1 {
		return fmt.Errorf("header_min_filled must be within [0,1], got %g", h.HeaderMinFilled)
	}
	if h.HeaderMinTextual < 0 || h.HeaderMinTextual > 1 {
		return fmt.Errorf("header_min_textual must be within [0,1], got %g", h.HeaderMinTextual)
	}
	if h.MatchThreshold <= 0 || h.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be within (0,1], got %g", h.MatchThreshold)
	}
	if h.VATRatioTolerance <= 0 {
		return fmt.Errorf("vat_ratio_tolerance must be positive, got %g", h.VATRatioTolerance)
	}
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	return nil
}
