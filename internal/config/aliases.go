// =============================================================================
// Invoice Combiner - Header Alias Tables
// =============================================================================
//
// The column classifier matches raw header labels against curated alias
// tables, one per canonical role. The tables are data, not code: every
// billing vendor invents its own column names, and the fix for a new vendor
// must be a YAML edit, never a code change.
//
// The built-in defaults cover the vendor exports seen so far. An aliases.yaml
// referenced from the main config extends or replaces them per role.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// ALIAS CONFIGURATION STRUCTURE
// =============================================================================

// AliasConfig holds the header aliases per canonical role. Matching is
// case/whitespace/punctuation-insensitive, so aliases are written in plain
// lowercase words.
type AliasConfig struct {
	// EquipmentID aliases: the charging-station identifier column.
	EquipmentID []string `yaml:"equipment_id"`

	// SessionID aliases: the charging-session / transaction identifier.
	SessionID []string `yaml:"session_id"`

	// Currency aliases.
	Currency []string `yaml:"currency"`

	// Price aliases: any column whose header suggests a monetary amount.
	// These only nominate candidates; the price resolver makes the final
	// net-vs-gross decision.
	Price []string `yaml:"price"`

	// Net aliases: price headers that explicitly denote a pre-VAT amount.
	Net []string `yaml:"net"`

	// Gross aliases: price headers that explicitly denote a VAT-inclusive
	// amount.
	Gross []string `yaml:"gross"`

	// VATRate aliases: percentage tax-rate columns.
	VATRate []string `yaml:"vat_rate"`
}

// =============================================================================
// BUILT-IN DEFAULTS
// =============================================================================

// DefaultAliases returns the built-in alias tables.
func DefaultAliases() *AliasConfig {
	return &AliasConfig{
		EquipmentID: []string{
			"evse id", "evse", "charge point id", "charge point",
			"charging station id", "station id", "charger id", "cp id",
			"equipment id",
		},
		SessionID: []string{
			"session id", "session", "transaction id", "charge session id",
			"charging session", "session number", "cdr id",
		},
		Currency: []string{
			"currency", "curr", "ccy", "currency code",
		},
		Price: []string{
			"price", "amount", "total", "sum", "cost", "fee", "value",
			"charge", "unit price",
		},
		Net: []string{
			"net", "price net", "net price", "amount net", "net amount",
			"ex vat", "excl vat", "excluding vat", "price excl vat",
		},
		Gross: []string{
			"gross", "price gross", "gross price", "amount gross",
			"gross amount", "incl vat", "including vat", "price incl vat",
			"total incl vat",
		},
		VATRate: []string{
			"vat", "vat rate", "vat %", "tax rate", "tax %", "vat percent",
			"mwst", "btw",
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// LoadAliases returns the alias tables, overlaying any YAML file on top of
// the defaults. Only roles present and non-empty in the file replace their
// built-in table, so a vendor override can be a two-line document.
//
// PARAMETERS:
//   - aliasPath: Path to the aliases YAML file; "" means defaults only.
//
// RETURNS:
//   - The merged AliasConfig.
//   - An error if the file exists but cannot be read or parsed.
func LoadAliases(aliasPath string) (*AliasConfig, error) {
	aliases := DefaultAliases()
	if aliasPath == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(aliasPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var override AliasConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}

	if len(override.EquipmentID) > 0 {
		aliases.EquipmentID = override.EquipmentID
	}
	if len(override.SessionID) > 0 {
		aliases.SessionID = override.SessionID
	}
	if len(override.Currency) > 0 {
		aliases.Currency = override.Currency
	}
	if len(override.Price) > 0 {
		aliases.Price = override.Price
	}
	if len(override.Net) > 0 {
		aliases.Net = override.Net
	}
	if len(override.Gross) > 0 {
		aliases.Gross = override.Gross
	}
	if len(override.VATRate) > 0 {
		aliases.VATRate = override.VATRate
	}

	return aliases, nil
}
