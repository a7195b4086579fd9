// =============================================================================
// Invoice Combiner - Column Classifier
// =============================================================================
//
// The classifier assigns raw columns to canonical roles by matching header
// labels against the alias tables, falling back to content heuristics when
// labels alone cannot decide. Matching is deliberately fuzzy: real headers
// write the same concept as "EVSE_ID", "Evse Id", or "evse-id", so labels
// and aliases are normalized and compared by exact, token-set, substring,
// and token-overlap similarity.
//
// TIE-BREAKING:
//   When two columns clear the threshold for the same role, content decides:
//   - Currency prefers the column whose values look like currency codes or
//     symbols.
//   - EquipmentID/SessionID prefer the column whose sampled values vary more
//     row-to-row; identifiers change every row, descriptions do not.
//
// Price and VATRate are NOT finalized here. The classifier only nominates
// the numeric columns whose header suggests a monetary or rate quantity;
// the resolver in price.go makes the net-vs-gross decision.
//
// The classifier never hard-fails: roles it cannot place are simply absent
// from the mapping, and the normalizer decides what that means.
//
// =============================================================================

package schema

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/invoice-combiner/internal/config"
	"github.com/ginjaninja78/invoice-combiner/internal/grid"
)

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier assigns grid columns to canonical roles.
type Classifier struct {
	aliases    *config.AliasConfig
	threshold  float64
	sampleRows int
}

// NewClassifier creates a classifier from the alias tables and heuristic
// configuration.
func NewClassifier(aliases *config.AliasConfig, h config.Heuristics) *Classifier {
	return &Classifier{
		aliases:    aliases,
		threshold:  h.MatchThreshold,
		sampleRows: h.SampleRows,
	}
}

// Classify maps the columns of a grid onto canonical roles.
//
// PARAMETERS:
//   - g: The raw grid of one file.
//   - headerRow: The header row index found by the detector.
//
// RETURNS:
//   - The column mapping. Unmatched roles are absent; undecided monetary
//     columns are listed as price candidates.
func (c *Classifier) Classify(g grid.Grid, headerRow int) *Mapping {
	mapping := NewMapping(headerRow)

	width := g.ColumnCount()
	labels := make([]string, width)
	normalized := make([]string, width)
	for col := 0; col < width; col++ {
		labels[col] = g.Cell(headerRow, col)
		normalized[col] = NormalizeLabel(labels[col])
	}

	// Mandatory identity roles first, in fixed order, so that a column
	// claimed by an earlier role cannot be claimed again. Identifier columns
	// are the most distinctive, currency the least.
	type roleSpec struct {
		role     Role
		aliases  []string
		tieBreak func(values []string) float64
	}
	specs := []roleSpec{
		{RoleEquipmentID, c.aliases.EquipmentID, valueUniqueness},
		{RoleSessionID, c.aliases.SessionID, valueUniqueness},
		{RoleCurrency, c.aliases.Currency, currencyLikeness},
	}

	for _, spec := range specs {
		col, ok := c.bestColumn(g, headerRow, normalized, spec.aliases, mapping, spec.tieBreak)
		if ok {
			mapping.Assign(spec.role, col)
		}
	}

	// Nominate price candidates: columns not claimed above whose header
	// suggests money or a rate, and whose content is mostly numeric.
	for col := 0; col < width; col++ {
		if mapping.Assigned(col) || normalized[col] == "" {
			continue
		}

		monetary := similarityToAny(normalized[col], c.aliases.Price, c.aliases.Net, c.aliases.Gross, c.aliases.VATRate)
		if monetary < c.threshold {
			continue
		}
		if !mostlyNumeric(g.Column(col, headerRow+1, c.sampleRows)) {
			continue
		}

		mapping.PriceCandidates = append(mapping.PriceCandidates, PriceCandidate{
			Index:        col,
			Label:        labels[col],
			MatchesNet:   bestSimilarity(normalized[col], c.aliases.Net) >= c.threshold,
			MatchesGross: bestSimilarity(normalized[col], c.aliases.Gross) >= c.threshold,
			MatchesVAT:   bestSimilarity(normalized[col], c.aliases.VATRate) >= c.threshold,
		})
	}

	return mapping
}

// bestColumn finds the best column for one role. Columns already assigned to
// an earlier role are ignored. Score ties above the threshold are broken by
// the role's content heuristic, then by column position.
func (c *Classifier) bestColumn(g grid.Grid, headerRow int, normalized []string, aliases []string, mapping *Mapping, tieBreak func([]string) float64) (int, bool) {
	bestCol := -1
	bestScore := 0.0
	bestContent := 0.0

	for col, label := range normalized {
		if label == "" || mapping.Assigned(col) {
			continue
		}
		score := bestSimilarity(label, aliases)
		if score < c.threshold {
			continue
		}

		switch {
		case score > bestScore:
			bestCol, bestScore = col, score
			bestContent = tieBreak(g.Column(col, headerRow+1, c.sampleRows))
		case score == bestScore && bestCol >= 0:
			content := tieBreak(g.Column(col, headerRow+1, c.sampleRows))
			if content > bestContent {
				bestCol, bestContent = col, content
			}
		}
	}

	return bestCol, bestCol >= 0
}

// =============================================================================
// LABEL SIMILARITY
// =============================================================================

var labelPunctuation = regexp.MustCompile(`[_\-./\\:;,%()\[\]#]+`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeLabel lowercases a header label and collapses punctuation and
// whitespace, so "EVSE_ID" and "Evse Id" compare equal.
func NormalizeLabel(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	l = labelPunctuation.ReplaceAllString(l, " ")
	l = whitespaceRun.ReplaceAllString(l, " ")
	return strings.TrimSpace(l)
}

// bestSimilarity returns the highest similarity between a normalized label
// and any alias in the table.
func bestSimilarity(label string, aliases []string) float64 {
	best := 0.0
	for _, alias := range aliases {
		if s := similarity(label, NormalizeLabel(alias)); s > best {
			best = s
		}
	}
	return best
}

// similarityToAny returns the highest similarity across several alias tables.
func similarityToAny(label string, tables ...[]string) float64 {
	best := 0.0
	for _, table := range tables {
		if s := bestSimilarity(label, table); s > best {
			best = s
		}
	}
	return best
}

// similarity scores two normalized labels. The tiers reward exact and
// whole-token agreement over loose overlap:
//
//	1.00  exact match
//	0.95  same token set, different order
//	0.80  one contains the other as a whole phrase
//	<=0.70 scaled fraction of alias tokens present in the label
func similarity(label, alias string) float64 {
	if label == "" || alias == "" {
		return 0
	}
	if label == alias {
		return 1.0
	}

	labelTokens := strings.Fields(label)
	aliasTokens := strings.Fields(alias)

	if tokenSetEqual(labelTokens, aliasTokens) {
		return 0.95
	}

	if strings.Contains(" "+label+" ", " "+alias+" ") || strings.Contains(" "+alias+" ", " "+label+" ") {
		return 0.8
	}

	labelSet := make(map[string]bool, len(labelTokens))
	for _, t := range labelTokens {
		labelSet[t] = true
	}
	overlap := 0
	for _, t := range aliasTokens {
		if labelSet[t] {
			overlap++
		}
	}
	return 0.7 * float64(overlap) / float64(len(aliasTokens))
}

func tokenSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		if !set[t] {
			return false
		}
	}
	return true
}

// =============================================================================
// CONTENT HEURISTICS
// =============================================================================

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// currencySymbols are the symbols recognized inside currency cells.
const currencySymbols = "$€£¥₹₽₩"

// currencyLikeness returns the fraction of sampled values that look like a
// currency code or symbol.
func currencyLikeness(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	matches := 0
	for _, v := range values {
		if currencyCodePattern.MatchString(strings.ToUpper(strings.TrimSpace(v))) {
			matches++
			continue
		}
		if strings.ContainsAny(v, currencySymbols) {
			matches++
		}
	}
	return float64(matches) / float64(len(values))
}

// valueUniqueness returns the fraction of distinct values in the sample.
// Identifier columns approach 1.0; repeated descriptive text does not.
func valueUniqueness(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	distinct := make(map[string]bool, len(values))
	for _, v := range values {
		distinct[v] = true
	}
	return float64(len(distinct)) / float64(len(values))
}

// mostlyNumeric reports whether at least half of the sampled values parse as
// numbers. Price and rate columns may contain stray blanks or dashes, so an
// all-numeric requirement would be too strict.
func mostlyNumeric(values []string) bool {
	if len(values) == 0 {
		return false
	}
	numeric := 0
	for _, v := range values {
		if grid.IsNumeric(v) {
			numeric++
		}
	}
	return float64(numeric)/float64(len(values)) >= 0.5
}
