// =============================================================================
// Invoice Combiner - Price Resolution
// =============================================================================
//
// A sheet may carry several columns that could be "the price": net price,
// gross price, one or more VAT-rate percentages. Naming alone cannot tell
// them apart across vendors, and picking a gross price as net silently
// corrupts every downstream reconciliation, so the resolver applies its
// rules in order and fails loudly when they do not produce a unique answer:
//
//   1. Exactly one candidate matches net aliases exclusively -> select it.
//   2. Discard VAT-rate columns identified by content (small bounded values
//      consistent with a percentage).
//   3. If one survivor's values relate to another's as net = gross/(1+vat/100)
//      against a detected VAT column, select the smaller (net) column.
//   4. Anything else -> AmbiguousPriceError. Never guess.
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

// AmbiguousPriceError reports that the resolver could not single out a net
// price column. Candidates holds the tied header labels; it is empty when no
// price-like column existed at all.
type AmbiguousPriceError struct {
	Candidates []string
}

func (e *AmbiguousPriceError) Error() string {
	if len(e.Candidates) == 0 {
		return "no price-like columns found"
	}
	return fmt.Sprintf("cannot distinguish net price among columns: %s", strings.Join(e.Candidates, ", "))
}

// =============================================================================
// PRICE RESOLVER
// =============================================================================

// PriceResolver makes the final net-price decision among the classifier's
// candidate columns.
type PriceResolver struct {
	tolerance  float64
	sampleRows int
}

// NewPriceResolver creates a resolver from the heuristic configuration.
func NewPriceResolver(h config.Heuristics) *PriceResolver {
	return &PriceResolver{
		tolerance:  h.VATRatioTolerance,
		sampleRows: h.SampleRows,
	}
}

// Resolve selects the net price column.
//
// PARAMETERS:
//   - g: The raw grid of one file.
//   - headerRow: The header row index.
//   - candidates: The classifier's undecided monetary columns.
//
// RETURNS:
//   - The column index of the net price.
//   - A *AmbiguousPriceError when no unique answer exists.
func (r *PriceResolver) Resolve(g grid.Grid, headerRow int, candidates []PriceCandidate) (int, error) {
	if len(candidates) == 0 {
		return 0, &AmbiguousPriceError{}
	}

	// Rule 1: a single exclusively-net header decides immediately.
	var netOnly []PriceCandidate
	for _, cand := range candidates {
		if cand.MatchesNet && !cand.MatchesGross && !cand.MatchesVAT {
			netOnly = append(netOnly, cand)
		}
	}
	if len(netOnly) == 1 {
		return netOnly[0].Index, nil
	}

	// Rule 2: split off VAT-rate columns so a percentage is never selected
	// as a price.
	var prices, vats []PriceCandidate
	for _, cand := range candidates {
		if r.isVATRate(g, headerRow, cand) {
			vats = append(vats, cand)
		} else {
			prices = append(prices, cand)
		}
	}

	if len(prices) == 1 {
		return prices[0].Index, nil
	}

	// Rule 3: use a VAT column to find the net/gross pair by value ratio.
	if len(prices) >= 2 && len(vats) > 0 {
		if net, ok := r.netByRatio(g, headerRow, prices, vats); ok {
			return net, nil
		}
	}

	labels := make([]string, len(prices))
	for i, cand := range prices {
		labels[i] = cand.Label
	}
	return 0, &AmbiguousPriceError{Candidates: labels}
}

// =============================================================================
// RULE 2: VAT-RATE DETECTION BY CONTENT
// =============================================================================

// isVATRate reports whether a candidate column holds VAT percentages rather
// than prices. A column whose header explicitly says net or gross is never a
// rate, whatever its values; beyond that the decision is content-based:
// every sampled value must sit in [0,100], and the column must either be
// flagged by a VAT alias or look like rates on its own. Unflagged columns
// need two signals at once: mostly integral values (real rates are 19, 20,
// 21) and heavy repetition (a file uses one or two rates, while amounts vary
// row to row). Either signal alone would swallow price columns: small unit
// prices like 0.35 repeat, and round amounts like 100, 50, 10 are integral.
func (r *PriceResolver) isVATRate(g grid.Grid, headerRow int, cand PriceCandidate) bool {
	if cand.MatchesNet || cand.MatchesGross {
		return false
	}

	values := sampleNumbers(g, cand.Index, headerRow+1, r.sampleRows)
	if len(values) == 0 {
		return false
	}

	integral := 0
	distinct := make(map[float64]bool, len(values))
	for _, v := range values {
		if v < 0 || v > 100 {
			return false
		}
		if v == float64(int64(v)) {
			integral++
		}
		distinct[v] = true
	}

	if cand.MatchesVAT {
		return true
	}
	if float64(integral)/float64(len(values)) < 0.8 {
		return false
	}
	return float64(len(distinct))/float64(len(values)) <= 0.5
}

// =============================================================================
// RULE 3: NET/GROSS PAIRING BY VALUE RATIO
// =============================================================================

// netByRatio looks for exactly one candidate whose values are consistently
// smaller than another candidate's by the factor 1+vat/100, taking the VAT
// rate row-by-row from a detected rate column. The comparison uses a
// relative tolerance because exports round independently per column.
func (r *PriceResolver) netByRatio(g grid.Grid, headerRow int, prices, vats []PriceCandidate) (int, bool) {
	winners := make(map[int]bool)

	for _, low := range prices {
		for _, high := range prices {
			if low.Index == high.Index {
				continue
			}
			for _, vat := range vats {
				if r.pairMatches(g, headerRow, low.Index, high.Index, vat.Index) {
					winners[low.Index] = true
				}
			}
		}
	}

	if len(winners) != 1 {
		return 0, false
	}
	for idx := range winners {
		return idx, true
	}
	return 0, false
}

// pairMatches tests gross ~= net * (1 + vat/100) row by row. At least 80% of
// the comparable rows must agree, and there must be at least one.
func (r *PriceResolver) pairMatches(g grid.Grid, headerRow, netCol, grossCol, vatCol int) bool {
	compared := 0
	matched := 0

	for row := headerRow + 1; row < g.RowCount() && compared < r.sampleRows; row++ {
		net, okN := grid.ParseNumber(g.Cell(row, netCol))
		gross, okG := grid.ParseNumber(g.Cell(row, grossCol))
		vat, okV := grid.ParseNumber(g.Cell(row, vatCol))
		if !okN || !okG || !okV || net <= 0 {
			continue
		}
		compared++

		expected := net * (1 + vat/100)
		diff := gross - expected
		if diff < 0 {
			diff = -diff
		}
		if diff <= r.tolerance*expected {
			matched++
		}
	}

	if compared == 0 {
		return false
	}
	return float64(matched)/float64(compared) >= 0.8
}

// sampleNumbers collects up to limit parsed numeric values of one column.
func sampleNumbers(g grid.Grid, col, startRow, limit int) []float64 {
	var values []float64
	for row := startRow; row < g.RowCount(); row++ {
		v := g.Cell(row, col)
		if v == "" {
			continue
		}
		if f, ok := grid.ParseNumber(v); ok {
			values = append(values, f)
			if len(values) >= limit {
				break
			}
		}
	}
	return values
}
