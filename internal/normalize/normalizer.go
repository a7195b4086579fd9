// =============================================================================
// Invoice Combiner - File Normalizer
// =============================================================================
//
// The normalizer runs the three detection stages over one decoded file and
// projects its data rows into the canonical schema. It is a straight-line
// state machine:
//
//   HeaderPending -> ColumnsClassified -> PriceResolved -> Done
//
// with Failed(stage, reason) reachable from any state. Failures are values,
// not panics: a malformed file contributes nothing and says why, it never
// crashes the batch or silently misclassifies.
//
// =============================================================================

package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/invoice-combiner/internal/config"
	"github.com/ginjaninja78/invoice-combiner/internal/grid"
	"github.com/ginjaninja78/invoice-combiner/internal/schema"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Stage identifies the pipeline stage at which a file failed.
type Stage string

const (
	// StageDecode is used by callers for files that never produced a grid.
	// The normalizer itself starts after decoding.
	StageDecode Stage = "decode"

	StageHeader         Stage = "header"
	StageClassification Stage = "classification"
	StagePrice          Stage = "price"
)

// CanonicalRow is one reconciled invoice line. Price is always the net
// (pre-VAT) amount; the resolver guarantees it or fails.
type CanonicalRow struct {
	EquipmentID string
	SessionID   string
	Currency    string
	Price       float64
}

// FailureReport describes why a file contributed no rows, in words an
// operator can act on.
type FailureReport struct {
	FileName string
	Stage    Stage
	Reason   string
}

// Result is the outcome of normalizing one file: either rows (plus a tally
// of data rows skipped during projection) or a failure, never both.
type Result struct {
	FileName string
	Rows     []CanonicalRow

	// SkippedRows counts data rows dropped because a mandatory field was
	// empty or the price did not parse. Skipped rows are not failures.
	SkippedRows int

	Failure *FailureReport
}

// Succeeded reports whether the file produced a canonical table.
func (r Result) Succeeded() bool {
	return r.Failure == nil
}

// =============================================================================
// ERROR TYPE
// =============================================================================

// MissingFieldError reports that classification could not place one of the
// mandatory roles.
type MissingFieldError struct {
	Role schema.Role
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("no column found for mandatory field %q", e.Role)
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer turns one decoded file into a canonical row sequence.
type Normalizer struct {
	detector   *schema.HeaderDetector
	classifier *schema.Classifier
	resolver   *schema.PriceResolver

	// logger is used for logging (can be replaced with a proper logger).
	logger Logger
}

// Logger is an interface for logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// New creates a normalizer from the alias tables and heuristic configuration.
func New(aliases *config.AliasConfig, h config.Heuristics) *Normalizer {
	return &Normalizer{
		detector:   schema.NewHeaderDetector(h),
		classifier: schema.NewClassifier(aliases, h),
		resolver:   schema.NewPriceResolver(h),
		logger:     &defaultLogger{}, // Use default logger
	}
}

// SetLogger replaces the logger. A VerboseLogger makes the per-stage
// decisions visible.
func (n *Normalizer) SetLogger(l Logger) {
	n.logger = l
}

// mandatoryRoles are the fields without which a canonical row is
// meaningless. Price is handled by the resolver, which has its own failure.
var mandatoryRoles = []schema.Role{
	schema.RoleEquipmentID,
	schema.RoleSessionID,
	schema.RoleCurrency,
}

// Normalize runs the full pipeline over one file. It is deterministic:
// normalizing the same grid twice yields identical results.
func (n *Normalizer) Normalize(src *grid.Source) Result {
	result := Result{FileName: src.FileName}

	// Stage 1: locate the header row.
	header, err := n.detector.Detect(src.Grid)
	if err != nil {
		result.Failure = &FailureReport{
			FileName: src.FileName,
			Stage:    StageHeader,
			Reason:   err.Error(),
		}
		return result
	}
	n.logger.Debug("%s: header row %d (score %.2f)", src.FileName, header.Row, header.Score)

	// Stage 2: classify columns. The classifier never fails, but missing
	// mandatory roles end the pipeline here.
	mapping := n.classifier.Classify(src.Grid, header.Row)
	for _, role := range mandatoryRoles {
		if _, ok := mapping.Column(role); !ok {
			err := &MissingFieldError{Role: role}
			result.Failure = &FailureReport{
				FileName: src.FileName,
				Stage:    StageClassification,
				Reason:   err.Error(),
			}
			return result
		}
	}

	// Stage 3: resolve the net price among the monetary candidates.
	priceCol, err := n.resolver.Resolve(src.Grid, header.Row, mapping.PriceCandidates)
	if err != nil {
		var ambiguous *schema.AmbiguousPriceError
		reason := err.Error()
		if errors.As(err, &ambiguous) {
			reason = ambiguous.Error()
		}
		result.Failure = &FailureReport{
			FileName: src.FileName,
			Stage:    StagePrice,
			Reason:   reason,
		}
		return result
	}
	mapping.Assign(schema.RolePrice, priceCol)
	n.logger.Debug("%s: net price column %d", src.FileName, priceCol)

	// Done: project the data rows.
	result.Rows, result.SkippedRows = n.project(src.Grid, mapping)
	if result.SkippedRows > 0 {
		n.logger.Warn("%s: skipped %d defective row(s)", src.FileName, result.SkippedRows)
	}
	return result
}

// project maps every data row through the finalized mapping. Rows with an
// empty mandatory field or an unparseable price are skipped and tallied;
// entirely blank rows (separator and padding lines) are skipped silently.
func (n *Normalizer) project(g grid.Grid, mapping *schema.Mapping) ([]CanonicalRow, int) {
	equipCol, _ := mapping.Column(schema.RoleEquipmentID)
	sessionCol, _ := mapping.Column(schema.RoleSessionID)
	currencyCol, _ := mapping.Column(schema.RoleCurrency)
	priceCol, _ := mapping.Column(schema.RolePrice)

	var rows []CanonicalRow
	skipped := 0

	for row := mapping.HeaderRow + 1; row < g.RowCount(); row++ {
		if g.IsRowEmpty(row) {
			continue
		}

		equip := g.Cell(row, equipCol)
		session := g.Cell(row, sessionCol)
		currency := normalizeCurrency(g.Cell(row, currencyCol))
		price, priceOK := grid.ParseNumber(g.Cell(row, priceCol))

		if equip == "" || session == "" || currency == "" || !priceOK {
			skipped++
			continue
		}

		rows = append(rows, CanonicalRow{
			EquipmentID: equip,
			SessionID:   session,
			Currency:    currency,
			Price:       price,
		})
	}

	return rows, skipped
}

// =============================================================================
// CURRENCY NORMALIZATION
// =============================================================================

// currencySymbolCodes maps the symbols vendors put in currency cells to
// their ISO-4217 codes.
var currencySymbolCodes = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
}

// normalizeCurrency uppercases a currency cell and converts recognized
// symbols to ISO codes. Unknown values pass through uppercased; the merge
// output is a reconciliation aid, not a validator.
func normalizeCurrency(value string) string {
	v := strings.TrimSpace(value)
	if code, ok := currencySymbolCodes[v]; ok {
		return code
	}
	return strings.ToUpper(v)
}

// =============================================================================
// DEFAULT LOGGER
// =============================================================================

// defaultLogger is a simple logger that prints to stdout. Debug output is
// suppressed; swap in a VerboseLogger to see it.
type defaultLogger struct{}

func (l *defaultLogger) Debug(msg string, args ...interface{}) {}

func (l *defaultLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (l *defaultLogger) Warn(msg string, args ...interface{}) {
	fmt.Printf("[WARN] "+msg+"\n", args...)
}

func (l *defaultLogger) Error(msg string, args ...interface{}) {
	fmt.Printf("[ERROR] "+msg+"\n", args...)
}

// VerboseLogger prints every level including debug.
type VerboseLogger struct{}

func (l *VerboseLogger) Debug(msg string, args ...interface{}) {
	fmt.Printf("[DEBUG] "+msg+"\n", args...)
}

func (l *VerboseLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (l *VerboseLogger) Warn(msg string, args ...interface{}) {
	fmt.Printf("[WARN] "+msg+"\n", args...)
}

func (l *VerboseLogger) Error(msg string, args ...interface{}) {
	fmt.Printf("[ERROR] "+msg+"\n", args...)
}
