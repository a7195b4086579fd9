// =============================================================================
// Invoice Combiner - Canonical Table Serialization
// =============================================================================
//
// Writes the merged canonical table to disk. The output is the fixed
// four-column shape every input was normalized into, serialized as CSV or
// as an XLSX workbook depending on the output file extension. Column order
// is part of the contract: evse_id, session_id, currency, price.
//
// =============================================================================

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoice-combiner/internal/normalize"
)

// Header is the canonical column header, in output order.
var Header = []string{"evse_id", "session_id", "currency", "price"}

// Write serializes the canonical table to the given path, dispatching on
// the extension (.csv or .xlsx). Parent directories are created as needed.
//
// PARAMETERS:
//   - path: The output file path.
//   - rows: The merged canonical rows, already in final order.
//
// RETURNS:
//   - An error if the extension is unsupported or the file cannot be written.
func Write(path string, rows []normalize.CanonicalRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, rows)
	case ".xlsx":
		return writeXLSX(path, rows)
	default:
		return fmt.Errorf("unsupported output format: %s", filepath.Ext(path))
	}
}

// =============================================================================
// CSV OUTPUT
// =============================================================================

func writeCSV(path string, rows []normalize.CanonicalRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.EquipmentID,
			row.SessionID,
			row.Currency,
			formatPrice(row.Price),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// =============================================================================
// XLSX OUTPUT
// =============================================================================

func writeXLSX(path string, rows []normalize.CanonicalRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		values := []interface{}{row.EquipmentID, row.SessionID, row.Currency, row.Price}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// formatPrice renders a price without trailing-zero noise. Prices are
// per-unit net amounts and may legitimately carry more than two decimals.
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
