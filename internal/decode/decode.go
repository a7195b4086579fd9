// =============================================================================
// Invoice Combiner - File Decoding
// =============================================================================
//
// This package turns raw invoice files into grid.Source values: a 2-D grid
// of untyped string cells plus the file's identity. It is deliberately dumb
// plumbing - no header detection, no column interpretation - so the
// schema-inference engine sees every format through the same shape.
//
// SUPPORTED FORMATS:
//   - CSV  : any delimiter/encoding a billing system is likely to emit
//            (see csv.go for the sniffing rules)
//   - XLSX : first visible sheet, via excelize (also .xlsm)
//
// Legacy binary .xls workbooks are not decodable here; they are reported
// with a hint to re-export as .xlsx.
//
// =============================================================================

package decode

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/invoice-combiner/internal/grid"
)

// File decodes a single invoice file into a grid source, dispatching on the
// file extension.
//
// PARAMETERS:
//   - path: The path to the input file.
//
// RETURNS:
//   - A grid.Source holding the decoded cells.
//   - An error if the format is unsupported or the bytes cannot be decoded.
func File(path string) (*grid.Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return CSV(path)
	case ".xlsx", ".xlsm":
		return XLSX(path)
	case ".xls":
		return nil, fmt.Errorf("legacy .xls workbooks are not supported, re-export %s as .xlsx or .csv", filepath.Base(path))
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Base(path))
	}
}
