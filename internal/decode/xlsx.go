// =============================================================================
// Invoice Combiner - XLSX Decoder
// =============================================================================
//
// Decodes Excel workbooks via excelize. Only the first visible sheet is
// read: every vendor export seen so far puts the invoice table on the first
// sheet and uses any further sheets for totals or legal boilerplate, which
// the schema-inference engine must never see as data.
//
// =============================================================================

package decode

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoice-combiner/internal/grid"
)

// XLSX decodes an Excel workbook into a grid source.
//
// PARAMETERS:
//   - path: The path to the .xlsx (or .xlsm) file.
//
// RETURNS:
//   - A grid.Source with format tag FormatXLSX.
//   - An error if the workbook cannot be opened or has no usable sheet.
func XLSX(path string) (*grid.Source, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := firstVisibleSheet(f)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no visible sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	return &grid.Source{
		FileName: filepath.Base(path),
		Format:   grid.FormatXLSX,
		Grid:     grid.Grid(rows),
	}, nil
}

// firstVisibleSheet returns the name of the first visible sheet, falling
// back to the first sheet of any kind.
func firstVisibleSheet(f *excelize.File) string {
	for _, name := range f.GetSheetList() {
		visible, err := f.GetSheetVisible(name)
		if err == nil && visible {
			return name
		}
	}
	return f.GetSheetName(0)
}
