// =============================================================================
// Invoice Combiner - CSV Decoder
// =============================================================================
//
// Billing systems disagree about everything, including how to write a CSV
// file. This decoder copes with the variation seen in real exports:
//   - Different delimiters (comma, semicolon, tab, pipe)
//   - Different encodings (UTF-8, Windows-1252, ISO-8859-1)
//   - Quoted fields that do not follow strict CSV rules
//   - Ragged rows with inconsistent column counts
//
// Encoding and delimiter are sniffed from the leading bytes of the file, so
// no per-vendor configuration is needed to get a file decoded. Wrong guesses
// degrade to a classification failure downstream, never to a crash.
//
// =============================================================================

package decode

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/invoice-combiner/internal/grid"
)

// sniffLen is how many leading bytes are examined when sniffing the
// encoding and delimiter.
const sniffLen = 4096

// CSV decodes a CSV file into a grid source.
//
// PARAMETERS:
//   - path: The path to the CSV file.
//
// RETURNS:
//   - A grid.Source with format tag FormatCSV.
//   - An error if the file cannot be read or parsed.
func CSV(path string) (*grid.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data, err = toUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode character encoding: %w", err)
	}

	delimiter := sniffDelimiter(data)

	reader := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	reader.Comma = delimiter

	// Vendor CSVs are sloppy: allow ragged rows and loose quoting.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return &grid.Source{
		FileName: filepath.Base(path),
		Format:   grid.FormatCSV,
		Grid:     grid.Grid(rows),
	}, nil
}

// =============================================================================
// ENCODING SNIFFING
// =============================================================================

// toUTF8 converts the raw bytes to UTF-8. Valid UTF-8 passes through
// untouched (a leading BOM is stripped); otherwise Windows-1252 is tried
// first and ISO-8859-1 last, which matches the encodings European billing
// exports actually use.
func toUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(data) {
		return data, nil
	}

	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		decoded, _, err := transform.Bytes(cm.NewDecoder(), data)
		if err == nil && utf8.Valid(decoded) {
			return decoded, nil
		}
	}

	return nil, fmt.Errorf("content is not valid UTF-8, Windows-1252, or ISO-8859-1")
}

// =============================================================================
// DELIMITER SNIFFING
// =============================================================================

// sniffDelimiter picks the separator that occurs most often, and on every
// sampled line, among the usual candidates. Comma wins ties since it is the
// overwhelming default.
func sniffDelimiter(data []byte) rune {
	sample := data
	if len(sample) > sniffLen {
		sample = sample[:sniffLen]
	}

	lines := strings.Split(string(sample), "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}

	best := ','
	bestCount := 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		total := 0
		onEvery := true
		seen := 0
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			seen++
			n := strings.Count(line, string(candidate))
			if n == 0 {
				onEvery = false
			}
			total += n
		}
		if seen == 0 || !onEvery {
			continue
		}
		if total > bestCount {
			best = candidate
			bestCount = total
		}
	}

	return best
}
