// =============================================================================
// Invoice Combiner - File Manager Utility
// =============================================================================
//
// File management around the combine pipeline:
//   - Discovery of invoice files in the input directory
//   - Archival of successfully processed inputs
//   - Error log generation for failed files
//
// ARCHIVAL STRATEGY:
//   - Inputs are moved to the archive directory only after the whole run
//     succeeded for them; failed files stay where the operator put them.
//   - Error logs carry a run UUID in their name so successive runs never
//     clobber each other.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/invoice-combiner/internal/normalize"
)

// InputExtensions are the file extensions considered invoice exports.
var InputExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm", ".xls"}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles returns the invoice files directly inside dir, sorted
// by name so that batch order is stable across runs.
//
// PARAMETERS:
//   - dir: The input directory.
//
// RETURNS:
//   - Sorted file paths with a recognized extension.
//   - An error if the directory cannot be read.
func DiscoverInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, known := range InputExtensions {
			if ext == known {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// ARCHIVAL
// =============================================================================

// ArchiveFile moves a processed input file into the archive directory,
// creating it if needed. A name collision gets a timestamp suffix rather
// than overwriting the earlier archive.
func ArchiveFile(path, archiveDir string) error {
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	target := filepath.Join(archiveDir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(target)
		base := strings.TrimSuffix(filepath.Base(path), ext)
		target = filepath.Join(archiveDir, fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext))
	}

	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("failed to archive %s: %w", filepath.Base(path), err)
	}
	return nil
}

// =============================================================================
// ERROR LOG
// =============================================================================

// WriteErrorLog writes the failure reports of one run to a log file and
// returns its path. The file name embeds the run UUID.
//
// PARAMETERS:
//   - dir: The error log directory.
//   - runID: The run UUID (generated per combine invocation).
//   - failures: The failure reports to record.
//
// RETURNS:
//   - The path of the written log.
//   - An error if the log cannot be written.
func WriteErrorLog(dir string, runID uuid.UUID, failures []normalize.FailureReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create error log directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Invoice Combiner error log\n")
	fmt.Fprintf(&b, "Run:  %s\n", runID)
	fmt.Fprintf(&b, "Time: %s\n\n", time.Now().Format(time.RFC3339))
	for _, f := range failures {
		fmt.Fprintf(&b, "%s [%s] %s\n", f.FileName, f.Stage, f.Reason)
	}

	path := filepath.Join(dir, fmt.Sprintf("errors_%s.log", runID))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}
	return path, nil
}
