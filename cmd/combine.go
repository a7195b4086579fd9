// =============================================================================
// Invoice Combiner - Combine Command
// =============================================================================
//
// This file defines the 'combine' command, the main pipeline. It discovers
// invoice files, decodes them into grids, runs the schema-inference engine
// over each, and writes one canonical table.
//
// COMMAND USAGE:
//   invoice-combiner combine [flags]
//
// FLAGS:
//   --file      : Combine only the named file(s) instead of scanning input_dir
//   --output    : Override the configured output path
//   --dry-run   : Run the full pipeline but write nothing
//
// PROCESSING PIPELINE:
//   1. Load configuration and alias tables
//   2. Discover input files (CSV/XLSX)
//   3. Decode each file into a raw grid
//   4. Normalize all grids concurrently and merge in input order
//   5. Write the canonical table (CSV or XLSX by extension)
//   6. Append rows to the SQLite archive, if configured
//   7. Write the error log and archive processed inputs
//
// Failures stay per-file throughout: a malformed export is one line in the
// report, never the end of the batch.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-combiner/internal/config"
	"github.com/ginjaninja78/invoice-combiner/internal/decode"
	"github.com/ginjaninja78/invoice-combiner/internal/grid"
	"github.com/ginjaninja78/invoice-combiner/internal/merge"
	"github.com/ginjaninja78/invoice-combiner/internal/normalize"
	"github.com/ginjaninja78/invoice-combiner/internal/output"
	"github.com/ginjaninja78/invoice-combiner/internal/store"
	"github.com/ginjaninja78/invoice-combiner/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// combineFiles lists explicit input files, bypassing directory discovery.
var combineFiles []string

// outputOverride overrides the configured output path.
var outputOverride string

// dryRun runs the pipeline without writing any output.
var dryRun bool

// =============================================================================
// COMBINE COMMAND DEFINITION
// =============================================================================

// combineCmd represents the 'combine' command.
var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine invoice exports into one canonical table",
	Long: `The combine command scans the input directory for CSV and XLSX invoice
exports, infers each file's schema (header row, column roles, net price),
and merges all files into a single canonical table.

Files are processed independently: a file whose header cannot be found,
whose mandatory columns cannot be classified, or whose price columns are
ambiguous contributes nothing and is listed in the failure report. The
batch always completes.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCombine()
	},
}

// init registers the combine command and its flags.
func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringArrayVar(
		&combineFiles,
		"file",
		nil,
		"Combine only the named file (repeatable); skips input directory discovery",
	)

	combineCmd.Flags().StringVarP(
		&outputOverride,
		"output",
		"o",
		"",
		"Output file path (.csv or .xlsx); overrides the configured output_file",
	)

	combineCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run the full pipeline without writing output, logs, or database rows",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runCombine orchestrates one combine run.
func runCombine() error {
	startTime := time.Now()
	runID := uuid.New()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	aliases, err := config.LoadAliases(mainConfig.AliasFile)
	if err != nil {
		return fmt.Errorf("failed to load alias tables: %w", err)
	}

	outputPath := mainConfig.OutputFile
	if outputOverride != "" {
		outputPath = outputOverride
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles := combineFiles
	if len(inputFiles) == 0 {
		inputFiles, err = utils.DiscoverInputFiles(mainConfig.InputDir)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No invoice files found in the input directory.")
		return nil
	}

	fmt.Printf("=== Invoice Combiner ===\n")
	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 3: DECODE FILES
	// =========================================================================
	// Decoding failures become failure reports of their own stage; the core
	// pipeline only ever sees successfully decoded grids.

	var sources []*grid.Source
	var decodeFailures []normalize.FailureReport

	for _, path := range inputFiles {
		src, err := decode.File(path)
		if err != nil {
			decodeFailures = append(decodeFailures, normalize.FailureReport{
				FileName: filepath.Base(path),
				Stage:    normalize.StageDecode,
				Reason:   err.Error(),
			})
			continue
		}
		if verbose {
			fmt.Printf("  decoded %s: %d rows, %d columns\n", src.FileName, src.Grid.RowCount(), src.Grid.ColumnCount())
		}
		sources = append(sources, src)
	}

	// =========================================================================
	// STEP 4: NORMALIZE AND MERGE
	// =========================================================================

	normalizer := normalize.New(aliases, mainConfig.Heuristics)
	if verbose {
		normalizer.SetLogger(&normalize.VerboseLogger{})
	}
	merger := merge.New(normalizer, mainConfig.MaxConcurrency)
	merged := merger.Merge(sources)

	failures := append(decodeFailures, merged.Failures...)

	for _, stat := range merged.Stats {
		if stat.Failed {
			continue
		}
		if stat.Skipped > 0 {
			fmt.Printf("  ✓ %s: %d row(s), %d skipped\n", stat.FileName, stat.Rows, stat.Skipped)
		} else {
			fmt.Printf("  ✓ %s: %d row(s)\n", stat.FileName, stat.Rows)
		}
	}
	for _, f := range failures {
		fmt.Printf("  ✗ %s [%s]: %s\n", f.FileName, f.Stage, f.Reason)
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	if !dryRun {
		if err := output.Write(outputPath, merged.Rows); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Wrote %d row(s) to %s\n", len(merged.Rows), outputPath)
	}

	// =========================================================================
	// STEP 6: PERSIST TO THE ARCHIVE DATABASE
	// =========================================================================

	if !dryRun && mainConfig.DatabasePath != "" && len(merged.Rows) > 0 {
		if err := persistRows(mainConfig.DatabasePath, merged); err != nil {
			// Persistence is a convenience on top of the run, not the run.
			fmt.Printf("Warning: failed to update invoice archive: %v\n", err)
		}
	}

	// =========================================================================
	// STEP 7: ERROR LOG AND INPUT ARCHIVAL
	// =========================================================================

	if !dryRun && len(failures) > 0 {
		logPath, err := utils.WriteErrorLog(mainConfig.ErrorLogDir, runID, failures)
		if err != nil {
			fmt.Printf("Warning: failed to write error log: %v\n", err)
		} else {
			fmt.Printf("Failures logged to %s\n", logPath)
		}
	}

	if !dryRun && mainConfig.ArchiveDir != "" {
		archiveProcessed(inputFiles, merged, mainConfig.ArchiveDir)
	}

	// =========================================================================
	// SUMMARY
	// =========================================================================

	fmt.Printf("\n=== Processing Complete ===\n")
	fmt.Printf("Total files:     %d\n", len(inputFiles))
	fmt.Printf("Successful:      %d\n", len(inputFiles)-len(failures))
	fmt.Printf("Failed:          %d\n", len(failures))
	fmt.Printf("Combined rows:   %d\n", len(merged.Rows))
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime))

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// persistRows appends each successful file's rows to the SQLite archive and
// prints the inserted/duplicate tallies.
func persistRows(dbPath string, merged *merge.Output) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Rows are grouped back per file so the archive records provenance.
	offset := 0
	for _, stat := range merged.Stats {
		if stat.Failed || stat.Rows == 0 {
			continue
		}
		summary, err := db.InsertRows(stat.FileName, merged.Rows[offset:offset+stat.Rows])
		if err != nil {
			return err
		}
		offset += stat.Rows
		if verbose {
			fmt.Printf("  archived %s: %d inserted, %d duplicate session(s) skipped\n",
				stat.FileName, summary.Inserted, summary.Skipped)
		}
	}
	return nil
}

// archiveProcessed moves the inputs of successful files to the archive
// directory. Failed files stay put so the operator can fix and retry them.
func archiveProcessed(inputFiles []string, merged *merge.Output, archiveDir string) {
	succeeded := make(map[string]bool)
	for _, stat := range merged.Stats {
		if !stat.Failed {
			succeeded[stat.FileName] = true
		}
	}

	for _, path := range inputFiles {
		if !succeeded[filepath.Base(path)] {
			continue
		}
		if err := utils.ArchiveFile(path, archiveDir); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
	}
}
