// =============================================================================
// Invoice Combiner - Batch Merger
// =============================================================================
//
// The merger runs the normalizer over every input file and concatenates the
// successful canonical tables in input order, collecting failures into a
// report. Files are independent units of work with no shared mutable state,
// so they are normalized concurrently under a bounded worker pool - but the
// output order is always the input order, never completion order.
//
// GUARANTEES:
//   - The merge always returns an Output, even when every file fails.
//   - A failed file contributes zero rows and exactly one failure report.
//   - Output row count = sum over successful files of (data rows - skipped).
//
// =============================================================================

package merge

import (
	"sync"

	"github.com/ginjaninja78/invoice-combiner/internal/grid"
	"github.com/ginjaninja78/invoice-combiner/internal/normalize"
)

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// FileStat summarizes one file's contribution for the run report.
type FileStat struct {
	FileName string
	Rows     int
	Skipped  int
	Failed   bool
}

// Output is the result of one merge run. Immutable once returned.
type Output struct {
	// Rows is the canonical table: every successful file's rows, in file
	// input order, each file's internal order preserved.
	Rows []normalize.CanonicalRow

	// Failures lists every file that contributed nothing, with the stage
	// and reason.
	Failures []normalize.FailureReport

	// Stats holds one entry per input file, in input order.
	Stats []FileStat
}

// =============================================================================
// MERGER
// =============================================================================

// Merger combines a batch of decoded files into one canonical table.
type Merger struct {
	normalizer     *normalize.Normalizer
	maxConcurrency int
}

// New creates a merger. maxConcurrency bounds the number of files
// normalized in parallel; 1 means sequential.
func New(normalizer *normalize.Normalizer, maxConcurrency int) *Merger {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Merger{
		normalizer:     normalizer,
		maxConcurrency: maxConcurrency,
	}
}

// Merge normalizes every source and concatenates the results.
//
// PARAMETERS:
//   - sources: The decoded input files, in the order the operator gave them.
//
// RETURNS:
//   - The merged output. Never nil; failures are inside, not returned.
func (m *Merger) Merge(sources []*grid.Source) *Output {
	results := make([]normalize.Result, len(sources))

	// Bounded fan-out; results land at their input index so the later
	// concatenation is order-preserving regardless of completion order.
	var wg sync.WaitGroup
	sem := make(chan struct{}, m.maxConcurrency)

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src *grid.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = m.normalizer.Normalize(src)
		}(i, src)
	}
	wg.Wait()

	output := &Output{}
	for _, res := range results {
		stat := FileStat{FileName: res.FileName}
		if res.Succeeded() {
			output.Rows = append(output.Rows, res.Rows...)
			stat.Rows = len(res.Rows)
			stat.Skipped = res.SkippedRows
		} else {
			output.Failures = append(output.Failures, *res.Failure)
			stat.Failed = true
		}
		output.Stats = append(output.Stats, stat)
	}

	return output
}
