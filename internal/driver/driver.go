// Package driver runs the move gatherer over .mir fixtures: it loads files,
// parses and validates their bodies, gathers move data per body and collects
// the findings into diagnostic bags.
package driver

import (
	"errors"

	"moveflow/internal/diag"
	"moveflow/internal/mir"
	"moveflow/internal/moves"
	"moveflow/internal/observ"
	"moveflow/internal/source"
	"moveflow/internal/types"
)

// FixtureExt is the extension of files picked up from directories.
const FixtureExt = ".mir"

// Options configures Analyze.
type Options struct {
	// MaxDiagnostics caps each file's bag.
	MaxDiagnostics int
	// Jobs limits the number of files processed at once. Zero or less uses
	// GOMAXPROCS.
	Jobs int
	// WarningsAsErrors escalates warnings in every bag.
	WarningsAsErrors bool
	// Timings appends an ObsTimings diagnostic to each file's bag.
	Timings bool
	// Cache, when set, stores gathered snapshots and reuses them for
	// unchanged files.
	Cache *DiskCache
	// Progress receives per-file events.
	Progress ProgressSink
}

// BodyResult is the outcome for one function body.
type BodyResult struct {
	Name string
	Body *mir.Body
	// Data is nil when the body failed validation or gathering.
	Data   *moves.MoveData
	Errors []moves.PlaceError
	// Invalid is set when mir validation rejected the body.
	Invalid bool
	// Cached is set when Data came from the disk cache.
	Cached bool
	// Err holds the wrapped *moves.BugError of a body the gatherer refused.
	Err error
}

// FileResult is the outcome for one fixture.
type FileResult struct {
	Path   string
	FileID source.FileID
	Module *mir.Module
	Types  *types.Interner
	Bodies []BodyResult
	Bag    *diag.Bag
	Timing *observ.Report
	// Loaded is false when the file could not be read.
	Loaded bool
}

// Body returns the result for the named body.
func (r *FileResult) Body(name string) *BodyResult {
	for i := range r.Bodies {
		if r.Bodies[i].Name == name {
			return &r.Bodies[i]
		}
	}
	return nil
}

// Result aggregates a run.
type Result struct {
	Files   *source.FileSet
	Results []FileResult
	Timing  *observ.Report
}

// HasErrors reports whether any file produced an error diagnostic or a
// gatherer failure.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	for i := range r.Results {
		if r.Results[i].Bag != nil && r.Results[i].Bag.HasErrors() {
			return true
		}
	}
	return r.Err() != nil
}

// Err joins the gatherer failures of all bodies.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := range r.Results {
		for j := range r.Results[i].Bodies {
			if err := r.Results[i].Bodies[j].Err; err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Diagnostics merges every file's bag into one sorted, deduplicated bag.
func (r *Result) Diagnostics() *diag.Bag {
	total := 0
	for i := range r.Results {
		if r.Results[i].Bag != nil {
			total += r.Results[i].Bag.Len()
		}
	}
	out := diag.NewBag(total)
	for i := range r.Results {
		out.Merge(r.Results[i].Bag)
	}
	out.Sort()
	out.Dedup()
	return out
}
