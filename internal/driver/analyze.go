package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"moveflow/internal/diag"
	"moveflow/internal/mir"
	"moveflow/internal/mirtext"
	"moveflow/internal/moves"
	"moveflow/internal/observ"
	"moveflow/internal/source"
	"moveflow/internal/trace"
	"moveflow/internal/types"
)

// analyzeFile runs parse, validate, gather and report for one loaded file.
// Bodies of a file with syntax errors are kept in the result but neither
// validated nor gathered.
func analyzeFile(ctx context.Context, fs *source.FileSet, fid source.FileID, path string, opts Options) FileResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file", trace.ParentID(ctx)).WithExtra("path", path)
	started := time.Now()

	bag := diag.NewBag(opts.MaxDiagnostics)
	// парсер при восстановлении иногда повторяет одну и ту же ошибку
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	timer := observ.NewTimer()
	in := types.NewInterner()

	emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusWorking})
	idx := timer.Begin("parse")
	parsed := mirtext.ParseFile(fs, fid, in, mirtext.Options{Reporter: reporter})
	timer.End(idx, fmt.Sprintf("%d bodies", len(parsed.Module.Bodies)))

	res := FileResult{
		Path:   path,
		FileID: fid,
		Module: parsed.Module,
		Types:  in,
		Bag:    bag,
		Loaded: true,
	}
	res.Bodies = make([]BodyResult, len(parsed.Module.Bodies))
	for i, body := range parsed.Module.Bodies {
		res.Bodies[i] = BodyResult{Name: body.Name, Body: body}
	}

	if parsed.Errors == 0 {
		typer := mir.NewTyper(in)

		emit(opts.Progress, Event{File: path, Stage: StageValidate, Status: StatusWorking})
		idx = timer.Begin("validate")
		invalid := 0
		for i := range res.Bodies {
			if reportValidation(reporter, res.Bodies[i].Body, typer) {
				res.Bodies[i].Invalid = true
				invalid++
			}
		}
		timer.End(idx, fmt.Sprintf("%d invalid", invalid))

		emit(opts.Progress, Event{File: path, Stage: StageGather, Status: StatusWorking})
		idx = timer.Begin("gather")
		hits := gatherFile(fs.Get(fid), &res, typer, opts.Cache, bag, tracer, span.ID())
		timer.End(idx, fmt.Sprintf("%d cached", hits))

		emit(opts.Progress, Event{File: path, Stage: StageReport, Status: StatusWorking})
		idx = timer.Begin("report")
		for i := range res.Bodies {
			br := &res.Bodies[i]
			if br.Err != nil {
				reportBug(reporter, br)
				continue
			}
			moves.Report(reporter, br.Body, in, br.Errors)
		}
		timer.End(idx, "")
	}

	if opts.WarningsAsErrors {
		bag.EscalateWarnings()
	}
	report := timer.Report()
	res.Timing = &report
	if opts.Timings {
		attachFileTimings(bag, path, report)
	}

	status := StatusDone
	if bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{File: path, Stage: StageReport, Status: status, Elapsed: time.Since(started)})
	span.WithExtra("diagnostics", strconv.Itoa(bag.Len())).End(string(status))
	return res
}

// gatherFile fills in the move data of every valid body, reusing cached
// snapshots where possible. It returns the number of cache hits.
func gatherFile(file *source.File, res *FileResult, typer *mir.Typer, cache *DiskCache, bag *diag.Bag, tracer trace.Tracer, parent uint64) int {
	var (
		key    Digest
		cached map[string]*moves.Snapshot
	)
	if cache != nil {
		key = CacheKey(file.Hash)
		var payload DiskPayload
		ok, err := cache.Get(key, &payload)
		switch {
		case err != nil:
			cacheWarning(bag, "read", err)
		case ok:
			cached = payload.snapshots()
		}
	}

	hits, misses := 0, 0
	for i := range res.Bodies {
		br := &res.Bodies[i]
		if br.Invalid {
			continue
		}
		if snap, ok := cached[br.Name]; ok {
			data, err := snap.MoveData()
			if err == nil {
				br.Data, br.Errors, br.Cached = data, snap.Errors, true
				hits++
				continue
			}
			cacheWarning(bag, "decode", fmt.Errorf("%s: %w", br.Name, err))
		}
		misses++
		br.Data, br.Errors, br.Err = gatherBody(br.Body, typer, tracer, parent)
	}

	if cache != nil && misses > 0 {
		payload := &DiskPayload{Path: file.Path}
		for i := range res.Bodies {
			br := &res.Bodies[i]
			if br.Data == nil {
				continue
			}
			payload.Bodies = append(payload.Bodies, moves.NewSnapshot(br.Name, br.Data, br.Errors))
		}
		if err := cache.Put(key, payload); err != nil {
			cacheWarning(bag, "write", err)
		}
	}
	return hits
}

// gatherBody runs the gatherer and converts its *moves.BugError panic into
// an error. Any other panic is a real crash and keeps propagating.
func gatherBody(body *mir.Body, tcx moves.TypeContext, tracer trace.Tracer, parent uint64) (data *moves.MoveData, errs []moves.PlaceError, err error) {
	span := trace.Begin(tracer, trace.ScopeBody, "gather", parent).WithExtra("body", body.Name)
	defer func() {
		if r := recover(); r != nil {
			bug, ok := r.(*moves.BugError)
			if !ok {
				span.End("panic")
				panic(r)
			}
			data, errs = nil, nil
			err = fmt.Errorf("%s: %w", body.Name, bug)
			span.End("bug")
		}
	}()
	data, errs = moves.GatherMovesWith(body, tcx, moves.GatherOptions{Tracer: tracer, ParentSpan: span.ID()})
	span.WithExtra("moves", strconv.Itoa(len(data.Moves))).
		WithExtra("errors", strconv.Itoa(len(errs))).
		End("")
	return data, errs, nil
}

func reportBug(r diag.Reporter, br *BodyResult) {
	sp := br.Body.Span
	var bug *moves.BugError
	if errors.As(br.Err, &bug) {
		sp = br.Body.SpanAt(bug.Loc)
	}
	diag.ReportError(r, diag.MoveInternalError, sp, br.Err.Error()).
		WithNote(br.Body.Span, fmt.Sprintf("move data for `%s` is unavailable", br.Name)).
		Emit()
}

func cacheWarning(bag *diag.Bag, op string, err error) {
	diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.IOCacheError, source.Span{}, fmt.Sprintf("disk cache %s failed: %v", op, err)).Emit()
}
