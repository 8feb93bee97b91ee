package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"moveflow/internal/diag"
	"moveflow/internal/observ"
	"moveflow/internal/source"
	"moveflow/internal/trace"
)

// ListFixtures возвращает отсортированный список всех *.mir файлов в директории
func ListFixtures(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, FixtureExt) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// Resolve expands target into the fixture list: a file stands for itself, a
// directory for every fixture below it. The second result is the base
// directory for relative paths.
func Resolve(target string) (files []string, baseDir string, err error) {
	st, err := os.Stat(target)
	if err != nil {
		return nil, "", err
	}
	if !st.IsDir() {
		return []string{target}, filepath.Dir(target), nil
	}
	files, err = ListFixtures(target)
	if err != nil {
		return nil, "", err
	}
	return files, target, nil
}

// Analyze processes target (a fixture or a directory of fixtures). Files are
// analyzed in parallel; each file gets its own type interner, so nothing
// mutable is shared between workers. Results keep the input order.
func Analyze(ctx context.Context, target string, opts Options) (*Result, error) {
	files, baseDir, err := Resolve(target)
	if err != nil {
		return nil, err
	}
	return AnalyzeFiles(ctx, baseDir, files, opts)
}

// AnalyzeFiles is Analyze over an explicit file list.
func AnalyzeFiles(ctx context.Context, baseDir string, files []string, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	runSpan := trace.Begin(tracer, trace.ScopeDriver, "analyze", trace.ParentID(ctx)).
		WithExtra("files", fmt.Sprint(len(files)))
	defer runSpan.End("")
	ctx = trace.WithSpan(ctx, runSpan)

	timer := observ.NewTimer()
	fileSet := source.NewFileSetWithBase(baseDir)
	result := &Result{Files: fileSet}

	if len(files) == 0 {
		report := timer.Report()
		result.Timing = &report
		return result, nil
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// Предзагрузка: FileSet не потокобезопасен, поэтому все файлы читаются до старта воркеров
	loadIdx := timer.Begin("load")
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}
	timer.End(loadIdx, fmt.Sprintf("%d files", len(fileIDs)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	analyzeIdx := timer.Begin("analyze")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, hadError := loadErrors[path]; hadError {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(&diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
					Primary:  source.Span{},
				})
				results[i] = FileResult{Path: path, Bag: bag}
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}

			results[i] = analyzeFile(gctx, fileSet, fileIDs[path], path, opts)
			return nil
		})
	}

	err := g.Wait()
	timer.End(analyzeIdx, fmt.Sprintf("jobs=%d", min(jobs, len(files))))
	result.Results = results
	report := timer.Report()
	result.Timing = &report
	if err != nil {
		return result, err
	}
	return result, nil
}
