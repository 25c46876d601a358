// Package driver loads Python files, runs detection passes over them and
// collects the results, in parallel for directories and optionally backed by
// an on-disk cache.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pytutor/internal/detect"
	"pytutor/internal/diag"
	"pytutor/internal/kb"
	"pytutor/internal/observ"
	"pytutor/internal/source"
	"pytutor/internal/trace"
)

// Options tune a diagnosis run. The zero value is usable.
type Options struct {
	MaxDiagnostics int           // per file; <= 0 means unlimited
	Jobs           int           // parallel files; <= 0 means GOMAXPROCS
	Cache          *DiskCache    // nil disables caching
	Timer          *observ.Timer // nil disables phase timing
	Logger         *zap.SugaredLogger
	// Progress is called after each file of a directory run finishes.
	// Calls may come from several goroutines.
	Progress func(done, total int, res FileResult)
}

func (o *Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	Cached bool
}

// DiagnoseFile loads and diagnoses a single file. A load failure is reported
// as a diagnostic on line 0 rather than returned, so callers print it like any
// other finding.
func DiagnoseFile(ctx context.Context, path string, opts Options) (*source.FileSet, FileResult, error) {
	ctx, span := trace.StartSpan(ctx, trace.ScopeCommand, "diagnose-file")
	defer span.End("")

	fileSet := source.NewFileSetWithBase(filepath.Dir(path))

	stopLoad := opts.Timer.Start("load")
	fileID, err := fileSet.Load(path)
	stopLoad(path)
	if err != nil {
		return fileSet, loadFailure(path, err, opts.MaxDiagnostics), nil
	}

	res := diagnoseLoaded(ctx, fileSet.Get(fileID), opts)
	return fileSet, res, nil
}

// DiagnoseSource diagnoses an in-memory buffer, e.g. stdin. The text is used
// exactly as given.
func DiagnoseSource(ctx context.Context, name, text string, opts Options) (*source.FileSet, FileResult) {
	fileSet := source.NewFileSet()
	fileID := fileSet.AddVirtual(name, []byte(text))
	return fileSet, diagnoseLoaded(ctx, fileSet.Get(fileID), opts)
}

// DiagnoseDir diagnoses every *.py file below dir. Results are sorted by path
// regardless of completion order.
func DiagnoseDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, error) {
	ctx, span := trace.StartSpan(ctx, trace.ScopeCommand, "diagnose-dir")
	defer span.End("")

	files, err := ListPyFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	span.Attr("files", fmt.Sprint(len(files)))

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// Loading stays sequential: FileSet is not safe for concurrent Add.
	stopLoad := opts.Timer.Start("load")
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		id, loadErr := fileSet.Load(path)
		if loadErr != nil {
			loadErrors[i] = loadErr
			continue
		}
		fileIDs[i] = id
	}
	stopLoad(fmt.Sprintf("%d files", len(files)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	stopDetect := opts.Timer.Start("detect")
	results := make([]FileResult, len(files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[i]; failed {
				results[i] = loadFailure(path, loadErr, opts.MaxDiagnostics)
			} else {
				results[i] = diagnoseLoaded(gctx, fileSet.Get(fileIDs[i]), opts)
				results[i].Path = path
			}
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), len(files), results[i])
			}
			return nil
		})
	}
	err = g.Wait()
	stopDetect(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func diagnoseLoaded(ctx context.Context, file *source.File, opts Options) FileResult {
	ctx, span := trace.StartSpan(ctx, trace.ScopeFile, "file:"+file.Path)
	defer span.End("")
	stop := opts.Timer.Start("file")
	defer stop("")

	res := FileResult{
		Path:   file.Path,
		FileID: file.ID,
		Bag:    diag.NewBag(opts.MaxDiagnostics),
	}

	if cached, ok := cacheLookup(opts, file); ok {
		for _, d := range cached {
			res.Bag.Add(d)
		}
		res.Cached = true
		span.Attr("cache", "hit")
		return res
	}

	var all diag.SliceReporter
	detect.DetectBuffer(file.Buffer(), &all)
	for _, d := range all.Items {
		trace.Mark(ctx, trace.ScopeFinding, string(d.Kind), d.Title())
		res.Bag.Add(d)
	}
	// the full list is cached so a later run with a higher limit can use it
	if opts.Cache != nil {
		if err := opts.Cache.Put(file.Hash, all.Items); err != nil {
			opts.logger().Warnw("failed to write cache record", "path", file.Path, "error", err)
		}
	}
	span.Attr("diagnostics", fmt.Sprint(len(all.Items)))
	return res
}

func cacheLookup(opts Options, file *source.File) ([]diag.Diagnostic, bool) {
	if opts.Cache == nil {
		return nil, false
	}
	items, ok, err := opts.Cache.Get(file.Hash)
	if err != nil {
		opts.logger().Warnw("ignoring unreadable cache record", "path", file.Path, "error", err)
		return nil, false
	}
	return items, ok
}

// loadFailure maps a read error onto the matching knowledge-base kind.
func loadFailure(path string, err error, maxDiagnostics int) FileResult {
	kind := kb.FileNotFoundError
	switch {
	case errors.Is(err, fs.ErrPermission):
		kind = kb.PermissionError
	case errors.Is(err, syscall.EISDIR):
		kind = kb.IsADirectoryError
	}
	bag := diag.NewBag(maxDiagnostics)
	bag.Add(diag.NewError(kind, 0, "failed to load file: "+err.Error()))
	return FileResult{Path: path, Bag: bag}
}

// ListPyFiles returns the sorted *.py files below dir, skipping hidden
// directories and __pycache__.
func ListPyFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "__pycache__") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
