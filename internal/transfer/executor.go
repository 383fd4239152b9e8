package transfer

import (
	"context"
	"path/filepath"

	"github.com/droidxfer/droidxfer/internal/logging"
	"github.com/droidxfer/droidxfer/internal/pathutil"
	"github.com/droidxfer/droidxfer/internal/validation"
)

// CopyFunc copies one file from source to destination. It is the push or
// pull primitive supplied by the bridge or host filesystem.
type CopyFunc func(ctx context.Context, source, destination string) error

// MkdirFunc creates a directory and its parents; an existing directory is
// not an error.
type MkdirFunc func(ctx context.Context, path string) error

// Progress is emitted after every attempted file. Err is nil on success.
type Progress struct {
	Processed int
	Total     int
	Label     string
	Err       error
}

// ProgressFunc receives progress synchronously, in file order.
type ProgressFunc func(Progress)

// Result tallies one transfer. Failures holds the DirectoryCreateError and
// FileCopyError values behind ErrorCount, in the order they occurred.
type Result struct {
	SuccessCount int
	ErrorCount   int
	Failures     []error
}

func (r *Result) fail(err error) {
	r.ErrorCount++
	r.Failures = append(r.Failures, err)
}

// ExecutorOptions wires the directory creators for both namespaces.
type ExecutorOptions struct {
	MkdirLocal  MkdirFunc
	MkdirRemote MkdirFunc
	Logger      *logging.Logger
}

// Executor replays plans strictly sequentially: the destination root, then
// every directory in plan order, then every file in plan order. No two
// copies are ever in flight at once.
type Executor struct {
	mkdirLocal  MkdirFunc
	mkdirRemote MkdirFunc
	logger      *logging.Logger
}

// NewExecutor creates an executor.
func NewExecutor(opts ExecutorOptions) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Executor{
		mkdirLocal:  opts.MkdirLocal,
		mkdirRemote: opts.MkdirRemote,
		logger:      logger,
	}
}

// Execute runs plan against destRoot. Per-item failures are counted and
// logged and never stop the batch; the result is returned regardless of
// how many items failed. onProgress may be nil.
//
// ctx is handed to the bridge calls. It is not a cancellation point for the
// batch: once started, every planned item is attempted.
func (e *Executor) Execute(ctx context.Context, plan *Plan, destRoot string, isDestLocal bool, copyFn CopyFunc, onProgress ProgressFunc) Result {
	var result Result

	mkdir := e.mkdirRemote
	if isDestLocal {
		mkdir = e.mkdirLocal
		destRoot = pathutil.NormalizeForHost(destRoot)
	} else {
		destRoot = pathutil.NormalizeForDevice(destRoot)
	}

	if err := mkdir(ctx, destRoot); err != nil {
		e.recordDirFailure(&result, destRoot, err)
	}

	for _, rel := range plan.Directories {
		if rel == "" {
			continue
		}
		dest, err := e.destination(destRoot, rel, isDestLocal)
		if err == nil {
			err = mkdir(ctx, dest)
		}
		if err != nil {
			e.recordDirFailure(&result, dest, err)
		}
	}

	total := len(plan.Files)
	for i, file := range plan.Files {
		dest, err := e.destination(destRoot, file.RelativePath, isDestLocal)
		if err == nil {
			err = copyFn(ctx, file.SourcePath, dest)
		}

		if err != nil {
			copyErr := &FileCopyError{Source: file.SourcePath, Destination: dest, Err: err}
			result.fail(copyErr)
			e.logger.Error().
				Str("source", file.SourcePath).
				Str("destination", dest).
				Err(err).
				Msg("file transfer failed")
			err = copyErr
		} else {
			result.SuccessCount++
		}

		if onProgress != nil {
			onProgress(Progress{Processed: i + 1, Total: total, Label: file.RelativePath, Err: err})
		}
	}

	return result
}

// TransferOne copies a lone file with the same contract as Execute: the
// failure is counted in the result, never returned.
func (e *Executor) TransferOne(ctx context.Context, source, destination string, copyFn CopyFunc, onProgress ProgressFunc) Result {
	var result Result

	err := copyFn(ctx, source, destination)
	if err != nil {
		copyErr := &FileCopyError{Source: source, Destination: destination, Err: err}
		result.fail(copyErr)
		e.logger.Error().
			Str("source", source).
			Str("destination", destination).
			Err(err).
			Msg("file transfer failed")
		err = copyErr
	} else {
		result.SuccessCount++
	}

	if onProgress != nil {
		label := pathutil.BaseName(pathutil.NormalizeForDevice(source), true)
		onProgress(Progress{Processed: 1, Total: 1, Label: label, Err: err})
	}
	return result
}

func (e *Executor) recordDirFailure(result *Result, path string, err error) {
	result.fail(&DirectoryCreateError{Path: path, Err: err})
	e.logger.Error().Str("path", path).Err(err).Msg("directory creation failed")
}

// destination maps a relative path onto destRoot. Relative paths that came
// from the device are re-checked so nothing lands outside destRoot.
func (e *Executor) destination(destRoot, rel string, isDestLocal bool) (string, error) {
	if !isDestLocal {
		return pathutil.Join(destRoot, rel, true), nil
	}
	if err := validation.ValidatePathInDirectory(rel, destRoot); err != nil {
		return filepath.Join(destRoot, rel), err
	}
	return filepath.Join(destRoot, rel), nil
}
