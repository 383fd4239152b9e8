package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/droidxfer/droidxfer/internal/bridge"
	"github.com/droidxfer/droidxfer/internal/config"
	"github.com/droidxfer/droidxfer/internal/constants"
	"github.com/droidxfer/droidxfer/internal/diskspace"
	"github.com/droidxfer/droidxfer/internal/events"
	"github.com/droidxfer/droidxfer/internal/localfs"
	"github.com/droidxfer/droidxfer/internal/logging"
	"github.com/droidxfer/droidxfer/internal/models"
	"github.com/droidxfer/droidxfer/internal/pathutil"
	"github.com/droidxfer/droidxfer/internal/progress"
	"github.com/droidxfer/droidxfer/internal/remotefs"
	"github.com/droidxfer/droidxfer/internal/state"
	"github.com/droidxfer/droidxfer/internal/transfer"
	"github.com/droidxfer/droidxfer/internal/validation"
)

// ErrNothingSelected is returned by TransferSelection when the source side
// has no selected entries.
var ErrNothingSelected = errors.New("nothing selected")

// Options wires a TransferService. Client and Session are required.
type Options struct {
	Client   bridge.Client
	Session  *state.Session
	Config   *config.Config
	EventBus *events.EventBus
	Logger   *logging.Logger

	// Reporter renders file-count progress of Push and Pull. Nil means the
	// event bus is the only consumer.
	Reporter progress.TransferReporter

	// ByteReporter renders the byte progress of Preview.
	ByteReporter progress.Reporter

	// PreviewDir overrides config.PreviewDirectory.
	PreviewDir string
}

// TransferService orchestrates transfers and file operations between the
// host and the selected device. It holds no per-transfer state: the session
// is the single source of device, paths and selections, and it allows one
// transfer at a time.
type TransferService struct {
	client   bridge.Client
	remote   *remotefs.Reader
	local    localfs.Reader

	// scanRemote and scanLocal always include hidden entries: a transfer
	// copies the whole tree, the hidden filter only applies to browsing.
	scanRemote *remotefs.Reader
	scanLocal  localfs.Reader

	session  *state.Session
	cfg      *config.Config
	eventBus *events.EventBus
	logger   *logging.Logger

	reporter     progress.TransferReporter
	byteReporter progress.Reporter
	previewDir   string
}

// NewTransferService creates a new TransferService.
func NewTransferService(opts Options) *TransferService {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	eventBus := opts.EventBus
	if eventBus == nil {
		eventBus = events.NewEventBus(constants.EventBusDefaultBuffer)
	}
	byteReporter := opts.ByteReporter
	if byteReporter == nil {
		byteReporter = progress.NewNoOpProgress()
	}
	previewDir := opts.PreviewDir
	if previewDir == "" {
		previewDir = config.PreviewDirectory()
	}

	remoteOpts := remotefs.Options{
		DeviceRoot:     cfg.Device.Root,
		IncludeHidden:  cfg.Transfer.IncludeHidden,
		SdcardFallback: cfg.Transfer.SdcardFallback,
		Logger:         logger,
	}
	scanOpts := remoteOpts
	scanOpts.IncludeHidden = true

	return &TransferService{
		client:       opts.Client,
		remote:       remotefs.NewReader(opts.Client, remoteOpts),
		local:        localfs.Reader{Options: localfs.ListOptions{IncludeHidden: cfg.Transfer.IncludeHidden}},
		scanRemote:   remotefs.NewReader(opts.Client, scanOpts),
		scanLocal:    localfs.Reader{Options: localfs.ListOptions{IncludeHidden: true}},
		session:      opts.Session,
		cfg:          cfg,
		eventBus:     eventBus,
		logger:       logger,
		reporter:     opts.Reporter,
		byteReporter: byteReporter,
		previewDir:   previewDir,
	}
}

// Session returns the session the service operates on.
func (ts *TransferService) Session() *state.Session {
	return ts.session
}

// EventBus returns the bus transfer events are published on.
func (ts *TransferService) EventBus() *events.EventBus {
	return ts.eventBus
}

// Push copies each local source (file or directory) into the device
// directory remoteDir. A directory source lands at remoteDir/<name>.
func (ts *TransferService) Push(ctx context.Context, sources []string, remoteDir string) (*TransferSummary, error) {
	var summary *TransferSummary
	err := ts.session.RunTransfer(func(_, _ []string) error {
		var err error
		summary, err = ts.transfer(ctx, transfer.DirectionPush, sources, remoteDir)
		return err
	})
	return summary, err
}

// Pull copies each device source (file or directory) into the host
// directory localDir. A directory source lands at localDir/<name>.
func (ts *TransferService) Pull(ctx context.Context, sources []string, localDir string) (*TransferSummary, error) {
	var summary *TransferSummary
	err := ts.session.RunTransfer(func(_, _ []string) error {
		var err error
		summary, err = ts.transfer(ctx, transfer.DirectionPull, sources, localDir)
		return err
	})
	return summary, err
}

// TransferSelection transfers the selected entries of one side into the
// current directory of the other: a push sends the local selection to the
// current device directory, a pull the remote selection to the current host
// directory. Both selections are cleared whatever the outcome.
func (ts *TransferService) TransferSelection(ctx context.Context, direction transfer.Direction) (*TransferSummary, error) {
	var summary *TransferSummary
	err := ts.session.RunTransfer(func(local, remote []string) error {
		names, srcDir, dest, srcIsDevice := local, ts.session.LocalPath(), ts.session.RemotePath(), false
		if direction == transfer.DirectionPull {
			names, srcDir, dest, srcIsDevice = remote, ts.session.RemotePath(), ts.session.LocalPath(), true
		}
		if len(names) == 0 {
			return ErrNothingSelected
		}

		sources := make([]string, len(names))
		for i, name := range names {
			sources[i] = pathutil.Join(srcDir, name, srcIsDevice)
		}

		var err error
		summary, err = ts.transfer(ctx, direction, sources, dest)
		return err
	})
	return summary, err
}

// transfer scans every source before touching the destination, then
// executes the jobs one after another. Progress is numbered across all
// jobs so a multi-source transfer still counts 1..N.
func (ts *TransferService) transfer(ctx context.Context, direction transfer.Direction, sources []string, dest string) (*TransferSummary, error) {
	deviceID, err := ts.session.DeviceID()
	if err != nil {
		return nil, err
	}

	isSourceLocal := direction == transfer.DirectionPush
	if isSourceLocal {
		dest = pathutil.NormalizeForDevice(dest)
	} else {
		dest = pathutil.NormalizeForHost(dest)
	}

	id := uuid.NewString()
	started := time.Now()
	logger := ts.logger.With().Str("transfer_id", id).Str("direction", string(direction)).Logger()

	jobs, err := ts.scan(ctx, deviceID, sources, dest, isSourceLocal)
	if err != nil {
		logger.Error().Err(err).Msg("scan failed, nothing transferred")
		ts.eventBus.PublishComplete(id, 0, 0, time.Since(started), err)
		return nil, err
	}

	if n := resolveCollisions(jobs, isSourceLocal); n > 0 {
		logger.Warn().Int("renamed", n).Msg("sources share a name; destinations were made unique")
	}

	summary := &TransferSummary{
		ID:          id,
		Direction:   direction,
		Sources:     sources,
		Destination: dest,
	}
	for _, j := range jobs {
		summary.TotalFiles += j.fileCount()
		summary.TotalBytes += j.byteCount()
	}

	if !isSourceLocal && ts.cfg.Transfer.CheckDiskSpace {
		if err := diskspace.CheckAvailableSpace(dest, summary.TotalBytes, constants.DiskSpaceSafetyMargin); err != nil {
			logger.Error().Err(err).Msg("disk space check failed, nothing transferred")
			ts.eventBus.PublishComplete(id, 0, 0, time.Since(started), err)
			return nil, err
		}
	}

	reporters := progress.Multi{progress.NewBusReporter(ts.eventBus, id, direction, strings.Join(sources, ", "), dest)}
	if ts.reporter != nil {
		reporters = append(reporters, ts.reporter)
	}
	reporters.Start(summary.TotalFiles, summary.TotalBytes, describe(direction))

	logger.Info().
		Int("files", summary.TotalFiles).
		Uint64("bytes", summary.TotalBytes).
		Str("destination", dest).
		Msg("transfer started")

	executor := ts.newExecutor(deviceID)
	copyFn := ts.copyFunc(deviceID, direction)

	offset := 0
	onProgress := func(p transfer.Progress) {
		p.Processed += offset
		p.Total = summary.TotalFiles
		reporters.Update(p)
	}

	for _, j := range jobs {
		var r transfer.Result
		if j.plan == nil {
			r = executor.TransferOne(ctx, j.source, j.destRoot, copyFn, onProgress)
		} else {
			r = executor.Execute(ctx, j.plan, j.destRoot, !isSourceLocal, copyFn, onProgress)
		}
		offset += j.fileCount()

		summary.Result.SuccessCount += r.SuccessCount
		summary.Result.ErrorCount += r.ErrorCount
		summary.Result.Failures = append(summary.Result.Failures, r.Failures...)
	}

	summary.Duration = time.Since(started)
	reporters.Finish(summary.Result)

	logger.Info().
		Int("succeeded", summary.Result.SuccessCount).
		Int("failed", summary.Result.ErrorCount).
		Dur("duration", summary.Duration).
		Msg(summary.String())

	return summary, nil
}

// scan stats and plans every source. The first failure aborts the whole
// transfer as a ScanError; no partial job list is returned.
func (ts *TransferService) scan(ctx context.Context, deviceID string, sources []string, dest string, isSourceLocal bool) ([]job, error) {
	planner := transfer.NewPlanner(ts.scanLocal, ts.scanRemote, deviceID)
	destIsDevice := isSourceLocal

	jobs := make([]job, 0, len(sources))
	for _, src := range sources {
		if isSourceLocal {
			src = pathutil.NormalizeForHost(src)
		} else {
			src = pathutil.NormalizeForDevice(src)
		}

		entry, err := ts.stat(ctx, deviceID, src, isSourceLocal)
		if err != nil {
			return nil, &transfer.ScanError{Root: src, Err: err}
		}
		if err := validation.ValidateEntryName(entry.Name); err != nil {
			return nil, &transfer.ScanError{Root: src, Err: fmt.Errorf("cannot transfer %s: %w", src, err)}
		}
		destRoot := pathutil.Join(dest, entry.Name, destIsDevice)

		if !entry.IsDirectory {
			jobs = append(jobs, job{source: src, destRoot: destRoot, size: entry.SizeOrZero()})
			continue
		}

		plan, err := planner.Plan(ctx, src, isSourceLocal)
		if err != nil {
			return nil, err
		}
		if err := checkPlan(plan, destRoot, destIsDevice); err != nil {
			return nil, &transfer.ScanError{Root: src, Err: err}
		}
		jobs = append(jobs, job{source: src, destRoot: destRoot, plan: plan})
	}
	return jobs, nil
}

// checkPlan rejects a plan whose relative paths would land outside destRoot.
// Device-bound paths are checked segment by segment; host-bound paths are
// resolved and must stay under destRoot.
func checkPlan(plan *transfer.Plan, destRoot string, destIsDevice bool) error {
	check := func(rel string) error {
		if destIsDevice {
			return validation.ValidateRelativePath(rel)
		}
		if rel == "" {
			return nil
		}
		return validation.ValidatePathInDirectory(pathutil.Join(destRoot, rel, false), destRoot)
	}

	for _, dir := range plan.Directories {
		if err := check(dir); err != nil {
			return err
		}
	}
	for _, f := range plan.Files {
		if err := check(f.RelativePath); err != nil {
			return err
		}
	}
	return nil
}

func (ts *TransferService) stat(ctx context.Context, deviceID, path string, isLocal bool) (models.FileEntry, error) {
	if isLocal {
		return localfs.Stat(path)
	}
	return ts.remote.Stat(ctx, deviceID, path)
}

func (ts *TransferService) newExecutor(deviceID string) *transfer.Executor {
	return transfer.NewExecutor(transfer.ExecutorOptions{
		MkdirLocal: func(_ context.Context, path string) error {
			return localfs.MkdirAll(path)
		},
		MkdirRemote: func(ctx context.Context, path string) error {
			return ts.remote.Mkdir(ctx, deviceID, path)
		},
		Logger: ts.logger,
	})
}

// copyFunc returns the per-file primitive: bridge push for uploads, a
// bridge pull stream written through localfs.CopyFile for downloads.
func (ts *TransferService) copyFunc(deviceID string, direction transfer.Direction) transfer.CopyFunc {
	if direction == transfer.DirectionPush {
		return func(ctx context.Context, source, destination string) error {
			return ts.client.Push(ctx, deviceID, source, destination)
		}
	}
	return func(ctx context.Context, source, destination string) error {
		rc, err := ts.client.Pull(ctx, deviceID, source)
		if err != nil {
			return err
		}
		stream := newPullReader(rc)
		_, err = localfs.CopyFile(destination, stream)
		if closeErr := stream.Close(); err == nil {
			err = closeErr
		}
		return err
	}
}

func describe(direction transfer.Direction) string {
	if direction == transfer.DirectionPush {
		return "Pushing"
	}
	return "Pulling"
}
