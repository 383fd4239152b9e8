// Package transfer is the dual-tree transfer engine. A Planner walks a
// source tree (host or device) into a Plan; an Executor replays the plan
// against the other side, one item at a time.
package transfer

import (
	"context"
	"path/filepath"

	"github.com/droidxfer/droidxfer/internal/models"
	"github.com/droidxfer/droidxfer/internal/pathutil"
)

// Direction names the two ways a transfer can go.
type Direction string

const (
	DirectionPush Direction = "push" // host -> device
	DirectionPull Direction = "pull" // device -> host
)

// FileItem is one file to copy.
type FileItem struct {
	RelativePath string
	SourcePath   string
	Size         uint64
}

// Plan is the ordered work for one transfer. Every directory implied by a
// file's relative path appears in Directories, and parents always precede
// their children. The source root itself is the empty relative path.
type Plan struct {
	SourceRoot    string
	SourceIsLocal bool
	Directories   []string
	Files         []FileItem
	TotalFiles    int
	TotalBytes    uint64
}

// Direction reports which way the plan moves data.
func (p *Plan) Direction() Direction {
	if p.SourceIsLocal {
		return DirectionPush
	}
	return DirectionPull
}

// DestinationIsDevice reports whether relative paths use "/" separators.
func (p *Plan) DestinationIsDevice() bool {
	return p.SourceIsLocal
}

// LocalLister lists one host directory.
type LocalLister interface {
	List(path string) ([]models.FileEntry, error)
}

// RemoteLister lists one device directory and reports the path it actually
// read, which may differ from the one asked for when the lister resolves
// paths relative to the device root.
type RemoteLister interface {
	ListDir(ctx context.Context, deviceID, path string) ([]models.FileEntry, string, error)
}

// Planner builds transfer plans. The device ID is a plain parameter; the
// planner holds no navigation state.
type Planner struct {
	local    LocalLister
	remote   RemoteLister
	deviceID string
}

// NewPlanner creates a planner. remote may be nil for host-only use, local
// may be nil for device-only use.
func NewPlanner(local LocalLister, remote RemoteLister, deviceID string) *Planner {
	return &Planner{local: local, remote: remote, deviceID: deviceID}
}

type pendingDir struct {
	rel string
	abs string
}

// Plan walks sourceRoot depth-first and records each directory before
// visiting its contents. Any listing failure aborts with a *ScanError and no
// partial plan.
func (p *Planner) Plan(ctx context.Context, sourceRoot string, isSourceLocal bool) (*Plan, error) {
	destIsDevice := isSourceLocal
	if isSourceLocal {
		sourceRoot = pathutil.NormalizeForHost(sourceRoot)
	} else {
		sourceRoot = pathutil.NormalizeForDevice(sourceRoot)
	}

	plan := &Plan{
		SourceRoot:    sourceRoot,
		SourceIsLocal: isSourceLocal,
	}

	// Explicit stack rather than recursion: deep trees cost heap, not stack.
	stack := []pendingDir{{rel: "", abs: sourceRoot}}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := ctx.Err(); err != nil {
			return nil, &ScanError{Root: sourceRoot, Err: err}
		}

		plan.Directories = append(plan.Directories, dir.rel)

		entries, listed, err := p.list(ctx, dir.abs, isSourceLocal)
		if err != nil {
			return nil, &ScanError{Root: sourceRoot, Err: err}
		}
		if listed != dir.abs {
			dir.abs = listed
			if dir.rel == "" {
				plan.SourceRoot = listed
			}
		}

		var subdirs []pendingDir
		for _, entry := range entries {
			rel := pathutil.JoinRelative(dir.rel, entry.Name, destIsDevice)
			abs := p.join(dir.abs, entry.Name, isSourceLocal)
			if entry.IsDirectory {
				subdirs = append(subdirs, pendingDir{rel: rel, abs: abs})
				continue
			}
			size := entry.SizeOrZero()
			plan.Files = append(plan.Files, FileItem{RelativePath: rel, SourcePath: abs, Size: size})
			plan.TotalBytes += size
		}

		// Push in reverse so subdirectories are visited in listing order.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	plan.TotalFiles = len(plan.Files)
	return plan, nil
}

func (p *Planner) list(ctx context.Context, dir string, isLocal bool) ([]models.FileEntry, string, error) {
	if isLocal {
		entries, err := p.local.List(dir)
		return entries, dir, err
	}
	return p.remote.ListDir(ctx, p.deviceID, dir)
}

func (p *Planner) join(base, name string, isLocal bool) string {
	if isLocal {
		return filepath.Join(base, name)
	}
	return pathutil.Join(base, name, true)
}
