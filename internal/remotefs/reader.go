// Package remotefs is the device side of a transfer. Every call is one
// round trip through the bridge client and nothing is cached: the device
// filesystem changes out-of-band, so a listing is only valid at the moment
// it was taken.
package remotefs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/droidxfer/droidxfer/internal/bridge"
	"github.com/droidxfer/droidxfer/internal/constants"
	"github.com/droidxfer/droidxfer/internal/logging"
	"github.com/droidxfer/droidxfer/internal/models"
	"github.com/droidxfer/droidxfer/internal/pathutil"
	"github.com/droidxfer/droidxfer/internal/validation"
)

// RemoteListError reports a failed listing of a device directory: the path
// does not exist or the device went away mid-call.
type RemoteListError struct {
	DeviceID string
	Path     string
	Err      error
}

func (e *RemoteListError) Error() string {
	return fmt.Sprintf("cannot list %s on %s: %v", e.Path, e.DeviceID, e.Err)
}

func (e *RemoteListError) Unwrap() error {
	return e.Err
}

// IsRemoteListError checks if an error is a RemoteListError.
func IsRemoteListError(err error) bool {
	var target *RemoteListError
	return errors.As(err, &target)
}

// Options configures a Reader.
type Options struct {
	// DeviceRoot is the default device directory, "/sdcard" when empty.
	DeviceRoot string

	// IncludeHidden includes dot-files in listings.
	IncludeHidden bool

	// SdcardFallback retries a not-found listing once under DeviceRoot.
	// This is a heuristic for paths typed relative to the storage root and
	// can mask genuine path errors, so it is off by default and every use
	// is logged.
	SdcardFallback bool

	Logger *logging.Logger
}

// Reader lists and mutates directories on one bridge client.
type Reader struct {
	client bridge.Client
	opts   Options
	logger *logging.Logger
}

// NewReader creates a device reader.
func NewReader(client bridge.Client, opts Options) *Reader {
	if opts.DeviceRoot == "" {
		opts.DeviceRoot = constants.DefaultDeviceRoot
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reader{client: client, opts: opts, logger: logger}
}

// DeviceRoot returns the configured device root.
func (r *Reader) DeviceRoot() string {
	return r.opts.DeviceRoot
}

// List returns the entries of one device directory, sorted directories
// first. An entry is a directory iff its raw mode carries S_IFDIR.
func (r *Reader) List(ctx context.Context, deviceID, path string) ([]models.FileEntry, error) {
	entries, _, err := r.ListDir(ctx, deviceID, path)
	return entries, err
}

// ListDir is List that also returns the directory actually read. It differs
// from path only when the device-root fallback was taken, and callers that
// build child paths must use it.
func (r *Reader) ListDir(ctx context.Context, deviceID, path string) ([]models.FileEntry, string, error) {
	path = pathutil.NormalizeForDevice(path)
	listed := path

	raw, err := r.client.ReadDir(ctx, deviceID, path)
	if err != nil && r.shouldFallback(path, err) {
		listed = pathutil.Join(r.opts.DeviceRoot, path, true)
		r.logger.Warn().
			Str("path", path).
			Str("fallback", listed).
			Err(err).
			Msg("listing failed, retrying under device root")
		raw, err = r.client.ReadDir(ctx, deviceID, listed)
	}
	if err != nil {
		return nil, "", &RemoteListError{DeviceID: deviceID, Path: path, Err: err}
	}

	entries := make([]models.FileEntry, 0, len(raw))
	for _, e := range raw {
		if err := validation.ValidateEntryName(e.Name); err != nil {
			r.logger.Warn().Str("dir", path).Err(err).Msg("skipping entry")
			continue
		}
		if !r.opts.IncludeHidden && strings.HasPrefix(e.Name, ".") {
			continue
		}
		entries = append(entries, fromRaw(e))
	}

	models.SortEntries(entries)
	return entries, listed, nil
}

func (r *Reader) shouldFallback(path string, err error) bool {
	if !r.opts.SdcardFallback || !errors.Is(err, bridge.ErrNotFound) {
		return false
	}
	root := strings.TrimRight(r.opts.DeviceRoot, "/")
	return path != root && !strings.HasPrefix(path, root+"/")
}

func fromRaw(e bridge.RawEntry) models.FileEntry {
	if bridge.IsDirMode(e.Mode) {
		return models.NewDirEntry(e.Name)
	}
	return models.NewFileEntry(e.Name, e.Size)
}

// Stat describes one device path by listing its parent. The device root
// itself is reported as a directory.
func (r *Reader) Stat(ctx context.Context, deviceID, path string) (models.FileEntry, error) {
	path = pathutil.NormalizeForDevice(path)
	name := pathutil.BaseName(path, true)
	if name == "/" || name == "." {
		return models.NewDirEntry("/"), nil
	}

	parent := pathutil.ParentOf(path, true, "/")
	raw, err := r.client.ReadDir(ctx, deviceID, parent)
	if err != nil {
		return models.FileEntry{}, &RemoteListError{DeviceID: deviceID, Path: parent, Err: err}
	}
	for _, e := range raw {
		if e.Name == name {
			return fromRaw(e), nil
		}
	}
	return models.FileEntry{}, fmt.Errorf("%s: %w", path, bridge.ErrNotFound)
}

// Mkdir creates path and any missing parents on the device. An existing
// directory is not an error.
func (r *Reader) Mkdir(ctx context.Context, deviceID, path string) error {
	path = pathutil.NormalizeForDevice(path)
	out, err := r.client.Shell(ctx, deviceID, "mkdir -p "+bridge.ShellQuote(path))
	if err == nil {
		err = shellFailure("mkdir", out)
	}
	if err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// Remove deletes path on the device, recursively when recursive is set.
func (r *Reader) Remove(ctx context.Context, deviceID, path string, recursive bool) error {
	path = pathutil.NormalizeForDevice(path)
	root := strings.TrimRight(r.opts.DeviceRoot, "/")
	if trimmed := strings.TrimRight(path, "/"); trimmed == "" || trimmed == root {
		return fmt.Errorf("refusing to remove %s", path)
	}

	command := "rm " + bridge.ShellQuote(path)
	if recursive {
		command = "rm -rf " + bridge.ShellQuote(path)
	}
	out, err := r.client.Shell(ctx, deviceID, command)
	if err == nil {
		err = shellFailure("rm", out)
	}
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// shellFailure detects failures on devices whose shell exits 0 even when
// the command failed; the diagnostic is then the only signal.
func shellFailure(tool, out string) error {
	out = strings.TrimSpace(out)
	if out == "" || !strings.HasPrefix(out, tool+":") {
		return nil
	}
	if strings.Contains(strings.ToLower(out), "no such file or directory") {
		return fmt.Errorf("%w: %s", bridge.ErrNotFound, out)
	}
	return errors.New(out)
}
