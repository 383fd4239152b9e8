package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/droidxfer/droidxfer/internal/bridge"
	"github.com/droidxfer/droidxfer/internal/localfs"
	"github.com/droidxfer/droidxfer/internal/models"
	"github.com/droidxfer/droidxfer/internal/pathutil"
	"github.com/droidxfer/droidxfer/internal/progress"
	"github.com/droidxfer/droidxfer/internal/transfer"
	"github.com/droidxfer/droidxfer/internal/validation"
)

// ErrMultipleDevices is returned when no serial is given and more than one
// device is online.
var ErrMultipleDevices = errors.New("more than one device attached; choose one with --device")

// Devices lists attached devices, including offline and unauthorized ones.
func (ts *TransferService) Devices(ctx context.Context) ([]bridge.Device, error) {
	return ts.client.ListDevices(ctx)
}

// SelectDevice makes serial the session's device. An empty serial picks
// the only online device.
func (ts *TransferService) SelectDevice(ctx context.Context, serial string) (bridge.Device, error) {
	devices, err := ts.client.ListDevices(ctx)
	if err != nil {
		return bridge.Device{}, err
	}

	var online []bridge.Device
	for _, d := range devices {
		if serial != "" && d.Serial == serial {
			if !d.Online() {
				return bridge.Device{}, fmt.Errorf("device '%s' is %s: %w", serial, d.State, bridge.ErrDeviceUnavailable)
			}
			ts.session.SelectDevice(d.Serial)
			return d, nil
		}
		if d.Online() {
			online = append(online, d)
		}
	}

	if serial != "" {
		return bridge.Device{}, fmt.Errorf("device '%s' not found: %w", serial, bridge.ErrDeviceUnavailable)
	}
	switch len(online) {
	case 0:
		return bridge.Device{}, fmt.Errorf("no device attached: %w", bridge.ErrDeviceUnavailable)
	case 1:
		ts.session.SelectDevice(online[0].Serial)
		return online[0], nil
	default:
		return bridge.Device{}, ErrMultipleDevices
	}
}

// ListRemote lists a device directory. Every call is a fresh round trip.
func (ts *TransferService) ListRemote(ctx context.Context, path string) ([]models.FileEntry, error) {
	deviceID, err := ts.session.DeviceID()
	if err != nil {
		return nil, err
	}
	return ts.remote.List(ctx, deviceID, path)
}

// ListLocal lists a host directory.
func (ts *TransferService) ListLocal(path string) ([]models.FileEntry, error) {
	return ts.local.List(path)
}

// Mkdir creates the directory name inside parent and returns its path.
func (ts *TransferService) Mkdir(ctx context.Context, parent, name string, isLocal bool) (string, error) {
	if err := validation.ValidateFilename(name); err != nil {
		return "", err
	}

	target := pathutil.Join(parent, name, !isLocal)
	if isLocal {
		return target, localfs.MkdirAll(target)
	}

	deviceID, err := ts.session.DeviceID()
	if err != nil {
		return "", err
	}
	return target, ts.remote.Mkdir(ctx, deviceID, target)
}

// Delete removes path. Directories are removed only when recursive is set.
// Deleting while a transfer runs is refused.
func (ts *TransferService) Delete(ctx context.Context, path string, isLocal, recursive bool) error {
	if ts.session.Transferring() {
		return transfer.ErrTransferInProgress
	}

	if isLocal {
		entry, err := localfs.Stat(path)
		if err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		if entry.IsDirectory && !recursive {
			return fmt.Errorf("remove %s: is a directory", path)
		}
		if err := localfs.Remove(path); err != nil {
			return err
		}
		ts.logger.Info().Str("path", path).Msg("removed local path")
		return nil
	}

	deviceID, err := ts.session.DeviceID()
	if err != nil {
		return err
	}
	if err := ts.remote.Remove(ctx, deviceID, path, recursive); err != nil {
		return err
	}
	ts.logger.Info().Str("device", deviceID).Str("path", path).Msg("removed device path")
	return nil
}

// Preview pulls one device file into the preview directory and returns the
// local copy's path, reporting byte progress on the byte reporter.
func (ts *TransferService) Preview(ctx context.Context, remotePath string) (string, error) {
	deviceID, err := ts.session.DeviceID()
	if err != nil {
		return "", err
	}

	entry, err := ts.remote.Stat(ctx, deviceID, remotePath)
	if err != nil {
		return "", fmt.Errorf("preview %s: %w", remotePath, err)
	}
	if entry.IsDirectory {
		return "", fmt.Errorf("preview %s: is a directory", remotePath)
	}
	if err := validation.ValidateEntryName(entry.Name); err != nil {
		return "", fmt.Errorf("preview %s: %w", remotePath, err)
	}

	if err := localfs.MkdirAll(ts.previewDir); err != nil {
		return "", err
	}
	dst := filepath.Join(ts.previewDir, entry.Name)

	rc, err := ts.client.Pull(ctx, deviceID, pathutil.NormalizeForDevice(remotePath))
	if err != nil {
		return "", fmt.Errorf("preview %s: %w", remotePath, err)
	}
	stream := newPullReader(rc)
	defer stream.Close()

	ts.byteReporter.Start(int64(entry.SizeOrZero()), entry.Name)
	if _, err := localfs.CopyFile(dst, progress.NewProgressReader(stream, ts.byteReporter)); err != nil {
		ts.byteReporter.Error(err)
		return "", fmt.Errorf("preview %s: %w", remotePath, err)
	}
	ts.byteReporter.Finish()

	ts.logger.Debug().Str("remote", remotePath).Str("local", dst).Msg("preview ready")
	return dst, nil
}

// pullReader surfaces the stream's Close error in place of io.EOF, so a
// pull that fails on the device side never completes as an empty file.
type pullReader struct {
	rc       io.ReadCloser
	closed   bool
	closeErr error
}

func newPullReader(rc io.ReadCloser) *pullReader {
	return &pullReader{rc: rc}
}

func (r *pullReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err == io.EOF {
		if closeErr := r.Close(); closeErr != nil {
			return n, closeErr
		}
	}
	return n, err
}

func (r *pullReader) Close() error {
	if !r.closed {
		r.closed = true
		r.closeErr = r.rc.Close()
	}
	return r.closeErr
}
