// Package bridge defines the device-bridge contract droidxfer consumes: device
// discovery, directory reads, streaming pulls, pushes and shell commands.
// The wire protocol itself lives behind implementations such as bridge/adb.
package bridge

import (
	"context"
	"errors"
	"io"
	"strings"
)

// Remote mode encoding. The bridge reports the raw st_mode of each entry and
// the file type lives in the S_IFMT bits; a directory is S_IFDIR.
const (
	ModeTypeMask uint32 = 0o170000 // S_IFMT
	ModeDir      uint32 = 0o040000 // S_IFDIR
	ModeRegular  uint32 = 0o100000 // S_IFREG
	ModeSymlink  uint32 = 0o120000 // S_IFLNK
)

// IsDirMode reports whether a raw remote mode marks a directory.
func IsDirMode(mode uint32) bool {
	return mode&ModeTypeMask == ModeDir
}

var (
	// ErrNotFound indicates the remote path does not exist.
	ErrNotFound = errors.New("no such file or directory")
	// ErrDeviceUnavailable indicates the device is gone or offline.
	ErrDeviceUnavailable = errors.New("device unavailable")
)

// Device is one attached device as reported by the bridge.
type Device struct {
	Serial  string
	State   string // "device", "offline", "unauthorized", ...
	Model   string
	Product string
}

// Online reports whether the device accepts commands.
func (d Device) Online() bool {
	return d.State == "device"
}

// RawEntry is one entry of a remote directory read, before classification.
type RawEntry struct {
	Name string
	Mode uint32
	Size uint64
}

// Client is the device-bridge collaborator.
type Client interface {
	ListDevices(ctx context.Context) ([]Device, error)
	ReadDir(ctx context.Context, deviceID, path string) ([]RawEntry, error)
	Pull(ctx context.Context, deviceID, remotePath string) (io.ReadCloser, error)
	Push(ctx context.Context, deviceID, localPath, remotePath string) error
	Shell(ctx context.Context, deviceID, command string) (string, error)
}

// ShellQuote single-quotes s for the device shell.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
