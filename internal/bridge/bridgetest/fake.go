// Package bridgetest provides an in-memory bridge.Client for tests.
package bridgetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/droidxfer/droidxfer/internal/bridge"
)

// DeviceID is the serial of the device a new Fake reports.
const DeviceID = "FAKE0001"

const (
	dirMode  uint32 = bridge.ModeDir | 0o771
	fileMode uint32 = bridge.ModeRegular | 0o660
)

// Fake is an in-memory device filesystem. "/" and "/sdcard" exist on
// creation. The zero value is not usable; call New.
type Fake struct {
	mu      sync.Mutex
	devices []bridge.Device
	dirs    map[string]bool
	files   map[string][]byte

	// FailPull and FailPush inject per-path failures.
	FailPull map[string]error
	FailPush map[string]error
	// FailReadDir injects listing failures by directory.
	FailReadDir map[string]error

	// ReadDirCalls records every listed directory, in call order.
	ReadDirCalls []string
	// ShellCalls records every shell command, in call order.
	ShellCalls []string
}

var _ bridge.Client = (*Fake)(nil)

// New creates a fake with one online device.
func New() *Fake {
	return &Fake{
		devices:     []bridge.Device{{Serial: DeviceID, State: "device", Model: "Fake_Phone"}},
		dirs:        map[string]bool{"/": true, "/sdcard": true},
		files:       make(map[string][]byte),
		FailPull:    make(map[string]error),
		FailPush:    make(map[string]error),
		FailReadDir: make(map[string]error),
	}
}

func clean(p string) string {
	return path.Clean("/" + p)
}

// AddDir creates p and its parents.
func (f *Fake) AddDir(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdirAll(clean(p))
}

// AddFile creates a file and its parent directories.
func (f *Fake) AddFile(p string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	f.mkdirAll(path.Dir(p))
	f.files[p] = append([]byte(nil), content...)
}

// IsDir reports whether p is a directory.
func (f *Fake) IsDir(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirs[clean(p)]
}

// File returns the content of a file and whether it exists.
func (f *Fake) File(p string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[clean(p)]
	return data, ok
}

// SetDevices replaces the reported device list.
func (f *Fake) SetDevices(devices ...bridge.Device) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = devices
}

func (f *Fake) mkdirAll(p string) {
	for p != "/" {
		f.dirs[p] = true
		p = path.Dir(p)
	}
	f.dirs["/"] = true
}

func (f *Fake) checkDevice(deviceID string) error {
	for _, d := range f.devices {
		if d.Serial == deviceID && d.Online() {
			return nil
		}
	}
	return fmt.Errorf("%w: device '%s' not found", bridge.ErrDeviceUnavailable, deviceID)
}

func (f *Fake) ListDevices(ctx context.Context) ([]bridge.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bridge.Device(nil), f.devices...), nil
}

func (f *Fake) ReadDir(ctx context.Context, deviceID, dir string) ([]bridge.RawEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir = clean(dir)
	f.ReadDirCalls = append(f.ReadDirCalls, dir)

	if err := f.checkDevice(deviceID); err != nil {
		return nil, err
	}
	if err, ok := f.FailReadDir[dir]; ok {
		return nil, err
	}
	if !f.dirs[dir] {
		return nil, fmt.Errorf("%w: %s", bridge.ErrNotFound, dir)
	}

	var entries []bridge.RawEntry
	for d := range f.dirs {
		if d != "/" && path.Dir(d) == dir {
			entries = append(entries, bridge.RawEntry{Name: path.Base(d), Mode: dirMode, Size: 4096})
		}
	}
	for p, data := range f.files {
		if path.Dir(p) == dir {
			entries = append(entries, bridge.RawEntry{Name: path.Base(p), Mode: fileMode, Size: uint64(len(data))})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (f *Fake) Pull(ctx context.Context, deviceID, remotePath string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkDevice(deviceID); err != nil {
		return nil, err
	}
	remotePath = clean(remotePath)
	if err, ok := f.FailPull[remotePath]; ok {
		return nil, err
	}
	data, ok := f.files[remotePath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bridge.ErrNotFound, remotePath)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *Fake) Push(ctx context.Context, deviceID, localPath, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkDevice(deviceID); err != nil {
		return err
	}
	remotePath = clean(remotePath)
	if err, ok := f.FailPush[remotePath]; ok {
		return err
	}
	if !f.dirs[path.Dir(remotePath)] {
		return fmt.Errorf("%w: %s", bridge.ErrNotFound, path.Dir(remotePath))
	}
	f.files[remotePath] = data
	return nil
}

// Shell understands the commands the remote reader issues: "mkdir -p",
// "rm -rf" and "rm", each with one single-quoted path.
func (f *Fake) Shell(ctx context.Context, deviceID, command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ShellCalls = append(f.ShellCalls, command)
	if err := f.checkDevice(deviceID); err != nil {
		return "", err
	}

	switch {
	case strings.HasPrefix(command, "mkdir -p "):
		p := clean(unquote(strings.TrimPrefix(command, "mkdir -p ")))
		if _, isFile := f.files[p]; isFile {
			return "mkdir: '" + p + "': File exists\n", nil
		}
		f.mkdirAll(p)
		return "", nil
	case strings.HasPrefix(command, "rm -rf "):
		p := clean(unquote(strings.TrimPrefix(command, "rm -rf ")))
		f.removeTree(p)
		return "", nil
	case strings.HasPrefix(command, "rm "):
		p := clean(unquote(strings.TrimPrefix(command, "rm ")))
		if f.dirs[p] {
			return "rm: " + p + ": Is a directory\n", nil
		}
		if _, ok := f.files[p]; !ok {
			return "rm: " + p + ": No such file or directory\n", nil
		}
		delete(f.files, p)
		return "", nil
	default:
		return "", fmt.Errorf("fake shell: unsupported command %q", command)
	}
}

func (f *Fake) removeTree(p string) {
	prefix := p + "/"
	for d := range f.dirs {
		if d == p || strings.HasPrefix(d, prefix) {
			delete(f.dirs, d)
		}
	}
	for file := range f.files {
		if file == p || strings.HasPrefix(file, prefix) {
			delete(f.files, file)
		}
	}
}

// unquote reverses bridge.ShellQuote.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")
	return strings.ReplaceAll(s, `'\''`, "'")
}
