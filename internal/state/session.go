package state

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/droidxfer/droidxfer/internal/constants"
	"github.com/droidxfer/droidxfer/internal/events"
	"github.com/droidxfer/droidxfer/internal/pathutil"
	"github.com/droidxfer/droidxfer/internal/transfer"
)

// ErrNoDevice is returned when an operation needs a device and none is
// selected.
var ErrNoDevice = errors.New("no device selected")

// Session is the explicit context object passed to the transfer engine in
// place of process-wide state. Device and current paths change only through
// device selection and navigation; RunTransfer never touches them.
type Session struct {
	Local  *Selection
	Remote *Selection

	deviceRoot string
	guard      transfer.Guard

	mu         sync.RWMutex
	deviceID   string
	remotePath string
	localPath  string
}

// NewSession creates a session rooted at deviceRoot on the device and
// localPath on the host. eventBus may be nil.
func NewSession(deviceRoot, localPath string, eventBus *events.EventBus) *Session {
	if deviceRoot == "" {
		deviceRoot = constants.DefaultDeviceRoot
	}
	return &Session{
		Local:      NewSelection(SideLocal, eventBus),
		Remote:     NewSelection(SideRemote, eventBus),
		deviceRoot: deviceRoot,
		remotePath: deviceRoot,
		localPath:  localPath,
	}
}

// DeviceRoot returns the directory UpRemote never ascends past.
func (s *Session) DeviceRoot() string {
	return s.deviceRoot
}

// SelectDevice switches device. The remote side returns to the device root
// and its selection is cleared, since names from the old device are
// meaningless on the new one.
func (s *Session) SelectDevice(deviceID string) {
	s.mu.Lock()
	changed := s.deviceID != deviceID
	s.deviceID = deviceID
	if changed {
		s.remotePath = s.deviceRoot
	}
	s.mu.Unlock()

	if changed {
		s.Remote.Clear()
	}
}

// DeviceID returns the selected device, or ErrNoDevice.
func (s *Session) DeviceID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deviceID == "" {
		return "", ErrNoDevice
	}
	return s.deviceID, nil
}

// RemotePath returns the current device directory.
func (s *Session) RemotePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remotePath
}

// LocalPath returns the current host directory.
func (s *Session) LocalPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localPath
}

// NavigateRemote moves to p. Absolute paths replace the current path;
// relative ones are joined onto it.
func (s *Session) NavigateRemote(p string) string {
	p = pathutil.NormalizeForDevice(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.HasPrefix(p, "/") {
		s.remotePath = pathutil.Join(p, "", true)
	} else {
		s.remotePath = pathutil.Join(s.remotePath, p, true)
	}
	s.Remote.Clear()
	return s.remotePath
}

// UpRemote moves to the parent device directory, stopping at the root.
func (s *Session) UpRemote() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remotePath = pathutil.ParentOf(s.remotePath, true, s.deviceRoot)
	s.Remote.Clear()
	return s.remotePath
}

// NavigateLocal moves to p, resolved to an absolute host path.
func (s *Session) NavigateLocal(p string) (string, error) {
	s.mu.RLock()
	current := s.localPath
	s.mu.RUnlock()

	p = pathutil.NormalizeForHost(p)
	if current != "" && !filepath.IsAbs(p) && !strings.HasPrefix(p, "~") {
		p = pathutil.Join(current, p, false)
	}
	resolved, err := pathutil.ResolveAbsolutePath(p)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.localPath = resolved
	s.mu.Unlock()
	s.Local.Clear()
	return resolved, nil
}

// UpLocal moves to the parent host directory, stopping at the filesystem
// root.
func (s *Session) UpLocal() string {
	s.mu.Lock()
	s.localPath = pathutil.ParentOf(s.localPath, false, "")
	p := s.localPath
	s.mu.Unlock()

	s.Local.Clear()
	return p
}

// Transferring reports whether a transfer is running.
func (s *Session) Transferring() bool {
	return s.guard.Active()
}

// RunTransfer runs fn as the session's one transfer. A second call while
// one is running fails immediately with transfer.ErrTransferInProgress.
// fn receives the selections as they stood when the transfer started; both
// sets are cleared before fn runs and again after it returns, so a finished
// transfer's selection never carries over.
func (s *Session) RunTransfer(fn func(local, remote []string) error) error {
	if err := s.guard.TryStart(); err != nil {
		return err
	}
	defer s.guard.Done()

	local, remote := s.Local.Names(), s.Remote.Names()
	s.clearSelections()
	defer s.clearSelections()

	return fn(local, remote)
}

func (s *Session) clearSelections() {
	s.Local.Clear()
	s.Remote.Clear()
}
