package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/droidxfer/droidxfer/internal/events"
	"github.com/droidxfer/droidxfer/internal/transfer"
)

func TestSelection(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventSelectionChanged)

	sel := NewSelection(SideRemote, bus)
	sel.Select("b.txt")
	sel.Select("a.txt")
	sel.Toggle("b.txt")
	sel.Toggle("c.txt")

	if got := sel.Names(); len(got) != 2 || got[0] != "a.txt" || got[1] != "c.txt" {
		t.Errorf("Names() = %v", got)
	}
	if !sel.IsSelected("a.txt") || sel.IsSelected("b.txt") {
		t.Error("IsSelected out of sync")
	}

	sel.Set([]string{"x", "y", "x"})
	if sel.Count() != 2 {
		t.Errorf("Count() = %d, want 2", sel.Count())
	}
	sel.Deselect("x")
	sel.Clear()
	if sel.Count() != 0 {
		t.Errorf("Count() after Clear = %d", sel.Count())
	}

	var last *events.SelectionChangedEvent
	for i := 0; i < 7; i++ {
		select {
		case ev := <-ch:
			last = ev.(*events.SelectionChangedEvent)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("expected 7 selection events, got %d", i)
		}
	}
	if last.Side != SideRemote || last.Count != 0 {
		t.Errorf("last event = %+v", last)
	}
}

func TestRunTransferClearsSelections(t *testing.T) {
	s := NewSession("", "", nil)
	s.Local.Select("a.txt")
	s.Remote.Select("DCIM")

	err := s.RunTransfer(func(local, remote []string) error {
		if len(local) != 1 || local[0] != "a.txt" || len(remote) != 1 || remote[0] != "DCIM" {
			t.Errorf("snapshot = %v %v", local, remote)
		}
		if s.Local.Count() != 0 || s.Remote.Count() != 0 {
			t.Error("selections must be cleared when the transfer starts")
		}
		if !s.Transferring() {
			t.Error("session should report a running transfer")
		}
		// A selection made during the transfer is cleared at the end too.
		s.Remote.Select("late")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Local.Count() != 0 || s.Remote.Count() != 0 {
		t.Error("selections must be cleared when the transfer ends")
	}
	if s.Transferring() {
		t.Error("guard not released")
	}
}

func TestRunTransferRejectsSecondTransfer(t *testing.T) {
	s := NewSession("", "", nil)

	var inner error
	outer := s.RunTransfer(func(_, _ []string) error {
		inner = s.RunTransfer(func(_, _ []string) error {
			t.Error("second transfer must not run")
			return nil
		})
		return nil
	})
	if outer != nil {
		t.Fatal(outer)
	}
	if !errors.Is(inner, transfer.ErrTransferInProgress) {
		t.Errorf("inner = %v, want ErrTransferInProgress", inner)
	}
}

func TestRunTransferReleasesOnError(t *testing.T) {
	s := NewSession("", "", nil)
	boom := errors.New("scan failed")

	if err := s.RunTransfer(func(_, _ []string) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if err := s.RunTransfer(func(_, _ []string) error { return nil }); err != nil {
		t.Errorf("guard should be free after a failed transfer: %v", err)
	}
}

func TestRunTransferLeavesNavigationAlone(t *testing.T) {
	s := NewSession("/sdcard", "/home/u", nil)
	s.SelectDevice("SER1")
	s.NavigateRemote("DCIM")

	_ = s.RunTransfer(func(_, _ []string) error { return nil })

	if s.RemotePath() != "/sdcard/DCIM" || s.LocalPath() != "/home/u" {
		t.Errorf("paths changed: %s %s", s.RemotePath(), s.LocalPath())
	}
	if id, err := s.DeviceID(); err != nil || id != "SER1" {
		t.Errorf("device changed: %q %v", id, err)
	}
}

func TestRemoteNavigation(t *testing.T) {
	s := NewSession("/sdcard", "", nil)

	if _, err := s.DeviceID(); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}

	tests := []struct {
		action func() string
		want   string
	}{
		{func() string { return s.NavigateRemote("DCIM") }, "/sdcard/DCIM"},
		{func() string { return s.NavigateRemote(`Camera\2024`) }, "/sdcard/DCIM/Camera/2024"},
		{func() string { return s.UpRemote() }, "/sdcard/DCIM/Camera"},
		{func() string { return s.NavigateRemote("/storage//emulated/0/") }, "/storage/emulated/0/"},
		{func() string { return s.UpRemote() }, "/storage/emulated"},
		{func() string { return s.UpRemote() }, "/storage"},
		{func() string { return s.UpRemote() }, "/sdcard"},
	}
	for i, tt := range tests {
		if got := tt.action(); got != tt.want {
			t.Errorf("step %d: got %q, want %q", i, got, tt.want)
		}
	}
}

func TestSelectDeviceResetsRemote(t *testing.T) {
	s := NewSession("/sdcard", "", nil)
	s.SelectDevice("A")
	s.NavigateRemote("Music")
	s.Remote.Select("song.mp3")

	s.SelectDevice("A")
	if s.RemotePath() != "/sdcard/Music" || s.Remote.Count() != 1 {
		t.Error("reselecting the same device must not reset state")
	}

	s.SelectDevice("B")
	if s.RemotePath() != "/sdcard" || s.Remote.Count() != 0 {
		t.Errorf("switching device should reset remote state: %s %d", s.RemotePath(), s.Remote.Count())
	}
}

func TestLocalNavigation(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a", "b"), 0755); err != nil {
		t.Fatal(err)
	}
	root, _ = filepath.EvalSymlinks(root)

	s := NewSession("", root, nil)
	s.Local.Select("x")

	got, err := s.NavigateLocal(filepath.Join("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "a", "b"); got != want {
		t.Errorf("NavigateLocal = %q, want %q", got, want)
	}
	if s.Local.Count() != 0 {
		t.Error("navigation should clear the local selection")
	}

	if up := s.UpLocal(); up != filepath.Join(root, "a") {
		t.Errorf("UpLocal = %q", up)
	}

	top := s.UpLocal()
	for i := 0; i < 64; i++ {
		top = s.UpLocal()
	}
	if s.UpLocal() != top {
		t.Error("UpLocal must stop at the filesystem root")
	}
}
