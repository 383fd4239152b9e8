package diskspace

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckAvailableSpace(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "not", "created", "yet")

	t.Run("SmallTransfer", func(t *testing.T) {
		if err := CheckAvailableSpace(dest, 1024, 1.1); err != nil {
			t.Errorf("Expected no error for 1KB, got: %v", err)
		}
	})

	t.Run("VeryLargeTransfer", func(t *testing.T) {
		// 100 PiB exceeds any test machine
		err := CheckAvailableSpace(dest, 100<<50, 1.1)
		if err == nil {
			t.Skip("could not determine free space on this filesystem")
		}
		if !IsInsufficientSpaceError(err) {
			t.Errorf("Expected InsufficientSpaceError, got: %T", err)
		}
	})

	t.Run("SafetyMargin", func(t *testing.T) {
		available := GetAvailableSpace(dest)
		if available == 0 {
			t.Skip("Could not determine available space")
		}

		if err := CheckAvailableSpace(dest, available/2, 1.1); err != nil {
			t.Errorf("Expected to have space for half available (%d bytes), got error: %v", available/2, err)
		}

		// All of it plus a 50% margin never fits.
		err := CheckAvailableSpace(dest, available, 1.5)
		if !IsInsufficientSpaceError(err) {
			t.Errorf("Expected InsufficientSpaceError, got: %v", err)
		}
	})
}

func TestIsInsufficientSpaceError(t *testing.T) {
	err := &InsufficientSpaceError{Path: "/tmp/out", RequiredBytes: 1000, AvailableBytes: 500}

	if !IsInsufficientSpaceError(err) {
		t.Error("Expected IsInsufficientSpaceError to return true")
	}
	if !IsInsufficientSpaceError(fmt.Errorf("pull: %w", err)) {
		t.Error("Expected wrapped error to match")
	}
	if IsInsufficientSpaceError(fmt.Errorf("some other error")) {
		t.Error("Expected IsInsufficientSpaceError to return false for non-disk-space error")
	}
	if IsInsufficientSpaceError(nil) {
		t.Error("Expected IsInsufficientSpaceError to return false for nil")
	}
}

func TestInsufficientSpaceErrorMessage(t *testing.T) {
	err := &InsufficientSpaceError{
		Path:           "/tmp/out",
		RequiredBytes:  1024 * 1024 * 100,
		AvailableBytes: 1024 * 1024 * 50,
	}

	msg := err.Error()
	for _, want := range []string{"/tmp/out", "100.00", "50.00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error message %q should contain %q", msg, want)
		}
	}
}

func TestExistingAncestor(t *testing.T) {
	root := t.TempDir()
	if got := existingAncestor(filepath.Join(root, "a", "b")); got != root {
		t.Errorf("existingAncestor = %q, want %q", got, root)
	}
}
