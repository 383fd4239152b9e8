// Package diskspace checks free space on the host before a pull writes into
// it.
package diskspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// InsufficientSpaceError indicates that there is not enough disk space available.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  uint64
	AvailableBytes uint64
}

func (e *InsufficientSpaceError) Error() string {
	requiredMB := float64(e.RequiredBytes) / (1024 * 1024)
	availableMB := float64(e.AvailableBytes) / (1024 * 1024)
	return fmt.Sprintf("insufficient disk space for %s: need %.2f MB, have %.2f MB available",
		e.Path, requiredMB, availableMB)
}

// CheckAvailableSpace checks that the filesystem holding destDir has room
// for requiredBytes times safetyMargin (1.1 is a 10% buffer). destDir does
// not need to exist; its nearest existing ancestor is measured.
//
// When free space cannot be determined (network or virtual filesystems) the
// check passes and the copy is left to fail on its own.
func CheckAvailableSpace(destDir string, requiredBytes uint64, safetyMargin float64) error {
	available, ok := availableBytes(existingAncestor(destDir))
	if !ok {
		return nil
	}

	requiredWithMargin := uint64(float64(requiredBytes) * safetyMargin)
	if available < requiredWithMargin {
		return &InsufficientSpaceError{
			Path:           destDir,
			RequiredBytes:  requiredWithMargin,
			AvailableBytes: available,
		}
	}
	return nil
}

// GetAvailableSpace returns the free bytes on the filesystem holding path,
// or 0 if unable to determine.
func GetAvailableSpace(path string) uint64 {
	available, _ := availableBytes(existingAncestor(path))
	return available
}

// IsInsufficientSpaceError checks if an error is an InsufficientSpaceError.
func IsInsufficientSpaceError(err error) bool {
	var target *InsufficientSpaceError
	return errors.As(err, &target)
}

func existingAncestor(path string) string {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
