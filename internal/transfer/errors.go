package transfer

import (
	"errors"
	"fmt"
)

// ErrTransferInProgress is returned when a transfer is started while
// another one is running. The second transfer is rejected, never queued.
var ErrTransferInProgress = errors.New("transfer already in progress")

// ScanError is fatal to a transfer: the source could not be enumerated and
// nothing was created or copied.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// IsScanError checks if an error is a ScanError.
func IsScanError(err error) bool {
	var target *ScanError
	return errors.As(err, &target)
}

// DirectoryCreateError records a destination directory that could not be
// created. It is counted, never propagated.
type DirectoryCreateError struct {
	Path string
	Err  error
}

func (e *DirectoryCreateError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreateError) Unwrap() error {
	return e.Err
}

// FileCopyError records one file that failed to copy. It is counted, never
// propagated.
type FileCopyError struct {
	Source      string
	Destination string
	Err         error
}

func (e *FileCopyError) Error() string {
	return fmt.Sprintf("copy %s -> %s: %v", e.Source, e.Destination, e.Err)
}

func (e *FileCopyError) Unwrap() error {
	return e.Err
}
