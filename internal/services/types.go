// Package services provides frontend-agnostic orchestration for droidxfer.
// This layer sits between the CLI and the transfer engine: it resolves the
// selected device, plans and executes transfers, and reports their outcome
// on the event bus and the configured progress reporters.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/droidxfer/droidxfer/internal/transfer"
)

// TransferSummary describes one finished transfer.
type TransferSummary struct {
	ID          string
	Direction   transfer.Direction
	Sources     []string
	Destination string
	TotalFiles  int
	TotalBytes  uint64
	Result      transfer.Result
	Duration    time.Duration
}

// String returns the human-readable summary line. Both counts are always
// present so a partial failure is never silent.
func (s TransferSummary) String() string {
	return FormatSummary(s.Result)
}

// FailedFiles counts files that could not be copied.
func (s TransferSummary) FailedFiles() int {
	return countFailures[*transfer.FileCopyError](s.Result)
}

// FailedDirectories counts destination directories that could not be
// created. They are part of Result.ErrorCount but not of TotalFiles.
func (s TransferSummary) FailedDirectories() int {
	return countFailures[*transfer.DirectoryCreateError](s.Result)
}

func countFailures[T error](r transfer.Result) int {
	n := 0
	for _, err := range r.Failures {
		var target T
		if errors.As(err, &target) {
			n++
		}
	}
	return n
}

// FormatSummary renders a result as "Transfer complete. Success: N, Errors: M".
func FormatSummary(r transfer.Result) string {
	return fmt.Sprintf("Transfer complete. Success: %d, Errors: %d", r.SuccessCount, r.ErrorCount)
}

// FailureMessage renders an error returned by Push or Pull for the user.
// Scan failures keep their fixed prefix; the message is the underlying
// cause, not the wrapper.
func FailureMessage(err error) string {
	var scanErr *transfer.ScanError
	switch {
	case errors.As(err, &scanErr):
		return "Error counting files: " + scanErr.Err.Error()
	case errors.Is(err, transfer.ErrTransferInProgress):
		return "A transfer is already in progress"
	default:
		return err.Error()
	}
}

// job is one source of a transfer: either a planned tree or a lone file.
type job struct {
	source   string
	destRoot string
	plan     *transfer.Plan // nil for a lone file
	size     uint64
}

func (j job) fileCount() int {
	if j.plan == nil {
		return 1
	}
	return j.plan.TotalFiles
}

func (j job) byteCount() uint64 {
	if j.plan == nil {
		return j.size
	}
	return j.plan.TotalBytes
}
