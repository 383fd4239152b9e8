// Package progress renders transfer progress: a file-count bar for tree
// transfers, a byte bar for single files, and an event-bus bridge for
// front ends that are not a terminal.
package progress

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/droidxfer/droidxfer/internal/transfer"
)

// Reporter reports byte progress of a single stream.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// TransferReporter consumes the file-count progress of one transfer.
type TransferReporter interface {
	Start(totalFiles int, totalBytes uint64, description string)
	Update(p transfer.Progress)
	Finish(result transfer.Result)
}

// StatusLine renders one progress event as "(processed/total): name", with
// " - message" appended when the file failed. The message is the
// underlying cause, not the wrapper added by the executor.
func StatusLine(p transfer.Progress) string {
	line := fmt.Sprintf("(%d/%d): %s", p.Processed, p.Total, p.Label)
	if p.Err == nil {
		return line
	}
	cause := p.Err
	var copyErr *transfer.FileCopyError
	if errors.As(p.Err, &copyErr) {
		cause = copyErr.Err
	}
	return line + " - " + cause.Error()
}

// CLIProgress implements Reporter with a progressbar/v3 byte bar on stderr.
type CLIProgress struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

// NewCLIProgress creates a new CLI progress reporter.
func NewCLIProgress() *CLIProgress {
	return &CLIProgress{out: os.Stderr}
}

// Start initializes the progress bar with total size and description.
func (p *CLIProgress) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.out, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update updates the progress bar to the current position.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(p.out, "\nError: %v\n", err)
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// NoOpProgress is a Reporter that does nothing.
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

func (p *NoOpProgress) Start(total int64, description string) {}
func (p *NoOpProgress) Update(current int64)                  {}
func (p *NoOpProgress) Finish()                               {}
func (p *NoOpProgress) Error(err error)                       {}
func (p *NoOpProgress) SetDescription(desc string)            {}

// ProgressReader wraps an io.Reader to report progress.
type ProgressReader struct {
	reader   io.Reader
	reporter Reporter
	current  int64
}

// NewProgressReader creates a new progress-reporting reader.
func NewProgressReader(reader io.Reader, reporter Reporter) *ProgressReader {
	return &ProgressReader{
		reader:   reader,
		reporter: reporter,
	}
}

// Read implements io.Reader interface with progress reporting.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	pr.reporter.Update(pr.current)
	return n, err
}

// Multi fans one transfer's progress out to several reporters, in order.
type Multi []TransferReporter

func (m Multi) Start(totalFiles int, totalBytes uint64, description string) {
	for _, r := range m {
		r.Start(totalFiles, totalBytes, description)
	}
}

func (m Multi) Update(p transfer.Progress) {
	for _, r := range m {
		r.Update(p)
	}
}

func (m Multi) Finish(result transfer.Result) {
	for _, r := range m {
		r.Finish(result)
	}
}
