package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/droidxfer/droidxfer/internal/models"
	"github.com/droidxfer/droidxfer/internal/transfer"
)

// TransferUI renders a tree transfer as one mpb bar counting files, with
// the current file as its label. Failed files are printed above the bar as
// status lines. Without a terminal, only status lines for failures are
// printed.
type TransferUI struct {
	progress   *mpb.Progress
	bar        *mpb.Bar
	out        io.Writer
	isTerminal bool
	label      atomic.Value // string
}

// NewTransferUI creates a transfer UI on stderr.
func NewTransferUI() *TransferUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	return newTransferUI(os.Stderr, isTerminal)
}

func newTransferUI(out io.Writer, isTerminal bool) *TransferUI {
	u := &TransferUI{out: out, isTerminal: isTerminal}
	u.label.Store("")
	if isTerminal {
		if f, ok := out.(*os.File); ok {
			enableANSIOnWindows(f)
		}
		u.progress = mpb.New(
			mpb.WithOutput(out),
			mpb.WithRefreshRate(150*time.Millisecond),
			mpb.WithWidth(60),
		)
	}
	return u
}

// Start creates the bar.
func (u *TransferUI) Start(totalFiles int, totalBytes uint64, description string) {
	if !u.isTerminal {
		fmt.Fprintf(u.out, "%s: %d files (%s)\n", description, totalFiles, models.FormatBytes(totalBytes))
		return
	}

	u.bar = u.progress.New(int64(totalFiles),
		mpb.BarStyle().
			Lbound("[").
			Filler("█").
			Tip("█").
			Padding("░").
			Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(description, decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d/%d", decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Name("  "),
			decor.Any(func(decor.Statistics) string {
				return truncateLabel(u.label.Load().(string), 40)
			}),
		),
	)
	// An empty plan completes immediately.
	if totalFiles == 0 {
		u.bar.SetTotal(0, true)
	}
}

// Update advances the bar by one file.
func (u *TransferUI) Update(p transfer.Progress) {
	u.label.Store(p.Label)
	if p.Err != nil {
		u.Writer().Write([]byte(StatusLine(p) + "\n"))
	}
	if u.bar != nil {
		u.bar.SetCurrent(int64(p.Processed))
	}
}

// Finish completes the bar and waits for the final render.
func (u *TransferUI) Finish(result transfer.Result) {
	if u.bar != nil {
		u.bar.SetTotal(-1, true)
	}
	if u.progress != nil {
		u.progress.Wait()
	}
}

// Writer returns an io.Writer that prints above the bar while it renders.
func (u *TransferUI) Writer() io.Writer {
	if u.progress != nil && u.isTerminal {
		return u.progress
	}
	return u.out
}

// IsTerminal reports whether bars are rendered.
func (u *TransferUI) IsTerminal() bool {
	return u.isTerminal
}

func truncateLabel(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return "…" + string(r[len(r)-max+1:])
}
