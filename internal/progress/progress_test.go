package progress

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/droidxfer/droidxfer/internal/events"
	"github.com/droidxfer/droidxfer/internal/transfer"
)

func TestStatusLine(t *testing.T) {
	tests := []struct {
		p    transfer.Progress
		want string
	}{
		{transfer.Progress{Processed: 1, Total: 3, Label: "a.txt"}, "(1/3): a.txt"},
		{
			transfer.Progress{Processed: 2, Total: 3, Label: "sub/b.txt", Err: &transfer.FileCopyError{
				Source: "/x/sub/b.txt", Destination: "/sdcard/d/sub/b.txt", Err: errors.New("permission denied"),
			}},
			"(2/3): sub/b.txt - permission denied",
		},
		{transfer.Progress{Processed: 3, Total: 3, Label: "c", Err: errors.New("raw")}, "(3/3): c - raw"},
	}

	for _, tt := range tests {
		if got := StatusLine(tt.p); got != tt.want {
			t.Errorf("StatusLine() = %q, want %q", got, tt.want)
		}
	}
}

func TestTransferUINonTerminal(t *testing.T) {
	var buf bytes.Buffer
	ui := newTransferUI(&buf, false)

	ui.Start(2, 30, "Pushing")
	ui.Update(transfer.Progress{Processed: 1, Total: 2, Label: "a.txt"})
	ui.Update(transfer.Progress{Processed: 2, Total: 2, Label: "b.txt", Err: errors.New("disk full")})
	ui.Finish(transfer.Result{SuccessCount: 1, ErrorCount: 1})

	out := buf.String()
	if !strings.Contains(out, "Pushing: 2 files (30 B)") {
		t.Errorf("missing start line: %q", out)
	}
	if strings.Contains(out, "a.txt") {
		t.Errorf("successful files should not be printed without a terminal: %q", out)
	}
	if !strings.Contains(out, "(2/2): b.txt - disk full") {
		t.Errorf("missing failure line: %q", out)
	}
	if ui.IsTerminal() || ui.Writer() != io.Writer(&buf) {
		t.Error("non-terminal UI should write straight to its output")
	}
}

func TestTransferUITerminal(t *testing.T) {
	var buf bytes.Buffer
	ui := newTransferUI(&buf, true)

	ui.Start(2, 2, "Pulling")
	ui.Update(transfer.Progress{Processed: 1, Total: 2, Label: "a"})
	ui.Update(transfer.Progress{Processed: 2, Total: 2, Label: "b"})

	done := make(chan struct{})
	go func() {
		ui.Finish(transfer.Result{SuccessCount: 2})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Finish did not return")
	}
}

func TestTransferUIEmptyPlanFinishes(t *testing.T) {
	ui := newTransferUI(&bytes.Buffer{}, true)
	ui.Start(0, 0, "Pushing")

	done := make(chan struct{})
	go func() {
		ui.Finish(transfer.Result{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Finish hung on an empty plan")
	}
}

func TestBusReporter(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.SubscribeAll()

	r := NewBusReporter(bus, "t-1", transfer.DirectionPull, "/sdcard/DCIM", "/tmp/out")
	r.Start(1, 4, "Pulling")
	r.Update(transfer.Progress{Processed: 1, Total: 1, Label: "a.jpg"})
	r.Finish(transfer.Result{SuccessCount: 1})

	var got []events.Event
	for i := 0; i < 3; i++ {
		select {
		case ev := <-ch:
			got = append(got, ev)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("expected 3 events, got %d", len(got))
		}
	}

	started := got[0].(*events.TransferStartedEvent)
	if started.Direction != "pull" || started.TotalFiles != 1 || started.TotalBytes != 4 {
		t.Errorf("started = %+v", started)
	}
	prog := got[1].(*events.TransferProgressEvent)
	if prog.TransferID != "t-1" || prog.Processed != 1 || prog.Label != "a.jpg" {
		t.Errorf("progress = %+v", prog)
	}
	complete := got[2].(*events.TransferCompleteEvent)
	if complete.Succeeded != 1 || complete.Failed != 0 || complete.Error != nil {
		t.Errorf("complete = %+v", complete)
	}
}

type recorder struct {
	starts  int
	updates []int
	results []transfer.Result
}

func (r *recorder) Start(int, uint64, string)  { r.starts++ }
func (r *recorder) Update(p transfer.Progress) { r.updates = append(r.updates, p.Processed) }
func (r *recorder) Finish(res transfer.Result) { r.results = append(r.results, res) }

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, b}

	m.Start(2, 0, "x")
	m.Update(transfer.Progress{Processed: 1})
	m.Update(transfer.Progress{Processed: 2})
	m.Finish(transfer.Result{SuccessCount: 2})

	for _, r := range []*recorder{a, b} {
		if r.starts != 1 || len(r.updates) != 2 || len(r.results) != 1 {
			t.Errorf("reporter saw %+v", r)
		}
	}
}

type byteRecorder struct {
	NoOpProgress
	positions []int64
}

func (b *byteRecorder) Update(current int64) { b.positions = append(b.positions, current) }

func TestProgressReader(t *testing.T) {
	rec := &byteRecorder{}
	pr := NewProgressReader(iotestReader("hello world", 4), rec)

	data, err := io.ReadAll(pr)
	if err != nil || string(data) != "hello world" {
		t.Fatalf("ReadAll = %q, %v", data, err)
	}
	if last := rec.positions[len(rec.positions)-1]; last != 11 {
		t.Errorf("final position = %d, want 11", last)
	}
	for i := 1; i < len(rec.positions); i++ {
		if rec.positions[i] < rec.positions[i-1] {
			t.Fatalf("positions not monotonic: %v", rec.positions)
		}
	}
}

// iotestReader returns at most chunk bytes per Read.
func iotestReader(s string, chunk int) io.Reader {
	return &chunkReader{data: []byte(s), chunk: chunk}
}

type chunkReader struct {
	data  []byte
	chunk int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.chunk
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}
