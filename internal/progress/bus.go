package progress

import (
	"time"

	"github.com/droidxfer/droidxfer/internal/events"
	"github.com/droidxfer/droidxfer/internal/transfer"
)

// BusReporter publishes one transfer's progress on the event bus.
type BusReporter struct {
	eventBus   *events.EventBus
	id         string
	direction  transfer.Direction
	sourceRoot string
	destRoot   string
	started    time.Time
}

// NewBusReporter creates a reporter for the transfer identified by id.
func NewBusReporter(eventBus *events.EventBus, id string, direction transfer.Direction, sourceRoot, destRoot string) *BusReporter {
	return &BusReporter{
		eventBus:   eventBus,
		id:         id,
		direction:  direction,
		sourceRoot: sourceRoot,
		destRoot:   destRoot,
	}
}

func (b *BusReporter) Start(totalFiles int, totalBytes uint64, description string) {
	b.started = time.Now()
	b.eventBus.PublishTransferStarted(b.id, string(b.direction), b.sourceRoot, b.destRoot, totalFiles, totalBytes)
}

func (b *BusReporter) Update(p transfer.Progress) {
	b.eventBus.PublishProgress(b.id, p.Processed, p.Total, p.Label, p.Err)
}

func (b *BusReporter) Finish(result transfer.Result) {
	b.eventBus.PublishComplete(b.id, result.SuccessCount, result.ErrorCount, time.Since(b.started), nil)
}
