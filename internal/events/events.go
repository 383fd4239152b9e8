// Package events carries transfer progress, completion and log messages from
// the engine to whatever front end is attached.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/droidxfer/droidxfer/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog              EventType = "log"
	EventTransferStarted  EventType = "transfer_started"
	EventTransferProgress EventType = "transfer_progress"
	EventTransferComplete EventType = "transfer_complete"
	EventSelectionChanged EventType = "selection_changed"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Error   error
}

// TransferStartedEvent is published once a plan exists and copying begins.
type TransferStartedEvent struct {
	BaseEvent
	TransferID string
	Direction  string // "push" or "pull"
	SourceRoot string
	DestRoot   string
	TotalFiles int
	TotalBytes uint64
}

// TransferProgressEvent is published after every attempted file, successful
// or not. Processed runs 1..Total.
type TransferProgressEvent struct {
	BaseEvent
	TransferID string
	Processed  int
	Total      int
	Label      string
	Error      error
}

// TransferCompleteEvent closes a transfer. Error is set when the transfer
// never reached the copy phase (scan failure, transfer already running).
type TransferCompleteEvent struct {
	BaseEvent
	TransferID string
	Succeeded  int
	Failed     int
	Duration   time.Duration
	Error      error
}

// SelectionChangedEvent reports a change to one side's selection set.
type SelectionChangedEvent struct {
	BaseEvent
	Side  string // "local" or "remote"
	Count int
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers. It never blocks; an event
// that does not fit a subscriber's buffer is dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: newBase(EventLog),
		Level:     level,
		Message:   message,
		Error:     err,
	})
}

// PublishTransferStarted announces a transfer with its planned totals.
func (eb *EventBus) PublishTransferStarted(id, direction, sourceRoot, destRoot string, totalFiles int, totalBytes uint64) {
	eb.Publish(&TransferStartedEvent{
		BaseEvent:  newBase(EventTransferStarted),
		TransferID: id,
		Direction:  direction,
		SourceRoot: sourceRoot,
		DestRoot:   destRoot,
		TotalFiles: totalFiles,
		TotalBytes: totalBytes,
	})
}

// PublishProgress reports one attempted file.
func (eb *EventBus) PublishProgress(id string, processed, total int, label string, err error) {
	eb.Publish(&TransferProgressEvent{
		BaseEvent:  newBase(EventTransferProgress),
		TransferID: id,
		Processed:  processed,
		Total:      total,
		Label:      label,
		Error:      err,
	})
}

// PublishComplete reports the end of a transfer.
func (eb *EventBus) PublishComplete(id string, succeeded, failed int, duration time.Duration, err error) {
	eb.Publish(&TransferCompleteEvent{
		BaseEvent:  newBase(EventTransferComplete),
		TransferID: id,
		Succeeded:  succeeded,
		Failed:     failed,
		Duration:   duration,
		Error:      err,
	})
}

// PublishSelectionChanged reports the new size of one side's selection.
func (eb *EventBus) PublishSelectionChanged(side string, count int) {
	eb.Publish(&SelectionChangedEvent{
		BaseEvent: newBase(EventSelectionChanged),
		Side:      side,
		Count:     count,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from every event type and
// from the all-events list.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// DroppedEventCount returns the number of events dropped due to full buffers.
func (eb *EventBus) DroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
