package events

import (
	"errors"
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventTransferProgress)

	bus.PublishProgress("t1", 1, 3, "a.txt", nil)

	select {
	case received := <-ch:
		progress, ok := received.(*TransferProgressEvent)
		if !ok {
			t.Fatal("Expected TransferProgressEvent")
		}
		if progress.Processed != 1 || progress.Total != 3 {
			t.Errorf("Expected 1/3, got %d/%d", progress.Processed, progress.Total)
		}
		if progress.Label != "a.txt" {
			t.Errorf("Expected label 'a.txt', got '%s'", progress.Label)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventLog)
	ch2 := bus.Subscribe(EventLog)

	bus.PublishLog(InfoLevel, "Test log", nil)

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d did not receive the event", i+1)
		}
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	progressCh := bus.Subscribe(EventTransferProgress)
	logCh := bus.Subscribe(EventLog)

	bus.PublishProgress("t1", 1, 1, "x", nil)

	select {
	case <-progressCh:
	case <-time.After(100 * time.Millisecond):
		t.Error("Progress subscriber didn't receive event")
	}

	select {
	case <-logCh:
		t.Error("Log subscriber received wrong event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	allCh := bus.SubscribeAll()

	bus.PublishTransferStarted("t1", "pull", "/sdcard/DCIM", "/tmp/out", 2, 30)
	bus.PublishComplete("t1", 2, 0, time.Second, nil)

	var types []EventType
	for i := 0; i < 2; i++ {
		select {
		case ev := <-allCh:
			types = append(types, ev.Type())
		case <-time.After(100 * time.Millisecond):
		}
	}

	if len(types) != 2 || types[0] != EventTransferStarted || types[1] != EventTransferComplete {
		t.Errorf("Expected started then complete, got %v", types)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	ch := bus.Subscribe(EventTransferProgress)

	for i := 0; i < 10; i++ {
		bus.PublishProgress("t1", i+1, 10, "f", nil)
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(10 * time.Millisecond):
			goto done
		}
	}
done:

	if count != 2 {
		t.Errorf("Expected the 2 buffered events, got %d", count)
	}
	if dropped := bus.DroppedEventCount(); dropped != 8 {
		t.Errorf("Expected 8 dropped events, got %d", dropped)
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventTransferProgress)

	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing after close must not panic
	bus.PublishProgress("t1", 1, 1, "x", nil)

	late := bus.Subscribe(EventLog)
	if _, ok := <-late; ok {
		t.Error("Subscribe after Close should return a closed channel")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventLog)
	bus.Unsubscribe(EventLog, ch)

	bus.PublishLog(WarnLevel, "ignored", nil)

	select {
	case <-ch:
		t.Error("Unsubscribed channel received an event")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level %d: expected %s, got %s", tt.level, tt.expected, got)
		}
	}
}

func TestConvenienceMethods(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	completeCh := bus.Subscribe(EventTransferComplete)
	selectionCh := bus.Subscribe(EventSelectionChanged)

	scanErr := errors.New("scan failed")
	bus.PublishComplete("t9", 0, 0, 0, scanErr)

	select {
	case event := <-completeCh:
		complete, ok := event.(*TransferCompleteEvent)
		if !ok {
			t.Fatal("Expected TransferCompleteEvent")
		}
		if complete.TransferID != "t9" || !errors.Is(complete.Error, scanErr) {
			t.Errorf("unexpected complete event: %+v", complete)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for complete event")
	}

	bus.PublishSelectionChanged("remote", 0)

	select {
	case event := <-selectionCh:
		sel, ok := event.(*SelectionChangedEvent)
		if !ok {
			t.Fatal("Expected SelectionChangedEvent")
		}
		if sel.Side != "remote" || sel.Count != 0 {
			t.Errorf("unexpected selection event: %+v", sel)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for selection event")
	}
}
