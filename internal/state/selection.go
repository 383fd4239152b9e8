// Package state holds the session a front end navigates with: the selected
// device, the current directory on each side and the two selection sets.
package state

import (
	"sort"
	"sync"

	"github.com/droidxfer/droidxfer/internal/events"
)

// Side names the two selection sets.
const (
	SideLocal  = "local"
	SideRemote = "remote"
)

// Selection is the set of entry names marked for transfer on one side.
// Thread-safe; every change is published as a SelectionChangedEvent.
type Selection struct {
	side     string
	eventBus *events.EventBus

	selected map[string]bool
	mu       sync.RWMutex
}

// NewSelection creates an empty selection. eventBus may be nil.
func NewSelection(side string, eventBus *events.EventBus) *Selection {
	return &Selection{
		side:     side,
		eventBus: eventBus,
		selected: make(map[string]bool),
	}
}

// Select adds an item to the selection.
func (s *Selection) Select(name string) {
	s.mu.Lock()
	s.selected[name] = true
	count := len(s.selected)
	s.mu.Unlock()

	s.publish(count)
}

// Deselect removes an item from the selection.
func (s *Selection) Deselect(name string) {
	s.mu.Lock()
	delete(s.selected, name)
	count := len(s.selected)
	s.mu.Unlock()

	s.publish(count)
}

// Toggle flips an item's selection state.
func (s *Selection) Toggle(name string) {
	s.mu.Lock()
	if s.selected[name] {
		delete(s.selected, name)
	} else {
		s.selected[name] = true
	}
	count := len(s.selected)
	s.mu.Unlock()

	s.publish(count)
}

// Set replaces the selection with names.
func (s *Selection) Set(names []string) {
	s.mu.Lock()
	s.selected = make(map[string]bool, len(names))
	for _, name := range names {
		s.selected[name] = true
	}
	count := len(s.selected)
	s.mu.Unlock()

	s.publish(count)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.selected = make(map[string]bool)
	s.mu.Unlock()

	s.publish(0)
}

// IsSelected reports whether name is selected.
func (s *Selection) IsSelected(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[name]
}

// Count returns the number of selected items.
func (s *Selection) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// Names returns the selected names, sorted.
func (s *Selection) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.selected))
	for name := range s.selected {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

func (s *Selection) publish(count int) {
	if s.eventBus != nil {
		s.eventBus.PublishSelectionChanged(s.side, count)
	}
}
