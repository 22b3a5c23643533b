package input

import (
	"strings"

	"github.com/dshills/gameflow/internal/renderer/backend"
)

// Snapshot is the input delivered to one frame.
type Snapshot struct {
	events   []backend.Event
	consumed []bool
	bindings *Bindings
}

func newSnapshot(events []backend.Event, bindings *Bindings) *Snapshot {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Snapshot{
		events:   events,
		consumed: make([]bool, len(events)),
		bindings: bindings,
	}
}

// NewSnapshot builds a snapshot from events, for tests and replays.
func NewSnapshot(events []backend.Event, bindings *Bindings) *Snapshot {
	return newSnapshot(events, bindings)
}

// Events returns every event of the frame, consumed or not.
func (s *Snapshot) Events() []backend.Event {
	return s.events
}

// Len returns the number of events of the frame.
func (s *Snapshot) Len() int {
	return len(s.events)
}

// Pressed reports whether an unconsumed press of t arrived this frame.
func (s *Snapshot) Pressed(t Trigger) bool {
	return s.find(t) >= 0
}

// Take consumes the first unconsumed press of t.
func (s *Snapshot) Take(t Trigger) bool {
	i := s.find(t)
	if i < 0 {
		return false
	}
	s.consumed[i] = true
	return true
}

// Action reports whether any trigger bound to action was pressed.
func (s *Snapshot) Action(action string) bool {
	for _, t := range s.bindings.Triggers(action) {
		if s.Pressed(t) {
			return true
		}
	}
	return false
}

// TakeAction consumes the first press bound to action.
func (s *Snapshot) TakeAction(action string) bool {
	for _, t := range s.bindings.Triggers(action) {
		if s.Take(t) {
			return true
		}
	}
	return false
}

// Text returns the printable characters typed this frame.
func (s *Snapshot) Text() string {
	var b strings.Builder
	for i, ev := range s.events {
		if !s.consumed[i] && ev.Type == backend.EventKey && ev.Key == backend.KeyRune {
			b.WriteRune(ev.Rune)
		}
	}
	return b.String()
}

// Resize returns the last resize of the frame.
func (s *Snapshot) Resize() (width, height int, ok bool) {
	for i := len(s.events) - 1; i >= 0; i-- {
		if ev := s.events[i]; ev.Type == backend.EventResize {
			return ev.Width, ev.Height, true
		}
	}
	return 0, 0, false
}

func (s *Snapshot) find(t Trigger) int {
	for i, ev := range s.events {
		if !s.consumed[i] && t.Matches(ev) {
			return i
		}
	}
	return -1
}
