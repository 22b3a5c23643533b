// Package backend provides the display and keyboard backends the game loop
// presents frames to.
package backend

import (
	"errors"
	"time"

	"github.com/dshills/gameflow/internal/renderer/core"
)

// Backend errors.
var (
	ErrClosed    = errors.New("backend closed")
	ErrQueueFull = errors.New("event queue full")
)

// EventType identifies the type of backend event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventInterrupt wakes a blocked PollEvent without carrying input.
	EventInterrupt
)

// Key represents a keyboard key.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Printable character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyEscape:    "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyCtrlC:     "ctrl+c",
}

// String returns the key name used by scripts and key bindings.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKey returns the key with the given name.
func ParseKey(name string) (Key, bool) {
	for k, n := range keyNames {
		if n == name {
			return k, true
		}
	}
	return KeyNone, false
}

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Event is a backend input event.
type Event struct {
	Type EventType
	When time.Time

	Key  Key
	Rune rune
	Mod  ModMask

	Width, Height int
}

// KeyEvent builds a key event for a special key.
func KeyEvent(k Key) Event {
	return Event{Type: EventKey, Key: k, When: time.Now()}
}

// RuneEvent builds a key event for a printable character.
func RuneEvent(r rune) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r, When: time.Now()}
}

// Backend is a display plus input source.
// Drawing and Show happen on the loop goroutine; PollEvent runs on the input
// goroutine and must return false once the backend is shut down.
type Backend interface {
	core.Surface

	// Init prepares the display. Must be called before any other method.
	Init() error

	// Shutdown restores the display and unblocks PollEvent.
	Shutdown()

	// Clear blanks the back buffer.
	Clear()

	// Show flushes the back buffer to the display.
	Show()

	// PollEvent blocks for the next event. It returns false after Shutdown.
	PollEvent() (Event, bool)

	// PostEvent queues a synthetic event.
	PostEvent(ev Event) error

	// Colors returns the number of colors the display supports.
	Colors() int
}
