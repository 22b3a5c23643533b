package backend

import (
	"strings"
	"sync"

	"github.com/dshills/gameflow/internal/renderer/core"
)

// NullBackend is an in-memory backend for headless runs and tests.
type NullBackend struct {
	width, height int
	cells         []core.Cell
	shows         int

	mu     sync.Mutex
	events chan Event
	done   chan struct{}
	closed bool
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	b := &NullBackend{
		width:  width,
		height: height,
		cells:  make([]core.Cell, width*height),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	b.Clear()
	return b
}

// Init clears the screen and reopens the event queue after a Shutdown.
func (b *NullBackend) Init() error {
	b.mu.Lock()
	if b.closed {
		b.closed = false
		b.done = make(chan struct{})
	}
	b.mu.Unlock()
	b.Clear()
	return nil
}

func (b *NullBackend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.done)
	}
}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, c core.Cell) {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y*b.width+x] = c
	}
}

// Cell returns the cell at (x, y), or an empty cell outside the screen.
func (b *NullBackend) Cell(x, y int) core.Cell {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y*b.width+x]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Clear() {
	empty := core.EmptyCell()
	for i := range b.cells {
		b.cells[i] = empty
	}
}

func (b *NullBackend) Show() {
	b.shows++
}

func (b *NullBackend) PollEvent() (Event, bool) {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()

	select {
	case ev := <-b.events:
		return ev, true
	case <-done:
		return Event{}, false
	}
}

func (b *NullBackend) PostEvent(ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	select {
	case b.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (b *NullBackend) Colors() int { return 1 << 24 }

// Shows returns how many frames have been presented.
func (b *NullBackend) Shows() int {
	return b.shows
}

// Row returns the text of row y with continuation cells skipped.
func (b *NullBackend) Row(y int) string {
	var sb strings.Builder
	for x := 0; x < b.width; x++ {
		c := b.Cell(x, y)
		if !c.IsContinuation() {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// Screen returns every row joined by newlines, right-trimmed.
func (b *NullBackend) Screen() string {
	rows := make([]string, b.height)
	for y := range rows {
		rows[y] = strings.TrimRight(b.Row(y), " ")
	}
	return strings.Join(rows, "\n")
}
