package app

import (
	"context"

	"github.com/dshills/gameflow/internal/renderer/backend"
)

// interruptSource forwards backend events to the input queue and cancels
// the run on Ctrl+C, whatever mode is active.
type interruptSource struct {
	src       backend.Backend
	interrupt context.CancelFunc
}

func (s interruptSource) PollEvent() (backend.Event, bool) {
	ev, ok := s.src.PollEvent()
	if ok && ev.Type == backend.EventKey && ev.Key == backend.KeyCtrlC {
		s.interrupt()
	}
	return ev, ok
}
