package flow

import (
	"fmt"
	"time"
)

// Mode defines the interface for a unit of per-frame behavior.
// Construction performs all setup; Close performs all teardown.
// The controller owns an active mode exclusively and calls Close exactly once.
type Mode interface {
	// Update advances the mode by one frame.
	// It may raise a transition by returning one, or by calling
	// RequestChange/RequestQuit on its Requester at any call depth.
	Update(f Frame) (Transition, error)

	// Render produces one frame of output.
	// It must not request transitions.
	Render(f Frame) error

	// Close releases everything the mode acquired during construction.
	Close() error
}

// Named is implemented by modes that report a name for logs and diagnostics.
type Named interface {
	Name() string
}

// Factory constructs a mode. The mode receives the Requester it uses to
// request transitions and reach the carry store.
type Factory func(r Requester) (Mode, error)

// Requester is the narrow capability a mode uses to talk to its controller.
type Requester interface {
	// RequestChange switches to next, which must already be constructed.
	// Ownership of next passes to the controller. Never returns.
	RequestChange(next Mode)

	// RequestQuit ends the loop after the active mode is closed. Never returns.
	RequestQuit()

	// Carry returns the store shared between successive modes.
	Carry() *Carry
}

// Frame describes the frame a mode is being driven in.
type Frame struct {
	// Index is the 1-based frame number. It does not advance when
	// update restarts on a new mode after a change.
	Index uint64

	// Delta is the time since the previous frame boundary.
	Delta time.Duration

	// Restarts counts the changes already processed within this frame.
	Restarts int
}

// Logger is the logging surface the controller writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder receives loop timing and transition counts.
type Recorder interface {
	RecordUpdate(d time.Duration)
	RecordRender(d time.Duration)
	RecordFrame(d time.Duration)
	RecordTransition(kind TransitionKind)
}

// Presenter flushes a rendered frame to its output.
type Presenter interface {
	Show()
}

// ModeName returns the name of m for diagnostics.
func ModeName(m Mode) string {
	if m == nil {
		return ""
	}
	if n, ok := m.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", m)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
