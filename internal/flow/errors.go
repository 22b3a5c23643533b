package flow

import (
	"errors"
	"fmt"
)

// Controller errors.
var (
	// ErrNilMode indicates a nil mode was passed where a mode is required.
	ErrNilMode = errors.New("nil mode")

	// ErrSelfTransition indicates a change to the mode that is already active.
	ErrSelfTransition = errors.New("change to the active mode")

	// ErrTransitionPending indicates a second transition within one update.
	ErrTransitionPending = errors.New("transition already requested in this update")

	// ErrTransitionInRender indicates a transition was requested from Render.
	ErrTransitionInRender = errors.New("transition requested during render")

	// ErrNotRunning indicates a transition was requested outside an active update.
	ErrNotRunning = errors.New("controller not running")

	// ErrAlreadyRunning indicates Run was called while the loop is running.
	ErrAlreadyRunning = errors.New("controller already running")

	// ErrNoActiveMode indicates Run was called without an active mode.
	ErrNoActiveMode = errors.New("no active mode")

	// ErrUnknownMode indicates a registry lookup for an unregistered name.
	ErrUnknownMode = errors.New("unknown mode")
)

// UsageError reports a programming error in how the controller was driven.
type UsageError struct {
	Op  string // Requester or controller operation (e.g., "RequestChange")
	Err error  // One of the controller sentinels
}

func (e *UsageError) Error() string {
	return "flow: " + e.Op + ": " + e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ModeError wraps a fault returned by a mode.
type ModeError struct {
	Mode  string // Mode name
	Op    string // "update", "render" or "close"
	Frame uint64
	Err   error
}

func (e *ModeError) Error() string {
	if e.Frame > 0 {
		return fmt.Sprintf("mode %s: %s (frame %d): %v", e.Mode, e.Op, e.Frame, e.Err)
	}
	return fmt.Sprintf("mode %s: %s: %v", e.Mode, e.Op, e.Err)
}

func (e *ModeError) Unwrap() error {
	return e.Err
}

// LifecycleError reports a teardown failure while changing modes.
// The incoming mode is closed without being driven.
type LifecycleError struct {
	From string
	To   string
	Err  error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("change %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// RecoveredPanicError wraps a panic raised by mode code when panic recovery
// is enabled.
// The stack trace is included in Error(); keep it out of user-facing output.
type RecoveredPanicError struct {
	Mode  string
	Value any
	Stack string
}

func (e *RecoveredPanicError) Error() string {
	if e.Stack != "" {
		return fmt.Sprintf("panic in mode %s: %v\n%s", e.Mode, e.Value, e.Stack)
	}
	return fmt.Sprintf("panic in mode %s: %v", e.Mode, e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *RecoveredPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
