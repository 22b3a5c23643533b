package script

import "errors"

var (
	// ErrStateClosed is returned when calling into a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrTimeout indicates a script call ran past its time budget.
	ErrTimeout = errors.New("script call exceeded its time budget")

	// ErrNoUpdate indicates a script that does not define update.
	ErrNoUpdate = errors.New("script does not define update")

	// ErrNotInUpdate indicates a transition requested outside update.
	ErrNotInUpdate = errors.New("transitions can only be requested from update")
)
