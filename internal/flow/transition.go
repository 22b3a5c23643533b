package flow

// TransitionKind identifies the variant of a Transition.
type TransitionKind uint8

const (
	// KindContinue keeps the active mode.
	KindContinue TransitionKind = iota

	// KindChange replaces the active mode.
	KindChange

	// KindQuit ends the loop.
	KindQuit
)

// String returns a human-readable kind name.
func (k TransitionKind) String() string {
	switch k {
	case KindContinue:
		return "continue"
	case KindChange:
		return "change"
	case KindQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Transition is the control outcome of one update.
// The zero value is Continue.
type Transition struct {
	kind TransitionKind
	next Mode
}

// Continue keeps driving the active mode.
func Continue() Transition {
	return Transition{}
}

// ChangeTo hands the loop to next, which must already be constructed.
// A nil next is reported by the controller as ErrNilMode.
func ChangeTo(next Mode) Transition {
	return Transition{kind: KindChange, next: next}
}

// Quit ends the loop once the active mode is closed.
func Quit() Transition {
	return Transition{kind: KindQuit}
}

// Kind returns the transition variant.
func (t Transition) Kind() TransitionKind {
	return t.kind
}

// Next returns the incoming mode of a change, or nil.
func (t Transition) Next() Mode {
	return t.next
}

// IsContinue returns true if t keeps the active mode.
func (t Transition) IsContinue() bool {
	return t.kind == KindContinue
}

// String returns a description such as "change(play)".
func (t Transition) String() string {
	if t.kind == KindChange {
		return "change(" + ModeName(t.next) + ")"
	}
	return t.kind.String()
}

// TransitionEvent describes a processed transition.
type TransitionEvent struct {
	Kind  TransitionKind
	From  string
	To    string
	Frame uint64
}

// TransitionCallback is called after a transition has been processed.
type TransitionCallback func(ev TransitionEvent)

// unwind is the panic value RequestChange and RequestQuit raise.
// It carries no data; the request itself is recorded on the owning controller.
type unwind struct {
	owner *Controller
}

// usagePanic carries a usage error detected inside a Requester call.
type usagePanic struct {
	owner *Controller
	err   *UsageError
}
