package flow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"time"
)

// State is the controller's lifecycle state.
type State uint8

const (
	// StateNoActiveMode is the state before the initial mode is installed.
	StateNoActiveMode State = iota

	// StateRunning means exactly one mode is active.
	StateRunning

	// StateQuitting is terminal: the last mode has been closed.
	StateQuitting
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNoActiveMode:
		return "no-active-mode"
	case StateRunning:
		return "running"
	case StateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// phase tracks which mode call is on the stack.
type phase uint8

const (
	phaseIdle phase = iota
	phaseUpdate
	phaseRender
)

// Stats counts loop activity.
type Stats struct {
	Frames      uint64
	Updates     uint64
	Renders     uint64
	Transitions uint64
	Activations uint64
	Closes      uint64

	// Discarded counts modes handed to the controller that were closed
	// without ever becoming active.
	Discarded uint64
}

// Live returns the number of modes activated but not yet closed.
func (s Stats) Live() int64 {
	return int64(s.Activations) - int64(s.Closes)
}

// Controller owns the active mode and drives the frame loop.
// It is not safe for concurrent use: Run and every mode call happen on one
// goroutine.
type Controller struct {
	// active is the only mode that is ever driven.
	active Mode

	// pending is the request recorded by the Requester during an update.
	pending Transition

	// orphans are modes handed to the controller that never became active.
	// They are closed on teardown.
	orphans []Mode

	carry   *Carry
	state   State
	phase   phase
	running bool

	frameRate     int
	now           func() time.Time
	logger        Logger
	recorder      Recorder
	presenter     Presenter
	recoverPanics bool

	callbacks []TransitionCallback
	stats     Stats
}

// New constructs the initial mode with the controller as its Requester and
// installs it as the active mode. The loop does not start until Run.
func New(initial Factory, opts ...Option) (*Controller, error) {
	c := &Controller{
		carry:  NewCarry(),
		now:    time.Now,
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if initial == nil {
		return nil, &UsageError{Op: "New", Err: ErrNilMode}
	}
	m, err := initial(c)
	if err != nil {
		return nil, fmt.Errorf("construct initial mode: %w", err)
	}
	if m == nil {
		return nil, &UsageError{Op: "New", Err: ErrNilMode}
	}

	c.activate(m)
	return c, nil
}

// Run drives the active mode until it quits, a fault occurs, or ctx is done.
// It returns nil after a Quit. On every exit path the active mode is closed
// before Run returns, including when a panic unwinds through it.
func (c *Controller) Run(ctx context.Context) (err error) {
	if c.running {
		return ErrAlreadyRunning
	}
	if c.state != StateRunning || c.active == nil {
		return ErrNoActiveMode
	}
	c.running = true
	defer func() { c.running = false }()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		name := ModeName(c.active)
		stack := string(debug.Stack())
		// A panic raised while a request unwinds skips update's bookkeeping.
		c.disown(c.pending.next)
		c.pending = Transition{}
		closeErr := c.teardown()
		if !c.recoverPanics || c.foreign(r) {
			panic(r)
		}
		c.logger.Error("recovered panic in mode %s: %v", name, r)
		err = join(&RecoveredPanicError{Mode: name, Value: r, Stack: stack}, closeErr)
	}()

	var tick <-chan time.Time
	if c.frameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(c.frameRate))
		defer ticker.Stop()
		tick = ticker.C
	}

	c.logger.Info("loop started with mode %s", ModeName(c.active))

	last := c.now()
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return c.abort(ctx.Err())
			case <-tick:
			}
		} else if ctxErr := ctx.Err(); ctxErr != nil {
			return c.abort(ctxErr)
		}

		start := c.now()
		c.stats.Frames++
		f := Frame{Index: c.stats.Frames, Delta: start.Sub(last)}
		last = start

		done, err := c.step(&f)
		if done {
			return err
		}
		if c.recorder != nil {
			c.recorder.RecordFrame(c.now().Sub(start))
		}
	}
}

// step drives one frame: update, restarted after each change, then render.
// It returns done when the loop has ended.
func (c *Controller) step(f *Frame) (bool, error) {
	for {
		tr, err := c.update(*f)
		if err != nil {
			return true, c.fail(err)
		}

		switch tr.kind {
		case KindQuit:
			return true, c.quit(f.Index)

		case KindChange:
			if err := c.change(tr.next, f.Index); err != nil {
				return true, err
			}
			f.Restarts++

		default:
			if err := c.render(*f); err != nil {
				return true, c.fail(err)
			}
			if c.presenter != nil {
				c.presenter.Show()
			}
			return false, nil
		}
	}
}

// update calls Update on the active mode and reconciles the explicit
// outcome with any request recorded by the Requester.
func (c *Controller) update(f Frame) (Transition, error) {
	start := c.now()
	c.pending = Transition{}
	c.phase = phaseUpdate
	defer func() {
		c.phase = phaseIdle
		c.stats.Updates++
		if c.recorder != nil {
			c.recorder.RecordUpdate(c.now().Sub(start))
		}
	}()

	tr, err := c.callUpdate(c.active, f)
	pending := c.pending
	c.pending = Transition{}

	switch {
	case err != nil:
		c.disown(pending.next)
		c.disown(tr.next)
		return Transition{}, err

	case pending.kind != KindContinue && tr.kind != KindContinue:
		// First request wins; a second outcome is a programming error.
		c.disown(pending.next)
		c.disown(tr.next)
		return Transition{}, &UsageError{Op: "Update", Err: ErrTransitionPending}

	case pending.kind != KindContinue:
		tr = pending
	}

	if err := c.validate(tr); err != nil {
		return Transition{}, err
	}
	return tr, nil
}

// callUpdate runs Update, turning this controller's unwind into a return.
func (c *Controller) callUpdate(m Mode, f Frame) (tr Transition, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch v := r.(type) {
		case *unwind:
			if v.owner == c {
				tr, err = Transition{}, nil
				return
			}
		case *usagePanic:
			if v.owner == c {
				tr, err = Transition{}, v.err
				return
			}
		}
		panic(r)
	}()

	tr, err = m.Update(f)
	if err != nil {
		err = &ModeError{Mode: ModeName(m), Op: "update", Frame: f.Index, Err: err}
	}
	return tr, err
}

// render calls Render on the active mode.
func (c *Controller) render(f Frame) (err error) {
	m := c.active
	start := c.now()
	c.phase = phaseRender
	defer func() {
		c.phase = phaseIdle
		c.stats.Renders++
		if c.recorder != nil {
			c.recorder.RecordRender(c.now().Sub(start))
		}

		r := recover()
		if r == nil {
			return
		}
		if v, ok := r.(*usagePanic); ok && v.owner == c {
			err = v.err
			return
		}
		panic(r)
	}()

	if err := m.Render(f); err != nil {
		return &ModeError{Mode: ModeName(m), Op: "render", Frame: f.Index, Err: err}
	}
	return nil
}

// validate rejects change outcomes that cannot be activated.
func (c *Controller) validate(tr Transition) error {
	if tr.kind != KindChange {
		return nil
	}
	if tr.next == nil {
		return &UsageError{Op: "ChangeTo", Err: ErrNilMode}
	}
	if sameMode(tr.next, c.active) {
		return &UsageError{Op: "ChangeTo", Err: ErrSelfTransition}
	}
	return nil
}

// change destroys the active mode, then installs next.
func (c *Controller) change(next Mode, frame uint64) error {
	old := c.active
	from, to := ModeName(old), ModeName(next)

	c.active = nil
	c.orphans = append(c.orphans, next)
	if err := c.close(old); err != nil {
		c.logger.Error("close %s during change to %s: %v", from, to, err)
		return c.fail(&LifecycleError{From: from, To: to, Err: err})
	}
	// next was appended last; the rest were disowned earlier.
	c.orphans = c.orphans[:len(c.orphans)-1]
	c.release()

	c.activate(next)
	c.stats.Transitions++
	if c.recorder != nil {
		c.recorder.RecordTransition(KindChange)
	}
	c.logger.Info("mode change %s -> %s (frame %d)", from, to, frame)
	c.notify(TransitionEvent{Kind: KindChange, From: from, To: to, Frame: frame})
	return nil
}

// quit destroys the active mode and ends the loop.
func (c *Controller) quit(frame uint64) error {
	from := ModeName(c.active)
	err := c.teardown()

	c.stats.Transitions++
	if c.recorder != nil {
		c.recorder.RecordTransition(KindQuit)
	}
	c.logger.Info("mode %s quit (frame %d)", from, frame)
	c.notify(TransitionEvent{Kind: KindQuit, From: from, Frame: frame})
	return err
}

// abort handles context cancellation as an external quit.
func (c *Controller) abort(cause error) error {
	c.logger.Info("loop cancelled: %v", cause)
	return join(cause, c.quit(c.stats.Frames))
}

// fail tears down after a fault and returns it.
func (c *Controller) fail(err error) error {
	c.logger.Error("loop stopped: %v", err)
	return join(err, c.teardown())
}

// teardown closes the active mode and every orphan.
// The controller ends in the terminal state.
func (c *Controller) teardown() error {
	c.state = StateQuitting

	var errs []error
	if m := c.active; m != nil {
		c.active = nil
		errs = append(errs, c.close(m))
	}
	orphans := c.orphans
	c.orphans = nil
	for _, m := range orphans {
		errs = append(errs, c.discard(m))
	}
	return errors.Join(errs...)
}

// activate installs m as the active mode.
func (c *Controller) activate(m Mode) {
	c.active = m
	c.state = StateRunning
	c.stats.Activations++
	c.logger.Debug("mode %s active", ModeName(m))
}

// close runs m's teardown. A mode is counted as closed even if Close fails.
func (c *Controller) close(m Mode) error {
	if m == nil {
		return nil
	}
	c.stats.Closes++
	if err := m.Close(); err != nil {
		return &ModeError{Mode: ModeName(m), Op: "close", Err: err}
	}
	c.logger.Debug("mode %s closed", ModeName(m))
	return nil
}

// discard closes a mode that never became active.
func (c *Controller) discard(m Mode) error {
	if m == nil {
		return nil
	}
	c.stats.Discarded++
	if err := m.Close(); err != nil {
		return &ModeError{Mode: ModeName(m), Op: "close", Err: err}
	}
	return nil
}

// release discards the remaining orphans.
func (c *Controller) release() {
	orphans := c.orphans
	c.orphans = nil
	for _, m := range orphans {
		if err := c.discard(m); err != nil {
			c.logger.Error("discard %s: %v", ModeName(m), err)
		}
	}
}

// disown takes ownership of a mode that will never be activated.
func (c *Controller) disown(m Mode) {
	if m == nil || sameMode(m, c.active) {
		return
	}
	for _, o := range c.orphans {
		if sameMode(o, m) {
			return
		}
	}
	c.orphans = append(c.orphans, m)
}

// RequestChange records a change to next and unwinds the current update.
// It never returns.
func (c *Controller) RequestChange(next Mode) {
	c.raise("RequestChange", Transition{kind: KindChange, next: next})
}

// RequestQuit records a quit and unwinds the current update.
// It never returns.
func (c *Controller) RequestQuit() {
	c.raise("RequestQuit", Transition{kind: KindQuit})
}

// raise validates a request, records it and unwinds to the loop boundary.
func (c *Controller) raise(op string, t Transition) {
	switch c.phase {
	case phaseIdle:
		panic(c.usage(op, ErrNotRunning))
	case phaseRender:
		c.disown(t.next)
		panic(c.usage(op, ErrTransitionInRender))
	}

	if t.kind == KindChange {
		if t.next == nil {
			panic(c.usage(op, ErrNilMode))
		}
		if sameMode(t.next, c.active) {
			panic(c.usage(op, ErrSelfTransition))
		}
	}
	if c.pending.kind != KindContinue {
		c.disown(t.next)
		panic(c.usage(op, ErrTransitionPending))
	}

	c.pending = t
	panic(&unwind{owner: c})
}

func (c *Controller) usage(op string, err error) *usagePanic {
	return &usagePanic{owner: c, err: &UsageError{Op: op, Err: err}}
}

// foreign reports whether r is a control value owned by another controller.
func (c *Controller) foreign(r any) bool {
	switch v := r.(type) {
	case *unwind:
		return v.owner != c
	case *usagePanic:
		return v.owner != c
	}
	return false
}

// Carry returns the store shared between successive modes.
func (c *Controller) Carry() *Carry {
	return c.carry
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// ActiveName returns the name of the active mode, or "" if none.
func (c *Controller) ActiveName() string {
	return ModeName(c.active)
}

// Running returns true while Run is on the stack.
func (c *Controller) Running() bool {
	return c.running
}

// Stats returns a copy of the loop counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// OnTransition registers a callback for processed transitions.
// Returns a function to unregister the callback.
func (c *Controller) OnTransition(cb TransitionCallback) func() {
	c.callbacks = append(c.callbacks, cb)
	index := len(c.callbacks) - 1

	return func() {
		// Remove by setting to nil (preserves indices)
		if index < len(c.callbacks) {
			c.callbacks[index] = nil
		}
	}
}

func (c *Controller) notify(ev TransitionEvent) {
	for _, cb := range c.callbacks {
		if cb != nil {
			cb(ev)
		}
	}
}

// Error lets an escaped usage panic print its cause.
func (p *usagePanic) Error() string {
	return p.err.Error()
}

// Unwrap returns the underlying usage error.
func (p *usagePanic) Unwrap() error {
	return p.err
}

// sameMode reports whether a and b are the same mode instance.
func sameMode(a, b Mode) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// join combines a primary error with teardown failures, keeping the
// primary error's type when there is nothing to add.
func join(primary, closeErr error) error {
	if closeErr == nil {
		return primary
	}
	return errors.Join(primary, closeErr)
}
