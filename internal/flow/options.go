package flow

import "time"

// Option configures a Controller.
type Option func(*Controller)

// WithFrameRate paces the loop at fps frames per second.
// Zero runs frames back to back.
func WithFrameRate(fps int) Option {
	return func(c *Controller) {
		if fps < 0 {
			fps = 0
		}
		c.frameRate = fps
	}
}

// WithClock sets the time source used for frame deltas and timings.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger the controller reports lifecycle events to.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithPresenter sets the presenter called after each successful render.
func WithPresenter(p Presenter) Option {
	return func(c *Controller) {
		c.presenter = p
	}
}

// WithPanicRecovery converts panics raised by mode code into a
// *RecoveredPanicError returned from Run. The active mode is closed either way.
func WithPanicRecovery(enabled bool) Option {
	return func(c *Controller) {
		c.recoverPanics = enabled
	}
}

// WithCarry seeds the controller with an existing carry store.
func WithCarry(carry *Carry) Option {
	return func(c *Controller) {
		if carry != nil {
			c.carry = carry
		}
	}
}
