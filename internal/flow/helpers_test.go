package flow

import (
	"fmt"
	"strings"
	"time"
)

// journal records lifecycle calls in order across all test modes.
type journal struct {
	entries []string
	live    int
	maxLive int
}

func (j *journal) add(format string, args ...any) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) String() string {
	return strings.Join(j.entries, " ")
}

// testMode is a scriptable mode that journals every call.
type testMode struct {
	name string
	j    *journal
	req  Requester

	onUpdate func(m *testMode, f Frame) (Transition, error)
	onRender func(m *testMode, f Frame) error
	closeErr error

	updates int
	renders int
	closed  int
}

func newTestMode(j *journal, req Requester, name string) *testMode {
	j.add("%s.new", name)
	j.live++
	if j.live > j.maxLive {
		j.maxLive = j.live
	}
	return &testMode{name: name, j: j, req: req}
}

func (m *testMode) Name() string { return m.name }

func (m *testMode) Update(f Frame) (Transition, error) {
	if m.closed > 0 {
		panic("update after close: " + m.name)
	}
	m.updates++
	m.j.add("%s.update#%d", m.name, f.Index)
	if m.onUpdate != nil {
		return m.onUpdate(m, f)
	}
	return Continue(), nil
}

func (m *testMode) Render(f Frame) error {
	m.renders++
	m.j.add("%s.render#%d", m.name, f.Index)
	if m.onRender != nil {
		return m.onRender(m, f)
	}
	return nil
}

func (m *testMode) Close() error {
	m.closed++
	m.j.live--
	m.j.add("%s.close", m.name)
	return m.closeErr
}

// factoryFor returns a factory that builds the given mode setup.
func factoryFor(j *journal, name string, setup func(m *testMode)) Factory {
	return func(r Requester) (Mode, error) {
		m := newTestMode(j, r, name)
		if setup != nil {
			setup(m)
		}
		return m, nil
	}
}

// quitAt returns an update hook that quits on the given frame.
func quitAt(frame uint64) func(m *testMode, f Frame) (Transition, error) {
	return func(m *testMode, f Frame) (Transition, error) {
		if f.Index >= frame {
			return Quit(), nil
		}
		return Continue(), nil
	}
}

// fakeClock advances by step on every call.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

// countingRecorder implements Recorder.
type countingRecorder struct {
	updates     int
	renders     int
	frames      int
	transitions map[TransitionKind]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{transitions: make(map[TransitionKind]int)}
}

func (r *countingRecorder) RecordUpdate(time.Duration)        { r.updates++ }
func (r *countingRecorder) RecordRender(time.Duration)        { r.renders++ }
func (r *countingRecorder) RecordFrame(time.Duration)         { r.frames++ }
func (r *countingRecorder) RecordTransition(k TransitionKind) { r.transitions[k]++ }

type countingPresenter struct{ shows int }

func (p *countingPresenter) Show() { p.shows++ }

// bufLogger captures formatted log lines.
type bufLogger struct{ lines []string }

func (l *bufLogger) log(level, msg string, args ...any) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(msg, args...))
}
func (l *bufLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *bufLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *bufLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *bufLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
