package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/gameflow/internal/config"
	"github.com/dshills/gameflow/internal/flow"
	"github.com/dshills/gameflow/internal/input"
	"github.com/dshills/gameflow/internal/modes"
	"github.com/dshills/gameflow/internal/renderer/backend"
)

type targetMode struct{ closed bool }

func (t *targetMode) Name() string                               { return "target" }
func (t *targetMode) Update(flow.Frame) (flow.Transition, error) { return flow.Continue(), nil }
func (t *targetMode) Render(flow.Frame) error                    { return nil }

func (t *targetMode) Close() error {
	t.closed = true
	return nil
}

// carryOnly hands out a carry store. Scripts never call its request methods.
type carryOnly struct{ carry *flow.Carry }

func (c *carryOnly) RequestChange(flow.Mode) { panic("unexpected RequestChange") }
func (c *carryOnly) RequestQuit()            { panic("unexpected RequestQuit") }
func (c *carryOnly) Carry() *flow.Carry      { return c.carry }

type lines struct{ out []string }

func (l *lines) add(level, msg string, args ...any) {
	l.out = append(l.out, level+" "+fmt.Sprintf(msg, args...))
}
func (l *lines) Debug(msg string, args ...any) { l.add("DEBUG", msg, args...) }
func (l *lines) Info(msg string, args ...any)  { l.add("INFO", msg, args...) }
func (l *lines) Warn(msg string, args ...any)  { l.add("WARN", msg, args...) }
func (l *lines) Error(msg string, args ...any) { l.add("ERROR", msg, args...) }

type fixture struct {
	env     *modes.Env
	screen  *backend.NullBackend
	req     *carryOnly
	log     *lines
	targets []*targetMode
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		screen: backend.NewNullBackend(20, 5),
		req:    &carryOnly{carry: flow.NewCarry()},
		log:    &lines{},
	}
	fx.env = &modes.Env{
		Registry: flow.NewRegistry(),
		Input:    input.NewQueue(8),
		Surface:  fx.screen,
		Palette:  config.Palette{},
		Logger:   fx.log,
	}
	fx.env.Registry.Register("target", func(flow.Requester) (flow.Mode, error) {
		m := &targetMode{}
		fx.targets = append(fx.targets, m)
		return m, nil
	})
	return fx
}

func (fx *fixture) load(t *testing.T, code string, opts ...Option) *Mode {
	t.Helper()
	m, err := New(Script{Name: "s", Code: code}, fx.env, fx.req, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		sc   Script
		want string
	}{
		{"syntax", Script{Name: "s", Code: "function update("}, "load script s"},
		{"no update", Script{Name: "s", Code: "x = 1"}, ErrNoUpdate.Error()},
		{"change at load", Script{Name: "s", Code: `flow.change("target")`}, ErrNotInUpdate.Error()},
		{"missing file", Script{Name: "s", Path: filepath.Join(t.TempDir(), "none.lua")}, "load script s"},
		{"runtime error", Script{Name: "s", Code: `error("boom")`}, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			_, err := New(tt.sc, fx.env, fx.req)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("New() error = %v, expected %q", err, tt.want)
			}
		})
	}
}

func TestSandbox(t *testing.T) {
	fx := newFixture(t)
	fx.load(t, `
assert(io == nil, "io")
assert(os == nil, "os")
assert(debug == nil, "debug")
assert(dofile == nil and loadfile == nil, "file loaders")
assert(load == nil and loadstring == nil, "string loaders")
assert(require == nil, "require")
assert(string.upper("x") == "X" and math.floor(1.5) == 1 and table.concat({"a"}) == "a")
function update() end
`)
}

func TestUpdate_ChangeFromDepth(t *testing.T) {
	fx := newFixture(t)
	m := fx.load(t, `
local function deeper(n)
  if n == 0 then
    flow.change("target")
    carry.set("reached", true)
  end
  deeper(n - 1)
end

function update(f)
  if f.index >= 2 then deeper(5) end
end
`)

	tr, err := m.Update(flow.Frame{Index: 1})
	if err != nil || !tr.IsContinue() {
		t.Fatalf("Update(1) = %v, %v", tr, err)
	}
	tr, err = m.Update(flow.Frame{Index: 2})
	if err != nil {
		t.Fatalf("Update(2) error = %v", err)
	}
	if tr.Kind() != flow.KindChange || flow.ModeName(tr.Next()) != "target" {
		t.Errorf("Update(2) = %v", tr)
	}
	if _, ok := fx.req.carry.Lookup("reached"); ok {
		t.Error("code after flow.change ran")
	}
}

func TestUpdate_SwallowedRequestStands(t *testing.T) {
	fx := newFixture(t)
	m := fx.load(t, `
function update()
  local ok = pcall(flow.quit)
  carry.set("swallowed", not ok)
end
`)

	tr, err := m.Update(flow.Frame{Index: 1})
	if err != nil || tr.Kind() != flow.KindQuit {
		t.Fatalf("Update() = %v, %v", tr, err)
	}
	if v, _ := fx.req.carry.Lookup("swallowed"); v != true {
		t.Errorf("swallowed = %v", v)
	}
}

func TestUpdate_SecondRequest(t *testing.T) {
	fx := newFixture(t)
	m := fx.load(t, `
function update()
  pcall(flow.change, "target")
  flow.quit()
end
`)

	tr, err := m.Update(flow.Frame{Index: 1})
	if !errors.Is(err, flow.ErrTransitionPending) {
		t.Fatalf("Update() error = %v", err)
	}
	var usage *flow.UsageError
	if !errors.As(err, &usage) || usage.Op != "flow.quit" {
		t.Errorf("error = %#v", err)
	}
	if !tr.IsContinue() {
		t.Errorf("Update() = %v", tr)
	}
	if len(fx.targets) != 1 || !fx.targets[0].closed {
		t.Error("mode built by the first request should be closed")
	}
}

func TestUpdate_Errors(t *testing.T) {
	fx := newFixture(t)
	m := fx.load(t, `
function update(f)
  if f.index == 1 then flow.change("nowhere") end
  if f.index == 2 then error("bad frame") end
end
`)

	_, err := m.Update(flow.Frame{Index: 1})
	if err == nil || !strings.Contains(err.Error(), flow.ErrUnknownMode.Error()) {
		t.Errorf("unknown mode error = %v", err)
	}
	_, err = m.Update(flow.Frame{Index: 2})
	if err == nil || !strings.Contains(err.Error(), "bad frame") {
		t.Errorf("runtime error = %v", err)
	}
}

func TestRender_RequestIsUsageError(t *testing.T) {
	fx := newFixture(t)
	m := fx.load(t, `
function update() end
function render() flow.change("target") end
`)

	err := m.Render(flow.Frame{Index: 1})
	if !errors.Is(err, flow.ErrTransitionInRender) {
		t.Errorf("Render() error = %v", err)
	}
	if len(fx.targets) != 0 {
		t.Error("no mode should be built from render")
	}
}

func TestTimeout(t *testing.T) {
	fx := newFixture(t)
	m := fx.load(t, `function update() while true do end end`, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := m.Update(flow.Frame{Index: 1})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Update() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
}

func TestCarry(t *testing.T) {
	fx := newFixture(t)
	c := fx.req.carry
	flow.Set(c, modes.BestKey, 3)
	flow.Set(c, flow.NewKey[string]("old"), "x")

	fx.load(t, `
carry.set("score", 7)
carry.set("ratio", 0.5)
carry.set("label", "hello")
carry.set("flag", false)
carry.set("next_best", carry.get("best") + 1)
carry.set("old_copy", carry.take("old"))
assert(carry.get("missing") == nil)
function update() end
`)

	if got, ok := flow.Get(c, modes.ScoreKey); !ok || got != 7 {
		t.Errorf("score = %d, %v", got, ok)
	}
	if got := flow.GetOr(c, flow.NewKey[float64]("ratio"), 0); got != 0.5 {
		t.Errorf("ratio = %v", got)
	}
	if got := flow.GetOr(c, flow.NewKey[string]("label"), ""); got != "hello" {
		t.Errorf("label = %q", got)
	}
	if got, ok := flow.Get(c, flow.NewKey[bool]("flag")); !ok || got {
		t.Errorf("flag = %v, %v", got, ok)
	}
	if got := flow.GetOr(c, flow.NewKey[int]("next_best"), 0); got != 4 {
		t.Errorf("next_best = %d", got)
	}
	if _, ok := c.Lookup("old"); ok {
		t.Error("take should remove the value")
	}
	if got := flow.GetOr(c, flow.NewKey[string]("old_copy"), ""); got != "x" {
		t.Errorf("old_copy = %q", got)
	}
}

func TestScreenAndInput(t *testing.T) {
	fx := newFixture(t)
	m := fx.load(t, `
function update()
  if input.take("confirm") then carry.set("confirmed", true) end
  carry.set("typed", input.text())
end

function render()
  screen.clear()
  local w, h = screen.size()
  screen.text(1, 0, "hi", "accent")
  screen.center(h - 1, w .. "x" .. h)
end
`)

	fx.env.Input.Push(backend.KeyEvent(backend.KeyEnter))
	fx.env.Input.Push(backend.RuneEvent('z'))
	if _, err := m.Update(flow.Frame{Index: 1}); err != nil {
		t.Fatal(err)
	}
	if err := m.Render(flow.Frame{Index: 1}); err != nil {
		t.Fatal(err)
	}

	if v, _ := fx.req.carry.Lookup("confirmed"); v != true {
		t.Errorf("confirmed = %v", v)
	}
	if v, _ := fx.req.carry.Lookup("typed"); v != "z" {
		t.Errorf("typed = %v", v)
	}
	if got := strings.TrimRight(fx.screen.Row(0), " "); got != " hi" {
		t.Errorf("row 0 = %q", got)
	}
	if got := strings.TrimSpace(fx.screen.Row(4)); got != "20x5" {
		t.Errorf("row 4 = %q", got)
	}
}

func TestCloseAndLog(t *testing.T) {
	fx := newFixture(t)
	m, err := New(Script{Name: "s", Code: `
print("loaded", 1)
function update() end
function close() log.warn("bye") end
`}, fx.env, fx.req)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := m.Update(flow.Frame{Index: 1}); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Update() after Close error = %v", err)
	}

	got := strings.Join(fx.log.out, "\n")
	for _, want := range []string{"INFO script s: loaded\t1", "WARN script s: bye"} {
		if !strings.Contains(got, want) {
			t.Errorf("log missing %q:\n%s", want, got)
		}
	}
}

func TestRegisterAndRun(t *testing.T) {
	dir := t.TempDir()
	src := `
local frames = 0
local function stop() flow.quit() end

function update(f)
  frames = frames + 1
  carry.set("frames", frames)
  if f.index == 3 then
    local ok = pcall(function() stop() end)
  end
end
`
	if err := os.WriteFile(filepath.Join(dir, "intro.lua"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	fx := newFixture(t)
	Register(fx.env, map[string]string{"intro": "intro.lua"}, dir)
	if !fx.env.Registry.Has("intro") {
		t.Fatal("intro not registered")
	}

	initial, err := fx.env.Registry.Factory("intro")
	if err != nil {
		t.Fatal(err)
	}
	c, err := flow.New(initial)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if st := c.Stats(); st.Frames != 3 || st.Live() != 0 {
		t.Errorf("stats = %+v", st)
	}
	if got := flow.GetOr(c.Carry(), flow.NewKey[int]("frames"), 0); got != 3 {
		t.Errorf("frames = %d", got)
	}
}
