package script

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gameflow/internal/flow"
	"github.com/dshills/gameflow/internal/input"
	"github.com/dshills/gameflow/internal/modes"
	"github.com/dshills/gameflow/internal/renderer/core"
)

// Script identifies the source of a scripted mode.
type Script struct {
	Name string
	Path string // Lua file, used when Code is empty
	Code string // inline source
}

// Factory returns a flow.Factory that builds sc as a mode.
func Factory(sc Script, env *modes.Env, opts ...Option) flow.Factory {
	return func(r flow.Requester) (flow.Mode, error) {
		return New(sc, env, r, opts...)
	}
}

// Register adds one scripted mode per entry of scripts (name to path).
// Relative paths are resolved against dir.
func Register(env *modes.Env, scripts map[string]string, dir string, opts ...Option) {
	for name, path := range scripts {
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		env.Registry.Register(name, Factory(Script{Name: name, Path: path}, env, opts...))
	}
}

type phase uint8

const (
	phaseLoad phase = iota
	phaseIdle
	phaseUpdate
	phaseRender
	phaseClose
)

// Mode is a flow.Mode backed by a Lua script.
type Mode struct {
	name  string
	env   *modes.Env
	req   flow.Requester
	state *State

	// signal is the error value flow.change and flow.quit raise.
	signal *lua.LUserData

	phase    phase
	in       *input.Snapshot
	pending  flow.Transition
	raised   bool
	usageErr error
}

// New loads sc and runs its top level.
func New(sc Script, env *modes.Env, r flow.Requester, opts ...Option) (*Mode, error) {
	m := &Mode{
		name:  sc.Name,
		env:   env,
		req:   r,
		state: NewState(opts...),
	}
	m.signal = m.state.L.NewUserData()
	m.install()

	var err error
	if sc.Code != "" {
		err = m.state.DoString(sc.Code)
	} else {
		err = m.state.DoFile(sc.Path)
	}
	if err == nil && !m.state.HasFunction("update") {
		err = ErrNoUpdate
	}
	if err != nil {
		m.state.Close()
		return nil, fmt.Errorf("load script %s: %w", sc.Name, err)
	}

	m.phase = phaseIdle
	env.Log().Debug("script %s: loaded", sc.Name)
	return m, nil
}

// Name implements flow.Named.
func (m *Mode) Name() string { return m.name }

// Update calls the script's update function. A request made through
// flow.change or flow.quit becomes the returned transition.
func (m *Mode) Update(f flow.Frame) (flow.Transition, error) {
	m.in = m.env.Snapshot(f)
	m.pending, m.raised, m.usageErr = flow.Continue(), false, nil

	m.phase = phaseUpdate
	_, err := m.state.Call("update", m.frameTable(f))
	m.phase = phaseIdle

	if m.usageErr != nil {
		m.discardPending()
		return flow.Continue(), m.usageErr
	}
	if err != nil && !m.isSignal(err) {
		m.discardPending()
		return flow.Continue(), fmt.Errorf("update: %w", err)
	}
	return m.pending, nil
}

// Render calls the script's render function, if any.
func (m *Mode) Render(f flow.Frame) error {
	m.usageErr = nil
	m.phase = phaseRender
	_, err := m.state.Call("render", m.frameTable(f))
	m.phase = phaseIdle

	if m.usageErr != nil {
		return m.usageErr
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Close calls the script's close function, if any, and releases the state.
func (m *Mode) Close() error {
	if m.state.IsClosed() {
		return nil
	}
	m.phase = phaseClose
	_, err := m.state.Call("close")
	m.state.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

func (m *Mode) frameTable(f flow.Frame) *lua.LTable {
	t := m.state.L.NewTable()
	t.RawSetString("index", lua.LNumber(f.Index))
	t.RawSetString("delta", lua.LNumber(f.Delta.Seconds()))
	t.RawSetString("restarts", lua.LNumber(f.Restarts))
	return t
}

func (m *Mode) isSignal(err error) bool {
	var apiErr *lua.ApiError
	return errors.As(err, &apiErr) && apiErr.Object == m.signal
}

// discardPending closes a mode built by flow.change that will not be
// handed to the controller.
func (m *Mode) discardPending() {
	if next := m.pending.Next(); next != nil {
		if err := next.Close(); err != nil {
			m.env.Log().Warn("script %s: close discarded mode %s: %v", m.name, flow.ModeName(next), err)
		}
	}
	m.pending = flow.Continue()
}

// checkRequest validates a transition request made from Lua.
func (m *Mode) checkRequest(op string) error {
	var err error
	switch {
	case m.phase == phaseRender:
		err = flow.ErrTransitionInRender
	case m.phase != phaseUpdate:
		err = ErrNotInUpdate
	case m.raised:
		err = flow.ErrTransitionPending
	default:
		return nil
	}
	usage := &flow.UsageError{Op: op, Err: err}
	if m.phase == phaseUpdate || m.phase == phaseRender {
		m.usageErr = usage
	}
	return usage
}

// install publishes the host tables to the script.
func (m *Mode) install() {
	L := m.state.L

	L.SetGlobal("flow", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"change": m.luaChange,
		"quit":   m.luaQuit,
	}))
	L.SetGlobal("carry", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"get":  m.luaCarryGet,
		"set":  m.luaCarrySet,
		"take": m.luaCarryTake,
	}))
	L.SetGlobal("screen", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"size":   m.luaScreenSize,
		"clear":  m.luaScreenClear,
		"text":   m.luaScreenText,
		"center": m.luaScreenCenter,
	}))
	L.SetGlobal("input", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"pressed": m.luaInputPressed,
		"take":    m.luaInputTake,
		"text":    m.luaInputText,
	}))

	log := m.env.Log()
	logFn := func(emit func(string, ...any)) lua.LGFunction {
		return func(L *lua.LState) int {
			emit("script %s: %s", m.name, joinArgs(L))
			return 0
		}
	}
	L.SetGlobal("log", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"debug": logFn(log.Debug),
		"info":  logFn(log.Info),
		"warn":  logFn(log.Warn),
		"error": logFn(log.Error),
	}))
	L.SetGlobal("print", L.NewFunction(logFn(log.Info)))
}

func (m *Mode) luaChange(L *lua.LState) int {
	name := L.CheckString(1)
	if err := m.checkRequest("flow.change"); err != nil {
		L.RaiseError("%s", err.Error())
	}
	next, err := m.env.Build(name, m.req)
	if err != nil {
		L.RaiseError("flow.change: %s", err.Error())
	}
	m.pending, m.raised = flow.ChangeTo(next), true
	L.Error(m.signal, 0)
	return 0
}

func (m *Mode) luaQuit(L *lua.LState) int {
	if err := m.checkRequest("flow.quit"); err != nil {
		L.RaiseError("%s", err.Error())
	}
	m.pending, m.raised = flow.Quit(), true
	L.Error(m.signal, 0)
	return 0
}

func (m *Mode) luaCarryGet(L *lua.LState) int {
	v, _ := m.req.Carry().Lookup(L.CheckString(1))
	L.Push(toLua(v))
	return 1
}

func (m *Mode) luaCarryTake(L *lua.LState) int {
	name := L.CheckString(1)
	c := m.req.Carry()
	v, _ := c.Lookup(name)
	c.Delete(name)
	L.Push(toLua(v))
	return 1
}

func (m *Mode) luaCarrySet(L *lua.LState) int {
	name := L.CheckString(1)
	c := m.req.Carry()
	switch v := L.Get(2).(type) {
	case *lua.LNilType:
		c.Delete(name)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
			c.Store(name, int(f))
		} else {
			c.Store(name, f)
		}
	case lua.LString:
		c.Store(name, string(v))
	case lua.LBool:
		c.Store(name, bool(v))
	default:
		L.ArgError(2, "number, string, boolean or nil expected")
	}
	return 0
}

func (m *Mode) luaScreenSize(L *lua.LState) int {
	w, h := m.env.Surface.Size()
	L.Push(lua.LNumber(w))
	L.Push(lua.LNumber(h))
	return 2
}

func (m *Mode) luaScreenClear(L *lua.LState) int {
	m.env.Clear()
	return 0
}

func (m *Mode) luaScreenText(L *lua.LState) int {
	x, y := L.CheckInt(1), L.CheckInt(2)
	text := L.CheckString(3)
	n := core.DrawText(m.env.Surface, x, y, text, m.style(L.OptString(4, "")))
	L.Push(lua.LNumber(n))
	return 1
}

func (m *Mode) luaScreenCenter(L *lua.LState) int {
	y := L.CheckInt(1)
	text := L.CheckString(2)
	n := core.DrawCentered(m.env.Surface, y, text, m.style(L.OptString(3, "")))
	L.Push(lua.LNumber(n))
	return 1
}

func (m *Mode) style(name string) core.Style {
	switch name {
	case "accent":
		return m.env.Accent()
	case "muted":
		return m.env.Muted()
	case "bold":
		return m.env.Base().Bold()
	case "reverse":
		return m.env.Base().Reverse()
	default:
		return m.env.Base()
	}
}

func (m *Mode) luaInputPressed(L *lua.LState) int {
	action := L.CheckString(1)
	L.Push(lua.LBool(m.in != nil && m.in.Action(action)))
	return 1
}

func (m *Mode) luaInputTake(L *lua.LState) int {
	action := L.CheckString(1)
	L.Push(lua.LBool(m.in != nil && m.in.TakeAction(action)))
	return 1
}

func (m *Mode) luaInputText(L *lua.LState) int {
	if m.in == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(m.in.Text()))
	return 1
}

func toLua(v any) lua.LValue {
	switch v := v.(type) {
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case uint64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case bool:
		return lua.LBool(v)
	default:
		return lua.LNil
	}
}

func joinArgs(L *lua.LState) string {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	return strings.Join(parts, "\t")
}
