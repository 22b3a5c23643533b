package modes

import (
	"math/rand/v2"

	"github.com/dshills/gameflow/internal/config"
	"github.com/dshills/gameflow/internal/flow"
	"github.com/dshills/gameflow/internal/input"
	"github.com/dshills/gameflow/internal/renderer/core"
)

// Builtin mode names.
const (
	TitleName    = "title"
	PlayName     = "play"
	GameOverName = "gameover"
)

// Carry keys shared by the builtin modes.
var (
	ScoreKey  = flow.NewKey[int]("score")
	BestKey   = flow.NewKey[int]("best")
	ReasonKey = flow.NewKey[string]("reason")
	RoundsKey = flow.NewKey[int]("rounds")
)

// Env is what modes need from their host.
type Env struct {
	Registry *flow.Registry
	Input    *input.Queue
	Surface  core.Surface
	Palette  config.Palette
	Game     config.GameConfig
	Logger   flow.Logger

	// Seed makes obstacle placement reproducible. Zero picks a random seed.
	Seed uint64
}

// Register adds the builtin modes to env.Registry.
func Register(env *Env) {
	env.Registry.Register(TitleName, func(r flow.Requester) (flow.Mode, error) {
		return NewTitle(env, r), nil
	})
	env.Registry.Register(PlayName, func(r flow.Requester) (flow.Mode, error) {
		return NewPlay(env, r), nil
	})
	env.Registry.Register(GameOverName, func(r flow.Requester) (flow.Mode, error) {
		return NewGameOver(env, r), nil
	})
}

// Snapshot returns the input of frame f.
func (e *Env) Snapshot(f flow.Frame) *input.Snapshot {
	if e.Input == nil {
		return input.NewSnapshot(nil, nil)
	}
	return e.Input.Frame(f.Index)
}

// Build constructs the named mode for r.
func (e *Env) Build(name string, r flow.Requester) (flow.Mode, error) {
	return e.Registry.Build(name, r)
}

// Clear paints the whole surface with the background color.
func (e *Env) Clear() {
	w, h := e.Surface.Size()
	bg := core.Cell{Text: " ", Width: 1, Style: e.Base()}
	core.Fill(e.Surface, core.Rect{W: w, H: h}, bg)
}

// Base is the default text style of the theme.
func (e *Env) Base() core.Style {
	return core.DefaultStyle().Fg(e.Palette.Foreground).Bg(e.Palette.Background)
}

// Accent is the highlight style of the theme.
func (e *Env) Accent() core.Style {
	return e.Base().Fg(e.Palette.Accent)
}

// Muted is the style for secondary text.
func (e *Env) Muted() core.Style {
	return e.Base().Fg(e.Palette.Muted)
}

// Log returns the logger, never nil.
func (e *Env) Log() flow.Logger {
	if e.Logger == nil {
		return discard{}
	}
	return e.Logger
}

func (e *Env) rng() *rand.Rand {
	seed := e.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

type discard struct{}

func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
