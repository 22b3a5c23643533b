package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/gameflow/internal/input"
	"github.com/dshills/gameflow/internal/renderer/core"
)

// Config is the complete gameflow configuration.
type Config struct {
	Log     LogConfig     `toml:"log" yaml:"log"`
	Loop    LoopConfig    `toml:"loop" yaml:"loop"`
	Display DisplayConfig `toml:"display" yaml:"display"`
	Theme   ThemeConfig   `toml:"theme" yaml:"theme"`
	Input   InputConfig   `toml:"input" yaml:"input"`
	Modes   ModesConfig   `toml:"modes" yaml:"modes"`
	Game    GameConfig    `toml:"game" yaml:"game"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
	// File receives log output. Terminal runs discard logs when empty.
	File string `toml:"file" yaml:"file"`
}

// LoopConfig configures the frame loop.
type LoopConfig struct {
	// FrameRate caps frames per second. Zero runs unthrottled.
	FrameRate     int  `toml:"frame_rate" yaml:"frame_rate"`
	RecoverPanics bool `toml:"recover_panics" yaml:"recover_panics"`
	// MaxSeconds stops the loop after this long. Zero runs until quit.
	MaxSeconds int `toml:"max_seconds" yaml:"max_seconds"`
}

// DisplayConfig selects and sizes the backend.
type DisplayConfig struct {
	Headless bool `toml:"headless" yaml:"headless"`
	// Width and Height size the headless backend.
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// ThemeConfig holds hex colors, or "default" for the terminal color.
type ThemeConfig struct {
	Foreground string `toml:"foreground" yaml:"foreground"`
	Background string `toml:"background" yaml:"background"`
	Accent     string `toml:"accent" yaml:"accent"`
	Muted      string `toml:"muted" yaml:"muted"`
}

// InputConfig configures the input queue and key bindings.
type InputConfig struct {
	QueueSize int                 `toml:"queue_size" yaml:"queue_size"`
	Bindings  map[string][]string `toml:"bindings" yaml:"bindings"`
}

// ModesConfig selects the initial mode and declares scripted modes.
type ModesConfig struct {
	Initial string `toml:"initial" yaml:"initial"`
	// Scripts maps mode names to Lua files.
	Scripts map[string]string `toml:"scripts" yaml:"scripts"`
	// ScriptTimeoutMs bounds each call into a script.
	ScriptTimeoutMs int `toml:"script_timeout_ms" yaml:"script_timeout_ms"`
}

// GameConfig tunes the builtin modes.
type GameConfig struct {
	RoundSeconds int `toml:"round_seconds" yaml:"round_seconds"`
	Lanes        int `toml:"lanes" yaml:"lanes"`
}

// Default returns the builtin configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Loop: LoopConfig{
			FrameRate: 30,
		},
		Display: DisplayConfig{Width: 60, Height: 20},
		Theme: ThemeConfig{
			Foreground: "default",
			Background: "default",
			Accent:     "#2aa198",
			Muted:      "#808080",
		},
		Input: InputConfig{QueueSize: input.DefaultCapacity},
		Modes: ModesConfig{
			Initial:         "title",
			ScriptTimeoutMs: 50,
		},
		Game: GameConfig{RoundSeconds: 20, Lanes: 5},
	}
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Display.Width == 0 {
		c.Display.Width = d.Display.Width
	}
	if c.Display.Height == 0 {
		c.Display.Height = d.Display.Height
	}
	if c.Theme.Foreground == "" {
		c.Theme.Foreground = d.Theme.Foreground
	}
	if c.Theme.Background == "" {
		c.Theme.Background = d.Theme.Background
	}
	if c.Theme.Accent == "" {
		c.Theme.Accent = d.Theme.Accent
	}
	if c.Theme.Muted == "" {
		c.Theme.Muted = d.Theme.Muted
	}
	if c.Input.QueueSize == 0 {
		c.Input.QueueSize = d.Input.QueueSize
	}
	if c.Modes.Initial == "" {
		c.Modes.Initial = d.Modes.Initial
	}
	if c.Modes.ScriptTimeoutMs == 0 {
		c.Modes.ScriptTimeoutMs = d.Modes.ScriptTimeoutMs
	}
	if c.Game.RoundSeconds == 0 {
		c.Game.RoundSeconds = d.Game.RoundSeconds
	}
	if c.Game.Lanes == 0 {
		c.Game.Lanes = d.Game.Lanes
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs.add("log.level", "must be one of debug, info, warn, error")
	}
	if c.Loop.FrameRate < 0 {
		errs.add("loop.frame_rate", "must not be negative")
	}
	if c.Loop.MaxSeconds < 0 {
		errs.add("loop.max_seconds", "must not be negative")
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs.add("display", "width and height must be positive")
	}
	for field, value := range map[string]string{
		"theme.foreground": c.Theme.Foreground,
		"theme.background": c.Theme.Background,
		"theme.accent":     c.Theme.Accent,
		"theme.muted":      c.Theme.Muted,
	} {
		if _, err := core.ParseColor(value); err != nil {
			errs.add(field, err.Error())
		}
	}
	if c.Input.QueueSize <= 0 {
		errs.add("input.queue_size", "must be positive")
	}
	if _, err := input.ParseBindings(c.Input.Bindings); err != nil {
		errs.add("input.bindings", err.Error())
	}
	if c.Modes.Initial == "" {
		errs.add("modes.initial", "must name a mode")
	}
	for name, path := range c.Modes.Scripts {
		if name == "" || path == "" {
			errs.add("modes.scripts", fmt.Sprintf("entry %q -> %q needs a name and a path", name, path))
		}
	}
	if c.Modes.ScriptTimeoutMs <= 0 {
		errs.add("modes.script_timeout_ms", "must be positive")
	}
	if c.Game.RoundSeconds <= 0 {
		errs.add("game.round_seconds", "must be positive")
	}
	if c.Game.Lanes < 2 {
		errs.add("game.lanes", "must be at least 2")
	}

	if len(errs) == 0 {
		return nil
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// Palette resolves the theme colors. Call after Validate.
func (c *Config) Palette() (Palette, error) {
	var p Palette
	var err error
	if p.Foreground, err = core.ParseColor(c.Theme.Foreground); err != nil {
		return p, err
	}
	if p.Background, err = core.ParseColor(c.Theme.Background); err != nil {
		return p, err
	}
	if p.Accent, err = core.ParseColor(c.Theme.Accent); err != nil {
		return p, err
	}
	if p.Muted, err = core.ParseColor(c.Theme.Muted); err != nil {
		return p, err
	}
	return p, nil
}

// Palette is the resolved theme.
type Palette struct {
	Foreground core.Color
	Background core.Color
	Accent     core.Color
	Muted      core.Color
}
