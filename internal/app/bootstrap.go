package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gameflow/internal/flow"
	"github.com/dshills/gameflow/internal/input"
	"github.com/dshills/gameflow/internal/modes"
	"github.com/dshills/gameflow/internal/script"
)

// bootstrapper initializes components in dependency order and releases
// what it opened when a later step fails.
type bootstrapper struct {
	app     *Application
	opts    Options
	closers []io.Closer
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{app: app, opts: opts}
}

func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initLogger,
		b.initInput,
		b.initModes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

// initLogger picks the log output: the configured file, the caller's
// writer, or nothing when the terminal owns the screen.
func (b *bootstrapper) initLogger() error {
	cfg := b.app.cfg
	out := b.opts.LogOutput
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		b.closers = append(b.closers, f)
		b.app.logFile = f
		out = f
	}
	if out == nil {
		out = io.Discard
	}

	b.app.runID = uuid.NewString()
	b.app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Log.Level),
		Output: out,
		Prefix: "gameflow",
	}).WithField("run", b.app.runID)
	return nil
}

func (b *bootstrapper) initInput() error {
	cfg := b.app.cfg
	bindings, err := input.ParseBindings(cfg.Input.Bindings)
	if err != nil {
		return &InitError{Component: "input", Err: err}
	}
	b.app.queue = input.NewQueue(cfg.Input.QueueSize)
	b.app.queue.SetBindings(bindings)
	return nil
}

func (b *bootstrapper) initModes() error {
	cfg := b.app.cfg
	palette, err := cfg.Palette()
	if err != nil {
		return &InitError{Component: "theme", Err: err}
	}

	b.app.registry = flow.NewRegistry()
	b.app.env = &modes.Env{
		Registry: b.app.registry,
		Input:    b.app.queue,
		Palette:  palette,
		Game:     cfg.Game,
		Logger:   b.app.logger.WithComponent("modes"),
		Seed:     b.opts.Seed,
	}
	modes.Register(b.app.env)

	dir := b.opts.ScriptDir
	if dir == "" && b.opts.ConfigPath != "" {
		dir = filepath.Dir(b.opts.ConfigPath)
	}
	timeout := time.Duration(cfg.Modes.ScriptTimeoutMs) * time.Millisecond
	script.Register(b.app.env, cfg.Modes.Scripts, dir, script.WithTimeout(timeout))

	if !b.app.registry.Has(cfg.Modes.Initial) {
		return &InitError{
			Component: "modes",
			Err:       fmt.Errorf("%w: %s", flow.ErrUnknownMode, cfg.Modes.Initial),
		}
	}
	return nil
}

func (b *bootstrapper) cleanup() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i].Close()
	}
	b.closers = nil
	b.app.logFile = nil
}
