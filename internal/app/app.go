// Package app wires the gameflow host: configuration, logging, metrics, the
// display backend, the input queue, the mode registry and the flow controller.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/gameflow/internal/config"
	"github.com/dshills/gameflow/internal/flow"
	"github.com/dshills/gameflow/internal/input"
	"github.com/dshills/gameflow/internal/modes"
	"github.com/dshills/gameflow/internal/renderer/backend"
)

// Application owns every component of one gameflow session.
type Application struct {
	mu sync.Mutex

	cfg      *config.Config
	logger   *Logger
	logFile  *os.File
	metrics  *Metrics
	registry *flow.Registry
	env      *modes.Env
	queue    *input.Queue
	backend  backend.Backend
	runID    string

	running atomic.Bool
	closed  bool
	stop    bool
	cancel  context.CancelFunc
	stats   flow.Stats
	carry   *flow.Carry

	opts Options
}

// Options configures the application.
type Options struct {
	// Config is the loaded configuration. Nil uses config.Default().
	Config *config.Config

	// ConfigPath is the file Config was loaded from. Relative script paths
	// are resolved against its directory.
	ConfigPath string

	// ScriptDir overrides the directory relative script paths resolve against.
	ScriptDir string

	// LogOutput receives log lines when no log file is configured.
	// Nil discards them.
	LogOutput io.Writer

	// Seed fixes the builtin modes' randomness. Zero is random.
	Seed uint64
}

// New creates an application from opts. Nothing touches the terminal until Run.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	app := &Application{
		cfg:     cfg,
		metrics: NewMetrics(),
		carry:   flow.NewCarry(),
		opts:    opts,
	}
	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// SetBackend sets the display backend. Without one, Run opens a terminal,
// or a headless backend when the configuration asks for one.
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Run opens the backend and drives modes until one quits, ctx is done,
// Shutdown is called or a mode fails. Ctrl+C and the configured
// max_seconds end the run without an error.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		app.mu.Lock()
		app.cancel, app.stop = nil, false
		app.running.Store(false)
		app.mu.Unlock()
	}()

	app.mu.Lock()
	closed := app.closed
	app.mu.Unlock()
	if closed {
		return ErrShutdown
	}

	b, err := app.openBackend()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if limit := app.cfg.Loop.MaxSeconds; limit > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, time.Duration(limit)*time.Second)
		defer stop()
	}
	app.mu.Lock()
	app.cancel = cancel
	if app.stop {
		app.stop = false
		cancel()
	}
	app.mu.Unlock()

	app.env.Surface = b
	app.queue.Start(interruptSource{src: b, interrupt: cancel})
	defer func() {
		app.queue.Stop()
		b.Shutdown()
		app.queue.Wait()
		app.metrics.RecordInput(app.queue.Stats())
	}()

	ctrl, err := app.newController(b)
	if err != nil {
		return err
	}

	log := app.logger
	log.Info("run started: mode %s, %d fps", app.cfg.Modes.Initial, app.cfg.Loop.FrameRate)
	err = ctrl.Run(ctx)
	app.mu.Lock()
	app.stats = ctrl.Stats()
	app.mu.Unlock()

	snap := app.metrics.Snapshot()
	log.Info("run finished: %d frames, %d changes, %.1f fps", app.stats.Frames, snap.Changes, snap.AvgFPS())

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Info("run ended externally: %v", err)
		return nil
	}
	if err != nil {
		log.Error("run failed: %v", err)
	}
	return err
}

func (app *Application) openBackend() (backend.Backend, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	// A backend opened here belongs to this run only.
	b := app.backend
	if b == nil {
		if app.cfg.Display.Headless {
			b = backend.NewNullBackend(app.cfg.Display.Width, app.cfg.Display.Height)
		} else {
			t, err := backend.NewTerminal()
			if err != nil {
				return nil, &InitError{Component: "backend", Err: err}
			}
			b = t
		}
	}
	if err := b.Init(); err != nil {
		return nil, &InitError{Component: "backend", Err: err}
	}
	return b, nil
}

func (app *Application) newController(b backend.Backend) (*flow.Controller, error) {
	initial, err := app.registry.Factory(app.cfg.Modes.Initial)
	if err != nil {
		return nil, &InitError{Component: "modes", Err: err}
	}

	ctrl, err := flow.New(initial,
		flow.WithFrameRate(app.cfg.Loop.FrameRate),
		flow.WithLogger(app.logger.WithComponent("flow")),
		flow.WithRecorder(app.metrics),
		flow.WithPresenter(b),
		flow.WithPanicRecovery(app.cfg.Loop.RecoverPanics),
		flow.WithCarry(app.carry),
	)
	if err != nil {
		return nil, &InitError{Component: "flow", Err: err}
	}

	log := app.logger.WithComponent("flow")
	ctrl.OnTransition(func(ev flow.TransitionEvent) {
		if ev.Kind == flow.KindChange {
			log.Info("frame %d: %s -> %s", ev.Frame, ev.From, ev.To)
			return
		}
		log.Info("frame %d: %s quit", ev.Frame, ev.From)
	})
	return ctrl, nil
}

// Shutdown ends a running session at the next frame boundary. Called while
// idle, it releases the log file and later calls to Run return ErrShutdown.
// It is safe to call at any time.
func (app *Application) Shutdown() {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		if app.cancel != nil {
			app.cancel()
		} else {
			app.stop = true
		}
		return
	}
	app.closed = true
	app.logger.SetOutput(io.Discard)
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

// IsRunning reports whether Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Registry returns the mode registry.
func (app *Application) Registry() *flow.Registry {
	return app.registry
}

// Metrics returns the loop metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// RunID returns the identifier attached to this session's log lines.
func (app *Application) RunID() string {
	return app.runID
}

// Carry returns the carry store shared by the session's modes.
func (app *Application) Carry() *flow.Carry {
	return app.carry
}

// Stats returns the controller statistics of the last run.
func (app *Application) Stats() flow.Stats {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.stats
}
