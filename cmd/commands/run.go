package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dshills/gameflow/internal/app"
	"github.com/dshills/gameflow/internal/config"
)

// NewRunCommand returns the run subcommand.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the game",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "Run without a terminal (implied when stdout is not a terminal)",
			},
			&cli.IntFlag{
				Name:  "fps",
				Usage: "Frames per second; 0 runs unthrottled",
			},
			&cli.IntFlag{
				Name:  "duration",
				Usage: "Stop after this many seconds",
			},
			&cli.StringFlag{
				Name:  "initial",
				Usage: "Name of the first mode",
			},
			&cli.BoolFlag{
				Name:  "recover",
				Usage: "Turn panics in modes into errors",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Seed for the builtin modes",
			},
		},
		Action: runGame,
	}
}

func runGame(ctx context.Context, cmd *cli.Command) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg, term.IsTerminal(int(os.Stdout.Fd())))
	if err := cfg.Validate(); err != nil {
		return err
	}

	var logOut io.Writer
	if cfg.Display.Headless {
		logOut = cmd.Root().ErrWriter
	}

	application, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: path,
		LogOutput:  logOut,
		Seed:       uint64(cmd.Int("seed")),
	})
	if err != nil {
		return err
	}
	defer application.Shutdown()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if cfg.Display.Headless {
		snap := application.Metrics().Snapshot()
		fmt.Fprintf(cmd.Root().Writer, "%d frames, %d mode changes, %.1f fps\n",
			application.Stats().Frames, snap.Changes, snap.AvgFPS())
	}
	return nil
}

// applyRunFlags lets run flags override the configuration.
func applyRunFlags(cmd *cli.Command, cfg *config.Config, interactive bool) {
	if cmd.Bool("headless") || !interactive {
		cfg.Display.Headless = true
	}
	if cmd.IsSet("fps") {
		cfg.Loop.FrameRate = cmd.Int("fps")
	}
	if cmd.IsSet("duration") {
		cfg.Loop.MaxSeconds = cmd.Int("duration")
	}
	if cmd.IsSet("initial") {
		cfg.Modes.Initial = cmd.String("initial")
	}
	if cmd.Bool("recover") {
		cfg.Loop.RecoverPanics = true
	}
}
