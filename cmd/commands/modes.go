package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dshills/gameflow/internal/app"
)

// NewModesCommand returns the modes subcommand.
func NewModesCommand() *cli.Command {
	return &cli.Command{
		Name:  "modes",
		Usage: "List the modes that can be run",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			application, err := app.New(app.Options{Config: cfg, ConfigPath: path})
			if err != nil {
				return err
			}
			defer application.Shutdown()

			w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			for _, name := range application.Registry().Names() {
				source := "builtin"
				if p, ok := cfg.Modes.Scripts[name]; ok {
					source = "script " + p
				}
				marker := " "
				if name == cfg.Modes.Initial {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %s\t%s\n", marker, name, source)
			}
			return w.Flush()
		},
	}
}
