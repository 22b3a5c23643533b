package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/dshills/gameflow/internal/config"
)

// NewConfigCommand returns the config subcommand.
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (toml, yaml)",
				Value: "toml",
			},
			&cli.BoolFlag{
				Name:  "env",
				Usage: "List the environment variables that override settings",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			if cmd.Bool("env") {
				for _, key := range config.EnvKeys() {
					if _, err := w.Write([]byte(key + "\n")); err != nil {
						return err
					}
				}
				return nil
			}

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := config.Encode(cmd.String("format"), cfg)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		},
	}
}
