// Package commands defines the gameflow command line.
package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dshills/gameflow/internal/config"
)

// BuildInfo describes the binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand returns the top-level CLI command. Without a subcommand
// it runs the game.
func NewRootCommand(info BuildInfo) *cli.Command {
	run := NewRunCommand()
	return &cli.Command{
		Name:  "gameflow",
		Usage: "Drive a terminal game through its modes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML or YAML config file (default: ./gameflow.toml or ./gameflow.yaml)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file",
			},
		},
		Commands: []*cli.Command{
			run,
			NewModesCommand(),
			NewConfigCommand(),
			NewVersionCommand(info),
		},
		Action: run.Action,
	}
}

// loadConfig loads the file named by --config, or the first config file in
// the working directory, then applies the global flags.
func loadConfig(cmd *cli.Command) (*config.Config, string, error) {
	path := cmd.String("config")
	if path == "" {
		path = config.Find(".")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-file") {
		cfg.Log.File = cmd.String("log-file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// NewVersionCommand returns the version subcommand.
func NewVersionCommand(info BuildInfo) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			fmt.Fprintf(w, "gameflow %s\n", info.Version)
			fmt.Fprintf(w, "Commit: %s\n", info.Commit)
			fmt.Fprintf(w, "Built: %s\n", info.Date)
			return nil
		},
	}
}
