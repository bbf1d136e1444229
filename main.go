package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/genpipe/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	ctrl := &commands.Controller{
		Flags:   &commands.Flags{},
		Version: version,
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "genpipe",
		Usage:   "Generate factory code from an annotated GraphQL schema",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("GENPIPE_LOG_LEVEL"),
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "project file (default: nearest genpipe.{json,yaml,yml,toml})",
				Sources: cli.EnvVars("GENPIPE_CONFIG"),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, errors.Wrap(err, "failed to parse log level")
			}

			log.Logger = log.Level(level)
			ctrl.Flags.LogLevel = c.String("log-level")
			ctrl.Flags.Config = c.String("config")
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Run every configuration of the project file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "generate in memory without touching the output directories"},
					&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Value: 1, Usage: "configurations to run at once"},
					&cli.StringFlag{Name: "archive", Usage: "write the generated files to a tar.gz"},
					&cli.StringSliceFlag{Name: "only", Usage: "run only the named configurations"},
					&cli.BoolFlag{Name: "no-progress", Usage: "hide the progress bar"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Generate(ctx, commands.GenerateOptions{
						DryRun:     c.Bool("dry-run"),
						Parallel:   int(c.Int("parallel")),
						Archive:    c.String("archive"),
						Only:       c.StringSlice("only"),
						NoProgress: c.Bool("no-progress"),
					})
				},
			},
			{
				Name:  "watch",
				Usage: "Regenerate whenever the schema or the project file changes",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Value: 1, Usage: "configurations to run at once"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Watch(ctx, commands.WatchOptions{Parallel: int(c.Int("parallel"))})
				},
			},
			{
				Name:  "init",
				Usage: "Create a project file in the current directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "json", Usage: "project file format (json, yaml, toml)"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx, c.String("format"))
				},
			},
			{
				Name:      "plugins",
				Usage:     "List the plugins of a configuration in execution order",
				ArgsUsage: "[configuration]",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Plugins(ctx, c.Args().First())
				},
			},
			{
				Name:      "inspect",
				Usage:     "Show the types a configuration's schema resolves to",
				ArgsUsage: "[configuration]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "raw", Usage: "dump the full descriptors"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Inspect(ctx, commands.InspectOptions{
						Config: c.Args().First(),
						Raw:    c.Bool("raw"),
					})
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hints := errors.FlattenHints(err); hints != "" {
			fmt.Fprintln(os.Stderr, "Hint:", hints)
		}
		os.Exit(1)
	}
}
