package main

import "github.com/urfave/cli/v3"

const (
	flagVerbose   = "verbose"
	flagLogFormat = "log-format"
)

func init() {
	// -v belongs to --verbose.
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "invoker",
		Usage: "Run reversible step plans with automatic rollback",
		Description: "invoker executes the steps of a plan in order. Every step pairs a forward action " +
			"with a compensating undo action, and a failing step rolls back according to the plan's policy.",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagVerbose,
				Aliases: []string{"v"},
				Usage:   "Log every exec, undo and redo transition",
			},
			&cli.StringFlag{
				Name:  flagLogFormat,
				Usage: "Log format: text or json",
				Value: logFormatText,
			},
		},
		Commands: []*cli.Command{
			NewRunCommand(),
			NewValidateCommand(),
			NewInitCommand(),
			NewDemoCommand(),
		},
	}
}
