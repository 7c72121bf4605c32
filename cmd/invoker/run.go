package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/invoker/internal/command"
	"github.com/satococoa/invoker/internal/config"
	"github.com/satococoa/invoker/internal/errors"
	"github.com/satococoa/invoker/internal/runner"
	"github.com/satococoa/invoker/internal/steps"
)

const (
	flagFile           = "file"
	flagRollback       = "rollback"
	flagRecordFailures = "record-failures"
	flagRehearse       = "rehearse"
)

// Variable to allow mocking in tests
var osGetwd = os.Getwd

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagFile,
		Aliases: []string{"f"},
		Usage:   "Plan file to load",
		Value:   config.ConfigFileName,
	}
}

// NewRunCommand creates the run command definition
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute a plan",
		Description: "Executes every step of the plan in order. When a step fails, the rollback policy decides " +
			"what is compensated:\n" +
			"  all   undo every step executed so far (default)\n" +
			"  self  compensate only the failing step\n" +
			"  none  leave everything in place",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.StringFlag{
				Name:  flagRollback,
				Usage: "Rollback policy: all, self or none (overrides the plan)",
			},
			&cli.BoolFlag{
				Name:  flagRecordFailures,
				Usage: "Keep failed steps in history so their undo action runs during rollback",
			},
			&cli.BoolFlag{
				Name:  flagRehearse,
				Usage: "After a successful run, undo and redo every step to verify compensations",
			},
		},
		Action: runCommand,
	}
}

func runCommand(ctx context.Context, cmd *cli.Command) error {
	return runCommandWithExecutor(ctx, cmd, outputWriter(cmd), command.NewRealExecutor())
}

func runCommandWithExecutor(ctx context.Context, cmd *cli.Command, w io.Writer, executor command.Executor) error {
	planPath, err := resolvePlanPath(cmd.String(flagFile))
	if err != nil {
		return err
	}

	cfg, err := loadPlan(planPath)
	if err != nil {
		return err
	}

	if cmd.IsSet(flagRollback) {
		policy := cmd.String(flagRollback)
		if err := config.ValidateRollback(policy); err != nil {
			return errors.UnsupportedRollbackPolicy(policy, config.RollbackPolicies)
		}
		cfg.Defaults.Rollback = policy
	}
	if cmd.IsSet(flagRecordFailures) {
		cfg.Defaults.RecordFailures = cmd.Bool(flagRecordFailures)
	}

	logger, err := loggerFor(cmd)
	if err != nil {
		return err
	}

	r, err := runner.New(w, runner.Options{
		Policy:         cfg.Defaults.Rollback,
		RecordFailures: cfg.Defaults.RecordFailures,
		MaxHistory:     cfg.Defaults.MaxHistory,
		Logger:         logger.With("plan", planPath),
	})
	if err != nil {
		return err
	}

	builder := steps.NewBuilder(filepath.Dir(planPath), executor, r.StepOutput())
	commands, err := builder.BuildAll(cfg.Steps)
	if err != nil {
		return errors.PlanLoadFailed(planPath, err)
	}

	fmt.Fprintf(w, "Running %d step(s) from %s (rollback: %s)\n", len(commands), planPath, cfg.Defaults.Rollback)

	if cmd.Bool(flagRehearse) {
		_, err = r.Rehearse(ctx, commands)
	} else {
		_, err = r.Run(ctx, commands)
	}
	return err
}

func resolvePlanPath(path string) (string, error) {
	if path == "" {
		path = config.ConfigFileName
	}
	if filepath.IsAbs(path) {
		return path, nil
	}

	cwd, err := osGetwd()
	if err != nil {
		return "", errors.DirectoryAccessFailed("access current", ".", err)
	}
	return filepath.Join(cwd, path), nil
}

func loadPlan(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NoPlanFile(path)
		}
		return nil, errors.PlanLoadFailed(path, err)
	}
	return cfg, nil
}
