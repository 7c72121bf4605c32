package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/invoker/internal/errors"
)

const (
	configFileMode = 0o600
	flagForce      = "force"
)

const samplePlan = `# invoker plan
version: "1.0"

defaults:
  # What happens when a step fails:
  #   all  - undo every step executed so far
  #   self - compensate only the failing step
  #   none - leave everything in place
  rollback: all

  # Keep failed steps in history so their undo action runs during rollback
  record_failures: false

  # Maximum number of steps kept for undo (0 = unlimited)
  max_history: 0

steps:
  - name: prepare
    type: command
    command: mkdir -p build
    undo: rm -rf build

  - name: stamp
    type: command
    command: echo "built by $INVOKER_STEP_NAME" > build/stamp.txt
    undo: rm -f build/stamp.txt

  # More examples (commented out):
  # - name: env
  #   type: copy
  #   from: .env.example
  #   to: .env
  # - name: migrate
  #   type: command
  #   command: ./scripts/migrate up
  #   undo: ./scripts/migrate down
  #   work_dir: backend
  #   env:
  #     DATABASE_URL: postgres://localhost/dev
`

// NewInitCommand creates the init command definition
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a sample plan file",
		Description: "Creates a .invoker.yml plan in the current directory " +
			"with example steps and rollback settings.",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.BoolFlag{
				Name:  flagForce,
				Usage: "Overwrite an existing plan file",
			},
		},
		Action: initCommand,
	}
}

func initCommand(_ context.Context, cmd *cli.Command) error {
	planPath, err := resolvePlanPath(cmd.String(flagFile))
	if err != nil {
		return err
	}

	if _, err := os.Stat(planPath); err == nil && !cmd.Bool(flagForce) {
		return errors.PlanAlreadyExists(planPath)
	}

	if err := os.WriteFile(planPath, []byte(samplePlan), configFileMode); err != nil {
		return errors.DirectoryAccessFailed("create plan file in", planPath, err)
	}

	w := outputWriter(cmd)
	fmt.Fprintf(w, "Plan file created: %s\n", planPath)
	fmt.Fprintln(w, "Edit this file to describe your steps, then run 'invoker run'.")
	return nil
}
