package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/invoker/internal/config"
)

// NewValidateCommand creates the validate command definition
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:        "validate",
		Usage:       "Check a plan without running it",
		Description: "Loads the plan, reports configuration errors and lists the steps that would run.",
		Flags:       []cli.Flag{fileFlag()},
		Action:      validateCommand,
	}
}

func validateCommand(_ context.Context, cmd *cli.Command) error {
	planPath, err := resolvePlanPath(cmd.String(flagFile))
	if err != nil {
		return err
	}

	cfg, err := loadPlan(planPath)
	if err != nil {
		return err
	}

	w := outputWriter(cmd)
	fmt.Fprintf(w, "Plan OK: %s\n", planPath)
	fmt.Fprintf(w, "Rollback: %s\n", cfg.Defaults.Rollback)
	if cfg.Defaults.MaxHistory > 0 {
		fmt.Fprintf(w, "Max history: %d\n", cfg.Defaults.MaxHistory)
	}
	fmt.Fprintf(w, "Steps (%d):\n", len(cfg.Steps))

	irreversible := 0
	for i, step := range cfg.Steps {
		mode := "reversible"
		if !step.IsReversible() {
			mode = "no undo"
			irreversible++
		}
		fmt.Fprintf(w, "  %d. %s (%s, %s)\n", i+1, step.Name, step.Type, mode)
	}

	if irreversible > 0 && cfg.Defaults.Rollback != config.RollbackNone {
		fmt.Fprintf(w, "Warning: %d step(s) have no undo action and are skipped during rollback\n", irreversible)
	}
	return nil
}
