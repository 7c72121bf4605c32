package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/invoker/pkg/invoker"
)

// NewDemoCommand creates the demo command definition
func NewDemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Show a rollback in action",
		Description: "Executes a successful command followed by a failing one with full rollback, " +
			"printing each exec and unexec as it happens.",
		Action: demoCommand,
	}
}

func demoCommand(_ context.Context, cmd *cli.Command) error {
	logger, err := loggerFor(cmd)
	if err != nil {
		return err
	}
	return runDemo(outputWriter(cmd), invoker.NewInvoker[string](invoker.WithLogger(logger)))
}

func runDemo(w io.Writer, inv *invoker.Invoker[string]) error {
	first := invoker.Named("exec 1", invoker.New(
		func() (string, error) {
			fmt.Fprintln(w, "exec 1")
			return "i am result", nil
		},
		func() error {
			fmt.Fprintln(w, "unexec 1")
			return nil
		},
	))
	second := invoker.Named("exec 2", invoker.New(
		func() (string, error) {
			fmt.Fprintln(w, "exec 2")
			return "", stderrors.New("i am error")
		},
		func() error {
			fmt.Fprintln(w, "unexec 2")
			return nil
		},
	))

	result, err := inv.ExecOrUndoAll(first)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "received: %s\n", result)

	if _, err := inv.ExecOrUndoAll(second); err != nil {
		return fmt.Errorf("demo failed as expected after rolling back %d command(s): %w", inv.UndoneCount(), err)
	}
	return nil
}
