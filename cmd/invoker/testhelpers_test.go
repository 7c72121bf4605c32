package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/invoker/internal/command"
	"github.com/satococoa/invoker/internal/testutil"
)

// scriptedExecutor fails every script containing one of the failing markers
// and records the scripts it was asked to run.
type scriptedExecutor struct {
	scripts []string
	failing []string
}

func (e *scriptedExecutor) Execute(commands []command.Command) (*command.ExecutionResult, error) {
	result := &command.ExecutionResult{}
	for _, cmd := range commands {
		script := cmd.Args[len(cmd.Args)-1]
		e.scripts = append(e.scripts, script)

		res := command.Result{Command: cmd, Output: "ran " + script}
		for _, marker := range e.failing {
			if strings.Contains(script, marker) {
				res.Output = ""
				res.Error = &exitError{script: script}
			}
		}
		result.Results = append(result.Results, res)
	}
	return result, nil
}

type exitError struct {
	script string
}

func (e *exitError) Error() string {
	return "exit status 1"
}

// newTestApp returns the application with output captured in out and the
// run command wired to executor instead of a real shell.
func newTestApp(executor command.Executor, out, errOut io.Writer) *cli.Command {
	app := newApp()
	app.Writer = out
	app.ErrWriter = errOut
	for _, sub := range app.Commands {
		if sub.Name == "run" {
			sub.Action = func(ctx context.Context, cmd *cli.Command) error {
				return runCommandWithExecutor(ctx, cmd, outputWriter(cmd), executor)
			}
		}
	}
	return app
}

func runApp(t *testing.T, executor command.Executor, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := newTestApp(executor, &out, &errOut)
	err := app.Run(context.Background(), append([]string{"invoker"}, args...))
	return out.String(), errOut.String(), err
}

func writePlan(t *testing.T, dir, content string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, "plan.yml", content)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	testutil.Chdir(t, dir)
}
