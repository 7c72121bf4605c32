package runner

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/satococoa/invoker/internal/config"
	"github.com/satococoa/invoker/internal/errors"
	iox "github.com/satococoa/invoker/internal/io"
	"github.com/satococoa/invoker/pkg/invoker"
)

const outputIndent = "    "

// Options configures a Runner
type Options struct {
	Policy         string
	RecordFailures bool
	MaxHistory     int
	Logger         *slog.Logger
}

// Report summarizes a run
type Report struct {
	Executed   int
	RolledBack int
	Remaining  int
	Results    []StepResult
}

// StepResult is the output of one successful step
type StepResult struct {
	Name   string
	Output string
}

// Runner executes a sequence of commands through one invoker
type Runner struct {
	inv    *invoker.Invoker[string]
	policy string
	w      io.Writer
	output *iox.IndentWriter
	logger *slog.Logger
}

// New creates a runner writing trace lines to w
func New(w io.Writer, opts Options) (*Runner, error) {
	if opts.Policy == "" {
		opts.Policy = config.DefaultRollback
	}
	if err := config.ValidateRollback(opts.Policy); err != nil {
		return nil, errors.UnsupportedRollbackPolicy(opts.Policy, config.RollbackPolicies)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runner{
		inv: invoker.NewInvoker[string](
			invoker.WithLogger(logger),
			invoker.WithRecordFailures(opts.RecordFailures),
			invoker.WithMaxHistory(opts.MaxHistory),
		),
		policy: opts.Policy,
		w:      w,
		output: iox.NewIndentWriter(w, "  "),
		logger: logger,
	}, nil
}

// Invoker returns the invoker holding the run history
func (r *Runner) Invoker() *invoker.Invoker[string] {
	return r.inv
}

// StepOutput is the writer commands should use for progress lines, so they
// appear nested under the step being executed.
func (r *Runner) StepOutput() io.Writer {
	return r.output
}

// Run executes commands in order using the configured rollback policy.
// Cancellation is checked between steps only; a running command is never
// interrupted.
func (r *Runner) Run(ctx context.Context, commands []invoker.Command[string]) (*Report, error) {
	report := &Report{}

	for i, cmd := range commands {
		name := invoker.Describe(cmd)

		if err := ctx.Err(); err != nil {
			r.logger.Info("run cancelled", "step", name)
			if r.policy == config.RollbackAll {
				rollbackErr := r.inv.UndoAll()
				report.RolledBack = r.inv.UndoneCount()
				r.printRollback(report.RolledBack)
				if rollbackErr != nil {
					err = stderrors.Join(err, rollbackErr)
				}
			}
			report.Remaining = r.inv.DoneCount()
			return report, fmt.Errorf("run interrupted before step #%d '%s': %w", i+1, name, err)
		}

		fmt.Fprintf(r.w, "%s %s\n", execStyle.Render("exec"), name)

		result, err := r.exec(cmd)
		if err != nil {
			rolledBack := -1
			if r.policy != config.RollbackNone {
				rolledBack = r.inv.UndoneCount()
			}
			report.RolledBack = max(rolledBack, 0)
			report.Remaining = r.inv.DoneCount()

			fmt.Fprintf(r.w, "%s %s\n", failStyle.Render("failed"), name)
			_ = r.output.WriteBlock(err.Error())
			r.printRollback(rolledBack)

			stepErr := errors.StepFailed(i, name, rolledBack, err)
			var rbErr *invoker.RollbackError
			if stderrors.As(err, &rbErr) {
				return report, errors.RollbackIncomplete(stepErr)
			}
			return report, stepErr
		}

		report.Executed++
		report.Results = append(report.Results, StepResult{Name: name, Output: result})
		r.printReceived(result)
	}

	report.Remaining = r.inv.DoneCount()
	fmt.Fprintf(r.w, "%s %d step(s) applied\n", okStyle.Render("done"), report.Executed)
	return report, nil
}

// Rehearse runs commands, undoes all of them, then redoes them. A plan that
// survives the rehearsal has working compensations and repeatable steps.
func (r *Runner) Rehearse(ctx context.Context, commands []invoker.Command[string]) (*Report, error) {
	report, err := r.Run(ctx, commands)
	if err != nil {
		return report, err
	}

	fmt.Fprintf(r.w, "%s rehearsing rollback\n", undoStyle.Render("undo"))
	var undoErrs []error
	for r.inv.CanUndo() {
		cmd, _ := r.inv.PeekUndo()
		fmt.Fprintf(r.w, "%s %s\n", undoStyle.Render("undo"), invoker.Describe(cmd))
		if _, err := r.inv.Undo(); err != nil {
			_ = r.output.WriteBlock(err.Error())
			undoErrs = append(undoErrs, err)
		}
	}
	if len(undoErrs) > 0 {
		report.Remaining = r.inv.DoneCount()
		return report, errors.RollbackIncomplete(stderrors.Join(undoErrs...))
	}

	for r.inv.CanRedo() {
		cmd, _ := r.inv.PeekRedo()
		fmt.Fprintf(r.w, "%s %s\n", execStyle.Render("redo"), invoker.Describe(cmd))
		if _, _, err := r.inv.Redo(); err != nil {
			report.Remaining = r.inv.DoneCount()
			return report, fmt.Errorf("redo of '%s' failed: %w", invoker.Describe(cmd), err)
		}
	}

	report.Remaining = r.inv.DoneCount()
	fmt.Fprintf(r.w, "%s rehearsal passed\n", okStyle.Render("done"))
	return report, nil
}

func (r *Runner) exec(cmd invoker.Command[string]) (string, error) {
	switch r.policy {
	case config.RollbackAll:
		return r.inv.ExecOrUndoAll(cmd)
	case config.RollbackSelf:
		return r.inv.ExecOrUndo(cmd)
	default:
		return r.inv.Exec(cmd)
	}
}

func (r *Runner) printReceived(result string) {
	switch {
	case result == "":
		fmt.Fprintf(r.w, "%s\n", okStyle.Render("ok"))
	case strings.Contains(result, "\n"):
		fmt.Fprintf(r.w, "%s\n", okStyle.Render("received:"))
		_ = iox.NewIndentWriter(r.w, outputIndent).WriteBlock(result)
	default:
		fmt.Fprintf(r.w, "%s %s\n", okStyle.Render("received:"), result)
	}
}

func (r *Runner) printRollback(n int) {
	if n > 0 {
		fmt.Fprintf(r.w, "%s rolled back %d step(s)\n", undoStyle.Render("undo"), n)
	}
}
