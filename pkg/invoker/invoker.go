package invoker

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// entry wraps a command with the time it was pushed.
type entry[R any] struct {
	command   Command[R]
	timestamp time.Time
}

// Entry describes a command held in one of the invoker's stacks.
type Entry struct {
	Description string
	Timestamp   time.Time
}

// Invoker executes commands and keeps the history needed to undo and redo them.
//
// The mutex is held for the full duration of every operation, including the
// command callbacks, so callbacks must not call back into the same invoker.
type Invoker[R any] struct {
	mu sync.Mutex

	done   []*entry[R]
	undone []*entry[R]

	logger         *slog.Logger
	recordFailures bool
	maxHistory     int
}

// NewInvoker creates an empty invoker.
func NewInvoker[R any](opts ...Option) *Invoker[R] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Invoker[R]{
		logger:         o.logger,
		recordFailures: o.recordFailures,
		maxHistory:     o.maxHistory,
	}
}

// Exec clears the redo history, executes cmd and records it.
// The execute result is returned unchanged.
func (inv *Invoker[R]) Exec(cmd Command[R]) (R, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	result, _, err := inv.execLocked(cmd)
	return result, err
}

// Undo compensates the most recently executed command.
// It reports false when there is nothing to undo; err is the Unexecute result.
func (inv *Invoker[R]) Undo() (bool, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	return inv.undoLocked()
}

// Redo re-executes the most recently undone command.
// It reports false when there is nothing to redo.
func (inv *Invoker[R]) Redo() (R, bool, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if len(inv.undone) == 0 {
		var zero R
		inv.logger.Debug("nothing to redo")
		return zero, false, nil
	}

	e := inv.undone[len(inv.undone)-1]
	inv.undone = inv.undone[:len(inv.undone)-1]

	result, err := e.command.Execute()
	if err != nil && !inv.recordFailures {
		inv.undone = append(inv.undone, e)
		inv.logTransition("redo failed", e.command, err)
		return result, true, err
	}

	e.timestamp = time.Now()
	inv.pushDone(e)
	inv.logTransition("redo", e.command, err)
	return result, true, err
}

// UndoAll undoes every command in the done stack. The number of undo calls is
// fixed when UndoAll starts. Failures do not stop the loop and are joined into
// the returned error.
func (inv *Invoker[R]) UndoAll() error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	return errors.Join(inv.undoAllLocked()...)
}

// ExecOrUndo executes cmd and, if it fails, compensates only that command.
// Earlier commands stay in place. The original execute error is returned.
func (inv *Invoker[R]) ExecOrUndo(cmd Command[R]) (R, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	result, recorded, err := inv.execLocked(cmd)
	if err == nil {
		return result, nil
	}
	if !recorded {
		return result, err
	}

	var compensation []error
	if _, undoErr := inv.undoLocked(); undoErr != nil {
		compensation = append(compensation, undoErr)
	}
	return result, rollbackResult(err, compensation)
}

// ExecOrUndoAll executes cmd and, if it fails, undoes the whole done history.
// The original execute error is returned.
func (inv *Invoker[R]) ExecOrUndoAll(cmd Command[R]) (R, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	result, _, err := inv.execLocked(cmd)
	if err == nil {
		return result, nil
	}

	return result, rollbackResult(err, inv.undoAllLocked())
}

// execLocked reports whether cmd ended up in the done stack.
func (inv *Invoker[R]) execLocked(cmd Command[R]) (R, bool, error) {
	inv.undone = nil

	result, err := cmd.Execute()
	if err != nil && !inv.recordFailures {
		inv.logTransition("exec failed", cmd, err)
		return result, false, err
	}

	inv.pushDone(&entry[R]{command: cmd, timestamp: time.Now()})
	inv.logTransition("exec", cmd, err)
	return result, true, err
}

func (inv *Invoker[R]) undoLocked() (bool, error) {
	if len(inv.done) == 0 {
		inv.logger.Debug("nothing to undo")
		return false, nil
	}

	e := inv.done[len(inv.done)-1]
	inv.done = inv.done[:len(inv.done)-1]

	err := e.command.Unexecute()
	e.timestamp = time.Now()
	inv.undone = append(inv.undone, e)
	inv.logTransition("undo", e.command, err)
	return true, err
}

func (inv *Invoker[R]) undoAllLocked() []error {
	var errs []error
	for range len(inv.done) {
		if _, err := inv.undoLocked(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// pushDone appends to the done stack and enforces the history cap.
func (inv *Invoker[R]) pushDone(e *entry[R]) {
	inv.done = append(inv.done, e)

	if inv.maxHistory > 0 && len(inv.done) > inv.maxHistory {
		excess := len(inv.done) - inv.maxHistory
		kept := copy(inv.done, inv.done[excess:])
		clear(inv.done[kept:])
		inv.done = inv.done[:kept]
	}
}

func (inv *Invoker[R]) logTransition(msg string, cmd Command[R], err error) {
	attrs := []any{
		slog.String("command", Describe(cmd)),
		slog.Int("done", len(inv.done)),
		slog.Int("undone", len(inv.undone)),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	inv.logger.Debug(msg, attrs...)
}

// CanUndo returns true if undo is available.
func (inv *Invoker[R]) CanUndo() bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.done) > 0
}

// CanRedo returns true if redo is available.
func (inv *Invoker[R]) CanRedo() bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.undone) > 0
}

// DoneCount returns the number of commands that can be undone.
func (inv *Invoker[R]) DoneCount() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.done)
}

// UndoneCount returns the number of commands that can be redone.
func (inv *Invoker[R]) UndoneCount() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.undone)
}

// Done returns the done stack, oldest first.
func (inv *Invoker[R]) Done() []Command[R] {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return commands(inv.done)
}

// Undone returns the undone stack, least recently undone first.
func (inv *Invoker[R]) Undone() []Command[R] {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return commands(inv.undone)
}

// PeekUndo returns the command the next Undo would target.
func (inv *Invoker[R]) PeekUndo() (Command[R], bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if len(inv.done) == 0 {
		return nil, false
	}
	return inv.done[len(inv.done)-1].command, true
}

// PeekRedo returns the command the next Redo would target.
func (inv *Invoker[R]) PeekRedo() (Command[R], bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if len(inv.undone) == 0 {
		return nil, false
	}
	return inv.undone[len(inv.undone)-1].command, true
}

// History returns info about the done stack.
func (inv *Invoker[R]) History() []Entry {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return entries(inv.done)
}

// RedoHistory returns info about the undone stack.
func (inv *Invoker[R]) RedoHistory() []Entry {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return entries(inv.undone)
}

// Clear drops both stacks without running any compensation.
func (inv *Invoker[R]) Clear() {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.done = nil
	inv.undone = nil
}

// String renders both stacks for debugging.
func (inv *Invoker[R]) String() string {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	return fmt.Sprintf("Invoker{done: [%s], undone: [%s]}",
		joinDescriptions(inv.done), joinDescriptions(inv.undone))
}

func commands[R any](stack []*entry[R]) []Command[R] {
	result := make([]Command[R], len(stack))
	for i, e := range stack {
		result[i] = e.command
	}
	return result
}

func entries[R any](stack []*entry[R]) []Entry {
	result := make([]Entry, len(stack))
	for i, e := range stack {
		result[i] = Entry{
			Description: Describe(e.command),
			Timestamp:   e.timestamp,
		}
	}
	return result
}

func joinDescriptions[R any](stack []*entry[R]) string {
	names := make([]string, len(stack))
	for i, e := range stack {
		names[i] = Describe(e.command)
	}
	return strings.Join(names, " ")
}
