package invoker

import "fmt"

// Command is a reversible unit of work.
//
// Execute performs the forward action and Unexecute compensates it. The
// invoker calls them verbatim on exec, undo and redo, so a command that can be
// redone must tolerate running Execute more than once.
type Command[R any] interface {
	Execute() (R, error)
	Unexecute() error
}

// Describer is implemented by commands that can name themselves for
// introspection and logging.
type Describer interface {
	Description() string
}

// Func is a command built from a pair of closures.
// A nil Unexec compensates nothing.
type Func[R any] struct {
	Name   string
	Exec   func() (R, error)
	Unexec func() error
}

// Execute runs the forward closure.
func (f *Func[R]) Execute() (R, error) {
	if f.Exec == nil {
		var zero R
		return zero, nil
	}
	return f.Exec()
}

// Unexecute runs the compensating closure.
func (f *Func[R]) Unexecute() error {
	if f.Unexec == nil {
		return nil
	}
	return f.Unexec()
}

// Description returns the name given at construction.
func (f *Func[R]) Description() string {
	if f.Name == "" {
		return "func"
	}
	return f.Name
}

// New creates a command from an exec and an unexec closure.
func New[R any](exec func() (R, error), unexec func() error) Command[R] {
	return &Func[R]{Exec: exec, Unexec: unexec}
}

// ExecOnly creates a command whose compensation is a no-op.
func ExecOnly[R any](exec func() (R, error)) Command[R] {
	return &Func[R]{Exec: exec}
}

// Named attaches a description to cmd.
func Named[R any](name string, cmd Command[R]) Command[R] {
	if f, ok := cmd.(*Func[R]); ok {
		return &Func[R]{Name: name, Exec: f.Exec, Unexec: f.Unexec}
	}
	return &named[R]{Command: cmd, name: name}
}

type named[R any] struct {
	Command[R]
	name string
}

func (n *named[R]) Description() string {
	return n.name
}

// Describe returns a human readable name for cmd.
func Describe[R any](cmd Command[R]) string {
	if d, ok := cmd.(Describer); ok {
		return d.Description()
	}
	return fmt.Sprintf("%T", cmd)
}
