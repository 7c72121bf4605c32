package invoker

import (
	"fmt"
	"strings"
)

// RollbackError is returned by ExecOrUndo and ExecOrUndoAll when the
// automatic compensation itself failed. Cause is the original execute error.
type RollbackError struct {
	Cause        error
	Compensation []error
}

func (e *RollbackError) Error() string {
	var b strings.Builder
	if e.Cause != nil {
		b.WriteString(e.Cause.Error())
	} else {
		b.WriteString("command failed")
	}
	fmt.Fprintf(&b, " (rollback incomplete: %d compensation error(s)", len(e.Compensation))
	for _, err := range e.Compensation {
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	b.WriteString(")")
	return b.String()
}

// Unwrap exposes the cause followed by every compensation error.
func (e *RollbackError) Unwrap() []error {
	errs := make([]error, 0, len(e.Compensation)+1)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return append(errs, e.Compensation...)
}

// rollbackResult returns cause unchanged when nothing failed during rollback.
func rollbackResult(cause error, compensation []error) error {
	if len(compensation) == 0 {
		return cause
	}
	return &RollbackError{Cause: cause, Compensation: compensation}
}
