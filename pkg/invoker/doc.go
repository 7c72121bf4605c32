// Package invoker provides a command invoker with undo, redo and automatic
// rollback.
//
// A Command pairs a forward action with its compensation. An Invoker runs
// commands and keeps two stacks: commands that are done and commands that
// were undone and may be redone. Executing a new command discards the redo
// stack.
//
// Two composite operations couple execution to compensation:
//
//   - ExecOrUndo compensates only the failing command.
//   - ExecOrUndoAll unwinds the entire history, which makes a sequence of
//     calls all-or-nothing.
//
// Example:
//
//	inv := invoker.NewInvoker[string]()
//	result, err := inv.ExecOrUndoAll(invoker.New(
//		func() (string, error) { return "created", os.Mkdir("build", 0o755) },
//		func() error { return os.Remove("build") },
//	))
//
// Undo and Redo report false when their stack is empty. That is not an error.
package invoker
