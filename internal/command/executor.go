package command

// executor implements Executor on top of a ShellExecutor
type executor struct {
	shell ShellExecutor
}

// NewExecutor creates a new command executor with the given shell executor
func NewExecutor(shell ShellExecutor) Executor {
	return &executor{
		shell: shell,
	}
}

// NewRealExecutor creates an executor that runs real processes
func NewRealExecutor() Executor {
	return NewExecutor(NewRealShellExecutor())
}

// Execute runs every command in order. A failing command does not stop the
// sequence; its error is recorded in the corresponding Result.
func (e *executor) Execute(commands []Command) (*ExecutionResult, error) {
	result := &ExecutionResult{
		Results: make([]Result, 0, len(commands)),
	}

	for _, cmd := range commands {
		output, err := e.shell.Execute(cmd.Name, cmd.Args, cmd.WorkDir, cmd.Env)

		result.Results = append(result.Results, Result{
			Command: cmd,
			Output:  output,
			Error:   err,
		})
	}

	return result, nil
}
