package command

// Command represents a process to be executed
type Command struct {
	Name    string   // Program name (e.g., "sh")
	Args    []string // Program arguments
	WorkDir string   // Optional working directory
	Env     []string // Extra KEY=VALUE pairs appended to the inherited environment
}

// Result represents the result of a single command execution
type Result struct {
	Command Command
	Output  string
	Error   error
}

// ExecutionResult represents the result of executing multiple commands
type ExecutionResult struct {
	Results []Result
}

// ShellExecutor abstracts the actual process execution
type ShellExecutor interface {
	Execute(name string, args []string, workDir string, env []string) (string, error)
}

// Executor runs commands in sequence
type Executor interface {
	Execute(commands []Command) (*ExecutionResult, error)
}
