package command

import (
	"os"
	"os/exec"
	"strings"
)

// realShellExecutor implements ShellExecutor using os/exec
type realShellExecutor struct{}

// NewRealShellExecutor creates a new shell executor that executes real commands
func NewRealShellExecutor() ShellExecutor {
	return &realShellExecutor{}
}

// Execute runs the command and returns its combined, trimmed output
func (s *realShellExecutor) Execute(name string, args []string, workDir string, env []string) (string, error) {
	// #nosec G204 - Commands come from a plan file controlled by the user
	cmd := exec.Command(name, args...)

	if workDir != "" {
		cmd.Dir = workDir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	output, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(output)), err
}
