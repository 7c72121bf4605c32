package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error messages with helpful context and suggestions

// Plan Errors
func NoPlanFile(path string) error {
	msg := fmt.Sprintf(`plan file not found: %s

Solutions:
  • Run 'invoker init' to create a sample plan
  • Pass an explicit plan with '--file <path>'
  • Check that you are in the correct directory`, path)
	return errors.New(msg)
}

func PlanLoadFailed(path string, parseError error) error {
	msg := fmt.Sprintf("failed to load plan from '%s'", path)

	parseErrorStr := parseError.Error()
	if strings.Contains(parseErrorStr, "yaml") || strings.Contains(parseErrorStr, "parse") {
		msg += `

Cause: YAML syntax error in plan file
Solutions:
  • Check YAML syntax and indentation
  • Run 'invoker validate' after editing`
	} else if strings.Contains(parseErrorStr, "invalid") {
		msg += `

Cause: Plan does not pass validation
Solutions:
  • Every step needs a unique 'name' and a 'type' of 'command' or 'copy'
  • Command steps need 'command'; copy steps need 'from' and 'to'`
	} else if strings.Contains(parseErrorStr, "permission denied") {
		msg += `

Cause: Permission denied reading plan file
Solution: Check file permissions`
	}

	return fmt.Errorf("%s\n\nOriginal error: %w", msg, parseError)
}

func PlanAlreadyExists(path string) error {
	msg := fmt.Sprintf(`plan file already exists: %s

Options:
  • Edit the existing file manually
  • Use 'invoker init --force' to overwrite it`, path)
	return errors.New(msg)
}

// Execution Errors
func StepFailed(index int, name string, rolledBack int, stepError error) error {
	msg := fmt.Sprintf("step #%d '%s' failed", index+1, name)

	// A negative count means rollback was not attempted
	if rolledBack >= 0 {
		msg += fmt.Sprintf("\n\nRolled back %d step(s).", rolledBack)
	}

	errorStr := stepError.Error()
	if strings.Contains(errorStr, "command not found") || strings.Contains(errorStr, "executable file not found") {
		msg += `

Cause: Command not found
Solutions:
  • Install the required command
  • Check command spelling in the plan
  • Use the full path to the command`
	} else if strings.Contains(errorStr, "destination already exists") {
		msg += `

Cause: Copy destination already exists
Solution: Remove the destination or point 'to' at a new path`
	} else if strings.Contains(errorStr, "permission denied") {
		msg += `

Cause: Permission denied
Solutions:
  • Check file permissions
  • Ensure the command is executable`
	}

	return fmt.Errorf("%s\n\nOriginal error: %w", msg, stepError)
}

func RollbackIncomplete(stepError error) error {
	msg := `rollback did not complete cleanly

Some compensating actions failed; the working tree may contain partial changes.
Tip: Run with '--verbose' to see every undo attempt`
	return fmt.Errorf("%s\n\nOriginal error: %w", msg, stepError)
}

func UnsupportedRollbackPolicy(policy string, supported []string) error {
	msg := fmt.Sprintf("unsupported rollback policy: %s", policy)

	if len(supported) > 0 {
		msg += "\n\nSupported policies:"
		for _, p := range supported {
			msg += fmt.Sprintf("\n  • %s", p)
		}
	}

	return errors.New(msg)
}

// File System Errors
func DirectoryAccessFailed(operation, path string, originalError error) error {
	msg := fmt.Sprintf("failed to %s directory: %s", operation, path)

	errorStr := originalError.Error()
	if strings.Contains(errorStr, "permission denied") {
		msg += `

Cause: Permission denied
Solutions:
  • Check directory permissions
  • Run with appropriate privileges
  • Ensure you own the directory`
	} else if strings.Contains(errorStr, "no such file or directory") {
		msg += `

Cause: Directory does not exist
Solutions:
  • Create the parent directory first
  • Check the path spelling
  • Use an absolute path`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}
