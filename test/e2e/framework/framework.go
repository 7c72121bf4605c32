package framework

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const (
	dirPerm  = 0755
	filePerm = 0600

	planFileName = ".invoker.yml"
)

type TestEnvironment struct {
	t             *testing.T
	tmpDir        string
	invokerBinary string
	cleanup       []func()
}

func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	tmpDir := t.TempDir()
	env := &TestEnvironment{
		t:       t,
		tmpDir:  tmpDir,
		cleanup: []func(){},
	}

	env.buildInvoker()

	return env
}

func (e *TestEnvironment) buildInvoker() {
	e.t.Helper()

	invokerBinary := filepath.Join(e.tmpDir, "invoker")
	if runtime := os.Getenv("INVOKER_E2E_BINARY"); runtime != "" {
		invokerBinary = runtime
		if _, err := os.Stat(invokerBinary); err != nil {
			e.t.Fatalf("Specified invoker binary not found: %s", invokerBinary)
		}
	} else {
		projectRoot := e.findProjectRoot()
		cmd := exec.Command("go", "build", "-o", invokerBinary, "./cmd/invoker")
		cmd.Dir = projectRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			e.t.Fatalf("Failed to build invoker binary: %v\nOutput: %s", err, output)
		}
	}

	invokerBinary = filepath.Clean(invokerBinary)
	if !filepath.IsAbs(invokerBinary) {
		absPath, err := filepath.Abs(invokerBinary)
		if err != nil {
			e.t.Fatalf("Failed to get absolute path for binary: %v", err)
		}
		invokerBinary = absPath
	}

	e.invokerBinary = invokerBinary
}

func (e *TestEnvironment) findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			e.t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}

// CreateWorkspace creates an empty directory for a plan to operate in
func (e *TestEnvironment) CreateWorkspace(name string) *Workspace {
	e.t.Helper()

	dir := filepath.Join(e.tmpDir, name)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		e.t.Fatalf("Failed to create directory: %v", err)
	}

	return &Workspace{
		env:  e,
		path: dir,
	}
}

func (e *TestEnvironment) writeFile(path, content string) {
	e.t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		e.t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func (e *TestEnvironment) RunInvoker(args ...string) (string, error) {
	for _, arg := range args {
		if err := validateArg(arg); err != nil {
			return "", fmt.Errorf("invalid argument: %w", err)
		}
	}

	cmd := createSafeCommand(e.invokerBinary, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (e *TestEnvironment) TmpDir() string {
	return e.tmpDir
}

func (e *TestEnvironment) Cleanup() {
	for _, fn := range e.cleanup {
		fn()
	}
}

type Workspace struct {
	env  *TestEnvironment
	path string
}

func (w *Workspace) RunInvoker(args ...string) (string, error) {
	for _, arg := range args {
		if err := validateArg(arg); err != nil {
			return "", fmt.Errorf("invalid argument: %w", err)
		}
	}

	cmd := createSafeCommand(w.env.invokerBinary, args...)
	cmd.Dir = w.path
	cmd.Env = append(os.Environ(), "HOME="+w.env.tmpDir)

	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (w *Workspace) Path() string {
	return w.path
}

func (w *Workspace) WritePlan(content string) {
	w.env.writeFile(filepath.Join(w.path, planFileName), content)
}

func (w *Workspace) WriteFile(path, content string) {
	w.env.writeFile(filepath.Join(w.path, path), content)
}

func (w *Workspace) HasFile(path string) bool {
	_, err := os.Stat(filepath.Join(w.path, path))
	return err == nil
}

func (w *Workspace) ReadFile(path string) string {
	content, err := os.ReadFile(filepath.Join(w.path, path))
	if err != nil {
		w.env.t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// ReadLines returns the non-empty lines of a file
func (w *Workspace) ReadLines(path string) []string {
	var lines []string
	for _, line := range strings.Split(w.ReadFile(path), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// validateArg checks if an argument is safe to pass to exec.Command
func validateArg(arg string) error {
	if arg == "" {
		return nil
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\n", "\r"}
	for _, char := range dangerousChars {
		if strings.Contains(arg, char) {
			return fmt.Errorf("argument contains potentially dangerous character: %s", char)
		}
	}

	return nil
}

// createSafeCommand creates an exec.Cmd with a validated binary path
func createSafeCommand(binary string, args ...string) *exec.Cmd {
	return exec.Command(binary, args...)
}
