package steps

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/satococoa/invoker/internal/command"
	"github.com/satococoa/invoker/internal/config"
	"github.com/satococoa/invoker/pkg/invoker"
)

// fakeExecutor records commands and replays canned results
type fakeExecutor struct {
	executed [][]command.Command
	output   string
	err      error
	empty    bool
}

func (f *fakeExecutor) Execute(commands []command.Command) (*command.ExecutionResult, error) {
	f.executed = append(f.executed, commands)
	if f.empty {
		return &command.ExecutionResult{}, nil
	}
	return &command.ExecutionResult{
		Results: []command.Result{{Command: commands[0], Output: f.output, Error: f.err}},
	}, nil
}

func (f *fakeExecutor) lastScript() string {
	last := f.executed[len(f.executed)-1][0]
	return last.Args[len(last.Args)-1]
}

func TestNewBuilder(t *testing.T) {
	exec := &fakeExecutor{}
	builder := NewBuilder("/test/root", exec, nil)

	if builder.root != "/test/root" {
		t.Error("Root not set correctly")
	}
	if builder.w != io.Discard {
		t.Error("Nil writer should default to io.Discard")
	}
}

func TestBuild_InvalidStep(t *testing.T) {
	builder := NewBuilder("/test/root", &fakeExecutor{}, nil)

	_, err := builder.Build(config.Step{Name: "bad", Type: "symlink"})
	if err == nil {
		t.Fatal("Expected error for invalid step type")
	}
}

func TestBuildAll_ReportsPosition(t *testing.T) {
	builder := NewBuilder("/test/root", &fakeExecutor{}, nil)

	_, err := builder.BuildAll([]config.Step{
		{Name: "ok", Type: config.StepTypeCommand, Command: "true"},
		{Name: "bad", Type: config.StepTypeCopy},
	})
	if err == nil || !strings.Contains(err.Error(), "failed to build step 2") {
		t.Fatalf("Expected step 2 build error, got %v", err)
	}
}

func TestCommandStep(t *testing.T) {
	t.Run("execute runs command with environment", func(t *testing.T) {
		exec := &fakeExecutor{output: "built"}
		var out strings.Builder
		builder := NewBuilder("/test/root", exec, &out)

		cmd, err := builder.Build(config.Step{
			Name:    "build",
			Type:    config.StepTypeCommand,
			Command: "make",
			Undo:    "make clean",
			Env:     map[string]string{"MODE": "release"},
			WorkDir: "src",
		})
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		result, err := cmd.Execute()
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if result != "built" {
			t.Errorf("Expected output 'built', got %q", result)
		}

		ran := exec.executed[0][0]
		if ran.WorkDir != filepath.Join("/test/root", "src") {
			t.Errorf("Unexpected work dir %s", ran.WorkDir)
		}
		wantEnv := []string{"INVOKER_ROOT=/test/root", "INVOKER_STEP_NAME=build", "MODE=release"}
		if strings.Join(ran.Env, ",") != strings.Join(wantEnv, ",") {
			t.Errorf("Expected env %v, got %v", wantEnv, ran.Env)
		}
		if exec.lastScript() != "make" {
			t.Errorf("Expected script 'make', got %s", exec.lastScript())
		}
		if !strings.Contains(out.String(), "Running: make") {
			t.Errorf("Expected progress line, got %q", out.String())
		}
		if invoker.Describe(cmd) != "build" {
			t.Errorf("Expected description 'build', got %s", invoker.Describe(cmd))
		}
	})

	t.Run("unexecute runs undo script", func(t *testing.T) {
		exec := &fakeExecutor{}
		builder := NewBuilder("/test/root", exec, nil)

		cmd, _ := builder.Build(config.Step{Name: "build", Type: config.StepTypeCommand, Command: "make", Undo: "make clean"})
		if err := cmd.Unexecute(); err != nil {
			t.Fatalf("Unexecute failed: %v", err)
		}

		if exec.lastScript() != "make clean" {
			t.Errorf("Expected undo script, got %s", exec.lastScript())
		}
		if exec.executed[0][0].WorkDir != "/test/root" {
			t.Errorf("Expected root work dir, got %s", exec.executed[0][0].WorkDir)
		}
	})

	t.Run("unexecute without undo is a no-op", func(t *testing.T) {
		exec := &fakeExecutor{}
		builder := NewBuilder("/test/root", exec, nil)

		cmd, _ := builder.Build(config.Step{Name: "notify", Type: config.StepTypeCommand, Command: "echo hi"})
		if err := cmd.Unexecute(); err != nil {
			t.Fatalf("Unexecute failed: %v", err)
		}
		if len(exec.executed) != 0 {
			t.Error("Expected no command to run")
		}
	})

	t.Run("failure carries output", func(t *testing.T) {
		exitErr := errors.New("exit status 2")
		exec := &fakeExecutor{output: "make: *** no rule", err: exitErr}
		builder := NewBuilder("/test/root", exec, nil)

		cmd, _ := builder.Build(config.Step{Name: "build", Type: config.StepTypeCommand, Command: "make"})
		_, err := cmd.Execute()
		if !errors.Is(err, exitErr) {
			t.Fatalf("Expected wrapped exit error, got %v", err)
		}
		if !strings.Contains(err.Error(), "make: *** no rule") {
			t.Errorf("Expected output in error, got %v", err)
		}
	})

	t.Run("empty execution result is an error", func(t *testing.T) {
		builder := NewBuilder("/test/root", &fakeExecutor{empty: true}, nil)

		cmd, _ := builder.Build(config.Step{Name: "build", Type: config.StepTypeCommand, Command: "make"})
		_, err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "no command results") {
			t.Fatalf("Expected no results error, got %v", err)
		}
	})
}

func TestCommandStep_RealShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}

	root := t.TempDir()
	builder := NewBuilder(root, command.NewRealExecutor(), nil)

	cmd, err := builder.Build(config.Step{
		Name:    "marker",
		Type:    config.StepTypeCommand,
		Command: `echo "$INVOKER_STEP_NAME" > marker.txt && echo done`,
		Undo:    "rm marker.txt",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	result, err := cmd.Execute()
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "done" {
		t.Errorf("Expected 'done', got %q", result)
	}

	content, err := os.ReadFile(filepath.Join(root, "marker.txt"))
	if err != nil {
		t.Fatalf("Marker not written: %v", err)
	}
	if strings.TrimSpace(string(content)) != "marker" {
		t.Errorf("Expected step name in marker, got %q", content)
	}

	if err := cmd.Unexecute(); err != nil {
		t.Fatalf("Unexecute failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "marker.txt")); !os.IsNotExist(err) {
		t.Error("Marker should be removed by undo")
	}
}

func TestCopyStep_File(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env.example"), []byte("KEY=value"), 0644); err != nil {
		t.Fatalf("Failed to create source file: %v", err)
	}

	var out strings.Builder
	builder := NewBuilder(root, &fakeExecutor{}, &out)
	cmd, err := builder.Build(config.Step{Name: "env", Type: config.StepTypeCopy, From: ".env.example", To: "build/.env"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	result, err := cmd.Execute()
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "copied .env.example → build/.env" {
		t.Errorf("Unexpected result %q", result)
	}
	if !strings.Contains(out.String(), "Copying: .env.example → build/.env") {
		t.Errorf("Expected copy log, got %q", out.String())
	}

	dst := filepath.Join(root, "build", ".env")
	content, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read copied file: %v", err)
	}
	if string(content) != "KEY=value" {
		t.Errorf("Expected content KEY=value, got %s", content)
	}

	if err := cmd.Unexecute(); err != nil {
		t.Fatalf("Unexecute failed: %v", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("Copy should be removed by undo")
	}

	// Redo after undo copies again
	if _, err := cmd.Execute(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("Copy should exist after redo: %v", err)
	}
}

func TestCopyStep_Directory(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "templates", "nested")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	builder := NewBuilder(root, &fakeExecutor{}, nil)
	cmd, _ := builder.Build(config.Step{Name: "tpl", Type: config.StepTypeCopy, From: "templates", To: "out"})

	if _, err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "nested", "a.txt")); err != nil {
		t.Errorf("Nested file not copied: %v", err)
	}

	if err := cmd.Unexecute(); err != nil {
		t.Fatalf("Unexecute failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "out")); !os.IsNotExist(err) {
		t.Error("Copied directory should be removed")
	}
}

func TestCopyStep_MissingSource(t *testing.T) {
	root := t.TempDir()
	builder := NewBuilder(root, &fakeExecutor{}, nil)
	cmd, _ := builder.Build(config.Step{Name: "env", Type: config.StepTypeCopy, From: "missing", To: "dst"})

	_, err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "source path does not exist") {
		t.Fatalf("Expected missing source error, got %v", err)
	}
}

func TestCopyStep_ExistingDestination(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"src", "dst"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(name), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	builder := NewBuilder(root, &fakeExecutor{}, nil)
	cmd, _ := builder.Build(config.Step{Name: "copy", Type: config.StepTypeCopy, From: "src", To: "dst"})

	_, err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "destination already exists") {
		t.Fatalf("Expected existing destination error, got %v", err)
	}

	content, _ := os.ReadFile(filepath.Join(root, "dst"))
	if string(content) != "dst" {
		t.Error("Existing destination must not be touched")
	}
}

func TestCopyStep_AbsolutePaths(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "source.txt")
	dst := filepath.Join(tempDir, "elsewhere", "dest.txt")
	if err := os.WriteFile(src, []byte("abs"), 0644); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}

	builder := NewBuilder(filepath.Join(tempDir, "root"), &fakeExecutor{}, nil)
	cmd, _ := builder.Build(config.Step{Name: "abs", Type: config.StepTypeCopy, From: src, To: dst})

	if _, err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("Destination not created: %v", err)
	}
}

func TestCopyStep_RecordedFailureKeepsExistingDestination(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "src.txt"), []byte("new"), 0644); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}
	dst := filepath.Join(root, "dst.txt")
	if err := os.WriteFile(dst, []byte("PRECIOUS"), 0644); err != nil {
		t.Fatalf("Failed to create destination: %v", err)
	}

	builder := NewBuilder(root, &fakeExecutor{}, nil)
	cmd, _ := builder.Build(config.Step{Name: "copy", Type: config.StepTypeCopy, From: "src.txt", To: "dst.txt"})

	inv := invoker.NewInvoker[string](invoker.WithRecordFailures(true))
	_, err := inv.ExecOrUndo(cmd)
	if err == nil || !strings.Contains(err.Error(), "destination already exists") {
		t.Fatalf("Expected existing destination error, got %v", err)
	}
	if inv.UndoneCount() != 1 {
		t.Fatalf("Failed copy should have been compensated, undone = %d", inv.UndoneCount())
	}

	content, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Existing destination was removed by compensation: %v", err)
	}
	if string(content) != "PRECIOUS" {
		t.Errorf("Existing destination was modified: %q", content)
	}
}

func TestCopyStep_UndoWithoutExecuteIsNoop(t *testing.T) {
	root := t.TempDir()
	dst := filepath.Join(root, "dst")
	if err := os.WriteFile(dst, []byte("keep"), 0644); err != nil {
		t.Fatalf("Failed to create destination: %v", err)
	}

	var out strings.Builder
	builder := NewBuilder(root, &fakeExecutor{}, &out)
	cmd, _ := builder.Build(config.Step{Name: "copy", Type: config.StepTypeCopy, From: "src", To: "dst"})

	if err := cmd.Unexecute(); err != nil {
		t.Fatalf("Unexecute failed: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("Destination should survive: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}

func TestCopyStep_UndoRemovesCreatedParents(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env.example"), []byte("KEY=value"), 0644); err != nil {
		t.Fatalf("Failed to create source file: %v", err)
	}

	builder := NewBuilder(root, &fakeExecutor{}, nil)
	cmd, _ := builder.Build(config.Step{Name: "env", Type: config.StepTypeCopy, From: ".env.example", To: "build/config/.env"})

	if _, err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := cmd.Unexecute(); err != nil {
		t.Fatalf("Unexecute failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "build")); !os.IsNotExist(err) {
		t.Error("Directories created by the copy should be removed by undo")
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("Root must be kept: %v", err)
	}
}

func TestCopyStep_UndoKeepsParentsWithOtherContent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env.example"), []byte("KEY=value"), 0644); err != nil {
		t.Fatalf("Failed to create source file: %v", err)
	}

	builder := NewBuilder(root, &fakeExecutor{}, nil)
	cmd, _ := builder.Build(config.Step{Name: "env", Type: config.StepTypeCopy, From: ".env.example", To: "build/.env"})

	if _, err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	other := filepath.Join(root, "build", "artifact")
	if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create artifact: %v", err)
	}

	if err := cmd.Unexecute(); err != nil {
		t.Fatalf("Unexecute failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "build", ".env")); !os.IsNotExist(err) {
		t.Error("Copy should be removed")
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("Unrelated content must be kept: %v", err)
	}
}
