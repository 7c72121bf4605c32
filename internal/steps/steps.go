package steps

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/satococoa/invoker/internal/command"
	"github.com/satococoa/invoker/internal/config"
	"github.com/satococoa/invoker/pkg/invoker"
)

const (
	EnvStepName = "INVOKER_STEP_NAME"
	EnvRoot     = "INVOKER_ROOT"
)

// Builder turns plan steps into invoker commands
type Builder struct {
	root     string
	executor command.Executor
	w        io.Writer
}

// NewBuilder creates a builder resolving relative paths against root.
// Progress lines of the built commands are written to w.
func NewBuilder(root string, executor command.Executor, w io.Writer) *Builder {
	if w == nil {
		w = io.Discard
	}
	return &Builder{
		root:     root,
		executor: executor,
		w:        w,
	}
}

// Build converts a single step
func (b *Builder) Build(step config.Step) (invoker.Command[string], error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}

	switch step.Type {
	case config.StepTypeCommand:
		return &commandStep{builder: b, step: step}, nil
	case config.StepTypeCopy:
		return &copyStep{
			name: step.Name,
			src:  b.resolve(step.From),
			dst:  b.resolve(step.To),
			root: b.root,
			w:    b.w,
		}, nil
	default:
		return nil, fmt.Errorf("unknown step type: %s", step.Type)
	}
}

// BuildAll converts every step of a plan in order
func (b *Builder) BuildAll(steps []config.Step) ([]invoker.Command[string], error) {
	commands := make([]invoker.Command[string], 0, len(steps))
	for i, step := range steps {
		cmd, err := b.Build(step)
		if err != nil {
			return nil, fmt.Errorf("failed to build step %d: %w", i+1, err)
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

func (b *Builder) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.root, path)
}

// commandStep runs shell scripts for both directions
type commandStep struct {
	builder *Builder
	step    config.Step
}

func (s *commandStep) Execute() (string, error) {
	return s.run(s.step.Command)
}

func (s *commandStep) Unexecute() error {
	if s.step.Undo == "" {
		return nil
	}
	_, err := s.run(s.step.Undo)
	return err
}

func (s *commandStep) Description() string {
	return s.step.Name
}

func (s *commandStep) run(script string) (string, error) {
	workDir := s.builder.root
	if s.step.WorkDir != "" {
		workDir = s.builder.resolve(s.step.WorkDir)
	}

	env := make(map[string]string, len(s.step.Env)+2)
	for key, value := range s.step.Env {
		env[key] = value
	}
	env[EnvStepName] = s.step.Name
	env[EnvRoot] = s.builder.root

	fmt.Fprintf(s.builder.w, "  Running: %s\n", script)

	result, err := s.builder.executor.Execute([]command.Command{command.Shell(script, workDir, env)})
	if err != nil {
		return "", fmt.Errorf("failed to run '%s': %w", script, err)
	}
	if len(result.Results) == 0 {
		return "", fmt.Errorf("failed to run '%s': no command results", script)
	}

	res := result.Results[0]
	if res.Error != nil {
		if res.Output != "" {
			return res.Output, fmt.Errorf("command failed: %w\n%s", res.Error, res.Output)
		}
		return "", fmt.Errorf("command failed: %w", res.Error)
	}
	return res.Output, nil
}
