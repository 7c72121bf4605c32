package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Config represents an invoker plan
type Config struct {
	Version  string   `yaml:"version"`
	Defaults Defaults `yaml:"defaults,omitempty"`
	Steps    []Step   `yaml:"steps"`
}

// Defaults represents plan-wide execution settings
type Defaults struct {
	Rollback       string `yaml:"rollback,omitempty"`
	RecordFailures bool   `yaml:"record_failures,omitempty"`
	MaxHistory     int    `yaml:"max_history,omitempty"`
}

// Step represents a single reversible step
type Step struct {
	Name    string            `yaml:"name"`
	Type    string            `yaml:"type"` // "command" or "copy"
	Command string            `yaml:"command,omitempty"`
	Undo    string            `yaml:"undo,omitempty"`
	From    string            `yaml:"from,omitempty"`
	To      string            `yaml:"to,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	WorkDir string            `yaml:"work_dir,omitempty"`
}

const (
	ConfigFileName  = ".invoker.yml"
	CurrentVersion  = "1.0"
	StepTypeCommand = "command"
	StepTypeCopy    = "copy"

	// RollbackAll unwinds every executed step when one fails
	RollbackAll = "all"
	// RollbackSelf compensates only the failing step
	RollbackSelf = "self"
	// RollbackNone leaves every step in place
	RollbackNone = "none"

	DefaultRollback       = RollbackAll
	configFilePermissions = 0o600
)

// RollbackPolicies lists the accepted rollback values
var RollbackPolicies = []string{RollbackAll, RollbackSelf, RollbackNone}

// LoadConfig loads the plan from .invoker.yml in root
func LoadConfig(root string) (*Config, error) {
	return LoadFile(filepath.Join(root, ConfigFileName))
}

// LoadFile loads and validates a plan from path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the plan to .invoker.yml in root
func SaveConfig(root string, config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configPath := filepath.Join(root, ConfigFileName)

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, configFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate fills in defaults and validates the plan
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = CurrentVersion
	}

	if c.Defaults.Rollback == "" {
		c.Defaults.Rollback = DefaultRollback
	}
	if err := ValidateRollback(c.Defaults.Rollback); err != nil {
		return err
	}

	if c.Defaults.MaxHistory < 0 {
		return fmt.Errorf("max_history must not be negative, got %d", c.Defaults.MaxHistory)
	}

	if len(c.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}

	seen := make(map[string]int, len(c.Steps))
	for i := range c.Steps {
		step := &c.Steps[i]
		if err := step.Validate(); err != nil {
			return fmt.Errorf("invalid step %d: %w", i+1, err)
		}
		if prev, ok := seen[step.Name]; ok {
			return fmt.Errorf("invalid step %d: name '%s' already used by step %d", i+1, step.Name, prev)
		}
		seen[step.Name] = i + 1
	}

	return nil
}

// Validate validates a single step
func (s *Step) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("step requires 'name' field")
	}

	switch s.Type {
	case StepTypeCommand:
		if s.Command == "" {
			return fmt.Errorf("command step requires 'command' field")
		}
		if s.From != "" || s.To != "" {
			return fmt.Errorf("command step should not have 'from' or 'to' fields")
		}
	case StepTypeCopy:
		if s.From == "" || s.To == "" {
			return fmt.Errorf("copy step requires both 'from' and 'to' fields")
		}
		if s.Command != "" || s.Undo != "" {
			return fmt.Errorf("copy step should not have 'command' or 'undo' fields")
		}
	default:
		return fmt.Errorf("invalid step type '%s', must be 'command' or 'copy'", s.Type)
	}

	return nil
}

// ValidateRollback checks that policy is a known rollback value
func ValidateRollback(policy string) error {
	for _, p := range RollbackPolicies {
		if p == policy {
			return nil
		}
	}
	return fmt.Errorf("invalid rollback policy '%s', must be one of %v", policy, RollbackPolicies)
}

// IsReversible reports whether the step has a compensating action
func (s *Step) IsReversible() bool {
	return s.Type == StepTypeCopy || s.Undo != ""
}
