package command

import (
	"fmt"
	"runtime"
	"sort"
)

// Shell builds a command that runs script through the platform shell
func Shell(script, workDir string, env map[string]string) Command {
	name, args := "sh", []string{"-c", script}
	if runtime.GOOS == "windows" {
		name, args = "cmd", []string{"/c", script}
	}

	return Command{
		Name:    name,
		Args:    args,
		WorkDir: workDir,
		Env:     EnvList(env),
	}
}

// EnvList converts an environment map into sorted KEY=VALUE pairs
func EnvList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, key := range keys {
		list = append(list, fmt.Sprintf("%s=%s", key, env[key]))
	}
	return list
}
