package steps

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	directoryPermissions = 0o755
)

// copyStep copies a file or directory and removes the copy on undo.
// Unexecute only removes what the last Execute created, so a step that failed
// on an existing destination leaves it alone even when it is rolled back.
type copyStep struct {
	name string
	src  string
	dst  string
	root string
	w    io.Writer

	created     bool
	createdDirs []string // parents created by Execute, innermost first
}

func (s *copyStep) Execute() (string, error) {
	srcInfo, err := os.Stat(s.src)
	if err != nil {
		return "", fmt.Errorf("source path does not exist: %s", s.src)
	}

	if _, err := os.Lstat(s.dst); err == nil {
		return "", fmt.Errorf("destination already exists: %s", s.dst)
	}

	s.createdDirs = missingDirs(filepath.Dir(s.dst))
	if err := os.MkdirAll(filepath.Dir(s.dst), directoryPermissions); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	summary := fmt.Sprintf("%s → %s", s.rel(s.src), s.rel(s.dst))
	fmt.Fprintf(s.w, "  Copying: %s\n", summary)

	// A partial copy is ours too.
	s.created = true
	if srcInfo.IsDir() {
		err = copyDir(s.src, s.dst)
	} else {
		err = copyFile(s.src, s.dst)
	}
	if err != nil {
		return "", err
	}

	return "copied " + summary, nil
}

func (s *copyStep) Unexecute() error {
	if s.created {
		fmt.Fprintf(s.w, "  Removing: %s\n", s.rel(s.dst))
		if err := os.RemoveAll(s.dst); err != nil {
			return fmt.Errorf("failed to remove copy: %w", err)
		}
		s.created = false
	}

	// Directories that gained other content since are kept.
	for _, dir := range s.createdDirs {
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			break
		}
	}
	s.createdDirs = nil
	return nil
}

// missingDirs lists dir and its ancestors that do not exist yet, innermost first.
func missingDirs(dir string) []string {
	var missing []string
	for {
		if _, err := os.Lstat(dir); err == nil {
			return missing
		}
		missing = append(missing, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			return missing
		}
		dir = parent
	}
}

func (s *copyStep) Description() string {
	return s.name
}

func (s *copyStep) rel(path string) string {
	if rel, err := filepath.Rel(s.root, path); err == nil {
		return rel
	}
	return path
}

// copyFile copies a single file
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, copyErr := io.Copy(destFile, sourceFile); copyErr != nil {
		return fmt.Errorf("failed to copy file: %w", copyErr)
	}

	// Copy file permissions
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to get source file info: %w", err)
	}

	if err := os.Chmod(dst, srcInfo.Mode()); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	return nil
}

// copyDir recursively copies a directory
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source directory: %w", err)
	}

	if mkdirErr := os.MkdirAll(dst, srcInfo.Mode()); mkdirErr != nil {
		return fmt.Errorf("failed to create destination directory: %w", mkdirErr)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}
