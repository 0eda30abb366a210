package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Project workspace subdirectories, created on construction and reused
// on resume.
var workspaceSubdirs = []string{
	"raw",
	"processed",
	"cache",
	filepath.Join("cache", "robots"),
	"crawl_state",
	"exports",
}

// invalidNameChars are characters that cannot appear in a project name
// because the name becomes a directory component on every platform.
const invalidNameChars = `/\:*?"<>|`

// ProjectDir returns the workspace directory for a project under the
// given data directory.
func ProjectDir(dataDir, projectName string) string {
	return filepath.Join(dataDir, "projects", projectName)
}

// ValidateProjectName checks that a project name is usable as a
// directory name.
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyProjectName
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return fmt.Errorf("%w: %q", ErrInvalidProjectName, name)
	}
	return nil
}

// scaffoldWorkspace creates the project directory tree. Existing
// directories are left untouched so a prior run's state survives.
func scaffoldWorkspace(projectDir string) error {
	for _, sub := range workspaceSubdirs {
		if err := os.MkdirAll(filepath.Join(projectDir, sub), 0750); err != nil {
			return fmt.Errorf("create workspace directory: %w", err)
		}
	}
	return nil
}
