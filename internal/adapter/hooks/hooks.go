// Package hooks installs a git pre-commit hook that runs the analyzer
// before every commit.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goGit "github.com/go-git/go-git/v5"
)

const hookMarker = "# installed by code-sage"

const hookScript = `#!/bin/sh
` + hookMarker + `
sage analyze --fail-on-critical .
`

// Manager installs and removes the pre-commit hook for one repository.
type Manager struct {
	repoDir string
}

// NewManager constructs a hook manager for the provided repository
// directory. The directory may be anywhere inside the work tree.
func NewManager(repoDir string) *Manager {
	return &Manager{repoDir: repoDir}
}

// Install writes the pre-commit hook. A hook written by another tool is
// left untouched and reported as an error.
func (m *Manager) Install() (string, error) {
	hookPath, err := m.hookPath()
	if err != nil {
		return "", err
	}

	existing, err := os.ReadFile(hookPath)
	if err == nil && !strings.Contains(string(existing), hookMarker) {
		return "", fmt.Errorf("pre-commit hook already exists at %s; remove it first", hookPath)
	}
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect existing hook: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(hookPath), 0755); err != nil {
		return "", fmt.Errorf("create hooks directory: %w", err)
	}
	if err := os.WriteFile(hookPath, []byte(hookScript), 0755); err != nil {
		return "", fmt.Errorf("write hook: %w", err)
	}

	return hookPath, nil
}

// Uninstall removes the hook if this tool installed it.
func (m *Manager) Uninstall() error {
	hookPath, err := m.hookPath()
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(hookPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect existing hook: %w", err)
	}
	if !strings.Contains(string(existing), hookMarker) {
		return fmt.Errorf("pre-commit hook at %s was not installed by this tool", hookPath)
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("remove hook: %w", err)
	}
	return nil
}

// hookPath resolves the pre-commit hook location through go-git so
// nested working directories and worktrees resolve to the right repo.
func (m *Manager) hookPath() (string, error) {
	repo, err := goGit.PlainOpenWithOptions(m.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("resolve worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	return filepath.Join(root, ".git", "hooks", "pre-commit"), nil
}
