// Package discovery finds analyzable source files under a project root.
package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Directories that never contain first-party source worth analyzing.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	".idea":        true,
	".vscode":      true,
}

// Walker discovers files below a root directory, keeping only paths a
// registered detector could handle and honoring exclude globs.
type Walker struct {
	extensions map[string]bool
	excludes   []string
}

// WalkerOptions configures file discovery.
type WalkerOptions struct {
	// Extensions lists the file extensions to keep, with leading dot
	// (".py", ".go"). Empty means keep every regular file.
	Extensions []string

	// Excludes are glob patterns matched against the path relative to
	// the walk root. Matching files are dropped.
	Excludes []string
}

// NewWalker creates a Walker from options.
func NewWalker(opts WalkerOptions) *Walker {
	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[strings.ToLower(ext)] = true
	}
	return &Walker{extensions: extensions, excludes: opts.Excludes}
}

// DiscoverFiles walks root and returns a sorted list of candidate file
// paths. Hidden files, well-known dependency directories, and excluded
// globs are skipped.
func (w *Walker) DiscoverFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := entry.Name()
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if skipDirs[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		if len(w.extensions) > 0 {
			ext := strings.ToLower(filepath.Ext(name))
			if !w.extensions[ext] {
				return nil
			}
		}

		if w.excluded(root, path) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

func (w *Walker) excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.excludes {
		if ok, err := filepath.Match(pattern, rel); err == nil && ok {
			return true
		}
		// Also match against the bare file name so "*_test.py" works
		// regardless of directory depth.
		if ok, err := filepath.Match(pattern, filepath.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}
