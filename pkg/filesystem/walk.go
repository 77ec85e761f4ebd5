package filesystem

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultIgnoreDirs are dependency, cache and build directories that never hold
// first-party source
var DefaultIgnoreDirs = []string{
	"node_modules", "bower_components", "vendor", ".git", ".svn", ".hg",
	"dist", "build", "out", "coverage", ".next", ".nuxt",
	"venv", ".venv", "env", "__pycache__", ".tox", ".mypy_cache", ".pytest_cache", "site-packages",
	".idea", ".vscode", ".vs",
}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs     []string // Directories to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File name patterns to skip (e.g., "*.min.js")
	IncludeHidden  bool     // Include hidden files/dirs (default: false)

	// OnError receives paths that could not be read. When nil the error
	// aborts the walk.
	OnError func(path string, err error)
}

// Walk traverses a directory tree with configurable ignore rules.
// The visitor is called for each file and directory that is not ignored.
// Return filepath.SkipDir from visitor to skip a directory.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, d fs.DirEntry) error) error {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}

	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if opts.OnError == nil || path == rootPath {
				return err
			}
			opts.OnError(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == rootPath {
			return visitor(path, d)
		}

		name := d.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if slices.Contains(ignoreDirs, name) {
				return filepath.SkipDir
			}
			return visitor(path, d)
		}

		for _, pattern := range opts.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, name); matched {
				return nil
			}
		}

		return visitor(path, d)
	})
}

// WalkWithDefaults walks a directory tree with default ignore rules
func WalkWithDefaults(rootPath string, visitor func(path string, d fs.DirEntry) error) error {
	return Walk(rootPath, WalkOptions{}, visitor)
}
