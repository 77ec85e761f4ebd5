package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultSourceExtensions are the file types a workspace scan reads
var DefaultSourceExtensions = []string{".py", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"}

// DefaultIgnorePatterns skip generated bundles and type declarations
var DefaultIgnorePatterns = []string{"*.min.js", "*.bundle.js", "*.d.ts"}

// SourceOptions configures source discovery
type SourceOptions struct {
	Extensions []string // default: DefaultSourceExtensions
	IgnoreDirs []string // default: DefaultIgnoreDirs
	Limit      int      // stop after this many files; 0 means no limit
	OnError    func(path string, err error)
}

// errLimitReached stops the walk once enough files are collected
var errLimitReached = errors.New("source file limit reached")

// IsSourceFile reports whether path has one of the given extensions
func IsSourceFile(path string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultSourceExtensions
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

// DiscoverSourceFiles lists scannable files under root in lexical order.
// The second return value reports whether Limit truncated the list.
func DiscoverSourceFiles(root string, opts SourceOptions) ([]string, bool, error) {
	var files []string

	walkOpts := WalkOptions{
		IgnoreDirs:     opts.IgnoreDirs,
		IgnorePatterns: DefaultIgnorePatterns,
		OnError:        opts.OnError,
	}

	err := Walk(root, walkOpts, func(path string, d fs.DirEntry) error {
		if d.IsDir() || !IsSourceFile(path, opts.Extensions) {
			return nil
		}
		if opts.Limit > 0 && len(files) >= opts.Limit {
			return errLimitReached
		}
		files = append(files, path)
		return nil
	})

	if errors.Is(err, errLimitReached) {
		return files, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return files, false, nil
}
