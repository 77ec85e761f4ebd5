// Package filesystem finds the source files a workspace scan should read.
//
// # Overview
//
// Traversal skips dependency and build directories (node_modules, venv,
// dist, __pycache__) and hidden entries by default. Directories that cannot
// be read are reported through WalkOptions.OnError and skipped, so one
// unreadable folder never aborts a scan.
//
// # Usage
//
// Discover scannable source files:
//
//	files, err := filesystem.DiscoverSourceFiles(".", filesystem.SourceOptions{
//	    Extensions: filesystem.DefaultSourceExtensions,
//	    Limit:      1000,
//	})
//
// Custom walk with ignore patterns:
//
//	err := filesystem.Walk(".", filesystem.WalkOptions{
//	    IgnoreDirs:     []string{".git", "fixtures"},
//	    IgnorePatterns: []string{"*.min.js"},
//	}, func(path string, d fs.DirEntry) error {
//	    return nil
//	})
package filesystem
