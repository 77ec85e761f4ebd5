package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/kestrel/pkg/config"
	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/logger"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// newEngine builds an engine over the default rules using the default logger
func newEngine(costs bool) *detection.Engine {
	return detection.NewEngine(patterns.NewRegistry()).
		WithLogger(logger.Default()).
		WithCostEstimates(costs)
}

// scanTarget is a scanned file with the document it was scanned from
type scanTarget struct {
	doc     *detection.Document
	results []detection.Result
}

// scanPath scans a single file or every source file under a directory. The
// returned targets only include files with findings, in path order.
func scanPath(ctx context.Context, e *detection.Engine, path string, settings *config.Settings) ([]scanTarget, *detection.WorkspaceResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot scan %s: %w", path, err)
	}

	if !info.IsDir() {
		doc, err := readDocument(path, 1)
		if err != nil {
			return nil, nil, err
		}
		results := e.Scan(doc, settings)
		ws := &detection.WorkspaceResult{
			Root:          filepath.Dir(path),
			FilesAnalyzed: 1,
			Files:         map[string][]detection.Result{},
		}
		var targets []scanTarget
		if len(results) > 0 {
			ws.Files[path] = results
			ws.Order = []string{path}
			targets = append(targets, scanTarget{doc: doc, results: results})
		}
		return targets, ws, nil
	}

	ws, err := e.ScanWorkspace(ctx, path, settings)
	if err != nil {
		return nil, nil, err
	}
	targets := make([]scanTarget, 0, len(ws.Order))
	for _, p := range ws.Order {
		doc, err := readDocument(p, 1)
		if err != nil {
			return nil, nil, err
		}
		targets = append(targets, scanTarget{doc: doc, results: ws.Files[p]})
	}
	return targets, ws, nil
}

func readDocument(path string, version int) (*detection.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return detection.NewDocument(path, version, string(data)), nil
}

// displayPath shortens path relative to the working directory when possible
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || filepath.IsAbs(rel) || len(rel) > len(path) {
		return path
	}
	return rel
}

// targetArg returns the first argument or "."
func targetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
