package detection

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/firebird-suite/kestrel/pkg/filesystem"
	"github.com/simonhull/firebird-suite/kestrel/pkg/logger"
)

// MaxWorkspaceFiles caps how many files one workspace scan reads
const MaxWorkspaceFiles = 1000

// WorkspaceResult holds the findings of a workspace scan
type WorkspaceResult struct {
	RunID         string
	Root          string
	StartedAt     time.Time
	FilesAnalyzed int
	Files         map[string][]Result // only files with findings
	Order         []string            // keys of Files in path order
	Skipped       []string            // files that could not be read
	Truncated     bool                // MaxWorkspaceFiles was reached
}

// TotalFindings counts results across every file
func (w *WorkspaceResult) TotalFindings() int {
	n := 0
	for _, rs := range w.Files {
		n += len(rs)
	}
	return n
}

type fileRead struct {
	text    string
	version int
	err     error
}

// ScanWorkspace scans every source file under root. Files are read
// concurrently; matching and cache updates happen on the calling goroutine in
// path order. A file that cannot be read is logged and skipped.
func (e *Engine) ScanWorkspace(ctx context.Context, root string, settings Settings) (*WorkspaceResult, error) {
	res := &WorkspaceResult{
		RunID:     uuid.NewString(),
		Root:      root,
		StartedAt: time.Now(),
		Files:     make(map[string][]Result),
	}
	log := e.logger.WithFields(logger.F("run", res.RunID))

	log.Info("Starting workspace scan", logger.F("root", root))

	paths, truncated, err := filesystem.DiscoverSourceFiles(root, filesystem.SourceOptions{
		Limit: MaxWorkspaceFiles,
		OnError: func(path string, err error) {
			log.Warn("Skipping unreadable directory", logger.F("path", path), logger.F("error", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("discovering source files: %w", err)
	}
	res.Truncated = truncated
	if truncated {
		log.Warn("Workspace file limit reached", logger.F("limit", MaxWorkspaceFiles))
	}

	reads := make([]fileRead, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reads[i] = readSource(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if reads[i].err != nil {
			log.Warn("Failed to read file", logger.F("path", path), logger.F("error", reads[i].err))
			res.Skipped = append(res.Skipped, path)
			continue
		}

		res.FilesAnalyzed++
		doc := NewDocument(path, reads[i].version, reads[i].text)
		found := e.Scan(doc, settings)
		if len(found) > 0 {
			res.Files[path] = found
			res.Order = append(res.Order, path)
		}
	}

	log.Info("Workspace scan complete",
		logger.F("files", res.FilesAnalyzed),
		logger.F("with_findings", len(res.Files)),
		logger.F("skipped", len(res.Skipped)))

	return res, nil
}

// readSource reads a file and derives a document version from its
// modification time and size, so cached results are reused only while the
// file is unchanged.
func readSource(path string) fileRead {
	info, err := os.Stat(path)
	if err != nil {
		return fileRead{err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fileRead{err: err}
	}
	return fileRead{
		text:    string(data),
		version: int(info.ModTime().UnixNano() ^ info.Size()),
	}
}
