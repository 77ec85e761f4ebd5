package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kestrel/pkg/config"
	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/filesystem"
	"github.com/simonhull/firebird-suite/kestrel/pkg/logger"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
)

// WatchCmd creates the watch command
func WatchCmd() *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Rescan files as they change",
		Long: `Watch a directory and rescan each source file after it stops changing.

Changes to kestrel.yml are picked up without restarting. Press Ctrl+C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(targetArg(args))
			if err != nil {
				return fmt.Errorf("resolving %s: %w", targetArg(args), err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := newWatchSession(root, settings, delay)
			if err != nil {
				return err
			}
			defer w.close()

			return w.run(ctx)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", detection.DefaultDebounceDelay, "Quiet period before a changed file is rescanned")

	return cmd
}

// watchSession owns the engine. Debounced callbacks and config reloads
// arrive on channels and are handled on the run goroutine only.
type watchSession struct {
	root      string
	settings  *config.Settings
	engine    *detection.Engine
	watcher   *fsnotify.Watcher
	debouncer *detection.Debouncer
	log       logger.Logger

	changed    chan string
	reloaded   chan struct{}
	configPath string
	version    int // session-wide, so a path never reuses a cache key
	findings   map[string]int
	snapshot   map[string]any
}

func newWatchSession(root string, settings *config.Settings, delay time.Duration) (*watchSession, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &watchSession{
		root:      root,
		settings:  settings,
		engine:    newEngine(settings.CostEstimates()),
		watcher:   watcher,
		debouncer: detection.NewDebouncer(delay),
		log:       logger.Default().WithFields(logger.F("watch", root)),
		changed:   make(chan string, 64),
		reloaded:  make(chan struct{}, 1),
		findings:  make(map[string]int),
		snapshot:  settings.Keys(),
	}
	if path := settings.Path(); path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			w.configPath = abs
		}
	}

	if err := w.addTree(root); err != nil {
		watcher.Close()
		return nil, err
	}
	if err := w.watchConfig(); err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

func (w *watchSession) close() {
	w.debouncer.Stop()
	w.watcher.Close()
}

// addTree watches root and every directory below it that a scan would visit
func (w *watchSession) addTree(root string) error {
	return filesystem.Walk(root, filesystem.WalkOptions{
		OnError: func(path string, err error) {
			w.log.Warn("Cannot watch directory", logger.F("path", path), logger.F("error", err))
		},
	}, func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// watchConfig makes sure the settings file's directory is watched. Changes
// are picked up by handleEvent and reloaded on the run goroutine, so the
// live settings store is never written concurrently.
func (w *watchSession) watchConfig() error {
	if w.configPath == "" {
		return nil
	}
	dir := filepath.Dir(w.configPath)
	if slices.Contains(w.watcher.WatchList(), dir) {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		w.log.Debug("No settings directory to watch", logger.F("path", dir))
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

func (w *watchSession) run(ctx context.Context) error {
	ws, err := w.engine.ScanWorkspace(ctx, w.root, w.settings)
	if err != nil {
		return err
	}
	for _, path := range ws.Order {
		w.findings[path] = len(ws.Files[path])
	}
	output.Info(fmt.Sprintf("Watching %s (%d files, %d findings)", displayPath(w.root), ws.FilesAnalyzed, ws.TotalFindings()))

	for {
		select {
		case <-ctx.Done():
			output.Info("Stopped watching")
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", logger.F("error", err))

		case path := <-w.changed:
			w.rescan(path)

		case <-w.reloaded:
			w.reloadSettings()
		}
	}
}

func (w *watchSession) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.Warn("Cannot watch new directory", logger.F("path", ev.Name), logger.F("error", err))
			}
			return
		}
	}

	if w.isConfig(ev.Name) {
		if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
			w.debouncer.Trigger(w.configPath, func() {
				select {
				case w.reloaded <- struct{}{}:
				default:
				}
			})
		}
		return
	}

	if !filesystem.IsSourceFile(ev.Name, filesystem.DefaultSourceExtensions) || detection.ShouldSkipFile(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.debouncer.Cancel(ev.Name)
		delete(w.findings, ev.Name)
		return
	}

	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
		path := ev.Name
		w.debouncer.Trigger(path, func() {
			select {
			case w.changed <- path:
			case <-ctx.Done():
			}
		})
	}
}

func (w *watchSession) isConfig(name string) bool {
	if w.configPath == "" {
		return false
	}
	abs, err := filepath.Abs(name)
	return err == nil && abs == w.configPath
}

func (w *watchSession) rescan(path string) {
	w.version++
	doc, err := readDocument(path, w.version)
	if err != nil {
		w.log.Warn("Failed to read file", logger.F("path", path), logger.F("error", err))
		return
	}

	var results []detection.Result
	if detection.AIContentHint(doc.Text) {
		results = w.engine.Scan(doc, w.settings)
	}

	prev := w.findings[path]
	w.findings[path] = len(results)
	stamp := time.Now().Format("15:04:05")

	switch {
	case len(results) == 0 && prev > 0:
		output.Success(fmt.Sprintf("[%s] %s is clean", stamp, displayPath(path)))
	case len(results) > 0:
		output.Header(fmt.Sprintf("[%s] %s", stamp, displayPath(path)))
		for _, r := range results {
			output.Finding(displayPath(path), r.Line(), r.Pattern.Severity, r.Pattern.Message)
		}
	default:
		output.Verbose(fmt.Sprintf("[%s] %s: no findings", stamp, displayPath(path)))
	}
}

// reloadSettings reads the settings file into a fresh store and swaps it in.
// Cached matches are cleared only when a changed key can alter them; filter
// changes reuse the cache. A file that fails to parse keeps the old settings.
func (w *watchSession) reloadSettings() {
	next, err := config.Load(w.root, w.configPath)
	if err != nil {
		w.log.Warn("Keeping previous settings", logger.F("error", err))
		output.Warn(fmt.Sprintf("Settings not reloaded: %v", err))
		return
	}

	keys := next.Keys()
	invalidate := false
	for key, val := range keys {
		if w.snapshot[key] != val && config.AffectsMatching(key) {
			invalidate = true
		}
	}

	if next.CostEstimates() != w.settings.CostEstimates() {
		w.engine = w.engine.WithCostEstimates(next.CostEstimates())
		invalidate = true
	} else if invalidate {
		w.engine.ClearCache()
	}
	w.settings = next
	w.snapshot = keys

	w.log.Info("Settings reloaded", logger.F("cache_cleared", invalidate))
	output.Info("Settings reloaded")
}
