package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/kestrel/pkg/config"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

func newTestSession(t *testing.T, dir string) *watchSession {
	t.Helper()
	output.SetWriter(&bytes.Buffer{})
	t.Cleanup(func() { output.SetWriter(nil) })

	settings, err := config.Load(dir, "")
	require.NoError(t, err)

	w, err := newWatchSession(dir, settings, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(w.close)
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatch_RescanAfterRenameReadsNewText(t *testing.T) {
	dir := project(t, map[string]string{"app.py": "import openai\n"})
	w := newTestSession(t, dir)
	path := filepath.Join(dir, "app.py")

	w.rescan(path)
	require.Equal(t, 1, w.findings[path])

	// editors that save by renaming a temp file over the original
	w.handleEvent(context.Background(), fsnotify.Event{Name: path, Op: fsnotify.Rename})
	writeFile(t, path, "# openai client removed\nprint('hello')\n")

	w.rescan(path)
	assert.Equal(t, 0, w.findings[path])
}

func TestWatch_RescanVersionsNeverRepeat(t *testing.T) {
	dir := project(t, map[string]string{"a.py": "import openai\n", "b.py": "import openai\n"})
	w := newTestSession(t, dir)

	w.rescan(filepath.Join(dir, "a.py"))
	w.rescan(filepath.Join(dir, "b.py"))
	w.rescan(filepath.Join(dir, "a.py"))
	assert.Equal(t, 3, w.version)
	assert.Equal(t, 3, w.engine.CacheLen())
}

func TestWatch_ReloadSettings(t *testing.T) {
	dir := project(t, map[string]string{
		"app.py":      "import openai\n",
		"kestrel.yml": "detection:\n  filter: all\n",
	})
	w := newTestSession(t, dir)
	cfg := filepath.Join(dir, "kestrel.yml")

	w.rescan(filepath.Join(dir, "app.py"))
	require.Equal(t, 1, w.engine.CacheLen())

	t.Run("filter change keeps cache", func(t *testing.T) {
		before := w.settings
		writeFile(t, cfg, "detection:\n  filter: security\n")
		w.reloadSettings()

		assert.Equal(t, "security", w.settings.Filter())
		assert.Equal(t, "all", before.Filter(), "the previous store is replaced, not rewritten")
		assert.Equal(t, 1, w.engine.CacheLen())
	})

	t.Run("invalid file keeps previous settings", func(t *testing.T) {
		writeFile(t, cfg, "detection: [\n")
		w.reloadSettings()

		assert.Equal(t, "security", w.settings.Filter())
		assert.Equal(t, 1, w.engine.CacheLen())
	})

	t.Run("provider toggle clears cache", func(t *testing.T) {
		writeFile(t, cfg, "detection:\n  filter: security\nproviders:\n  openai: false\n")
		w.reloadSettings()

		assert.False(t, w.settings.ProviderEnabled(patterns.ProviderOpenAI))
		assert.Equal(t, 0, w.engine.CacheLen())
	})

	t.Run("cost estimates rebuild the engine", func(t *testing.T) {
		w.rescan(filepath.Join(dir, "app.py"))
		engine := w.engine

		writeFile(t, cfg, "detection:\n  filter: security\nproviders:\n  openai: false\ncostEstimates: true\n")
		w.reloadSettings()

		assert.NotSame(t, engine, w.engine)
		assert.Equal(t, 0, w.engine.CacheLen())
	})
}

func TestWatch_HandleEvent(t *testing.T) {
	dir := project(t, map[string]string{"app.py": "import openai\n"})
	w := newTestSession(t, dir)
	ctx := context.Background()
	path := filepath.Join(dir, "app.py")

	t.Run("source write is debounced onto the run loop", func(t *testing.T) {
		w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Write})
		w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Write})

		select {
		case got := <-w.changed:
			assert.Equal(t, path, got)
		case <-time.After(2 * time.Second):
			t.Fatal("no rescan requested")
		}
		assert.Empty(t, w.changed)
	})

	t.Run("remove cancels a pending rescan", func(t *testing.T) {
		w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Write})
		w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Remove})

		select {
		case got := <-w.changed:
			t.Fatalf("unexpected rescan of %s", got)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("non source files are ignored", func(t *testing.T) {
		w.handleEvent(ctx, fsnotify.Event{Name: filepath.Join(dir, "package.json"), Op: fsnotify.Write})
		assert.Equal(t, 0, w.debouncer.Pending())
	})

	t.Run("settings file change requests a reload", func(t *testing.T) {
		w.handleEvent(ctx, fsnotify.Event{Name: filepath.Join(dir, config.FileName), Op: fsnotify.Create})

		select {
		case <-w.reloaded:
		case <-time.After(2 * time.Second):
			t.Fatal("no reload requested")
		}
	})
}
