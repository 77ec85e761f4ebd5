package filesystem

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverSourceFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir,
		"main.py",
		"web/app.tsx",
		"web/util.js",
		"web/types.d.ts",
		"web/lib.min.js",
		"README.md",
		"node_modules/openai/index.js",
	)

	files, truncated, err := DiscoverSourceFiles(tmpDir, SourceOptions{})
	require.NoError(t, err)
	assert.False(t, truncated)

	var rel []string
	for _, f := range files {
		r, _ := filepath.Rel(tmpDir, f)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"main.py", "web/app.tsx", "web/util.js"}, rel)
}

func TestDiscoverSourceFiles_Limit(t *testing.T) {
	tmpDir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeTree(t, tmpDir, fmt.Sprintf("f%d.py", i))
	}

	files, truncated, err := DiscoverSourceFiles(tmpDir, SourceOptions{Limit: 3})
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Len(t, files, 3)

	files, truncated, err = DiscoverSourceFiles(tmpDir, SourceOptions{Limit: 5})
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Len(t, files, 5)
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.py", true},
		{"A.PY", true},
		{"b.tsx", true},
		{"c.go", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSourceFile(tt.path, nil))
		})
	}
}
