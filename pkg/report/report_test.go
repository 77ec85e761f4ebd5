package report_test

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/kestrel/pkg/config"
	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/logger"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
	"github.com/simonhull/firebird-suite/kestrel/pkg/report"
)

func workspace(t *testing.T, costs bool, files map[string]string) *detection.WorkspaceResult {
	t.Helper()
	root := filepath.Join(t.TempDir(), "acme")
	e := detection.NewEngine(patterns.NewRegistry()).
		WithLogger(logger.NewSilentLogger()).
		WithCostEstimates(costs)

	ws := &detection.WorkspaceResult{Root: root, Files: map[string][]detection.Result{}}
	for name, text := range files {
		path := filepath.Join(root, name)
		ws.FilesAnalyzed++
		results := e.Scan(detection.NewDocument(path, 1, text), config.New())
		if len(results) > 0 {
			ws.Files[path] = results
			ws.Order = append(ws.Order, path)
		}
	}
	slices.Sort(ws.Order)
	return ws
}

func TestBuild_Summary(t *testing.T) {
	ws := workspace(t, false, map[string]string{
		"app.py":    "import openai\nclient = openai.OpenAI(api_key=\"sk-abcdefghijklmnopqrstuvwx\")\n",
		"agent.py":  "from anthropic import Anthropic\n",
		"index.js":  "import OpenAI from 'openai';\n",
		"readme.py": "print('hello')\n",
	})

	r := report.Build(ws, report.Options{Now: time.Unix(0, 0)})

	assert.Equal(t, "acme", r.Project)
	assert.Equal(t, 4, r.Summary.FilesAnalyzed)
	assert.Equal(t, 3, r.Summary.FilesWithFindings)
	assert.Equal(t, ws.TotalFindings(), r.Summary.TotalFindings)
	assert.Equal(t, 1, r.Summary.SecurityIssues)
	assert.False(t, r.Summary.HasCostEstimates)
	assert.NotEmpty(t, r.ID)
}

func TestBuild_GroupsByProviderThenFile(t *testing.T) {
	ws := workspace(t, false, map[string]string{
		"a.py":     "import openai\n",
		"b.py":     "import openai\n",
		"index.js": "import OpenAI from 'openai';\n",
	})

	r := report.Build(ws, report.Options{})
	require.Len(t, r.Providers, 1)

	sec := r.Providers[0]
	assert.Equal(t, patterns.ProviderOpenAI, sec.Provider)
	assert.Equal(t, "OpenAI", sec.DisplayName)
	require.Len(t, sec.Files, 3)
	assert.Equal(t, "a.py", sec.Files[0].Path)
	assert.Equal(t, "b.py", sec.Files[1].Path)
	assert.Equal(t, 1, sec.Files[0].Findings[0].Line)
}

func TestBuild_Recommendations(t *testing.T) {
	ws := workspace(t, false, map[string]string{
		"app.py":   "import openai\nkey = {\"api_key\": \"sk-abcdefghijklmnopqrstuvwx\"}\n",
		"index.js": "import OpenAI from 'openai';\n",
	})

	r := report.Build(ws, report.Options{})

	assert.Contains(t, r.Recommendations, "🔒 **Critical Security**: Move all API keys to environment variables immediately")
	assert.Contains(t, r.Recommendations, "🚀 **Quick Win**: Install Revenium middleware packages to enable automatic tracking")
	assert.Contains(t, r.Recommendations, "📦 Install OpenAI middleware: `npm install revenium-middleware-openai-node`")
	assert.Contains(t, r.Recommendations, "📦 Install OpenAI middleware: `pip install revenium_middleware_openai`")
	for _, rec := range r.Recommendations {
		assert.NotContains(t, rec, "unknown")
	}
}

func TestMarkdown_Structure(t *testing.T) {
	ws := workspace(t, false, map[string]string{
		"app.py": "import openai\n",
	})
	r := report.Build(ws, report.Options{Generator: "kestrel v0.0.0"})
	out := r.Markdown()

	sections := []string{
		"# 🚀 Revenium Integration Report",
		"**Project:** acme",
		"## 📊 Executive Summary",
		"| **Total Files Analyzed** | 1 |",
		"## 🎯 Key Recommendations",
		"## 📝 Detection Details",
		"### 🤖 OpenAI",
		"#### 📄 app.py",
		"**Line 1:**",
		"## 🚀 Next Steps",
		"## 📚 Resources",
		"kestrel v0.0.0",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, "missing %q", s)
		assert.Greater(t, idx, last, "%q out of order", s)
		last = idx
	}
	assert.NotContains(t, out, "Estimated Monthly Cost")
}

func TestMarkdown_CostRow(t *testing.T) {
	ws := workspace(t, true, map[string]string{
		"app.py": "import openai\nclient.chat.completions.create(model=\"gpt-4\")\n",
	})
	r := report.Build(ws, report.Options{})

	assert.True(t, r.Summary.HasCostEstimates)
	assert.Contains(t, r.Markdown(), "| **Estimated Monthly Cost** |")
}

func TestHTML(t *testing.T) {
	ws := workspace(t, false, map[string]string{"app.py": "import openai\n"})
	out, err := report.Build(ws, report.Options{}).Render(report.FormatHTML)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<title>Revenium Integration Report: acme</title>")
	assert.Contains(t, html, "<p><strong>Project:</strong> acme</p>", "header lines render as separate paragraphs")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    report.Format
		wantErr bool
	}{
		{in: "", want: report.FormatMarkdown},
		{in: "md", want: report.FormatMarkdown},
		{in: "Markdown", want: report.FormatMarkdown},
		{in: "html", want: report.FormatHTML},
		{in: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := report.ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "revenium-integration-report-1700000000123.md", report.FileName(report.FormatMarkdown, at))
	assert.Equal(t, "revenium-integration-report-1700000000123.html", report.FileName(report.FormatHTML, at))
	assert.Equal(t, "pip install x", report.InstallCommand(patterns.LanguagePython, "x"))
	assert.Equal(t, "npm install y", report.InstallCommand(patterns.LanguageTypeScript, "y"))
}
