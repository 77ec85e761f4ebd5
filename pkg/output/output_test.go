package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

func capture(t *testing.T, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetWriter(&buf)
	t.Cleanup(func() { SetWriter(nil) })
	f()
	return buf.String()
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name   string
		print  func(string)
		marker string
	}{
		{"success", Success, "✅"},
		{"error", Error, "❌"},
		{"warn", Warn, "⚠️"},
		{"info", Info, "ℹ️"},
		{"step", Step, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := capture(t, func() { tt.print("hello") })
			assert.Contains(t, got, tt.marker)
			assert.Contains(t, got, "hello")
			assert.True(t, strings.HasSuffix(got, "\n"))
		})
	}
}

func TestVerbose(t *testing.T) {
	t.Cleanup(func() { SetVerbose(false) })

	SetVerbose(false)
	assert.Empty(t, capture(t, func() { Verbose("hidden") }))

	SetVerbose(true)
	assert.Contains(t, capture(t, func() { Verbose("shown") }), "shown")
}

func TestFinding(t *testing.T) {
	got := capture(t, func() { Finding("app.py", 3, patterns.SeverityError, "Hardcoded key") })
	assert.Contains(t, got, "app.py:3")
	assert.Contains(t, got, "❌")
	assert.Contains(t, got, "Hardcoded key")
}

func TestTable(t *testing.T) {
	got := capture(t, func() {
		Table([]string{"ID", "PROVIDER"}, [][]string{
			{"openai-python-import", "openai"},
			{"x", "anthropic"},
		})
	})

	lines := strings.Split(strings.TrimSpace(got), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "openai-python-import  openai")
	assert.Contains(t, lines[2], "x                     anthropic")
}

func TestProvider(t *testing.T) {
	assert.Contains(t, Provider(patterns.ProviderAnthropic), "Anthropic")
	assert.Contains(t, Provider(patterns.ProviderUnknown), "unknown")
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "+added\n", capture(t, func() { Plain("+added\n") }))
}
