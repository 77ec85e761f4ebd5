// Package output provides styled terminal output for the kestrel CLI.
//
// Functions use lipgloss for styling and write to a package-level writer
// that commands point at their own stdout.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)

	out         io.Writer = os.Stdout
	verboseMode bool
)

// SetWriter redirects all output, nil restores stdout
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetVerbose enables or disables Verbose messages
func SetVerbose(v bool) {
	verboseMode = v
}

// Success prints a completed operation
//
//	output.Success("Applied 3 fixes")
func Success(msg string) {
	fmt.Fprintln(out, successStyle.Render("✅ "+msg))
}

// Error prints a failure that needs attention
func Error(msg string) {
	fmt.Fprintln(out, errorStyle.Render("❌ "+msg))
}

// Warn prints a non-fatal problem
func Warn(msg string) {
	fmt.Fprintln(out, warnStyle.Render("⚠️  "+msg))
}

// Info prints a status update
func Info(msg string) {
	fmt.Fprintln(out, infoStyle.Render("ℹ️  "+msg))
}

// Step prints an indented sub-item in gray
//
//	output.Step("pip install revenium_middleware_openai")
func Step(msg string) {
	fmt.Fprintln(out, stepStyle.Render("   "+msg))
}

// Verbose prints a debug message only in verbose mode
func Verbose(msg string) {
	if verboseMode {
		fmt.Fprintln(out, stepStyle.Render("🔍 "+msg))
	}
}

// Plain writes text as is, e.g. a pre-rendered diff
func Plain(text string) {
	fmt.Fprint(out, text)
}

// Header prints a section title
func Header(msg string) {
	fmt.Fprintln(out, headerStyle.Render(msg))
}

// Provider renders a provider's display name in its brand color
func Provider(p patterns.Provider) string {
	cfg, ok := patterns.LookupProvider(p)
	if !ok {
		return patterns.DisplayName(p)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Color)).Bold(true).Render(cfg.DisplayName)
}

// Finding prints one detection as "path:line icon message"
func Finding(path string, line int, severity patterns.Severity, msg string) {
	loc := stepStyle.Render(fmt.Sprintf("%s:%d", path, line))
	fmt.Fprintf(out, "  %s %s %s\n", loc, severity.Icon(), msg)
}

// Table prints rows under a header with columns padded to fit
func Table(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	cell := func(s string, i int) string {
		return s + strings.Repeat(" ", widths[i]-lipgloss.Width(s))
	}

	var hdr []string
	for i, h := range header {
		hdr = append(hdr, headerStyle.Render(cell(h, i)))
	}
	fmt.Fprintln(out, strings.TrimRight(strings.Join(hdr, "  "), " "))

	for _, row := range rows {
		var cols []string
		for i := 0; i < len(row) && i < len(widths); i++ {
			cols = append(cols, cell(row[i], i))
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(cols, "  "), " "))
	}
}
