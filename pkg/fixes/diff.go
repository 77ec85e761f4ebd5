package fixes

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
)

// maxDiffLines bounds the inputs Preview will diff
const maxDiffLines = 10000

// PreviewOptions configures fix previews
type PreviewOptions struct {
	Context int  // unchanged lines around each change, default 3
	Color   bool // style added and removed lines with lipgloss
	Width   int  // truncate lines to this width, 0 detects the terminal
}

var (
	diffHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	diffHunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	diffAddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	diffRemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

type lineOp int

const (
	lineKeep lineOp = iota
	lineAdd
	lineDel
)

type diffLine struct {
	op      lineOp
	text    string
	oldLine int // one-based, 0 when added
	newLine int // one-based, 0 when deleted
}

// Preview renders the unified diff of applying script to doc. It returns an
// empty string when the script changes nothing.
func Preview(script *EditScript, doc *detection.Document, opts PreviewOptions) (string, error) {
	after, err := script.Apply(doc)
	if err != nil {
		return "", err
	}
	return UnifiedDiff(doc.URI, doc.Text, after, opts), nil
}

// UnifiedDiff renders a unified diff between before and after
func UnifiedDiff(path, before, after string, opts PreviewOptions) string {
	if before == after {
		return ""
	}
	if opts.Context <= 0 {
		opts.Context = 3
	}
	if opts.Width <= 0 {
		opts.Width = terminalWidth()
	}

	a, b := splitLines(before), splitLines(after)
	if len(a) > maxDiffLines || len(b) > maxDiffLines {
		return fmt.Sprintf("%s: too large to diff (%d and %d lines)\n", path, len(a), len(b))
	}

	script := myers(a, b)

	var sb strings.Builder
	sb.WriteString(styled(opts.Color, diffHeaderStyle, "--- a/"+path) + "\n")
	sb.WriteString(styled(opts.Color, diffHeaderStyle, "+++ b/"+path) + "\n")
	for _, h := range hunks(script, opts.Context) {
		writeHunk(&sb, h, opts)
	}
	return sb.String()
}

// myers computes the shortest edit script from a to b, recording the
// furthest reaching x per diagonal for each edit distance.
func myers(a, b []string) []diffLine {
	n, m := len(a), len(b)
	maxD := n + m
	offset := maxD + 1
	v := make([]int, 2*maxD+3)
	var trace [][]int

search:
	for d := 0; d <= maxD; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				break search
			}
		}
	}

	out := make([]diffLine, 0, n+m)
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		vd := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && vd[offset+k-1] < vd[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := vd[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			out = append(out, diffLine{op: lineKeep, text: a[x], oldLine: x + 1, newLine: y + 1})
		}
		if d == 0 {
			break
		}
		if x == prevX {
			y--
			out = append(out, diffLine{op: lineAdd, text: b[y], newLine: y + 1})
		} else {
			x--
			out = append(out, diffLine{op: lineDel, text: a[x], oldLine: x + 1})
		}
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []diffLine
}

// hunks groups changes with context lines around them, merging changes
// separated by at most 2*context unchanged lines
func hunks(lines []diffLine, context int) []hunk {
	var out []hunk
	for i := 0; i < len(lines); {
		if lines[i].op == lineKeep {
			i++
			continue
		}

		start := max(0, i-context)
		end := i
		for end < len(lines) {
			if lines[end].op != lineKeep {
				end++
				continue
			}
			run := end
			for run < len(lines) && lines[run].op == lineKeep {
				run++
			}
			if run == len(lines) || run-end > 2*context {
				end = min(end+context, len(lines))
				break
			}
			end = run
		}

		out = append(out, newHunk(lines[start:end]))
		i = end
	}
	return out
}

func newHunk(lines []diffLine) hunk {
	h := hunk{lines: lines}
	for _, l := range lines {
		if l.op != lineAdd {
			if h.oldStart == 0 {
				h.oldStart = l.oldLine
			}
			h.oldCount++
		}
		if l.op != lineDel {
			if h.newStart == 0 {
				h.newStart = l.newLine
			}
			h.newCount++
		}
	}
	// a pure insertion into an empty range reports the line before it
	if h.oldCount == 0 && len(lines) > 0 {
		h.oldStart = max(0, lines[0].newLine-1)
	}
	return h
}

func writeHunk(sb *strings.Builder, h hunk, opts PreviewOptions) {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)
	sb.WriteString(styled(opts.Color, diffHunkStyle, header) + "\n")

	for _, l := range h.lines {
		text := truncate(expandTabs(l.text, 4), opts.Width-2)
		switch l.op {
		case lineAdd:
			sb.WriteString(styled(opts.Color, diffAddedStyle, "+"+text))
		case lineDel:
			sb.WriteString(styled(opts.Color, diffRemovedStyle, "-"+text))
		default:
			sb.WriteString(" " + text)
		}
		sb.WriteByte('\n')
	}
}

func styled(color bool, style lipgloss.Style, s string) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// splitLines splits s on newlines, dropping the empty line after a final newline
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func expandTabs(s string, width int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			pad := width - col%width
			sb.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}

func truncate(s string, width int) string {
	if width < 4 || utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width-3]) + "..."
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}
