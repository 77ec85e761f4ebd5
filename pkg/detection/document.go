package detection

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// Document is a snapshot of one source file. Version must change whenever
// Text changes so cached results are never reused for different text.
type Document struct {
	URI      string
	Language patterns.Language
	Version  int
	Text     string

	lines []int // byte offset of each line start, built lazily
}

// NewDocument creates a document, inferring the language from the URI's extension
func NewDocument(uri string, version int, text string) *Document {
	return &Document{
		URI:      uri,
		Language: patterns.LanguageForPath(uri),
		Version:  version,
		Text:     text,
	}
}

// Position is a zero-based line and character offset. Character counts
// runes from the start of the line.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p sorts before o
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Range spans [Start, End)
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsEmpty reports whether the range covers no text
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

func (d *Document) lineStarts() []int {
	if d.lines != nil {
		return d.lines
	}
	starts := []int{0}
	for i := 0; i < len(d.Text); i++ {
		if d.Text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	d.lines = starts
	return starts
}

// LineCount returns the number of lines, counting a trailing empty line
func (d *Document) LineCount() int {
	return len(d.lineStarts())
}

// PositionAt converts a byte offset into a Position. Offsets are clamped to the text.
func (d *Document) PositionAt(offset int) Position {
	offset = max(0, min(offset, len(d.Text)))
	starts := d.lineStarts()
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	return Position{
		Line:      line,
		Character: utf8.RuneCountInString(d.Text[starts[line]:offset]),
	}
}

// OffsetAt converts a Position into a byte offset. A position one line past
// the end of a text without a trailing newline maps to len(Text).
func (d *Document) OffsetAt(pos Position) (int, error) {
	starts := d.lineStarts()
	if pos.Line < 0 || pos.Character < 0 {
		return 0, fmt.Errorf("invalid position %d:%d", pos.Line, pos.Character)
	}
	if pos.Line >= len(starts) {
		if pos.Line == len(starts) && pos.Character == 0 {
			return len(d.Text), nil
		}
		return 0, fmt.Errorf("line %d out of range (document has %d lines)", pos.Line, len(starts))
	}

	end := len(d.Text)
	if pos.Line+1 < len(starts) {
		end = starts[pos.Line+1] - 1 // exclude the newline
	}

	offset := starts[pos.Line]
	for i := 0; i < pos.Character; i++ {
		if offset >= end {
			return 0, fmt.Errorf("character %d out of range on line %d", pos.Character, pos.Line)
		}
		_, size := utf8.DecodeRuneInString(d.Text[offset:])
		offset += size
	}
	return offset, nil
}

// LineText returns the text of a line without its newline
func (d *Document) LineText(line int) string {
	starts := d.lineStarts()
	if line < 0 || line >= len(starts) {
		return ""
	}
	end := len(d.Text)
	if line+1 < len(starts) {
		end = starts[line+1] - 1
	}
	return d.Text[starts[line]:end]
}

// EndsWithNewline reports whether the final line is terminated
func (d *Document) EndsWithNewline() bool {
	return len(d.Text) > 0 && d.Text[len(d.Text)-1] == '\n'
}
