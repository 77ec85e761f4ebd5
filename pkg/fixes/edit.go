package fixes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// Edit replaces the text in Range with NewText. An empty Range is an insertion.
type Edit struct {
	Range   detection.Range `json:"range"`
	NewText string          `json:"newText"`
}

// EditScript is the complete change for one fix. It is applied all at once or
// not at all.
type EditScript struct {
	URI       string            `json:"uri"`
	Title     string            `json:"title"`
	PatternID string            `json:"patternId"`
	Provider  patterns.Provider `json:"provider"`
	Package   string            `json:"package,omitempty"` // middleware the script imports
	Edits     []Edit            `json:"edits"`
}

type resolvedEdit struct {
	start, end int
	text       string
	index      int
}

// resolve converts every edit to byte offsets and rejects invalid or
// overlapping ranges before anything is changed.
func (s *EditScript) resolve(doc *detection.Document) ([]resolvedEdit, error) {
	resolved := make([]resolvedEdit, 0, len(s.Edits))
	for i, e := range s.Edits {
		if e.Range.End.Before(e.Range.Start) {
			return nil, fmt.Errorf("edit %d: range end precedes start", i)
		}
		start, err := doc.OffsetAt(e.Range.Start)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		end, err := doc.OffsetAt(e.Range.End)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		resolved = append(resolved, resolvedEdit{start: start, end: end, text: e.NewText, index: i})
	}

	sort.SliceStable(resolved, func(a, b int) bool { return resolved[a].start < resolved[b].start })
	for i := 1; i < len(resolved); i++ {
		prev, cur := resolved[i-1], resolved[i]
		if cur.start < prev.end {
			return nil, fmt.Errorf("edits %d and %d overlap", prev.index, cur.index)
		}
	}
	return resolved, nil
}

// Apply returns doc's text with every edit applied. If any edit is invalid
// an error is returned and nothing is applied. Insertions at the same
// position keep their script order.
func (s *EditScript) Apply(doc *detection.Document) (string, error) {
	resolved, err := s.resolve(doc)
	if err != nil {
		return doc.Text, fmt.Errorf("applying %q: %w", s.Title, err)
	}

	// resolved is sorted by start with ties in script order, so a forward
	// splice preserves both offsets and insertion order.
	var b strings.Builder
	b.Grow(len(doc.Text) + s.insertedLen())
	pos := 0
	for _, e := range resolved {
		b.WriteString(doc.Text[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.WriteString(doc.Text[pos:])

	return b.String(), nil
}

func (s *EditScript) insertedLen() int {
	n := 0
	for _, e := range s.Edits {
		n += len(e.NewText)
	}
	return n
}
