package fixes

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/input"
)

// Decision is the outcome of reviewing one fix
type Decision int

const (
	Skip Decision = iota
	Apply
	ShowDiff
	Cancel
)

func (d Decision) String() string {
	switch d {
	case Apply:
		return "apply"
	case ShowDiff:
		return "show-diff"
	case Cancel:
		return "cancel"
	default:
		return "skip"
	}
}

// ReviewStrategy decides whether a fix is applied
type ReviewStrategy interface {
	Review(script *EditScript, doc *detection.Document) (Decision, error)
}

// diffViewerThreshold is the diff length above which the full-screen viewer is used
const diffViewerThreshold = 20

var (
	reviewTitleStyle    = lipgloss.NewStyle().Bold(true)
	reviewNoticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	reviewSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	reviewMutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	reviewBorderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Reviewer asks a strategy about each fix
type Reviewer struct {
	strategy ReviewStrategy
}

// NewReviewer selects a strategy from the fix command's flags. yes applies
// everything, dryRun accepts everything since nothing is written, diff prints
// each change before asking.
func NewReviewer(yes, dryRun, diff bool, out io.Writer) (*Reviewer, error) {
	if yes && diff {
		return nil, fmt.Errorf("--yes cannot be combined with --diff")
	}
	if out == nil {
		out = os.Stdout
	}

	var s ReviewStrategy
	switch {
	case yes || dryRun:
		s = AutoApplyStrategy{}
	case diff:
		s = &DiffStrategy{out: out}
	default:
		s = &InteractiveStrategy{out: out}
	}
	return &Reviewer{strategy: s}, nil
}

// NewReviewerWith wraps a custom strategy
func NewReviewerWith(s ReviewStrategy) *Reviewer {
	return &Reviewer{strategy: s}
}

// Review returns the decision for script
func (r *Reviewer) Review(script *EditScript, doc *detection.Document) (Decision, error) {
	return r.strategy.Review(script, doc)
}

// AutoApplyStrategy accepts every fix
type AutoApplyStrategy struct{}

func (AutoApplyStrategy) Review(*EditScript, *detection.Document) (Decision, error) {
	return Apply, nil
}

// SkipAllStrategy rejects every fix
type SkipAllStrategy struct{}

func (SkipAllStrategy) Review(*EditScript, *detection.Document) (Decision, error) {
	return Skip, nil
}

// DiffStrategy shows the change then asks interactively
type DiffStrategy struct {
	out io.Writer
}

func (s *DiffStrategy) Review(script *EditScript, doc *detection.Document) (Decision, error) {
	if err := showDiff(s.out, script, doc); err != nil {
		return Cancel, err
	}
	return (&InteractiveStrategy{out: s.out}).Review(script, doc)
}

// PromptStrategy asks a plain yes/no question per fix. It suits input that
// is not a terminal, such as answers piped from a script.
type PromptStrategy struct {
	prompter *input.Prompter
}

// NewPromptStrategy asks through p
func NewPromptStrategy(p *input.Prompter) *PromptStrategy {
	return &PromptStrategy{prompter: p}
}

func (s *PromptStrategy) Review(script *EditScript, _ *detection.Document) (Decision, error) {
	if s.prompter.Confirm(fmt.Sprintf("%s in %s?", script.Title, script.URI), false) {
		return Apply, nil
	}
	return Skip, nil
}

// InteractiveStrategy shows a menu. Choosing the diff shows it and returns
// to the menu.
type InteractiveStrategy struct {
	out io.Writer
}

func (s *InteractiveStrategy) Review(script *EditScript, doc *detection.Document) (Decision, error) {
	for {
		final, err := tea.NewProgram(newReviewMenuModel(script)).Run()
		if err != nil {
			return Cancel, fmt.Errorf("failed to show menu: %w", err)
		}

		m := final.(reviewMenuModel)
		if m.selected == nil {
			return Cancel, nil
		}
		if *m.selected != ShowDiff {
			return *m.selected, nil
		}
		if err := showDiff(s.out, script, doc); err != nil {
			return Cancel, err
		}
	}
}

func showDiff(out io.Writer, script *EditScript, doc *detection.Document) error {
	diff, err := Preview(script, doc, PreviewOptions{Color: true})
	if err != nil {
		return err
	}

	if strings.Count(diff, "\n") <= diffViewerThreshold {
		fmt.Fprintln(out, diff)
		return nil
	}

	if _, err := tea.NewProgram(newDiffViewerModel(doc.URI, diff), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to show diff: %w", err)
	}
	return nil
}

type reviewMenuModel struct {
	script   *EditScript
	choices  []string
	actions  []Decision
	cursor   int
	selected *Decision
}

func newReviewMenuModel(script *EditScript) reviewMenuModel {
	return reviewMenuModel{
		script: script,
		choices: []string{
			"Apply fix",
			"Show diff",
			"Skip this fix",
			"Cancel remaining fixes",
		},
		actions: []Decision{Apply, ShowDiff, Skip, Cancel},
	}
}

func (m reviewMenuModel) Init() tea.Cmd {
	return nil
}

func (m reviewMenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "y":
		d := Apply
		m.selected = &d
		return m, tea.Quit
	case "n":
		d := Skip
		m.selected = &d
		return m, tea.Quit
	case "enter":
		d := m.actions[m.cursor]
		m.selected = &d
		return m, tea.Quit
	}
	return m, nil
}

func (m reviewMenuModel) View() string {
	var b strings.Builder

	b.WriteString(reviewNoticeStyle.Render("Fix available: ") + reviewTitleStyle.Render(m.script.Title) + "\n")
	b.WriteString(reviewMutedStyle.Render("    File: ") + m.script.URI + "\n")
	if m.script.PatternID != "" {
		b.WriteString(reviewMutedStyle.Render("    Rule: ") + m.script.PatternID + "\n")
	}
	b.WriteString("\n")
	b.WriteString(reviewMutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [y/n] Apply/Skip    [q] Cancel") + "\n\n")

	for i, choice := range m.choices {
		if i == m.cursor {
			b.WriteString("    " + reviewSelectedStyle.Render("> "+choice) + "\n")
			continue
		}
		b.WriteString("      " + choice + "\n")
	}
	return b.String()
}

type diffViewerModel struct {
	path     string
	diff     string
	viewport viewport.Model
	ready    bool
}

func newDiffViewerModel(path, diff string) diffViewerModel {
	return diffViewerModel{path: path, diff: diff}
}

func (m diffViewerModel) Init() tea.Cmd {
	return nil
}

func (m diffViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc", "enter":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		const chrome = 4 // header and footer lines
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.viewport.SetContent(m.diff)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffViewerModel) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	rule := reviewBorderStyle.Render(strings.Repeat("─", max(0, m.viewport.Width)))

	var b strings.Builder
	b.WriteString(reviewTitleStyle.Render("Diff: "+m.path) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(reviewMutedStyle.Render(fmt.Sprintf("%3.f%%  [↑/↓/pgup/pgdn] Scroll    [q] Back", m.viewport.ScrollPercent()*100)))
	return b.String()
}
