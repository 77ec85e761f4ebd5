package fixes

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// ErrNoFix is returned, wrapped with a reason, when a result has no automatic fix
var ErrNoFix = errors.New("no automatic fix")

var (
	jsStatementExpr = regexp.MustCompile(`^\s*(import\b|(const|let|var)\s+.*=\s*require\s*\(|require\s*\()`)
	pyStatementExpr = regexp.MustCompile(`^\s*(import|from)\s`)
	esmImportExpr   = regexp.MustCompile(`(?m)^\s*(import|export)\s`)
	requireExpr     = regexp.MustCompile(`\brequire\s*\(`)
	strictExpr      = regexp.MustCompile(`^\s*['"]use strict['"];?\s*$`)
	futureExpr      = regexp.MustCompile(`^from\s+__future__\s+import\b`)
)

// Generator turns detection results into edit scripts
type Generator struct {
	renderer *Renderer
	registry *patterns.Registry
}

// NewGenerator creates a Generator using the built-in templates and rules
func NewGenerator() *Generator {
	return &Generator{renderer: NewRenderer(), registry: patterns.NewRegistry()}
}

// Generate builds the edit script that resolves result in doc
func (g *Generator) Generate(result detection.Result, doc *detection.Document) (*EditScript, error) {
	if result.Pattern == nil {
		return nil, fmt.Errorf("%w: result has no pattern", ErrNoFix)
	}

	switch result.Pattern.Scenario {
	case patterns.ScenarioMissingRevenium, patterns.ScenarioFrameworkUsage, patterns.ScenarioAsyncPattern:
		return g.middlewareInsertion(result, doc)
	case patterns.ScenarioSecurityWarning:
		return nil, fmt.Errorf("%w: %s findings must be fixed by hand", ErrNoFix, result.Pattern.Scenario)
	default:
		return nil, fmt.Errorf("%w: unsupported scenario %q", ErrNoFix, result.Pattern.Scenario)
	}
}

func (g *Generator) middlewareInsertion(result detection.Result, doc *detection.Document) (*EditScript, error) {
	provider := result.Pattern.Provider
	cfg, ok := patterns.LookupProvider(provider)
	if !ok {
		return nil, fmt.Errorf("%w: provider %q has no middleware", ErrNoFix, provider)
	}
	pkg, ok := patterns.MiddlewarePackage(provider, doc.Language)
	if !ok {
		return nil, fmt.Errorf("%w: no %s middleware for %s", ErrNoFix, doc.Language, cfg.DisplayName)
	}
	if detection.HasMiddleware(doc.Text, provider, doc.Language) {
		return nil, fmt.Errorf("%w: %s middleware already imported", ErrNoFix, cfg.DisplayName)
	}

	data := templateData{
		Package:   pkg,
		Display:   cfg.DisplayName,
		PatchFunc: cfg.PatchFunc(),
		Class:     cfg.JSClass,
	}

	var (
		edit Edit
		err  error
	)
	switch {
	case doc.Language == patterns.LanguagePython:
		edit, err = g.pythonEdit(result, doc, data)
	case doc.Language.IsJS():
		edit, err = g.jsEdit(result, doc, cfg, data)
	default:
		return nil, fmt.Errorf("%w: unsupported language %q", ErrNoFix, doc.Language)
	}
	if err != nil {
		return nil, err
	}

	return &EditScript{
		URI:       doc.URI,
		Title:     fmt.Sprintf("Add Revenium middleware for %s", cfg.DisplayName),
		PatternID: result.Pattern.ID,
		Provider:  provider,
		Package:   pkg,
		Edits:     []Edit{edit},
	}, nil
}

// pythonEdit inserts the import below the provider's import statement,
// indented like it so imports inside blocks stay valid. Without one the
// import goes to the top of the module.
func (g *Generator) pythonEdit(result detection.Result, doc *detection.Document, data templateData) (Edit, error) {
	start, end, ok := result.Range.Start.Line, result.Range.End.Line, true
	if !pyStatementExpr.MatchString(doc.LineText(start)) {
		start, end, ok = g.anchor(doc, result.Pattern.Provider, pyStatementExpr)
	}

	if ok {
		line := doc.LineText(start)
		data.Indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	}
	text, err := g.renderer.Render("python", data)
	if err != nil {
		return Edit{}, err
	}

	if !ok {
		return insertBeforeLine(doc, pythonTopLine(doc), text), nil
	}
	return insertAfterLine(doc, statementEnd(doc, end), text), nil
}

func (g *Generator) jsEdit(result detection.Result, doc *detection.Document, cfg patterns.ProviderConfig, data templateData) (Edit, error) {
	if cfg.FixTemplate == patterns.TemplateNone {
		return Edit{}, fmt.Errorf("%w: no %s template for %s", ErrNoFix, doc.Language, cfg.DisplayName)
	}

	start, end, atStatement := result.Range.Start.Line, result.Range.End.Line, true
	if !result.Pattern.IsImport() && !jsStatementExpr.MatchString(doc.LineText(start)) {
		start, end, atStatement = g.anchor(doc, result.Pattern.Provider, jsStatementExpr)
	}
	if atStatement {
		data.Require = requireExpr.MatchString(doc.LineText(start))
	} else {
		data.Require = usesCommonJS(doc.Text)
	}

	name := templateName(cfg.FixTemplate, atStatement)
	text, err := g.renderer.Render(name, data)
	if err != nil {
		return Edit{}, err
	}

	if atStatement {
		return insertAfterLine(doc, statementEnd(doc, end), text), nil
	}
	return insertBeforeLine(doc, jsTopLine(doc), text), nil
}

// anchor finds the first line where a rule for provider matches an import
// statement, returning the lines the match spans
func (g *Generator) anchor(doc *detection.Document, provider patterns.Provider, statement *regexp.Regexp) (start, end int, ok bool) {
	best := -1
	for _, p := range g.registry.ByProvider(provider) {
		if !p.AppliesTo(doc.Language) {
			continue
		}
		for _, loc := range p.Expr.FindAllStringIndex(doc.Text, -1) {
			first := doc.PositionAt(loc[0]).Line
			if !statement.MatchString(doc.LineText(first)) {
				continue
			}
			if best < 0 || first < best {
				best, end = first, doc.PositionAt(loc[1]).Line
			}
			break
		}
	}
	return best, end, best >= 0
}

// statementEnd extends line to the line closing a bracketed import list
// opened on it, so nothing is inserted inside the statement
func statementEnd(doc *detection.Document, line int) int {
	text := doc.LineText(line)
	if strings.Count(text, "(") <= strings.Count(text, ")") && strings.Count(text, "{") <= strings.Count(text, "}") {
		return line
	}
	for l := line + 1; l < doc.LineCount(); l++ {
		if t := doc.LineText(l); strings.Contains(t, ")") || strings.Contains(t, "}") {
			return l
		}
	}
	return line
}

// templateName maps a provider template to its file. Top of file insertions
// degrade the patch initializer to a side-effect import since there is no
// client construction nearby to patch.
func templateName(kind patterns.FixTemplateKind, atStatement bool) string {
	switch kind {
	case patterns.TemplatePatchInitializer:
		if atStatement {
			return "patch_initializer"
		}
		return "side_effect"
	case patterns.TemplateSideEffectDotenv:
		return "side_effect_dotenv"
	case patterns.TemplateNamedClass:
		return "named_class"
	default:
		return "side_effect"
	}
}

// insertAfterLine inserts text at the start of the line following line. A
// final line without a newline gets one first.
func insertAfterLine(doc *detection.Document, line int, text string) Edit {
	pos := detection.Position{Line: line + 1}
	if line+1 >= doc.LineCount() {
		text = "\n" + text
	}
	return Edit{Range: detection.Range{Start: pos, End: pos}, NewText: text}
}

// insertBeforeLine inserts text at the start of line. Past the last line it
// appends after it.
func insertBeforeLine(doc *detection.Document, line int, text string) Edit {
	if line == 0 {
		return Edit{NewText: text}
	}
	return insertAfterLine(doc, line-1, text)
}

// jsTopLine is the first line an import may go on: below a shebang and a
// "use strict" directive
func jsTopLine(doc *detection.Document) int {
	line := 0
	if strings.HasPrefix(doc.LineText(line), "#!") {
		line++
	}
	if line < doc.LineCount() && strictExpr.MatchString(doc.LineText(line)) {
		line++
	}
	return line
}

// pythonTopLine is the first line an import may go on: below leading
// comments, the module docstring and any __future__ imports
func pythonTopLine(doc *detection.Document) int {
	n := doc.LineCount()
	line := skipPythonComments(doc, 0)

	if line < n {
		line = docstringEnd(doc, line)
	}

	for {
		next := skipPythonComments(doc, line)
		if next >= n || !futureExpr.MatchString(doc.LineText(next)) {
			break
		}
		line = statementEnd(doc, next) + 1
	}

	last := n
	if doc.Text == "" || doc.EndsWithNewline() {
		last = n - 1
	}
	return min(line, last)
}

// docstringEnd returns the line after a docstring starting on line, or line
// itself when there is none
func docstringEnd(doc *detection.Document, line int) int {
	text := strings.TrimSpace(doc.LineText(line))
	for _, q := range []string{`"""`, `'''`} {
		if !strings.HasPrefix(text, q) {
			continue
		}
		if strings.Count(text, q) >= 2 {
			return line + 1
		}
		for l := line + 1; l < doc.LineCount(); l++ {
			if strings.Contains(doc.LineText(l), q) {
				return l + 1
			}
		}
		return doc.LineCount()
	}
	return line
}

func skipPythonComments(doc *detection.Document, line int) int {
	for ; line < doc.LineCount(); line++ {
		text := strings.TrimSpace(doc.LineText(line))
		if text != "" && !strings.HasPrefix(text, "#") {
			break
		}
	}
	return line
}

// usesCommonJS reports whether a file loads modules with require and has no
// ES module statements
func usesCommonJS(text string) bool {
	return requireExpr.MatchString(text) && !esmImportExpr.MatchString(text)
}
