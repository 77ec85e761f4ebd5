package fixes

import (
	"bytes"
	"embed"
	"fmt"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// templateData is passed to every insertion template
type templateData struct {
	Package   string
	Display   string
	PatchFunc string
	Class     string
	Indent    string
	Require   bool
}

// Renderer parses the embedded insertion templates once and caches them
type Renderer struct {
	fs    embed.FS
	cache map[string]*template.Template
	mu    sync.RWMutex
}

// NewRenderer creates a renderer over the built-in templates
func NewRenderer() *Renderer {
	return &Renderer{
		fs:    templateFS,
		cache: make(map[string]*template.Template),
	}
}

// Render executes the named template, e.g. "side_effect"
func (r *Renderer) Render(name string, data any) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()

	if !ok {
		path := "templates/" + name + ".tmpl"
		src, err := r.fs.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read template '%s': %w", path, err)
		}
		tmpl, err = template.New(name).Parse(string(src))
		if err != nil {
			return "", fmt.Errorf("failed to parse template '%s': %w", name, err)
		}

		r.mu.Lock()
		r.cache[name] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template '%s': %w", name, err)
	}
	return buf.String(), nil
}

// ClearCache drops parsed templates
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}
