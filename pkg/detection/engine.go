package detection

import (
	"github.com/simonhull/firebird-suite/kestrel/pkg/cost"
	"github.com/simonhull/firebird-suite/kestrel/pkg/logger"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// Settings is the configuration the engine consults on every scan
type Settings interface {
	DetectionEnabled() bool
	Filter() string
	LanguageEnabled(lang patterns.Language) bool
	ProviderEnabled(p patterns.Provider) bool
}

// Result is one pattern match in a document
type Result struct {
	Pattern    *patterns.Pattern
	Range      Range
	Match      string
	Suggestion string
	Cost       *cost.Estimate
}

// Line returns the one-based line the match starts on
func (r Result) Line() int {
	return r.Range.Start.Line + 1
}

// Engine evaluates the pattern registry against documents. It owns its result
// cache and must be used from one goroutine.
type Engine struct {
	registry *patterns.Registry
	rules    []patterns.Pattern // engine-owned copy; results point into it
	cache    *Cache
	logger   logger.Logger
	costs    bool
}

// NewEngine creates an Engine over registry with an empty cache
func NewEngine(registry *patterns.Registry) *Engine {
	if registry == nil {
		registry = patterns.NewRegistry()
	}
	return &Engine{
		registry: registry,
		rules:    registry.Patterns(),
		cache:    NewCache(DefaultCacheCapacity),
		logger:   logger.Default(),
	}
}

// WithLogger returns a new Engine with the specified logger and a fresh cache
func (e *Engine) WithLogger(log logger.Logger) *Engine {
	return &Engine{
		registry: e.registry,
		rules:    e.rules,
		cache:    NewCache(e.cache.Capacity()),
		logger:   log,
		costs:    e.costs,
	}
}

// WithCostEstimates returns a new Engine that attaches spend estimates to
// results, with a fresh cache
func (e *Engine) WithCostEstimates(enabled bool) *Engine {
	return &Engine{
		registry: e.registry,
		rules:    e.rules,
		cache:    NewCache(e.cache.Capacity()),
		logger:   e.logger,
		costs:    enabled,
	}
}

// Registry returns the rules the engine evaluates
func (e *Engine) Registry() *patterns.Registry {
	return e.registry
}

// Cache exposes the engine's result cache
func (e *Engine) Cache() *Cache {
	return e.cache
}

// CacheLen returns how many documents have cached results
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// ClearCache drops every cached result
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Scan returns the filtered results for doc. Unfiltered results are cached per
// document version; the filter from settings is applied on every call.
func (e *Engine) Scan(doc *Document, settings Settings) []Result {
	if !settings.DetectionEnabled() {
		e.logger.Debug("Detection disabled", logger.F("uri", doc.URI))
		return []Result{}
	}

	if !settings.LanguageEnabled(doc.Language) {
		e.logger.Debug("Language disabled",
			logger.F("uri", doc.URI),
			logger.F("language", doc.Language))
		return []Result{}
	}

	filter := ParseFilter(settings.Filter())

	if cached, ok := e.cache.Get(doc.URI, doc.Version); ok {
		e.logger.Debug("Using cached results", logger.F("uri", doc.URI), logger.F("version", doc.Version))
		return ApplyFilter(cached, filter)
	}

	results := e.match(doc, settings)
	e.cache.Put(doc.URI, doc.Version, results)

	e.logger.Debug("Scanned document",
		logger.F("uri", doc.URI),
		logger.F("version", doc.Version),
		logger.F("results", len(results)))

	return ApplyFilter(results, filter)
}

func (e *Engine) match(doc *Document, settings Settings) []Result {
	results := make([]Result, 0)
	integrated := make(map[patterns.Provider]bool)
	for i := range e.rules {
		p := &e.rules[i]

		if !p.AppliesTo(doc.Language) {
			continue
		}
		if !settings.ProviderEnabled(p.Provider) {
			continue
		}

		has, seen := integrated[p.Provider]
		if !seen {
			has = HasMiddleware(doc.Text, p.Provider, doc.Language)
			integrated[p.Provider] = has
			if has {
				e.logger.Debug("Middleware already present",
					logger.F("uri", doc.URI),
					logger.F("provider", p.Provider))
			}
		}
		if has {
			continue
		}

		limit := 1
		if p.Global {
			limit = -1
		}

		for _, loc := range p.Expr.FindAllStringIndex(doc.Text, limit) {
			if loc[0] == loc[1] {
				continue
			}
			r := Result{
				Pattern:    p,
				Range:      Range{Start: doc.PositionAt(loc[0]), End: doc.PositionAt(loc[1])},
				Match:      doc.Text[loc[0]:loc[1]],
				Suggestion: p.FixGuidance,
			}
			if e.costs {
				r.Cost = e.estimate(p.Provider, doc.Text)
			}
			results = append(results, r)
		}
	}

	return results
}

func (e *Engine) estimate(provider patterns.Provider, text string) *cost.Estimate {
	if provider == patterns.ProviderUnknown {
		return nil
	}
	model, _ := cost.DetectModel(string(provider), text)
	est := cost.EstimateCost(string(provider), model, cost.DefaultTokensPerMonth)
	return &est
}
