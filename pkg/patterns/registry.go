package patterns

import "slices"

// Registry is a read-only view over the detection rules
type Registry struct {
	patterns []Pattern
	byID     map[string]int
}

// NewRegistry creates a Registry with the default patterns
func NewRegistry() *Registry {
	return NewRegistryFrom(DefaultPatterns())
}

// NewRegistryFrom creates a Registry over a custom rule set, keeping its order
func NewRegistryFrom(rules []Pattern) *Registry {
	r := &Registry{
		patterns: make([]Pattern, 0, len(rules)),
		byID:     make(map[string]int, len(rules)),
	}
	for _, p := range rules {
		r.byID[p.ID] = len(r.patterns)
		r.patterns = append(r.patterns, p)
	}
	return r
}

// Patterns returns a copy of all patterns in evaluation order
func (r *Registry) Patterns() []Pattern {
	return slices.Clone(r.patterns)
}

// Len returns the number of registered patterns
func (r *Registry) Len() int {
	return len(r.patterns)
}

// ByID returns a copy of the pattern with the given id
func (r *Registry) ByID(id string) (*Pattern, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	p := r.patterns[i]
	return &p, true
}

// ByProvider returns the patterns attributed to a provider
func (r *Registry) ByProvider(p Provider) []Pattern {
	return r.Find(func(pat Pattern) bool { return pat.Provider == p })
}

// Critical returns patterns with ERROR severity, a security risk or HIGH cost impact
func (r *Registry) Critical() []Pattern {
	return r.Find(func(pat Pattern) bool { return pat.IsCritical() })
}

// Find returns patterns matching the given predicate
func (r *Registry) Find(predicate func(Pattern) bool) []Pattern {
	var matches []Pattern
	for _, pattern := range r.patterns {
		if predicate(pattern) {
			matches = append(matches, pattern)
		}
	}
	return matches
}
