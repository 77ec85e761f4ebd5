package detection

import "github.com/simonhull/firebird-suite/kestrel/pkg/patterns"

// Filter narrows scan results for presentation
type Filter string

const (
	FilterAll         Filter = "all"
	FilterIntegration Filter = "integration"
	FilterSecurity    Filter = "security"
	FilterImports     Filter = "imports"
)

// ParseFilter maps a setting value onto a Filter. Unknown values mean FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(s); f {
	case FilterIntegration, FilterSecurity, FilterImports:
		return f
	default:
		return FilterAll
	}
}

// Keep reports whether a result passes the filter
func (f Filter) Keep(r Result) bool {
	switch f {
	case FilterIntegration:
		return r.Pattern.Scenario == patterns.ScenarioMissingRevenium
	case FilterSecurity:
		return r.Pattern.Scenario == patterns.ScenarioSecurityWarning
	case FilterImports:
		return r.Pattern.IsImport()
	default:
		return true
	}
}

// ApplyFilter returns the results that pass f as a new slice, leaving results untouched
func ApplyFilter(results []Result, f Filter) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if f.Keep(r) {
			out = append(out, r)
		}
	}
	return out
}
