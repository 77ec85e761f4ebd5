// Package report builds the integration report for a workspace scan
package report

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/simonhull/firebird-suite/kestrel/pkg/cost"
	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

// Report is the structured form of an integration report
type Report struct {
	ID              string            `json:"id" yaml:"id"`
	GeneratedAt     time.Time         `json:"generatedAt" yaml:"generatedAt"`
	Project         string            `json:"project" yaml:"project"`
	Summary         Summary           `json:"summary" yaml:"summary"`
	Recommendations []string          `json:"recommendations" yaml:"recommendations"`
	Providers       []ProviderSection `json:"providers" yaml:"providers"`
	Generator       string            `json:"generator" yaml:"generator"`
}

// Summary holds the headline numbers
type Summary struct {
	FilesAnalyzed        int     `json:"filesAnalyzed" yaml:"filesAnalyzed"`
	FilesWithFindings    int     `json:"filesWithFindings" yaml:"filesWithFindings"`
	TotalFindings        int     `json:"totalFindings" yaml:"totalFindings"`
	SecurityIssues       int     `json:"securityIssues" yaml:"securityIssues"`
	EstimatedMonthlyCost float64 `json:"estimatedMonthlyCost,omitempty" yaml:"estimatedMonthlyCost,omitempty"`
	HasCostEstimates     bool    `json:"-" yaml:"-"`
}

// ProviderSection groups findings for one provider
type ProviderSection struct {
	Provider    patterns.Provider `json:"provider" yaml:"provider"`
	DisplayName string            `json:"displayName" yaml:"displayName"`
	Files       []FileSection     `json:"files" yaml:"files"`
}

// FileSection groups a provider's findings in one file
type FileSection struct {
	Path     string    `json:"path" yaml:"path"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// Finding is one rendered detection
type Finding struct {
	Line        int               `json:"line" yaml:"line"`
	Severity    patterns.Severity `json:"severity" yaml:"severity"`
	Message     string            `json:"message" yaml:"message"`
	FixGuidance string            `json:"fixGuidance,omitempty" yaml:"fixGuidance,omitempty"`
}

// Options configures Build
type Options struct {
	Now       time.Time // defaults to time.Now
	Generator string    // e.g. "kestrel v0.3.0"
}

// Build assembles a report from a workspace scan
func Build(ws *detection.WorkspaceResult, opts Options) *Report {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	r := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: opts.Now,
		Project:     filepath.Base(ws.Root),
		Generator:   opts.Generator,
		Summary: Summary{
			FilesAnalyzed:     ws.FilesAnalyzed,
			FilesWithFindings: len(ws.Files),
		},
	}

	sections := make(map[patterns.Provider]*ProviderSection)
	var providerOrder []patterns.Provider
	scenarios := make(map[patterns.Scenario]bool)
	languages := make(map[patterns.Provider][]patterns.Language)
	costed := make(map[string]bool)

	for _, path := range ws.Order {
		lang := patterns.LanguageForPath(path)
		for _, res := range ws.Files[path] {
			p := res.Pattern
			r.Summary.TotalFindings++
			if p.Severity == patterns.SeverityError || p.SecurityRisk {
				r.Summary.SecurityIssues++
			}
			scenarios[p.Scenario] = true

			sec, ok := sections[p.Provider]
			if !ok {
				sec = &ProviderSection{Provider: p.Provider, DisplayName: patterns.DisplayName(p.Provider)}
				sections[p.Provider] = sec
				providerOrder = append(providerOrder, p.Provider)
			}
			if !slices.Contains(languages[p.Provider], lang) {
				languages[p.Provider] = append(languages[p.Provider], lang)
			}
			sec.add(relativePath(ws.Root, path), Finding{
				Line:        res.Line(),
				Severity:    p.Severity,
				Message:     p.Message,
				FixGuidance: p.FixGuidance,
			})

			// one estimate per provider per file
			if res.Cost != nil && !costed[path+"|"+string(p.Provider)] {
				costed[path+"|"+string(p.Provider)] = true
				r.Summary.EstimatedMonthlyCost += res.Cost.MonthlyEstimate
				r.Summary.HasCostEstimates = true
			}
		}
	}

	for _, p := range providerOrder {
		r.Providers = append(r.Providers, *sections[p])
	}
	r.Recommendations = recommendations(scenarios, providerOrder, languages)
	return r
}

func (s *ProviderSection) add(path string, f Finding) {
	for i := range s.Files {
		if s.Files[i].Path == path {
			s.Files[i].Findings = append(s.Files[i].Findings, f)
			return
		}
	}
	s.Files = append(s.Files, FileSection{Path: path, Findings: []Finding{f}})
}

func recommendations(scenarios map[patterns.Scenario]bool, providers []patterns.Provider, languages map[patterns.Provider][]patterns.Language) []string {
	var recs []string
	if scenarios[patterns.ScenarioSecurityWarning] {
		recs = append(recs, "🔒 **Critical Security**: Move all API keys to environment variables immediately")
	}
	if scenarios[patterns.ScenarioMissingRevenium] {
		recs = append(recs, "🚀 **Quick Win**: Install Revenium middleware packages to enable automatic tracking")
	}

	for _, p := range providers {
		if p == patterns.ProviderUnknown {
			continue
		}
		cfg, ok := patterns.LookupProvider(p)
		if !ok {
			continue
		}
		var seen []string
		for _, lang := range languages[p] {
			pkg, ok := patterns.MiddlewarePackage(p, lang)
			if !ok || slices.Contains(seen, pkg) {
				continue
			}
			seen = append(seen, pkg)
			recs = append(recs, fmt.Sprintf("📦 Install %s middleware: `%s`", cfg.DisplayName, InstallCommand(lang, pkg)))
		}
	}
	return recs
}

// InstallCommand returns the package manager command for a middleware package
func InstallCommand(lang patterns.Language, pkg string) string {
	if lang == patterns.LanguagePython {
		return "pip install " + pkg
	}
	return "npm install " + pkg
}

// FileName returns the default report file name for format
func FileName(format Format, at time.Time) string {
	return fmt.Sprintf("revenium-integration-report-%d.%s", at.UnixMilli(), format.Extension())
}

// FormatCost renders the summary estimate the same way findings do
func FormatCost(monthly float64) string {
	return cost.FormatDisplay(cost.Estimate{MonthlyEstimate: monthly})
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
