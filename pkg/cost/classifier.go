package cost

import (
	"fmt"
	"math"
	"strings"
)

// DefaultTokensPerMonth is the volume assumed when the caller has no usage data
const DefaultTokensPerMonth = 100000

// unknownProviderPrice is charged per 1000 tokens for providers with no table
const unknownProviderPrice = 0.001

// Category groups models by relative price
type Category string

const (
	CategoryPremium   Category = "premium"
	CategoryStandard  Category = "standard"
	CategoryEconomy   Category = "economy"
	CategoryEmbedding Category = "embedding"
)

// Model is a priced model in the static table
type Model struct {
	Name          string
	Per1000Tokens float64
	Category      Category
}

// pricing is ordered so fallbacks are deterministic
var pricing = map[string][]Model{
	"openai": {
		{"gpt-4", 0.03, CategoryPremium},
		{"gpt-4-turbo", 0.01, CategoryPremium},
		{"gpt-3.5-turbo", 0.0015, CategoryStandard},
		{"gpt-3.5-turbo-16k", 0.003, CategoryStandard},
		{"text-embedding-ada-002", 0.0001, CategoryEmbedding},
		{"text-embedding-3-small", 0.00002, CategoryEmbedding},
		{"text-embedding-3-large", 0.00013, CategoryEmbedding},
	},
	"anthropic": {
		{"claude-3-opus", 0.015, CategoryPremium},
		{"claude-3-sonnet", 0.003, CategoryStandard},
		{"claude-3-haiku", 0.00025, CategoryEconomy},
		{"claude-2.1", 0.008, CategoryStandard},
		{"claude-instant", 0.0016, CategoryEconomy},
	},
	"google": {
		{"gemini-pro", 0.00025, CategoryStandard},
		{"gemini-pro-vision", 0.00025, CategoryStandard},
		{"palm-2", 0.002, CategoryStandard},
	},
	"aws-bedrock": {
		{"claude-v2", 0.008, CategoryStandard},
		{"claude-instant", 0.0016, CategoryEconomy},
		{"titan-text-express", 0.0008, CategoryEconomy},
		{"titan-text-lite", 0.0003, CategoryEconomy},
	},
}

var suggestions = map[string]map[string]string{
	"openai": {
		"gpt-4":       "Consider gpt-3.5-turbo for non-critical tasks (20x cost reduction)",
		"gpt-4-turbo": "Use gpt-3.5-turbo where possible (7x cost reduction)",
	},
	"anthropic": {
		"claude-3-opus":   "Try claude-3-haiku for simple tasks (60x cost reduction)",
		"claude-3-sonnet": "Consider claude-3-haiku for basic queries (12x cost reduction)",
	},
}

// Estimate is the projected monthly spend for a provider and model
type Estimate struct {
	Provider              string  `json:"provider" yaml:"provider"`
	Model                 string  `json:"model" yaml:"model"`
	Per1000Tokens         float64 `json:"per_1000_tokens" yaml:"per_1000_tokens"`
	TokensPerMonth        int     `json:"tokens_per_month" yaml:"tokens_per_month"`
	MonthlyEstimate       float64 `json:"monthly_estimate" yaml:"monthly_estimate"`
	OptimizationPotential float64 `json:"optimization_potential" yaml:"optimization_potential"`
}

// SpendCategory is a coarse rating of monthly spend
type SpendCategory string

const (
	SpendHigh   SpendCategory = "HIGH"
	SpendMedium SpendCategory = "MEDIUM"
	SpendLow    SpendCategory = "LOW"
)

// Models returns the priced models for a provider in table order
func Models(provider string) []Model {
	return pricing[provider]
}

// Providers returns the providers that have a pricing table
func Providers() []string {
	return []string{"openai", "anthropic", "google", "aws-bedrock"}
}

// KnownModel reports whether the model is priced for the provider
func KnownModel(provider, model string) bool {
	_, ok := findModel(pricing[provider], model)
	return ok
}

func findModel(models []Model, name string) (Model, bool) {
	for _, m := range models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// fallbackModel picks the first standard model, or the first model when the
// provider has no standard tier.
func fallbackModel(models []Model) Model {
	for _, m := range models {
		if m.Category == CategoryStandard {
			return m
		}
	}
	return models[0]
}

// cheapestEconomy returns the lowest economy price for a provider
func cheapestEconomy(models []Model) (float64, bool) {
	price, found := math.MaxFloat64, false
	for _, m := range models {
		if m.Category == CategoryEconomy && m.Per1000Tokens < price {
			price, found = m.Per1000Tokens, true
		}
	}
	return price, found
}

// EstimateCost projects monthly spend. A non-positive volume uses
// DefaultTokensPerMonth. Unknown models resolve to the provider's first
// standard model and the returned Estimate names the model actually priced.
func EstimateCost(provider, model string, tokensPerMonth int) Estimate {
	if tokensPerMonth <= 0 {
		tokensPerMonth = DefaultTokensPerMonth
	}
	volume := float64(tokensPerMonth) / 1000

	models, ok := pricing[provider]
	if !ok || len(models) == 0 {
		name := model
		if name == "" {
			name = "unknown"
		}
		return Estimate{
			Provider:        provider,
			Model:           name,
			Per1000Tokens:   unknownProviderPrice,
			TokensPerMonth:  tokensPerMonth,
			MonthlyEstimate: unknownProviderPrice * volume,
		}
	}

	m, ok := findModel(models, model)
	if !ok {
		m = fallbackModel(models)
	}

	est := Estimate{
		Provider:        provider,
		Model:           m.Name,
		Per1000Tokens:   m.Per1000Tokens,
		TokensPerMonth:  tokensPerMonth,
		MonthlyEstimate: m.Per1000Tokens * volume,
	}
	if economy, ok := cheapestEconomy(models); ok {
		est.OptimizationPotential = math.Max(0, (m.Per1000Tokens-economy)*volume)
	}
	return est
}

// CategorizeSpend rates a monthly estimate
func CategorizeSpend(monthly float64) SpendCategory {
	switch {
	case monthly > 1000:
		return SpendHigh
	case monthly > 100:
		return SpendMedium
	default:
		return SpendLow
	}
}

// OptimizationSuggestion returns advice for expensive models
func OptimizationSuggestion(provider, model string) (string, bool) {
	s, ok := suggestions[provider][model]
	return s, ok
}

// FormatDisplay renders the monthly estimate for humans
func FormatDisplay(e Estimate) string {
	monthly := e.MonthlyEstimate
	switch {
	case monthly < 0.01:
		return "< $0.01/month"
	case monthly < 1:
		return fmt.Sprintf("$%.3f/month", monthly)
	case monthly < 10:
		return fmt.Sprintf("$%.2f/month", monthly)
	default:
		return fmt.Sprintf("$%d/month", int64(math.Round(monthly)))
	}
}

// DetectModel returns the first priced model for the provider that appears as
// a quoted string literal in text.
func DetectModel(provider, text string) (string, bool) {
	for _, m := range pricing[provider] {
		for _, q := range []string{`"`, `'`, "`"} {
			if strings.Contains(text, q+m.Name+q) {
				return m.Name, true
			}
		}
	}
	return "", false
}
