package patterns

import (
	"path/filepath"
	"strings"
)

// Language is a source language the scanner understands
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageUnknown    Language = "unknown"
)

// Languages lists every language that can be toggled in configuration
var Languages = []Language{LanguagePython, LanguageJavaScript, LanguageTypeScript}

// IsJS reports whether the language uses the JavaScript import system
func (l Language) IsJS() bool {
	return l == LanguageJavaScript || l == LanguageTypeScript
}

// NormalizeLanguage maps an editor language id or a file extension onto a Language.
// Unrecognised values map to LanguageUnknown.
func NormalizeLanguage(id string) Language {
	switch strings.ToLower(strings.TrimPrefix(id, ".")) {
	case "python", "py":
		return LanguagePython
	case "javascript", "javascriptreact", "js", "jsx", "mjs", "cjs":
		return LanguageJavaScript
	case "typescript", "typescriptreact", "ts", "tsx":
		return LanguageTypeScript
	default:
		return LanguageUnknown
	}
}

// LanguageForPath returns the language implied by a file's extension
func LanguageForPath(path string) Language {
	return NormalizeLanguage(filepath.Ext(path))
}

// Severity of a detection as surfaced to the user
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Icon returns the marker used when rendering a finding
func (s Severity) Icon() string {
	switch s {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️"
	case SeverityInfo:
		return "ℹ️"
	default:
		return "•"
	}
}

// Scenario describes why a match was flagged
type Scenario string

const (
	ScenarioMissingRevenium         Scenario = "missing_revenium"
	ScenarioSecurityWarning         Scenario = "security_warning"
	ScenarioFrameworkUsage          Scenario = "framework_usage"
	ScenarioCostOptimization        Scenario = "cost_optimization"
	ScenarioAsyncPattern            Scenario = "async_pattern"
	ScenarioOptimizationOpportunity Scenario = "optimization_opportunity"
)

// CostImpact is a coarse rating of how much spend a pattern usually implies
type CostImpact string

const (
	CostImpactNone   CostImpact = ""
	CostImpactHigh   CostImpact = "HIGH"
	CostImpactMedium CostImpact = "MEDIUM"
	CostImpactLow    CostImpact = "LOW"
)

// Provider identifies an AI API vendor or framework
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderAnthropic   Provider = "anthropic"
	ProviderGoogle      Provider = "google"
	ProviderVertex      Provider = "vertex"
	ProviderAzure       Provider = "azure"
	ProviderBedrock     Provider = "aws-bedrock"
	ProviderPerplexity  Provider = "perplexity"
	ProviderCohere      Provider = "cohere"
	ProviderHuggingFace Provider = "huggingface"
	ProviderReplicate   Provider = "replicate"
	ProviderLangChain   Provider = "langchain"
	ProviderLlamaIndex  Provider = "llamaindex"
	ProviderOllama      Provider = "ollama"
	ProviderLiteLLM     Provider = "litellm"
	ProviderUnknown     Provider = "unknown"
)

// AllProviders lists every known provider id in display order
var AllProviders = []Provider{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGoogle,
	ProviderVertex,
	ProviderAzure,
	ProviderBedrock,
	ProviderPerplexity,
	ProviderCohere,
	ProviderHuggingFace,
	ProviderReplicate,
	ProviderLangChain,
	ProviderLlamaIndex,
	ProviderOllama,
	ProviderLiteLLM,
	ProviderUnknown,
}
