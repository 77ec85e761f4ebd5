package patterns

import (
	"regexp"
	"slices"
	"strings"
)

// Pattern is a single detection rule evaluated against raw source text
type Pattern struct {
	ID           string
	Expr         *regexp.Regexp
	Global       bool // report every match instead of only the first
	Message      string
	Languages    []Language
	Severity     Severity
	Provider     Provider
	Scenario     Scenario
	FixGuidance  string
	CostImpact   CostImpact
	SecurityRisk bool
}

// AppliesTo reports whether the pattern is evaluated for the given language
func (p *Pattern) AppliesTo(lang Language) bool {
	return slices.Contains(p.Languages, lang)
}

// IsImport reports whether the pattern detects an import statement
func (p *Pattern) IsImport() bool {
	return strings.Contains(p.ID, "import")
}

// IsCritical reports whether findings from this pattern need attention first
func (p *Pattern) IsCritical() bool {
	return p.Severity == SeverityError || p.SecurityRisk || p.CostImpact == CostImpactHigh
}

var (
	allLanguages = []Language{LanguagePython, LanguageJavaScript, LanguageTypeScript}
	jsLanguages  = []Language{LanguageJavaScript, LanguageTypeScript}
	pyLanguages  = []Language{LanguagePython}
)

const (
	msgOpenAI    = "OpenAI usage detected. Add Revenium middleware for cost tracking and monitoring."
	msgAnthropic = "Anthropic usage detected. Add Revenium middleware for cost tracking and monitoring."
	msgGoogle    = "Google AI usage detected. Add Revenium middleware for cost tracking and monitoring."
)

// defaultPatterns is compiled once; the regexps are safe for concurrent use.
var defaultPatterns = []Pattern{
	// OpenAI
	{
		ID:          "openai-python-import",
		Expr:        regexp.MustCompile(`(?m)^(?:from\s+openai\s+import\s+[^\n]+|import\s+openai\b)`),
		Global:      true,
		Message:     msgOpenAI,
		Languages:   pyLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderOpenAI,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: "import revenium_middleware_openai  # Auto-patches OpenAI",
		CostImpact:  CostImpactMedium,
	},
	{
		ID:          "openai-js-import",
		Expr:        regexp.MustCompile(`import\s+(?:OpenAI|\*\s+as\s+OpenAI|\{\s*OpenAI\s*\})\s+from\s+['"]openai['"];?`),
		Global:      true,
		Message:     msgOpenAI,
		Languages:   jsLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderOpenAI,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: `import { initializeReveniumFromEnv, patchOpenAI } from "revenium-middleware-openai-node"`,
		CostImpact:  CostImpactMedium,
	},
	{
		ID:          "openai-commonjs-require",
		Expr:        regexp.MustCompile(`(?:const|let|var)\s+(?:OpenAI|\w+)\s*=\s*require\s*\(\s*['"]openai['"]\s*\)`),
		Global:      true,
		Message:     msgOpenAI,
		Languages:   []Language{LanguageJavaScript},
		Severity:    SeverityInfo,
		Provider:    ProviderOpenAI,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: `const { initializeReveniumFromEnv, patchOpenAI } = require("revenium-middleware-openai-node")`,
		CostImpact:  CostImpactMedium,
	},

	// Anthropic
	{
		ID:          "anthropic-python-import",
		Expr:        regexp.MustCompile(`(?m)^from\s+anthropic\s+import\s+(?:Anthropic|AsyncAnthropic)`),
		Global:      true,
		Message:     msgAnthropic,
		Languages:   pyLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderAnthropic,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: "import revenium_middleware_anthropic  # Auto-patches Anthropic",
	},
	{
		ID:          "anthropic-js-import",
		Expr:        regexp.MustCompile(`import\s+(?:Anthropic|\{\s*Anthropic\s*\})\s+from\s+['"]@anthropic-ai/sdk['"];?`),
		Global:      true,
		Message:     msgAnthropic,
		Languages:   jsLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderAnthropic,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: `import "revenium-middleware-anthropic-node"`,
	},

	// Frameworks
	{
		ID:          "langchain-import",
		Expr:        regexp.MustCompile(`(?m)^(?:from\s+langchain|import\s+.*\s+from\s+["']langchain)`),
		Global:      true,
		Message:     "LangChain usage detected. Ensure underlying LLM calls are tracked with Revenium.",
		Languages:   allLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderLangChain,
		Scenario:    ScenarioFrameworkUsage,
		FixGuidance: "Apply Revenium middleware to underlying OpenAI/Anthropic client",
	},
	{
		ID:          "langchain-openai-import",
		Expr:        regexp.MustCompile(`(?m)from\s+langchain_openai\s+import\s+(?:ChatOpenAI|OpenAI)`),
		Global:      true,
		Message:     "LangChain OpenAI usage detected. Add Revenium middleware for cost tracking.",
		Languages:   pyLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderOpenAI,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: "from revenium_middleware_openai.langchain import wrap",
	},

	// Google
	{
		ID:          "google-genai-import",
		Expr:        regexp.MustCompile(`(?m)^import\s+google\.generativeai\s+as\s+genai`),
		Global:      true,
		Message:     msgGoogle,
		Languages:   pyLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderGoogle,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: "import revenium_middleware_google  # Auto-patches Google AI",
	},
	{
		ID:          "google-genai-js-import",
		Expr:        regexp.MustCompile(`import\s+\{[^}]*GoogleGenerativeAI[^}]*\}\s+from\s+['"]@google/generative-ai['"];?`),
		Global:      true,
		Message:     msgGoogle,
		Languages:   jsLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderGoogle,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: `import { ReveniumGoogleAI } from "@revenium/google"`,
	},

	// AWS Bedrock
	{
		ID:          "bedrock-client",
		Expr:        regexp.MustCompile(`boto3\.client\(['"]bedrock-runtime['"]\)`),
		Global:      true,
		Message:     "AWS Bedrock usage detected. Add Revenium middleware for cost tracking.",
		Languages:   pyLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderBedrock,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: "Apply Revenium Bedrock middleware to boto3 client",
	},

	// Perplexity
	{
		ID:          "perplexity-usage",
		Expr:        regexp.MustCompile(`(?i)(?:perplexity|pplx-api)`),
		Global:      true,
		Message:     "Perplexity AI usage detected. Apply Revenium tracking.",
		Languages:   allLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderPerplexity,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: "Apply Revenium Perplexity middleware for usage tracking",
	},

	// LiteLLM
	{
		ID:          "litellm-python-import",
		Expr:        regexp.MustCompile(`(?m)^(?:from\s+litellm\s+import\s+[^\n]+|import\s+litellm\b)`),
		Global:      true,
		Message:     "LiteLLM usage detected. Add Revenium middleware for cost tracking and monitoring.",
		Languages:   pyLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderLiteLLM,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: "import revenium_middleware_litellm  # Auto-patches LiteLLM",
	},
	{
		ID:          "litellm-proxy-fetch",
		Expr:        regexp.MustCompile(`fetch\(\s*[^)\n]*(?:LITELLM_PROXY_URL|/chat/completions)`),
		Global:      true,
		Message:     "LiteLLM proxy call detected. Add Revenium middleware to track proxied requests.",
		Languages:   jsLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderLiteLLM,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: `import "dotenv/config"; import "revenium-middleware-litellm-node"`,
	},

	// Ollama
	{
		ID:          "ollama-python-import",
		Expr:        regexp.MustCompile(`(?m)^(?:from\s+ollama\s+import\s+[^\n]+|import\s+ollama\b)`),
		Global:      true,
		Message:     "Ollama usage detected. Add Revenium middleware for usage tracking.",
		Languages:   pyLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderOllama,
		Scenario:    ScenarioMissingRevenium,
		FixGuidance: "import revenium_middleware_ollama  # Auto-patches Ollama",
	},

	// Usage shapes
	{
		ID:          "async-openai-usage",
		Expr:        regexp.MustCompile(`AsyncOpenAI|async.*\.chat\.completions\.create`),
		Global:      true,
		Message:     "Async OpenAI usage detected. Ensure Revenium middleware handles async operations.",
		Languages:   allLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderOpenAI,
		Scenario:    ScenarioAsyncPattern,
		FixGuidance: "Revenium middleware automatically handles async operations",
	},
	{
		ID:          "streaming-no-tracking",
		Expr:        regexp.MustCompile(`stream\s*=\s*True|stream:\s*true`),
		Global:      true,
		Message:     "Streaming responses detected. Ensure token counting is implemented.",
		Languages:   allLanguages,
		Severity:    SeverityInfo,
		Provider:    ProviderOpenAI,
		Scenario:    ScenarioFrameworkUsage,
		FixGuidance: "Revenium middleware automatically handles streaming token counts",
	},

	// Security
	{
		ID:           "hardcoded-api-key",
		Expr:         regexp.MustCompile(`(?i)(?:api_key|apikey|openai_api_key|anthropic_api_key)\s*[:=]\s*['"](?:sk-|sk-ant-)[A-Za-z0-9_\-]{16,}['"]`),
		Global:       true,
		Message:      "Hardcoded API key detected. Move secrets to environment variables.",
		Languages:    allLanguages,
		Severity:     SeverityError,
		Provider:     ProviderUnknown,
		Scenario:     ScenarioSecurityWarning,
		SecurityRisk: true,
	},
}

// DefaultPatterns returns the built-in rule table in evaluation order
func DefaultPatterns() []Pattern {
	return slices.Clone(defaultPatterns)
}
