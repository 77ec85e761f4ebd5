package patterns

import "strings"

// FixTemplateKind selects how a JavaScript middleware import is written
type FixTemplateKind int

const (
	// TemplateNone means no JavaScript fix is generated for the provider
	TemplateNone FixTemplateKind = iota
	// TemplatePatchInitializer imports an initializer and a patch function and calls both
	TemplatePatchInitializer
	// TemplateSideEffect imports the package for its side effects only
	TemplateSideEffect
	// TemplateSideEffectDotenv is TemplateSideEffect preceded by a dotenv loader import
	TemplateSideEffectDotenv
	// TemplateNamedClass imports a middleware class from a scoped package
	TemplateNamedClass
)

// String returns the template name used in listings
func (k FixTemplateKind) String() string {
	switch k {
	case TemplatePatchInitializer:
		return "patch-initializer"
	case TemplateSideEffect:
		return "side-effect"
	case TemplateSideEffectDotenv:
		return "side-effect-dotenv"
	case TemplateNamedClass:
		return "named-class"
	default:
		return "none"
	}
}

// ProviderConfig describes a provider and the middleware that tracks it
type ProviderConfig struct {
	Name               Provider
	DisplayName        string
	Color              string
	Icon               string
	MiddlewarePackages map[Language]string
	Documentation      string
	FixTemplate        FixTemplateKind
	JSClass            string // exported class for TemplateNamedClass
	PatchName          string // suffix of the patch function, defaults to Identifier
}

// Identifier returns the display name with whitespace removed, e.g. "GoogleAI"
func (c ProviderConfig) Identifier() string {
	return strings.Join(strings.Fields(c.DisplayName), "")
}

// PatchFunc returns the name of the middleware's patch function, e.g. "patchOpenAI"
func (c ProviderConfig) PatchFunc() string {
	if c.PatchName != "" {
		return "patch" + c.PatchName
	}
	return "patch" + c.Identifier()
}

// providerConfigs holds the providers that ship middleware. LangChain reuses
// the OpenAI middleware since it wraps the OpenAI client underneath.
var providerConfigs = map[Provider]ProviderConfig{
	ProviderOpenAI: {
		Name:        ProviderOpenAI,
		DisplayName: "OpenAI",
		Color:       "#10A37F",
		Icon:        "R",
		MiddlewarePackages: map[Language]string{
			LanguagePython:     "revenium_middleware_openai",
			LanguageJavaScript: "revenium-middleware-openai-node",
			LanguageTypeScript: "revenium-middleware-openai-node",
		},
		Documentation: "https://docs.revenium.io/middleware/openai",
		FixTemplate:   TemplatePatchInitializer,
	},
	ProviderAnthropic: {
		Name:        ProviderAnthropic,
		DisplayName: "Anthropic",
		Color:       "#D97757",
		Icon:        "R",
		MiddlewarePackages: map[Language]string{
			LanguagePython:     "revenium_middleware_anthropic",
			LanguageJavaScript: "revenium-middleware-anthropic-node",
			LanguageTypeScript: "revenium-middleware-anthropic-node",
		},
		Documentation: "https://docs.revenium.io/middleware/anthropic",
		FixTemplate:   TemplateSideEffect,
	},
	ProviderGoogle: {
		Name:        ProviderGoogle,
		DisplayName: "Google AI",
		Color:       "#4285F4",
		Icon:        "R",
		MiddlewarePackages: map[Language]string{
			LanguagePython:     "revenium_middleware_google",
			LanguageJavaScript: "@revenium/google",
			LanguageTypeScript: "@revenium/google",
		},
		Documentation: "https://docs.revenium.io/middleware/google",
		FixTemplate:   TemplateNamedClass,
		JSClass:       "ReveniumGoogleAI",
	},
	ProviderBedrock: {
		Name:        ProviderBedrock,
		DisplayName: "AWS Bedrock",
		Color:       "#FF9900",
		Icon:        "R",
		MiddlewarePackages: map[Language]string{
			LanguagePython: "revenium_middleware_bedrock",
		},
		Documentation: "https://docs.revenium.io/middleware/bedrock",
		FixTemplate:   TemplateNone,
	},
	ProviderPerplexity: {
		Name:        ProviderPerplexity,
		DisplayName: "Perplexity AI",
		Color:       "#7C3AED",
		Icon:        "R",
		MiddlewarePackages: map[Language]string{
			LanguagePython:     "revenium_middleware_perplexity",
			LanguageJavaScript: "@revenium/perplexity",
			LanguageTypeScript: "@revenium/perplexity",
		},
		Documentation: "https://docs.revenium.io/middleware/perplexity",
		FixTemplate:   TemplateNamedClass,
		JSClass:       "ReveniumPerplexity",
	},
	ProviderLiteLLM: {
		Name:        ProviderLiteLLM,
		DisplayName: "LiteLLM",
		Color:       "#1E88E5",
		Icon:        "R",
		MiddlewarePackages: map[Language]string{
			LanguagePython:     "revenium_middleware_litellm",
			LanguageJavaScript: "revenium-middleware-litellm-node",
			LanguageTypeScript: "revenium-middleware-litellm-node",
		},
		Documentation: "https://docs.revenium.io/middleware/litellm",
		FixTemplate:   TemplateSideEffectDotenv,
	},
	ProviderOllama: {
		Name:        ProviderOllama,
		DisplayName: "Ollama",
		Color:       "#444444",
		Icon:        "R",
		MiddlewarePackages: map[Language]string{
			LanguagePython: "revenium_middleware_ollama",
		},
		Documentation: "https://docs.revenium.io/middleware/ollama",
		FixTemplate:   TemplateNone,
	},
}

func init() {
	openai := providerConfigs[ProviderOpenAI]
	langchain := openai
	langchain.PatchName = openai.Identifier()
	langchain.Name = ProviderLangChain
	langchain.DisplayName = "LangChain"
	langchain.Color = "#1C3C3C"
	langchain.Documentation = "https://docs.revenium.io/middleware/langchain"
	providerConfigs[ProviderLangChain] = langchain
}

// LookupProvider returns the configuration for a provider with middleware support
func LookupProvider(p Provider) (ProviderConfig, bool) {
	cfg, ok := providerConfigs[p]
	return cfg, ok
}

// MiddlewarePackage returns the middleware package for a provider and language
func MiddlewarePackage(p Provider, lang Language) (string, bool) {
	cfg, ok := providerConfigs[p]
	if !ok {
		return "", false
	}
	pkg, ok := cfg.MiddlewarePackages[lang]
	return pkg, ok && pkg != ""
}

// ConfiguredProviders returns providers that ship middleware, in AllProviders order
func ConfiguredProviders() []ProviderConfig {
	var out []ProviderConfig
	for _, p := range AllProviders {
		if cfg, ok := providerConfigs[p]; ok {
			out = append(out, cfg)
		}
	}
	return out
}

// DisplayName returns a provider's display name, falling back to its id
func DisplayName(p Provider) string {
	if cfg, ok := providerConfigs[p]; ok {
		return cfg.DisplayName
	}
	return string(p)
}
