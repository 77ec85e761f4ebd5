package detection

import (
	"path/filepath"
	"slices"
	"strings"
)

var aiKeywords = []string{
	"openai", "anthropic", "claude", "gpt", "completion", "chat.completion",
	"langchain", "llamaindex", "huggingface", "transformers", "gemini",
	"mistral", "cohere", "bedrock", "azure", "api_key", "apikey", "perplexity", "pplx",
	"litellm", "ollama", "generativeai", "stream",
}

// AIContentHint is a cheap prefilter: it reports whether text mentions any AI
// vendor keyword. False means the default rules cannot match.
func AIContentHint(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range aiKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var skipFileNames = []string{
	"settings.json", "package.json", "package-lock.json", "tsconfig.json",
	".gitignore", "readme.md", "changelog.md", "license", ".env",
}

// ShouldSkipFile reports whether a path names a config or docs file that is
// never worth scanning even when its extension is supported
func ShouldSkipFile(path string) bool {
	return slices.Contains(skipFileNames, strings.ToLower(filepath.Base(path)))
}
