package patterns_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

func TestDefaultPatterns_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range patterns.DefaultPatterns() {
		assert.False(t, seen[p.ID], "duplicate pattern id %s", p.ID)
		seen[p.ID] = true
		assert.NotNil(t, p.Expr, p.ID)
		assert.NotEmpty(t, p.Languages, p.ID)
		assert.NotEmpty(t, p.Message, p.ID)
	}
}

func TestDefaultPatterns_ReturnsCopy(t *testing.T) {
	a := patterns.DefaultPatterns()
	a[0].ID = "mutated"

	b := patterns.DefaultPatterns()
	assert.NotEqual(t, "mutated", b[0].ID)
}

func TestPatternMatches(t *testing.T) {
	reg := patterns.NewRegistry()

	tests := []struct {
		id    string
		input string
		want  string
	}{
		{"openai-python-import", "import openai\n", "import openai"},
		{"openai-python-import", "from openai import OpenAI, AsyncOpenAI\n", "from openai import OpenAI, AsyncOpenAI"},
		{"openai-js-import", "import OpenAI from 'openai';\n", "import OpenAI from 'openai';"},
		{"openai-js-import", `import * as OpenAI from "openai"`, `import * as OpenAI from "openai"`},
		{"openai-commonjs-require", `const OpenAI = require('openai')`, `const OpenAI = require('openai')`},
		{"anthropic-python-import", "from anthropic import Anthropic\n", "from anthropic import Anthropic"},
		{"anthropic-js-import", "import Anthropic from '@anthropic-ai/sdk';", "import Anthropic from '@anthropic-ai/sdk';"},
		{"google-genai-import", "import google.generativeai as genai", "import google.generativeai as genai"},
		{"bedrock-client", `client = boto3.client("bedrock-runtime")`, `boto3.client("bedrock-runtime")`},
		{"perplexity-usage", "PERPLEXITY_API_KEY = env()", "PERPLEXITY"},
		{"streaming-no-tracking", "resp = create(stream=True)", "stream=True"},
		{"litellm-proxy-fetch", "await fetch(`${LITELLM_PROXY_URL}/chat`)", "fetch(`${LITELLM_PROXY_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := reg.ByID(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.Expr.FindString(tt.input))
		})
	}
}

func TestPatternNonMatches(t *testing.T) {
	reg := patterns.NewRegistry()

	tests := []struct {
		id    string
		input string
	}{
		{"openai-python-import", "import openai_helpers\n"},
		{"openai-python-import", "# see import openai docs"},
		{"openai-js-import", "import OpenAI from 'openai-edge'"},
		{"anthropic-python-import", "from anthropic import types"},
		{"hardcoded-api-key", `api_key = os.environ["OPENAI_API_KEY"]`},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := reg.ByID(tt.id)
			require.True(t, ok)
			assert.False(t, p.Expr.MatchString(tt.input))
		})
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want patterns.Language
	}{
		{"python", patterns.LanguagePython},
		{".py", patterns.LanguagePython},
		{"javascriptreact", patterns.LanguageJavaScript},
		{".mjs", patterns.LanguageJavaScript},
		{"typescriptreact", patterns.LanguageTypeScript},
		{".tsx", patterns.LanguageTypeScript},
		{"go", patterns.LanguageUnknown},
		{"", patterns.LanguageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, patterns.NormalizeLanguage(tt.in))
		})
	}

	assert.Equal(t, patterns.LanguageTypeScript, patterns.LanguageForPath("src/app/page.tsx"))
}
