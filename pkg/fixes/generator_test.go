package fixes_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/kestrel/pkg/config"
	"github.com/simonhull/firebird-suite/kestrel/pkg/detection"
	"github.com/simonhull/firebird-suite/kestrel/pkg/fixes"
	"github.com/simonhull/firebird-suite/kestrel/pkg/logger"
	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

func findResult(t *testing.T, doc *detection.Document, id string) detection.Result {
	t.Helper()
	e := detection.NewEngine(patterns.NewRegistry()).WithLogger(logger.NewSilentLogger())
	for _, r := range e.Scan(doc, config.New()) {
		if r.Pattern.ID == id {
			return r
		}
	}
	require.Failf(t, "no result", "pattern %s did not match", id)
	return detection.Result{}
}

func applyFix(t *testing.T, uri, text, id string) string {
	t.Helper()
	doc := detection.NewDocument(uri, 1, text)
	script, err := fixes.NewGenerator().Generate(findResult(t, doc, id), doc)
	require.NoError(t, err)
	require.Len(t, script.Edits, 1)

	out, err := script.Apply(doc)
	require.NoError(t, err)
	return out
}

func TestGenerate_MiddlewareInsertion(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		text string
		id   string
		want string
	}{
		{
			name: "python import",
			uri:  "app.py",
			text: "import openai\nclient = openai.OpenAI()\n",
			id:   "openai-python-import",
			want: "import openai\nimport revenium_middleware_openai  # Auto-patches OpenAI for Revenium tracking\nclient = openai.OpenAI()\n",
		},
		{
			name: "python import without trailing newline",
			uri:  "app.py",
			text: "import openai",
			id:   "openai-python-import",
			want: "import openai\nimport revenium_middleware_openai  # Auto-patches OpenAI for Revenium tracking\n",
		},
		{
			name: "python from import",
			uri:  "agent.py",
			text: "from anthropic import Anthropic\n",
			id:   "anthropic-python-import",
			want: "from anthropic import Anthropic\nimport revenium_middleware_anthropic  # Auto-patches Anthropic for Revenium tracking\n",
		},
		{
			name: "anthropic side effect import",
			uri:  "index.js",
			text: "import Anthropic from '@anthropic-ai/sdk';\nconst client = new Anthropic();\n",
			id:   "anthropic-js-import",
			want: "import Anthropic from '@anthropic-ai/sdk';\nimport 'revenium-middleware-anthropic-node';\nconst client = new Anthropic();\n",
		},
		{
			name: "openai patch initializer",
			uri:  "index.ts",
			text: "import OpenAI from 'openai';\n",
			id:   "openai-js-import",
			want: "import OpenAI from 'openai';\n" +
				"import { initializeReveniumFromEnv, patchOpenAI } from 'revenium-middleware-openai-node';\n" +
				"// Initialize Revenium tracking\n" +
				"initializeReveniumFromEnv();\n" +
				"patchOpenAI(); // Auto-patches all OpenAI instances\n",
		},
		{
			name: "openai commonjs require",
			uri:  "server.cjs",
			text: "const OpenAI = require('openai');\n",
			id:   "openai-commonjs-require",
			want: "const OpenAI = require('openai');\n" +
				"const { initializeReveniumFromEnv, patchOpenAI } = require('revenium-middleware-openai-node');\n" +
				"// Initialize Revenium tracking\n" +
				"initializeReveniumFromEnv();\n" +
				"patchOpenAI(); // Auto-patches all OpenAI instances\n",
		},
		{
			name: "google named class",
			uri:  "gen.ts",
			text: "import { GoogleGenerativeAI } from '@google/generative-ai';\n",
			id:   "google-genai-js-import",
			want: "import { GoogleGenerativeAI } from '@google/generative-ai';\nimport { ReveniumGoogleAI } from '@revenium/google';\n",
		},
		{
			name: "litellm fetch inserts at top below shebang",
			uri:  "proxy.mjs",
			text: "#!/usr/bin/env node\nconst res = await fetch(`${LITELLM_PROXY_URL}/chat/completions`);\n",
			id:   "litellm-proxy-fetch",
			want: "#!/usr/bin/env node\nimport 'dotenv/config';\nimport 'revenium-middleware-litellm-node';\nconst res = await fetch(`${LITELLM_PROXY_URL}/chat/completions`);\n",
		},
		{
			name: "litellm fetch in commonjs file",
			uri:  "proxy.js",
			text: "const fetch = require('node-fetch');\nfetch(LITELLM_PROXY_URL);\n",
			id:   "litellm-proxy-fetch",
			want: "require('dotenv/config');\nrequire('revenium-middleware-litellm-node');\nconst fetch = require('node-fetch');\nfetch(LITELLM_PROXY_URL);\n",
		},
		{
			name: "litellm fetch below use strict",
			uri:  "proxy.js",
			text: "'use strict';\nconst fetch = require('node-fetch');\nfetch(LITELLM_PROXY_URL);\n",
			id:   "litellm-proxy-fetch",
			want: "'use strict';\nrequire('dotenv/config');\nrequire('revenium-middleware-litellm-node');\nconst fetch = require('node-fetch');\nfetch(LITELLM_PROXY_URL);\n",
		},
		{
			name: "python stream argument anchors to the provider import",
			uri:  "chat.py",
			text: "from openai import OpenAI\nclient = OpenAI()\nresp = client.chat.completions.create(\n    model=\"gpt-4\",\n    stream=True,\n)\n",
			id:   "streaming-no-tracking",
			want: "from openai import OpenAI\nimport revenium_middleware_openai  # Auto-patches OpenAI for Revenium tracking\nclient = OpenAI()\nresp = client.chat.completions.create(\n    model=\"gpt-4\",\n    stream=True,\n)\n",
		},
		{
			name: "python parenthesised import",
			uri:  "chat.py",
			text: "from openai import (\n    OpenAI,\n)\nclient = OpenAI()\n",
			id:   "openai-python-import",
			want: "from openai import (\n    OpenAI,\n)\nimport revenium_middleware_openai  # Auto-patches OpenAI for Revenium tracking\nclient = OpenAI()\n",
		},
		{
			name: "python without provider import goes below docstring and future imports",
			uri:  "chat.py",
			text: "\"\"\"Chat helpers.\"\"\"\nfrom __future__ import annotations\n\nresp = call(\n    stream=True,\n)\n",
			id:   "streaming-no-tracking",
			want: "\"\"\"Chat helpers.\"\"\"\nfrom __future__ import annotations\nimport revenium_middleware_openai  # Auto-patches OpenAI for Revenium tracking\n\nresp = call(\n    stream=True,\n)\n",
		},
		{
			name: "python usage without import goes below header comments",
			uri:  "search.py",
			text: "# search service\nimport requests\nURL = 'https://api.perplexity.ai'\n",
			id:   "perplexity-usage",
			want: "# search service\nimport revenium_middleware_perplexity  # Auto-patches Perplexity AI for Revenium tracking\nimport requests\nURL = 'https://api.perplexity.ai'\n",
		},
		{
			name: "js stream option anchors to the provider import",
			uri:  "chat.ts",
			text: "import OpenAI from 'openai';\nconst s = await client.chat.completions.create({\n  stream: true,\n});\n",
			id:   "streaming-no-tracking",
			want: "import OpenAI from 'openai';\n" +
				"import { initializeReveniumFromEnv, patchOpenAI } from 'revenium-middleware-openai-node';\n" +
				"// Initialize Revenium tracking\n" +
				"initializeReveniumFromEnv();\n" +
				"patchOpenAI(); // Auto-patches all OpenAI instances\n" +
				"const s = await client.chat.completions.create({\n  stream: true,\n});\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyFix(t, tt.uri, tt.text, tt.id))
		})
	}
}

func TestGenerate_AnthropicInsertionRange(t *testing.T) {
	doc := detection.NewDocument("index.js", 1, "import Anthropic from '@anthropic-ai/sdk';\nconst client = new Anthropic();\n")
	script, err := fixes.NewGenerator().Generate(findResult(t, doc, "anthropic-js-import"), doc)
	require.NoError(t, err)

	require.Len(t, script.Edits, 1)
	edit := script.Edits[0]
	assert.True(t, edit.Range.IsEmpty())
	assert.Equal(t, detection.Position{Line: 1, Character: 0}, edit.Range.Start)
	assert.Equal(t, "import 'revenium-middleware-anthropic-node';\n", edit.NewText)
	assert.Equal(t, patterns.ProviderAnthropic, script.Provider)
	assert.Equal(t, "revenium-middleware-anthropic-node", script.Package)
	assert.Equal(t, "index.js", script.URI)
}

func TestGenerate_NoFix(t *testing.T) {
	gen := fixes.NewGenerator()

	t.Run("security warning", func(t *testing.T) {
		doc := detection.NewDocument("keys.py", 1, "api_key = \"sk-abcdefghijklmnopqrstuvwx\"\n")
		_, err := gen.Generate(findResult(t, doc, "hardcoded-api-key"), doc)
		assert.True(t, errors.Is(err, fixes.ErrNoFix))
	})

	t.Run("unsupported scenario", func(t *testing.T) {
		doc := detection.NewDocument("app.py", 1, "import openai\n")
		result := detection.Result{Pattern: &patterns.Pattern{
			ID:       "custom",
			Scenario: patterns.ScenarioCostOptimization,
			Provider: patterns.ProviderOpenAI,
		}}
		_, err := gen.Generate(result, doc)
		assert.ErrorIs(t, err, fixes.ErrNoFix)
	})

	t.Run("provider without middleware for language", func(t *testing.T) {
		doc := detection.NewDocument("bedrock.ts", 1, "const client = new BedrockRuntimeClient();\n")
		result := detection.Result{Pattern: &patterns.Pattern{
			ID:       "bedrock-js",
			Scenario: patterns.ScenarioMissingRevenium,
			Provider: patterns.ProviderBedrock,
		}}
		_, err := gen.Generate(result, doc)
		assert.ErrorIs(t, err, fixes.ErrNoFix)
	})

	t.Run("unknown provider", func(t *testing.T) {
		doc := detection.NewDocument("app.py", 1, "x = 1\n")
		result := detection.Result{Pattern: &patterns.Pattern{
			ID:       "mystery",
			Scenario: patterns.ScenarioMissingRevenium,
			Provider: patterns.ProviderUnknown,
		}}
		_, err := gen.Generate(result, doc)
		assert.ErrorIs(t, err, fixes.ErrNoFix)
	})

	t.Run("middleware already present", func(t *testing.T) {
		doc := detection.NewDocument("app.py", 1, "import openai\nimport revenium_middleware_openai\n")
		result := detection.Result{Pattern: &patterns.Pattern{
			ID:       "async-openai-usage",
			Scenario: patterns.ScenarioAsyncPattern,
			Provider: patterns.ProviderOpenAI,
		}}
		_, err := gen.Generate(result, doc)
		assert.ErrorIs(t, err, fixes.ErrNoFix)
	})
}

func TestGenerate_PythonKeepsIndentation(t *testing.T) {
	doc := detection.NewDocument("app.py", 1, "try:\n    import openai\nexcept ImportError:\n    pass\n")
	result := detection.Result{
		Pattern: &patterns.Pattern{
			ID:       "openai-python-import",
			Scenario: patterns.ScenarioMissingRevenium,
			Provider: patterns.ProviderOpenAI,
		},
		Range: detection.Range{
			Start: detection.Position{Line: 1, Character: 4},
			End:   detection.Position{Line: 1, Character: 17},
		},
	}

	script, err := fixes.NewGenerator().Generate(result, doc)
	require.NoError(t, err)
	out, err := script.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, "try:\n    import openai\n    import revenium_middleware_openai  # Auto-patches OpenAI for Revenium tracking\nexcept ImportError:\n    pass\n", out)
}
