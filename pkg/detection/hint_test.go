package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIContentHint(t *testing.T) {
	assert.True(t, AIContentHint("from OpenAI import x"))
	assert.True(t, AIContentHint("const key = process.env.ANTHROPIC_KEY"))
	assert.True(t, AIContentHint(`client = boto3.client("bedrock-runtime")`))
	assert.True(t, AIContentHint("resp = client.create(stream=True)"))
	assert.False(t, AIContentHint("print('hello world')"))
}

func TestShouldSkipFile(t *testing.T) {
	assert.True(t, ShouldSkipFile("project/package.json"))
	assert.True(t, ShouldSkipFile("README.md"))
	assert.True(t, ShouldSkipFile(".env"))
	assert.False(t, ShouldSkipFile("src/license_check.py"))
	assert.False(t, ShouldSkipFile("app.py"))
}
