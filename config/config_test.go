package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", s.Provider)
	assert.Equal(t, DefaultOllamaHost, s.OllamaHost)
	assert.Equal(t, DefaultMaxIterations, s.MaxIterations)
	assert.Equal(t, DefaultTimeout, s.Timeout)
}

func TestLoadFromYAML(t *testing.T) {
	path := writeSettings(t, `
provider: openrouter
model: deepseek/deepseek-chat
openrouter-api-key: sk-test
max-iterations: 10
timeout: 60
blocked-commands:
  - shutdown
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openrouter", s.Provider)
	assert.Equal(t, "deepseek/deepseek-chat", s.Model)
	assert.Equal(t, "sk-test", s.OpenRouterAPIKey)
	assert.Equal(t, 10, s.MaxIterations)
	assert.Equal(t, 60, s.Timeout)
	assert.Equal(t, []string{"shutdown"}, s.BlockedCommands)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeSettings(t, "provider: ollama\nmodel: from-file\n")
	t.Setenv("CODA_PROVIDER", "anthropic")
	t.Setenv("CODA_MODEL", "from-env")
	t.Setenv("CODA_ANTHROPIC_API_KEY", "sk-env")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", s.Provider)
	assert.Equal(t, "from-env", s.Model)
	assert.Equal(t, "sk-env", s.AnthropicAPIKey)
}

func TestClampMaxIterations(t *testing.T) {
	path := writeSettings(t, "max-iterations: 500\n")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, MaxMaxIterations, s.MaxIterations)

	path = writeSettings(t, "max-iterations: 0\n")
	s, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, s.MaxIterations)
}

func TestClampTimeout(t *testing.T) {
	path := writeSettings(t, "timeout: 9999\n")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, MaxTimeout, s.Timeout)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")

	s := Default()
	s.Provider = "openrouter"
	s.OpenRouterAPIKey = "sk-saved"
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openrouter", loaded.Provider)
	assert.Equal(t, "sk-saved", loaded.OpenRouterAPIKey)
}

func TestAPIKey(t *testing.T) {
	s := Settings{
		AnthropicAPIKey:   "a",
		OpenRouterAPIKey:  "o",
		HuggingFaceAPIKey: "h",
	}

	assert.Equal(t, "a", s.APIKey("anthropic"))
	assert.Equal(t, "o", s.APIKey("openrouter"))
	assert.Equal(t, "h", s.APIKey("huggingface"))
	assert.Equal(t, "", s.APIKey("ollama"))
}
