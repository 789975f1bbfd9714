package builtin

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvGetSingle(t *testing.T) {
	t.Setenv("CODA_TEST_PLAIN", "hello")

	eg := &EnvGetTool{}
	out, err := eg.Execute(map[string]any{"name": "CODA_TEST_PLAIN"})
	require.NoError(t, err)
	assert.Equal(t, "CODA_TEST_PLAIN=hello", out)
}

func TestEnvGetUnsetWithDefault(t *testing.T) {
	eg := &EnvGetTool{}

	out, err := eg.Execute(map[string]any{"name": "CODA_TEST_ABSENT"})
	require.NoError(t, err)
	assert.Equal(t, "CODA_TEST_ABSENT is not set", out)

	out, err = eg.Execute(map[string]any{"name": "CODA_TEST_ABSENT", "default": "fallback"})
	require.NoError(t, err)
	assert.Equal(t, "CODA_TEST_ABSENT=fallback (default)", out)
}

func TestEnvGetListMasksSensitive(t *testing.T) {
	t.Setenv("CODA_TEST_API_KEY", "supersecret")
	t.Setenv("CODA_TEST_VISIBLE", "shown")

	eg := &EnvGetTool{}
	out, err := eg.Execute(map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, out, "CODA_TEST_API_KEY=********")
	assert.NotContains(t, out, "supersecret")
	assert.Contains(t, out, "CODA_TEST_VISIBLE=shown")
}

func TestEnvSetAndUpdate(t *testing.T) {
	t.Setenv("CODA_TEST_SET", "old")

	es := &EnvSetTool{}
	out, err := es.Execute(map[string]any{"name": "CODA_TEST_SET", "value": "new"})
	require.NoError(t, err)
	assert.Equal(t, "Updated CODA_TEST_SET (was: old)", out)
	assert.Equal(t, "new", os.Getenv("CODA_TEST_SET"))
}

func TestEnvSetNew(t *testing.T) {
	name := "CODA_TEST_FRESH"
	require.NoError(t, os.Unsetenv(name))
	t.Cleanup(func() { os.Unsetenv(name) })

	es := &EnvSetTool{}
	out, err := es.Execute(map[string]any{"name": name, "value": "v1"})
	require.NoError(t, err)
	assert.Equal(t, "Set CODA_TEST_FRESH=v1", out)
	assert.Equal(t, "v1", os.Getenv(name))
}

func TestEnvSetInvalidName(t *testing.T) {
	es := &EnvSetTool{}
	_, err := es.Execute(map[string]any{"name": "BAD NAME", "value": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid environment variable name")

	_, err = es.Execute(map[string]any{"name": "1LEADING", "value": "x"})
	require.Error(t, err)
}

func TestEnvUnset(t *testing.T) {
	t.Setenv("CODA_TEST_UNSET", "bye")

	eu := &EnvUnsetTool{}
	out, err := eu.Execute(map[string]any{"name": "CODA_TEST_UNSET"})
	require.NoError(t, err)
	assert.Equal(t, "Unset CODA_TEST_UNSET", out)
	_, ok := os.LookupEnv("CODA_TEST_UNSET")
	assert.False(t, ok)

	out, err = eu.Execute(map[string]any{"name": "CODA_TEST_UNSET"})
	require.NoError(t, err)
	assert.Equal(t, "CODA_TEST_UNSET was not set", out)
}
