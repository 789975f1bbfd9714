package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coda-agent/coda/tool"
)

func TestRegisterAddsStandardToolSet(t *testing.T) {
	r := tool.NewRegistry()
	require.NoError(t, Register(r))

	for _, name := range []string{
		"bash", "read_file", "write_file", "edit_file",
		"delete", "copy", "move", "mkdir", "ls", "tree", "glob", "grep",
		"env_get", "env_set", "env_unset",
		"git_status", "git_diff", "git_log", "git_add", "git_commit", "web_fetch",
	} {
		assert.True(t, r.Has(name), "missing tool %s", name)
	}
}

func TestRegisterDisableWeb(t *testing.T) {
	r := tool.NewRegistry()
	require.NoError(t, Register(r, func(o *Options) {
		o.DisableWeb = true
	}))

	assert.False(t, r.Has("web_fetch"))
	assert.True(t, r.Has("bash"))
}

func TestRegisterTwiceFails(t *testing.T) {
	r := tool.NewRegistry()
	require.NoError(t, Register(r))
	require.Error(t, Register(r))
}
