// Package builtin ships the standard tool set for coding sessions: shell
// execution, file reading and editing, filesystem operations and search,
// environment variables, git operations and web fetching.
package builtin

import (
	"github.com/coda-agent/coda/tool"
)

// Options configure the standard tool set.
type Options struct {
	// BashTimeout is the default command timeout in seconds.
	BashTimeout int
	// BlockedCommands are additional substring patterns bash refuses to run.
	BlockedCommands []string
	// DisableWeb leaves web_fetch out of the set.
	DisableWeb bool
}

// Register adds the full standard tool set to the registry.
func Register(r *tool.Registry, optFns ...func(o *Options)) error {
	opts := Options{
		BashTimeout: DefaultBashTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := []tool.Tool{
		NewBashTool(func(o *BashOptions) {
			o.Timeout = opts.BashTimeout
			o.BlockedPatterns = opts.BlockedCommands
		}),
		&ReadFileTool{},
		&WriteFileTool{},
		&EditFileTool{},
		&DeleteTool{},
		&CopyTool{},
		&MoveTool{},
		&MkdirTool{},
		&LsTool{},
		&TreeTool{},
		&GlobTool{},
		&GrepTool{},
		&EnvGetTool{},
		&EnvSetTool{},
		&EnvUnsetTool{},
		&GitStatusTool{},
		&GitDiffTool{},
		&GitLogTool{},
		&GitAddTool{},
		&GitCommitTool{},
	}
	if !opts.DisableWeb {
		tools = append(tools, NewWebFetchTool())
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
