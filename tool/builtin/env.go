package builtin

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/coda-agent/coda/internal/util"
	"github.com/coda-agent/coda/tool"
)

// sensitiveEnvPatterns mark variable names whose values are masked when
// listing the whole environment.
var sensitiveEnvPatterns = []string{
	"key", "secret", "password", "token", "credential", "auth", "private",
}

var envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EnvGetTool reads environment variables.
type EnvGetTool struct{}

func (t *EnvGetTool) Name() string { return "env_get" }

func (t *EnvGetTool) Description() string {
	return "Get the value of an environment variable. " +
		"Omit the name to list all environment variables; sensitive values are masked."
}

func (t *EnvGetTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "name",
			Type:        "string",
			Description: "Name of the environment variable (omit to list all)",
		},
		{
			Name:        "default",
			Type:        "string",
			Description: "Default value if the variable is not set",
		},
	}
}

func (t *EnvGetTool) Execute(args map[string]any) (string, error) {
	name := util.StringArg(args, "name", "")
	if name == "" {
		return listEnv(), nil
	}

	value, ok := os.LookupEnv(name)
	if !ok {
		if def := util.StringArg(args, "default", ""); def != "" {
			return fmt.Sprintf("%s=%s (default)", name, def), nil
		}
		return fmt.Sprintf("%s is not set", name), nil
	}
	return fmt.Sprintf("%s=%s", name, value), nil
}

func listEnv() string {
	env := os.Environ()
	sort.Strings(env)

	lines := make([]string, 0, len(env)+1)
	lines = append(lines, "Environment variables:")
	for _, kv := range env {
		key, value, _ := strings.Cut(kv, "=")
		if sensitiveEnvName(key) {
			if value != "" {
				value = "********"
			} else {
				value = "(not set)"
			}
		} else {
			value = util.Truncate(value, 100, "...")
		}
		lines = append(lines, key+"="+value)
	}
	return strings.Join(lines, "\n")
}

func sensitiveEnvName(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range sensitiveEnvPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// EnvSetTool sets an environment variable for the current process.
type EnvSetTool struct{}

func (t *EnvSetTool) Name() string { return "env_set" }

func (t *EnvSetTool) Description() string {
	return "Set an environment variable for the current session. " +
		"Only affects this process and commands it runs, not the parent shell."
}

func (t *EnvSetTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "name",
			Type:        "string",
			Description: "Name of the environment variable",
			Required:    true,
		},
		{
			Name:        "value",
			Type:        "string",
			Description: "Value to set",
			Required:    true,
		},
	}
}

func (t *EnvSetTool) Execute(args map[string]any) (string, error) {
	name := util.StringArg(args, "name", "")
	if !envNameRe.MatchString(name) {
		return "", tool.NewExecutionError(t.Name(), "Invalid environment variable name: %s", name)
	}
	value, ok := args["value"].(string)
	if !ok {
		return "", tool.NewExecutionError(t.Name(), "value is required")
	}

	old, existed := os.LookupEnv(name)
	if err := os.Setenv(name, value); err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to set %s: %v", name, err)
	}
	if existed {
		return fmt.Sprintf("Updated %s (was: %s)", name, util.Truncate(old, 50, "...")), nil
	}
	return fmt.Sprintf("Set %s=%s", name, util.Truncate(value, 50, "...")), nil
}

// EnvUnsetTool removes an environment variable from the current process.
type EnvUnsetTool struct{}

func (t *EnvUnsetTool) Name() string { return "env_unset" }

func (t *EnvUnsetTool) Description() string {
	return "Unset an environment variable for the current session."
}

func (t *EnvUnsetTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "name",
			Type:        "string",
			Description: "Name of the environment variable to unset",
			Required:    true,
		},
	}
}

func (t *EnvUnsetTool) Execute(args map[string]any) (string, error) {
	name := util.StringArg(args, "name", "")
	if name == "" {
		return "", tool.NewExecutionError(t.Name(), "name is required")
	}
	if _, ok := os.LookupEnv(name); !ok {
		return fmt.Sprintf("%s was not set", name), nil
	}
	if err := os.Unsetenv(name); err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to unset %s: %v", name, err)
	}
	return fmt.Sprintf("Unset %s", name), nil
}
