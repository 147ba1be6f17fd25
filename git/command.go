package git

import (
	"context"
	"strings"

	"github.com/input-output-hk/forge-upload/executor"
)

// CommandConfig reads configuration by running `git config --get`.
type CommandConfig struct {
	runner executor.Runner
	dir    string
}

// NewCommandConfig creates a reader that runs git in dir. A nil runner uses
// the system git binary; an empty dir uses the process working directory.
func NewCommandConfig(runner executor.Runner, dir string) *CommandConfig {
	if runner == nil {
		runner = executor.NewWrappedExecutor("git")
	}
	return &CommandConfig{runner: runner, dir: dir}
}

// Get implements ConfigReader.
func (c *CommandConfig) Get(ctx context.Context, key string) (string, error) {
	if _, err := parseKey(key); err != nil {
		return "", err
	}

	var opts []executor.Option
	if c.dir != "" {
		opts = append(opts, executor.WithWorkingDir(c.dir))
	}

	result, err := c.runner.Execute(ctx, []string{"config", "--get", key}, opts...)
	if err != nil {
		// git config exits 1 when the key is unset
		if result != nil && result.ExitCode == 1 {
			return "", WrapErrorf(ErrKeyNotFound, "%s", key)
		}
		return "", WrapErrorf(err, "git config --get %s", key)
	}

	return strings.TrimRight(result.Stdout, "\r\n"), nil
}
