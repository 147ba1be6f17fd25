package git

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/forge-upload/executor"
)

// setupTestRepo creates an in-memory repository with the given origin URL and
// raw options (section -> option -> value) in its local config.
func setupTestRepo(t *testing.T, originURL string, raw map[string]map[string]string) *git.Repository {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err, "failed to initialize test repository")

	if originURL != "" {
		_, err = repo.CreateRemote(&config.RemoteConfig{
			Name: "origin",
			URLs: []string{originURL},
		})
		require.NoError(t, err, "failed to create origin remote")
	}

	if len(raw) > 0 {
		cfg, err := repo.Config()
		require.NoError(t, err)
		for section, options := range raw {
			for key, value := range options {
				cfg.Raw.Section(section).SetOption(key, value)
			}
		}
		require.NoError(t, repo.Storer.SetConfig(cfg))
	}

	return repo
}

// staticGlobal returns a loader serving a config with the given raw options.
func staticGlobal(raw map[string]map[string]string) ConfigLoader {
	return func() (*config.Config, error) {
		cfg := config.NewConfig()
		for section, options := range raw {
			for key, value := range options {
				cfg.Raw.Section(section).SetOption(key, value)
			}
		}
		return cfg, nil
	}
}

// fakeRunner implements executor.Runner for testing
type fakeRunner struct {
	executeFunc func(ctx context.Context, args []string, opts ...executor.Option) (*executor.Result, error)
	calls       [][]string
}

func (f *fakeRunner) Execute(ctx context.Context, args []string, opts ...executor.Option) (*executor.Result, error) {
	f.calls = append(f.calls, args)
	return f.executeFunc(ctx, args, opts...)
}

// mapReader implements ConfigReader over a map
type mapReader map[string]string

func (m mapReader) Get(_ context.Context, key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", WrapErrorf(ErrKeyNotFound, "%s", key)
}
