// Package git reads git configuration values used as defaults by the uploader:
// the origin remote (to derive the target repository) and the stored API token.
//
// Two readers are provided. RepoConfig uses go-git and needs no git binary;
// CommandConfig runs `git config --get`, which also honours system scope and
// include directives. Chain combines them.
package git

import (
	"context"
	"errors"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

const (
	// KeyOriginURL is the config key holding the origin remote URL.
	KeyOriginURL = "remote.origin.url"

	// KeyUploadToken is the config key holding the API token.
	KeyUploadToken = "github.upload-script-token"
)

// ConfigReader looks up git configuration values.
type ConfigReader interface {
	// Get returns the value of key, or ErrKeyNotFound when it is unset.
	Get(ctx context.Context, key string) (string, error)
}

// ConfigLoader loads a configuration scope.
type ConfigLoader func() (*config.Config, error)

// RepoConfig reads configuration from a repository and, optionally, the
// user's global configuration. Repository values take precedence.
type RepoConfig struct {
	repo   *git.Repository
	global ConfigLoader
}

// Option configures a RepoConfig.
type Option func(*RepoConfig)

// WithGlobal sets the loader for the global scope. A nil loader disables it.
func WithGlobal(loader ConfigLoader) Option {
	return func(r *RepoConfig) {
		r.global = loader
	}
}

// WithoutGlobal disables the global scope.
func WithoutGlobal() Option {
	return WithGlobal(nil)
}

func loadGlobal() (*config.Config, error) {
	return config.LoadConfig(config.GlobalScope)
}

// NewRepoConfig creates a reader for repo. A nil repo reads only the global
// scope.
func NewRepoConfig(repo *git.Repository, opts ...Option) *RepoConfig {
	r := &RepoConfig{repo: repo, global: loadGlobal}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open discovers the repository containing path (searching parent
// directories) and returns a reader for it.
func Open(path string, opts ...Option) (*RepoConfig, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, WrapErrorf(ErrRepoNotFound, "open %q", path)
		}
		return nil, WrapErrorf(err, "open %q", path)
	}
	return NewRepoConfig(repo, opts...), nil
}

// Get implements ConfigReader.
func (r *RepoConfig) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	k, err := parseKey(key)
	if err != nil {
		return "", err
	}

	if r.repo != nil {
		cfg, err := r.repo.Config()
		if err != nil {
			return "", WrapError(err, "failed to read repository config")
		}
		if v, ok := lookup(cfg, k); ok {
			return v, nil
		}
	}

	if r.global != nil {
		cfg, err := r.global()
		if err != nil {
			return "", WrapError(err, "failed to read global config")
		}
		if v, ok := lookup(cfg, k); ok {
			return v, nil
		}
	}

	return "", WrapErrorf(ErrKeyNotFound, "%s", key)
}

type configKey struct {
	section    string
	subsection string
	name       string
}

// parseKey splits section[.subsection].name. The subsection may itself contain
// dots, so it spans from the first to the last dot.
func parseKey(key string) (configKey, error) {
	first := strings.IndexByte(key, '.')
	last := strings.LastIndexByte(key, '.')
	if first <= 0 || last == len(key)-1 {
		return configKey{}, WrapErrorf(ErrInvalidKey, "%q", key)
	}

	k := configKey{section: key[:first], name: key[last+1:]}
	if first != last {
		k.subsection = key[first+1 : last]
	}
	return k, nil
}

func lookup(cfg *config.Config, k configKey) (string, bool) {
	if cfg == nil {
		return "", false
	}
	// Raw only mirrors structured fields (remotes, core, ...) after a marshal
	if _, err := cfg.Marshal(); err != nil || cfg.Raw == nil {
		return "", false
	}
	if !cfg.Raw.HasSection(k.section) {
		return "", false
	}

	section := cfg.Raw.Section(k.section)
	if k.subsection == "" {
		if !section.HasOption(k.name) {
			return "", false
		}
		return section.Option(k.name), true
	}

	if !section.HasSubsection(k.subsection) {
		return "", false
	}
	sub := section.Subsection(k.subsection)
	if !sub.HasOption(k.name) {
		return "", false
	}
	return sub.Option(k.name), true
}

// Chain returns the first value found by readers, in order.
type Chain []ConfigReader

// Get implements ConfigReader. Readers failing with errors other than
// ErrKeyNotFound are skipped; if no reader has the key, the first such error
// is returned, or ErrKeyNotFound when there was none.
func (c Chain) Get(ctx context.Context, key string) (string, error) {
	var firstErr error
	for _, r := range c {
		v, err := r.Get(ctx, key)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, ErrInvalidKey) || ctx.Err() != nil {
			return "", err
		}
		if !errors.Is(err, ErrKeyNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", WrapErrorf(ErrKeyNotFound, "%s", key)
}
