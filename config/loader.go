package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/input-output-hk/forge-upload/contenttype"
	"github.com/input-output-hk/forge-upload/errors"
	"github.com/input-output-hk/forge-upload/fs"
	"github.com/input-output-hk/forge-upload/git"
	"github.com/input-output-hk/forge-upload/multipart"
)

// LookupFunc reports the value of an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Sources are the places Resolve fills unset values from.
type Sources struct {
	// Git reads git configuration. Nil skips git lookups.
	Git git.ConfigReader

	// Lookup reads environment variables. Nil skips the environment.
	Lookup LookupFunc

	// Logger receives debug output about skipped sources. Nil disables it.
	Logger *slog.Logger
}

// EnvFiles returns the dotenv files consulted for workDir, highest priority
// first.
func EnvFiles(workDir string) []string {
	return []string{
		filepath.Join(workDir, ".env"),
		filepath.Join(xdg.ConfigHome, AppName, "env"),
	}
}

// LoadEnvFiles parses the dotenv files at paths. Missing files are skipped and
// a key set by an earlier file is not overridden by a later one.
func LoadEnvFiles(fsys fs.ReadFS, paths ...string) (map[string]string, error) {
	values := make(map[string]string)

	for _, path := range paths {
		ok, err := fsys.Exists(path)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to stat env file",
				map[string]any{"path": path})
		}
		if !ok {
			continue
		}

		data, err := fsys.ReadFile(path)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read env file",
				map[string]any{"path": path})
		}

		parsed, err := godotenv.Unmarshal(string(data))
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to parse env file",
				map[string]any{"path": path})
		}

		for k, v := range parsed {
			if _, seen := values[k]; !seen {
				values[k] = v
			}
		}
	}

	return values, nil
}

// EnvLookup returns a LookupFunc that prefers env and falls back to values,
// so dotenv files never override the real environment.
func EnvLookup(values map[string]string, env LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		if env != nil {
			if v, ok := env(key); ok {
				return v, true
			}
		}
		v, ok := values[key]
		return v, ok
	}
}

// Resolve fills the values cfg leaves unset and returns the result:
//   - Host defaults to DefaultHost
//   - Name defaults to the basename of File
//   - Repo defaults to the owner/name slug of remote.origin.url
//   - Token comes from the flag, then $FORGE_UPLOAD_TOKEN, then the
//     github.upload-script-token git config, and may stay empty
//
// Unreadable sources are skipped; only context cancellation fails.
func Resolve(ctx context.Context, cfg Config, src Sources) (Config, error) {
	logger := src.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Name == "" && cfg.File != "" {
		cfg.Name = filepath.Base(cfg.File)
	}

	if cfg.Repo == "" {
		remote, err := lookupGit(ctx, logger, src.Git, git.KeyOriginURL)
		if err != nil {
			return Config{}, err
		}
		if remote != "" {
			slug, err := git.RepoSlug(remote, cfg.Host)
			if err != nil {
				logger.DebugContext(ctx, "origin remote does not name a repository", "remote", remote, "host", cfg.Host)
			} else {
				cfg.Repo = slug
			}
		}
	}

	if cfg.Token == "" && src.Lookup != nil {
		if v, ok := src.Lookup(EnvToken); ok {
			cfg.Token = strings.TrimSpace(v)
		}
	}
	if cfg.Token == "" {
		token, err := lookupGit(ctx, logger, src.Git, git.KeyUploadToken)
		if err != nil {
			return Config{}, err
		}
		cfg.Token = token
	}

	return cfg, nil
}

func lookupGit(ctx context.Context, logger *slog.Logger, reader git.ConfigReader, key string) (string, error) {
	if reader == nil {
		return "", nil
	}

	v, err := reader.Get(ctx, key)
	switch {
	case err == nil:
		return v, nil
	case ctx.Err() != nil:
		return "", errors.Wrap(ctx.Err(), errors.CodeExecutionFailed, "failed to read git config")
	case !errors.Is(err, git.ErrKeyNotFound):
		logger.DebugContext(ctx, "git config unavailable", "key", key, "error", err)
	}
	return "", nil
}

// LoadFile reads cfg.File from fsys and resolves its content type, preferring
// cfg.MimeType over resolver.
func LoadFile(ctx context.Context, fsys fs.ReadFS, cfg Config, resolver contenttype.Resolver) (*multipart.File, error) {
	info, err := fsys.Stat(cfg.File)
	if err != nil {
		code := errors.CodeInvalidInput
		if errors.Is(err, os.ErrNotExist) {
			code = errors.CodeNotFound
		}
		return nil, errors.WrapWithContext(err, code, "cannot read "+cfg.File, map[string]any{"path": cfg.File})
	}
	if !info.Mode().IsRegular() {
		return nil, errors.WrapWithContext(ErrNotRegularFile, errors.CodeInvalidInput, cfg.File,
			map[string]any{"path": cfg.File})
	}

	data, err := fsys.ReadFile(cfg.File)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "cannot read "+cfg.File,
			map[string]any{"path": cfg.File})
	}

	mimeType, err := contenttype.Resolve(ctx, resolver, cfg.File, data, cfg.MimeType)
	if err != nil {
		return nil, err
	}

	return multipart.NewFile(cfg.File, data, mimeType), nil
}
