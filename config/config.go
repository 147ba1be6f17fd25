// Package config resolves the settings of one forge-upload run from the command
// line, dotenv files, the process environment and git configuration.
//
// # Basic Usage
//
//	cfg, err := config.Parse(os.Args[1:])
//	if err != nil {
//	    return err
//	}
//
//	cfg, err = config.Resolve(ctx, cfg, config.Sources{
//	    Git:    reader,
//	    Lookup: config.EnvLookup(dotenv, os.LookupEnv),
//	})
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

import (
	"strings"
)

const (
	// AppName is the program name used in usage output and config paths.
	AppName = "forge-upload"

	// DefaultHost is the hosting service used when --host is not given.
	DefaultHost = "github.com"

	// EnvToken names the environment variable holding the API token.
	EnvToken = "FORGE_UPLOAD_TOKEN"
)

// Config holds the settings of one upload. It is built once and passed by
// value; nothing mutates it after resolution.
type Config struct {
	// File is the local path of the file to upload.
	File string

	// Repo is the target repository as "owner/name".
	Repo string

	// Name is the remote file name. Defaults to the basename of File.
	Name string

	// Description is attached to the remote file.
	Description string

	// Force replaces a remote file of the same name.
	Force bool

	// Token authenticates API requests. May be empty.
	Token string

	// SkipSSLVerification disables TLS certificate checks.
	SkipSSLVerification bool

	// MimeType overrides content type detection.
	MimeType string

	// Host is the hosting service, e.g. "github.com".
	Host string

	// Verbose enables debug logging.
	Verbose bool
}

// APIBaseURL returns the API root for the configured host.
func (c Config) APIBaseURL() string {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = DefaultHost
	}
	return "https://api." + host
}
