package config

import "github.com/input-output-hk/forge-upload/errors"

// Usage errors. The CLI prints them and exits with status 1, except ErrHelp.
var (
	// ErrHelp is returned by Parse when -h or --help is given.
	ErrHelp = errors.New(errors.CodeInvalidInput, "help requested")

	// ErrUsage is returned for unknown flags, missing flag values or surplus
	// positional arguments.
	ErrUsage = errors.New(errors.CodeInvalidInput, "invalid usage")

	// ErrMissingFile is returned when no file to upload was given.
	ErrMissingFile = errors.New(errors.CodeInvalidInput, "please specify a file to upload")

	// ErrUnresolvedRepo is returned when no repository was given and none could
	// be derived from the origin remote.
	ErrUnresolvedRepo = errors.New(errors.CodeInvalidInput,
		"please specify a repository; none could be derived from remote.origin.url")

	// ErrNotRegularFile is returned when the file to upload is a directory or
	// another non-regular file.
	ErrNotRegularFile = errors.New(errors.CodeInvalidInput, "not a regular file")
)
