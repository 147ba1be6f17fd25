package git

import (
	"errors"
	"fmt"
)

// Common sentinel errors that can be checked with errors.Is().
// These wrap underlying go-git errors while providing a stable API for consumers.

// ErrKeyNotFound is returned when a configuration key is not set in any of the
// consulted scopes.
var ErrKeyNotFound = errors.New("config key not found")

// ErrInvalidKey is returned when a configuration key is not of the form
// section[.subsection].name.
var ErrInvalidKey = errors.New("invalid config key")

// ErrRepoNotFound is returned when no git repository could be discovered from
// the given path.
var ErrRepoNotFound = errors.New("repository not found")

// ErrNoRepoSlug is returned when a remote URL does not point at an
// owner/name repository on the expected host.
var ErrNoRepoSlug = errors.New("cannot derive repository from remote URL")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
