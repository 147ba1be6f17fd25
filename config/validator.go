package config

import "strings"

// Validate reports the first missing required value: the file, then the
// repository.
func (c Config) Validate() error {
	if strings.TrimSpace(c.File) == "" {
		return ErrMissingFile
	}
	if strings.TrimSpace(c.Repo) == "" {
		return ErrUnresolvedRepo
	}
	return nil
}
