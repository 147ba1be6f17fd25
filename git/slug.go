package git

import (
	"regexp"
	"strings"
)

// RepoSlug extracts the "owner/name" repository identifier from a remote URL
// hosted on host. Both scp-like (git@host:owner/name.git) and URL forms
// (https://host/owner/name, ssh://git@host:22/owner/name.git) are accepted.
func RepoSlug(remoteURL, host string) (string, error) {
	pattern := `(?:^|[@/])` + regexp.QuoteMeta(host) + `(?::\d+/|[:/])(.+?)(?:\.git)?/?$`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", WrapErrorf(err, "host %q", host)
	}

	m := re.FindStringSubmatch(strings.TrimSpace(remoteURL))
	if m == nil {
		return "", WrapErrorf(ErrNoRepoSlug, "%q", remoteURL)
	}

	slug := strings.TrimPrefix(m[1], "/")
	owner, name, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", WrapErrorf(ErrNoRepoSlug, "%q", remoteURL)
	}

	return slug, nil
}
