// Package contenttype resolves the MIME type of a local file, either from an
// explicit override or by inspecting its content.
package contenttype

import (
	"context"
	"runtime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/forge-upload/errors"
	"github.com/input-output-hk/forge-upload/executor"
)

// DefaultType is used when inspection yields nothing.
const DefaultType = "application/octet-stream"

// sniffLen mirrors the 512-byte header used by content sniffing.
const sniffLen = 512

// Resolver inspects a file and reports its MIME type. The result may carry
// parameters (e.g. "; charset=utf-8"); Resolve strips them.
type Resolver interface {
	Detect(ctx context.Context, path string, data []byte) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, path string, data []byte) (string, error)

// Detect implements Resolver.
func (f ResolverFunc) Detect(ctx context.Context, path string, data []byte) (string, error) {
	return f(ctx, path, data)
}

// Resolve returns override when set, otherwise the type detected by r.
func Resolve(ctx context.Context, r Resolver, path string, data []byte, override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return override, nil
	}
	if r == nil {
		return DefaultType, nil
	}

	detected, err := r.Detect(ctx, path, data)
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeExecutionFailed,
			"failed to detect content type", map[string]any{"path": path})
	}

	if mt := Essence(detected); mt != "" {
		return mt, nil
	}
	return DefaultType, nil
}

// Essence strips parameters and surrounding whitespace from a media type.
func Essence(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}

// Sniffer detects the type from the file content.
type Sniffer struct{}

// Detect implements Resolver.
func (Sniffer) Detect(_ context.Context, _ string, data []byte) (string, error) {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	if mt := mimetype.Detect(data); mt != nil {
		return mt.String(), nil
	}
	return DefaultType, nil
}

// Command detects the type by running the file(1) utility on the path.
type Command struct {
	runner executor.Runner
	goos   string
}

// NewCommand creates a Command resolver. A nil runner uses the system "file"
// program.
func NewCommand(runner executor.Runner) *Command {
	if runner == nil {
		runner = executor.NewWrappedExecutor("file")
	}
	return &Command{runner: runner, goos: runtime.GOOS}
}

// Detect implements Resolver.
func (c *Command) Detect(ctx context.Context, path string, _ []byte) (string, error) {
	// BSD file spells --mime as -I
	flags := "-ib"
	if c.goos == "darwin" {
		flags = "-Ib"
	}

	result, err := c.runner.Execute(ctx, []string{flags, path})
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeExecutionFailed,
			"file command failed", map[string]any{"path": path})
	}
	return strings.TrimSpace(result.Stdout), nil
}
