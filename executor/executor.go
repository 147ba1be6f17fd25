// Package executor runs external commands with output capture and context
// support for cancellation.
//
// It backs the collaborators that shell out to system tools (file, git) so
// that the rest of the module can depend on the Runner interface and be tested
// with fakes instead of real subprocesses.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result holds the output and error from a command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Runner executes a fixed program with per-call arguments.
type Runner interface {
	Execute(ctx context.Context, args []string, opts ...Option) (*Result, error)
}

// Options configures command execution behavior
type Options struct {
	// Working directory
	WorkingDir string
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns default execution options
func DefaultOptions() *Options {
	return &Options{}
}

// CommandExecutor runs one program with one argument list.
type CommandExecutor struct {
	program string
	args    []string
	options *Options
}

// WrappedExecutor provides a clean interface for a specific program.
// It implements Runner.
type WrappedExecutor struct {
	program string
	options *Options
}

// NewWrappedExecutor creates an executor for a specific program
func NewWrappedExecutor(program string, opts ...Option) *WrappedExecutor {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &WrappedExecutor{
		program: program,
		options: options,
	}
}

// Command creates a new executor for the wrapped program with specific arguments
func (w *WrappedExecutor) Command(args ...string) *CommandExecutor {
	return &CommandExecutor{
		program: w.program,
		args:    args,
		options: w.options,
	}
}

// Execute runs the wrapped program with args.
func (w *WrappedExecutor) Execute(
	ctx context.Context,
	args []string,
	opts ...Option,
) (*Result, error) {
	result, err := w.Command(args...).Execute(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("failed to execute %s with args %v: %w", w.program, args, err)
	}
	return result, nil
}

// Execute runs the command once and returns its captured output.
// A non-zero exit status is reported both in Result.ExitCode and as an error.
func (c *CommandExecutor) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	options := c.mergeOptions(opts...)

	cmd := exec.CommandContext(ctx, c.program, c.args...)
	c.setupCommand(cmd, options)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	result := c.createResult(&stdoutBuf, &stderrBuf, err)
	if err != nil {
		return result, fmt.Errorf("command execution failed: %w", err)
	}
	return result, nil
}

// setupCommand configures the exec.Cmd with the working directory
func (c *CommandExecutor) setupCommand(cmd *exec.Cmd, options *Options) {
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}
}

// createResult creates a Result from command execution and error
func (c *CommandExecutor) createResult(stdoutBuf, stderrBuf *bytes.Buffer, err error) *Result {
	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	switch {
	case err != nil && errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err == nil:
		result.ExitCode = 0
	default:
		result.ExitCode = -1
	}

	return result
}

func (c *CommandExecutor) mergeOptions(opts ...Option) *Options {
	merged := *c.options
	for _, opt := range opts {
		opt(&merged)
	}

	return &merged
}

// WithWorkingDir sets the working directory
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}
