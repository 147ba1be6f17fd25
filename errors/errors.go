package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// PlatformError is implemented by every error created by this package.
// Use As to extract it from a wrapped chain.
type PlatformError interface {
	error

	// Code returns the classification of the failure.
	Code() ErrorCode

	// Context returns the key/value details attached to the failure.
	Context() map[string]any
}

// Error is the concrete PlatformError.
type Error struct {
	code    ErrorCode
	message string
	context map[string]any
	err     error
}

// Error implements the error interface. The wrapped cause, if any, is appended
// after the message.
func (e *Error) Error() string {
	if e.err == nil {
		return e.message
	}
	if e.message == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

// Code implements PlatformError.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Context implements PlatformError. The returned map is a copy.
func (e *Error) Context() map[string]any {
	if len(e.context) == 0 {
		return nil
	}
	return maps.Clone(e.context)
}

// Unwrap returns the underlying cause for error chaining support.
func (e *Error) Unwrap() error {
	return e.err
}

// New creates an error with the given code and message.
func New(code ErrorCode, message string) error {
	return &Error{code: code, message: message}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. It returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, err: err}
}

// WrapWithContext is Wrap with additional key/value details.
func WrapWithContext(err error, code ErrorCode, message string, context map[string]any) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, context: maps.Clone(context), err: err}
}

// GetCode returns the code of the outermost PlatformError in err's chain, or
// CodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var pe PlatformError
	if As(err, &pe) {
		return pe.Code()
	}
	return CodeUnknown
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
