// Package errors provides structured error codes for the forge-upload tool.
// It extends Go's standard error handling with string-based codes and context
// preservation so the CLI can report a single, human-readable line per failure.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a remote file with the same name already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Infrastructure errors.

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeInvalidResponse indicates a remote service answered with a body that
	// could not be decoded.
	CodeInvalidResponse ErrorCode = "INVALID_RESPONSE"

	// Upload errors.

	// CodeRegistrationRejected indicates the file API refused to register the file.
	CodeRegistrationRejected ErrorCode = "REGISTRATION_REJECTED"

	// CodeStorageRejected indicates the storage endpoint refused the upload.
	CodeStorageRejected ErrorCode = "STORAGE_REJECTED"

	// Execution errors.

	// CodeExecutionFailed indicates an external command failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
