package downloads

import "github.com/input-output-hk/forge-upload/errors"

// Sentinel errors for the upload protocol. Each failure returned by Client
// wraps exactly one of them; check with errors.Is.
var (
	// ErrAlreadyExists is returned when registration is refused with a client
	// error status, which the API uses for a name collision.
	ErrAlreadyExists = errors.New(errors.CodeAlreadyExists, "a file with this name already exists")

	// ErrRegistrationRejected is returned when registration answers with any
	// status other than 201 or a client error.
	ErrRegistrationRejected = errors.New(errors.CodeRegistrationRejected, "file registration rejected")

	// ErrStorageRejected is returned when the storage endpoint does not answer 201.
	ErrStorageRejected = errors.New(errors.CodeStorageRejected, "storage upload rejected")

	// ErrListRejected is returned when listing existing files does not answer 200.
	ErrListRejected = errors.New(errors.CodeNetwork, "listing existing files rejected")

	// ErrDeleteRejected is returned when deleting a file does not answer 2xx.
	ErrDeleteRejected = errors.New(errors.CodeNetwork, "deleting existing file rejected")

	// ErrInvalidResponse is returned when a response body cannot be decoded or
	// lacks required fields.
	ErrInvalidResponse = errors.New(errors.CodeInvalidResponse, "invalid response body")

	// ErrInsecureURL is returned for endpoints that do not use https.
	ErrInsecureURL = errors.New(errors.CodeInvalidConfig, "endpoint must use https")

	// ErrInvalidRequest is returned for requests missing required values.
	ErrInvalidRequest = errors.New(errors.CodeInvalidInput, "invalid upload request")
)
