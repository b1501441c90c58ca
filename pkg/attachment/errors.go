package attachment

import "errors"

// StoreError represents a domain error from namespace and store operations.
//
// These are business logic errors (record not found, permission denied,
// quota exceeded) as opposed to infrastructure errors (network failure,
// disk error). Callers branch on the Code field rather than on message
// text; outer shells translate codes to their own status values.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the logical path or name related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested record, channel, or path segment
	// does not exist
	ErrNotFound ErrorCode = iota

	// ErrForbidden indicates the acting identity is not permitted the
	// operation, or a write was attempted against a removed owning channel
	ErrForbidden

	// ErrAlreadyExists indicates a sibling record with the same name already
	// exists under the same parent and owner
	ErrAlreadyExists

	// ErrQuotaExceeded indicates the owner's account usage would exceed its
	// configured ceiling; the offending record and bytes have been removed
	ErrQuotaExceeded

	// ErrTooLarge indicates the payload exceeds the absolute maximum file
	// size; the offending record and bytes have been removed
	ErrTooLarge

	// ErrWriteFailed indicates the physical byte store rejected or failed
	// the write; no record survives
	ErrWriteFailed

	// ErrChannelRemoved indicates the owning channel exists but has been
	// removed and can no longer accept writes
	ErrChannelRemoved

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: empty name, name containing a path separator
	ErrInvalidArgument

	// ErrIOError indicates an infrastructure error reading or writing the
	// record store
	ErrIOError
)

// CodeOf extracts the ErrorCode from an error.
//
// Returns the code and true when err (or an error it wraps) is a StoreError,
// or zero and false otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code, true
	}
	return 0, false
}

// IsCode reports whether err carries the given ErrorCode.
func IsCode(err error, code ErrorCode) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
