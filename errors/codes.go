package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where retry may succeed.
	// Examples: resolver backend timeout, runner temporarily unavailable.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	// Examples: invalid moniker, manifest missing, instance already destroyed.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates unexpected errors, bugs, or system failures.
	// Examples: invariant violations, corrupted child table, recovered panics.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
// Re-registering a finished action is always safe (the entry leaves the
// action set at finish), so retryability here only reflects whether the
// underlying failure is likely to clear on its own.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryTransient
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for lifecycle failure scenarios.
const (
	// Transient errors
	ErrCodeTimeout     ErrorCode = "TIMEOUT"     // Operation timed out
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE" // Backend temporarily unavailable

	// Permanent errors
	ErrCodeResolveFailed     ErrorCode = "RESOLVE_FAILED"     // Manifest resolution failed
	ErrCodeStartFailed       ErrorCode = "START_FAILED"       // Runtime environment failed to start
	ErrCodeStopFailed        ErrorCode = "STOP_FAILED"        // Runtime environment failed to stop
	ErrCodeDestroyFailed     ErrorCode = "DESTROY_FAILED"     // Resource erasure failed
	ErrCodeChildNotFound     ErrorCode = "CHILD_NOT_FOUND"    // No such child in the table
	ErrCodeInstanceNotFound  ErrorCode = "INSTANCE_NOT_FOUND" // No such instance
	ErrCodeInstanceDestroyed ErrorCode = "INSTANCE_DESTROYED" // Instance already destroyed
	ErrCodeAlreadyExists     ErrorCode = "ALREADY_EXISTS"     // Child name already taken
	ErrCodeInvalidMoniker    ErrorCode = "INVALID_MONIKER"    // Malformed moniker or child name
	ErrCodeCanceled          ErrorCode = "CANCELED"           // Caller stopped waiting

	// Internal errors
	ErrCodeInternal  ErrorCode = "INTERNAL"  // Unexpected internal error
	ErrCodeAssertion ErrorCode = "ASSERTION" // Assertion/invariant violation
	ErrCodePanic     ErrorCode = "PANIC"     // Recovered from panic
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	// Transient
	case ErrCodeTimeout, ErrCodeUnavailable:
		return CategoryTransient

	// Permanent
	case ErrCodeResolveFailed, ErrCodeStartFailed, ErrCodeStopFailed,
		ErrCodeDestroyFailed, ErrCodeChildNotFound, ErrCodeInstanceNotFound,
		ErrCodeInstanceDestroyed, ErrCodeAlreadyExists, ErrCodeInvalidMoniker,
		ErrCodeCanceled:
		return CategoryPermanent

	// Internal
	case ErrCodeInternal, ErrCodeAssertion, ErrCodePanic:
		return CategoryInternal

	default:
		return CategoryInternal
	}
}

// DefaultRetryable returns whether this error code is typically retryable.
func (c ErrorCode) DefaultRetryable() bool {
	return c.DefaultCategory().IsRetryable()
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeTimeout:           "operation timed out",
	ErrCodeUnavailable:       "backend temporarily unavailable",
	ErrCodeResolveFailed:     "manifest resolution failed",
	ErrCodeStartFailed:       "runtime environment failed to start",
	ErrCodeStopFailed:        "runtime environment failed to stop",
	ErrCodeDestroyFailed:     "resource erasure failed",
	ErrCodeChildNotFound:     "child not found",
	ErrCodeInstanceNotFound:  "instance not found",
	ErrCodeInstanceDestroyed: "instance already destroyed",
	ErrCodeAlreadyExists:     "child name already exists",
	ErrCodeInvalidMoniker:    "invalid moniker",
	ErrCodeCanceled:          "operation canceled",
	ErrCodeInternal:          "internal error",
	ErrCodeAssertion:         "assertion failed",
	ErrCodePanic:             "recovered from panic",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
