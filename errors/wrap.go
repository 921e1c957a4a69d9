package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already a LifecycleError, it wraps it with the new message while
// preserving the original code, category, and context.
// Otherwise, it creates a new Internal error wrapping the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	// If it's already a structured error, preserve its properties
	var lcErr *Error
	if errors.As(err, &lcErr) {
		wrapped := &Error{
			code:      lcErr.code,
			category:  lcErr.category,
			message:   message,
			cause:     err,
			metadata:  lcErr.Metadata(),
			retryable: lcErr.retryable,
			moniker:   lcErr.moniker,
			action:    lcErr.action,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	// Check for context errors
	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	// Default to internal error for unknown errors
	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// AsLifecycleError attempts to extract a LifecycleError from an error chain.
// Returns nil if no LifecycleError is found.
func AsLifecycleError(err error) LifecycleError {
	var lcErr *Error
	if errors.As(err, &lcErr) {
		return lcErr
	}
	return nil
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var lcErr *Error
	if errors.As(err, &lcErr) {
		return lcErr.code == code
	}
	return false
}

// IsCategory checks if any error in the chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var lcErr *Error
	if errors.As(err, &lcErr) {
		return lcErr.category == category
	}
	return false
}

// IsRetryable checks if the error is retryable.
func IsRetryable(err error) bool {
	var lcErr *Error
	if errors.As(err, &lcErr) {
		return lcErr.Retryable()
	}
	// Default to not retryable for unstructured errors
	return false
}

// Code extracts the error code from an error, if available.
// Returns empty string if err is not a structured error.
func Code(err error) ErrorCode {
	var lcErr *Error
	if errors.As(err, &lcErr) {
		return lcErr.code
	}
	return ""
}

// Category extracts the error category from an error, if available.
// Returns empty string if err is not a structured error.
func Category(err error) ErrorCategory {
	var lcErr *Error
	if errors.As(err, &lcErr) {
		return lcErr.category
	}
	return ""
}

// Cause returns the root cause of the error chain.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := unwrapper.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}

// FirstError folds a list of results, keeping only the first non-nil error.
// Sibling lifecycle actions run to completion regardless of each other's
// outcome; the caller sees the first recorded failure.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
