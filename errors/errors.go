package errors

import (
	"encoding/json"
	"fmt"
	"time"
)

// LifecycleError is the interface for all structured errors in componentkit.
// It extends the standard error interface with the context a caller needs to
// decide how to react to a failed lifecycle action.
type LifecycleError interface {
	error

	// Code returns the specific error code identifying the failure type.
	Code() ErrorCode

	// Category returns the error category for retry/handling decisions.
	Category() ErrorCategory

	// Retryable returns true if the operation may succeed on retry.
	Retryable() bool

	// Metadata returns additional context as key-value pairs.
	Metadata() map[string]string

	// Unwrap returns the underlying error, if any.
	Unwrap() error
}

// Error is the concrete implementation of LifecycleError.
type Error struct {
	code      ErrorCode
	category  ErrorCategory
	message   string
	cause     error
	metadata  map[string]string
	retryable *bool // nil means use default based on category
	timestamp time.Time
	moniker   string // instance the failure occurred on, if applicable
	action    string // lifecycle action that failed, if applicable
}

// Ensure Error implements LifecycleError and json.Marshaler/Unmarshaler.
var (
	_ LifecycleError   = (*Error)(nil)
	_ json.Marshaler   = (*Error)(nil)
	_ json.Unmarshaler = (*Error)(nil)
)

// Error returns the error message.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.category
}

// Retryable returns whether this error is retryable.
func (e *Error) Retryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	return e.category.IsRetryable()
}

// Metadata returns the error metadata.
func (e *Error) Metadata() map[string]string {
	if e.metadata == nil {
		return make(map[string]string)
	}
	// Return a copy to prevent modification
	result := make(map[string]string, len(e.metadata))
	for k, v := range e.metadata {
		result[k] = v
	}
	return result
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Timestamp returns when the error occurred.
func (e *Error) Timestamp() time.Time {
	return e.timestamp
}

// Moniker returns the instance moniker the failure occurred on, if set.
func (e *Error) Moniker() string {
	return e.moniker
}

// Action returns the lifecycle action kind that failed, if set.
func (e *Error) Action() string {
	return e.action
}

// errorJSON is the JSON representation of an Error.
type errorJSON struct {
	Code      ErrorCode         `json:"code"`
	Category  ErrorCategory     `json:"category"`
	Message   string            `json:"message"`
	Cause     string            `json:"cause,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Retryable bool              `json:"retryable"`
	Timestamp string            `json:"timestamp,omitempty"`
	Moniker   string            `json:"moniker,omitempty"`
	Action    string            `json:"action,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	j := errorJSON{
		Code:      e.code,
		Category:  e.category,
		Message:   e.message,
		Metadata:  e.metadata,
		Retryable: e.Retryable(),
		Moniker:   e.moniker,
		Action:    e.action,
	}
	if e.cause != nil {
		j.Cause = e.cause.Error()
	}
	if !e.timestamp.IsZero() {
		j.Timestamp = e.timestamp.Format(time.RFC3339Nano)
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Error) UnmarshalJSON(data []byte) error {
	var j errorJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	e.code = j.Code
	e.category = j.Category
	e.message = j.Message
	e.metadata = j.Metadata
	e.moniker = j.Moniker
	e.action = j.Action
	r := j.Retryable
	e.retryable = &r
	if j.Cause != "" {
		e.cause = fmt.Errorf("%s", j.Cause)
	}
	if j.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, j.Timestamp); err == nil {
			e.timestamp = t
		}
	}
	return nil
}

// Option is a functional option for configuring an Error.
type Option func(*Error)

// WithCategory overrides the default category.
func WithCategory(cat ErrorCategory) Option {
	return func(e *Error) {
		e.category = cat
	}
}

// WithRetryable explicitly sets whether the error is retryable.
func WithRetryable(retryable bool) Option {
	return func(e *Error) {
		e.retryable = &retryable
	}
}

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(e *Error) {
		if e.metadata == nil {
			e.metadata = make(map[string]string)
		}
		e.metadata[key] = value
	}
}

// WithMoniker sets the instance moniker the failure occurred on.
func WithMoniker(moniker string) Option {
	return func(e *Error) {
		e.moniker = moniker
	}
}

// WithAction sets the lifecycle action kind that failed.
func WithAction(action string) Option {
	return func(e *Error) {
		e.action = action
	}
}

// WithTimestamp sets a custom timestamp.
func WithTimestamp(t time.Time) Option {
	return func(e *Error) {
		e.timestamp = t
	}
}

// WithCause sets the underlying cause.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.cause = cause
	}
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string, opts ...Option) *Error {
	e := &Error{
		code:      code,
		category:  code.DefaultCategory(),
		message:   message,
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// FromCode creates an error with the default description for the code.
func FromCode(code ErrorCode, opts ...Option) *Error {
	return New(code, code.Description(), opts...)
}

// ResolveFailed creates a manifest resolution error for an instance.
func ResolveFailed(moniker string, cause error, opts ...Option) *Error {
	opts = append([]Option{WithMoniker(moniker), WithCause(cause)}, opts...)
	return New(ErrCodeResolveFailed, fmt.Sprintf("failed to resolve %s", moniker), opts...)
}

// StopFailed creates a stop error for an instance.
func StopFailed(moniker string, cause error, opts ...Option) *Error {
	opts = append([]Option{WithMoniker(moniker), WithCause(cause)}, opts...)
	return New(ErrCodeStopFailed, fmt.Sprintf("failed to stop %s", moniker), opts...)
}

// DestroyFailed creates a resource-erasure error for an instance.
func DestroyFailed(moniker string, cause error, opts ...Option) *Error {
	opts = append([]Option{WithMoniker(moniker), WithCause(cause)}, opts...)
	return New(ErrCodeDestroyFailed, fmt.Sprintf("failed to destroy %s", moniker), opts...)
}

// ChildNotFound creates a child-not-found error. The lifecycle core treats
// this as success for DeleteChild; it is surfaced only by query interfaces.
func ChildNotFound(name string, opts ...Option) *Error {
	return New(ErrCodeChildNotFound, fmt.Sprintf("no child named %q", name), opts...)
}

// InvalidMoniker creates an invalid moniker error.
func InvalidMoniker(moniker string, opts ...Option) *Error {
	opts = append([]Option{WithMoniker(moniker)}, opts...)
	return New(ErrCodeInvalidMoniker, fmt.Sprintf("invalid moniker %q", moniker), opts...)
}

// Internal creates an internal error.
func Internal(message string, opts ...Option) *Error {
	return New(ErrCodeInternal, message, opts...)
}
