package llm

import (
	"errors"
)

// Error classification for completion calls. Transient errors may succeed on
// retry; fatal errors never will. Rate limits and timeouts get their own
// types so route handlers can map them to distinct HTTP statuses.

// TransientError represents a temporary error that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }

func (e *TransientError) Unwrap() error { return e.err }

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent error that should not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string { return e.err.Error() }

func (e *FatalError) Unwrap() error { return e.err }

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// RateLimitError indicates the upstream service returned 429. It is not
// retried automatically; the caller decides whether to surface "try again
// shortly" to the user.
type RateLimitError struct {
	err error
}

func (e *RateLimitError) Error() string { return e.err.Error() }

func (e *RateLimitError) Unwrap() error { return e.err }

// NewRateLimitError wraps an error as an upstream rate limit.
func NewRateLimitError(err error) error {
	return &RateLimitError{err: err}
}

// TimeoutError indicates the per-attempt deadline elapsed before the
// upstream service replied.
type TimeoutError struct {
	err error
}

func (e *TimeoutError) Error() string { return e.err.Error() }

func (e *TimeoutError) Unwrap() error { return e.err }

// NewTimeoutError wraps an error as an upstream timeout.
func NewTimeoutError(err error) error {
	return &TimeoutError{err: err}
}

// IsTransient returns true if the error is transient and should be retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is fatal and should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// IsRateLimited returns true if the error is an upstream rate limit.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsTimeout returns true if the error is an upstream timeout.
func IsTimeout(err error) bool {
	var to *TimeoutError
	return errors.As(err, &to)
}
