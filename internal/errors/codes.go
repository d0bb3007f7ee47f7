package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a machine-readable reason code attached to rejected requests.
type Code string

const (
	// CodeUnknown represents an error without a reason code.
	CodeUnknown Code = "UNKNOWN"

	// Submission validation
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidUser     Code = "INVALID_USER"
	CodeInvalidDate     Code = "INVALID_DATE"
	CodeFutureDate      Code = "FUTURE_DATE"
	CodeDuplicateMetric Code = "DUPLICATE_METRIC"
	CodeInvalidValue    Code = "INVALID_VALUE"

	// Preconditions
	CodeRetroEditRequired Code = "RETRO_EDIT_REQUIRED"

	// Catalog
	CodeInvalidCatalog Code = "INVALID_CATALOG"

	// Persistence
	CodeNotFound   Code = "NOT_FOUND"
	CodeTxFailed   Code = "TRANSACTION_FAILED"
	CodeUnexpected Code = "UNEXPECTED"
)

// CodedError carries a reason code alongside the message and an optional cause.
type CodedError struct {
	Code    Code
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CodedError) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, format string, args ...any) error {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the first code found in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var coded *CodedError
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return CodeUnknown
}

// retryableError marks failures the caller may safely retry because nothing
// was written.
type retryableError struct {
	err error
}

func (e retryableError) Error() string { return e.err.Error() }

func (e retryableError) Unwrap() error { return e.err }

// Retryable marks err as safe to retry.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryableError{err: err}
}

// IsRetryable reports whether err (or anything it wraps) was marked retryable.
func IsRetryable(err error) bool {
	var r retryableError
	return stderrors.As(err, &r)
}
