// Package apperror defines the engine-wide error kinds. Domain packages keep their
// own sentinels; these kinds classify failures for batch reporting and HTTP mapping.
package apperror

import (
	"errors"
	"fmt"

	"github.com/valstrz/payroll-engine/internal/pkg/validator"
)

var (
	ErrConfigurationMissing       = errors.New("configuration missing")
	ErrInvalidInput               = errors.New("invalid input")
	ErrConfigurationInconsistency = errors.New("configuration inconsistency")
	ErrConcurrentCloseConflict    = errors.New("period is already being closed")
	ErrClosedPeriodImmutable      = errors.New("period is closed")
)

// Kind codes as reported in batch failures and API responses.
const (
	CodeConfigurationMissing       = "CONFIGURATION_MISSING"
	CodeInvalidInput               = "INVALID_INPUT"
	CodeConfigurationInconsistency = "CONFIGURATION_INCONSISTENCY"
	CodeConcurrentCloseConflict    = "CONCURRENT_CLOSE_CONFLICT"
	CodeClosedPeriodImmutable      = "CLOSED_PERIOD_IMMUTABLE"
	CodeInternal                   = "INTERNAL_ERROR"
)

type Error struct {
	Kind    error
	Field   string // set for InvalidInput
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap attaches a cause so errors.Is matches both the kind and the cause.
func (e *Error) Wrap(cause error) *Error {
	e.Err = cause
	return e
}

func ConfigurationMissing(format string, args ...any) *Error {
	return &Error{Kind: ErrConfigurationMissing, Message: fmt.Sprintf(format, args...)}
}

func ConfigurationInconsistency(format string, args ...any) *Error {
	return &Error{Kind: ErrConfigurationInconsistency, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(field, message string) *Error {
	return &Error{Kind: ErrInvalidInput, Field: field, Message: message}
}

// Invalid wraps a validation failure (usually validator.ValidationErrors) as InvalidInput.
func Invalid(err error) *Error {
	return &Error{Kind: ErrInvalidInput, Err: err}
}

func ConcurrentClose(key string) *Error {
	return &Error{Kind: ErrConcurrentCloseConflict, Message: key}
}

func ClosedPeriod(format string, args ...any) *Error {
	return &Error{Kind: ErrClosedPeriodImmutable, Message: fmt.Sprintf(format, args...)}
}

// Code classifies err into one of the kind codes.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return CodeConfigurationMissing
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrConfigurationInconsistency):
		return CodeConfigurationInconsistency
	case errors.Is(err, ErrConcurrentCloseConflict):
		return CodeConcurrentCloseConflict
	case errors.Is(err, ErrClosedPeriodImmutable):
		return CodeClosedPeriodImmutable
	default:
		return CodeInternal
	}
}

// FieldOf returns the offending field of an InvalidInput error, if any. For
// wrapped validation lists the first field is reported.
func FieldOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Field != "" {
		return appErr.Field
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return errs[0].Field
	}
	return ""
}

// Recoverable reports whether a per-employee failure may be collected instead of
// aborting a batch run.
func Recoverable(err error) bool {
	return errors.Is(err, ErrConfigurationMissing) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConfigurationInconsistency)
}
