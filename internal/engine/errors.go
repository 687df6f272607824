package engine

import (
	"errors"
	"fmt"
)

// ConfigError is returned when run options are rejected before mining starts.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Field names the offending option.
	Field string

	// Message is a human-readable description.
	Message string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidMinSupport indicates a ratio outside (0, 1].
	ErrCodeInvalidMinSupport ConfigErrorCode = "INVALID_MIN_SUPPORT"

	// ErrCodeInvalidWorkers indicates a negative worker count.
	ErrCodeInvalidWorkers ConfigErrorCode = "INVALID_WORKERS"

	// ErrCodeInvalidKind indicates an unknown matrix or tidset kind.
	ErrCodeInvalidKind ConfigErrorCode = "INVALID_KIND"

	// ErrCodeMissingInput indicates a nil database or sink.
	ErrCodeMissingInput ConfigErrorCode = "MISSING_INPUT"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsInvalidMinSupport reports whether err rejects the support ratio.
// Uses errors.As to handle wrapped errors.
func IsInvalidMinSupport(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidMinSupport
	}
	return false
}

func newConfigError(code ConfigErrorCode, field, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
