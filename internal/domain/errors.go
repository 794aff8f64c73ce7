package domain

import (
	"errors"
	"fmt"
)

// Error codes attached to DomainError for boundary mapping.
const (
	ErrCodeNotSet          = "NOT_SET"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeNotADirectory   = "NOT_A_DIRECTORY"
	ErrCodeAccessDenied    = "ACCESS_DENIED"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeRunner          = "RUNNER_ERROR"
	ErrCodeVersion         = "VERSION_ERROR"
)

// DomainError is a coded error surfaced at the tool/CLI boundary
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Is matches two DomainErrors by code so callers can use errors.Is with a
// bare NewXxxError("") probe.
func (e DomainError) Is(target error) bool {
	var de DomainError
	if errors.As(target, &de) {
		return de.Code == e.Code
	}
	return false
}

// NewNotSetError reports that the project root has not been configured yet
func NewNotSetError(message string) error {
	return DomainError{Code: ErrCodeNotSet, Message: message}
}

// NewNotFoundError reports a missing path or target
func NewNotFoundError(message string) error {
	return DomainError{Code: ErrCodeNotFound, Message: message}
}

// NewNotADirectoryError reports a path that exists but is not a directory
func NewNotADirectoryError(message string) error {
	return DomainError{Code: ErrCodeNotADirectory, Message: message}
}

// NewAccessDeniedError reports a path outside the allow-list or self-targeting
func NewAccessDeniedError(message string) error {
	return DomainError{Code: ErrCodeAccessDenied, Message: message}
}

// NewInvalidArgumentError reports a missing or empty required parameter
func NewInvalidArgumentError(message string) error {
	return DomainError{Code: ErrCodeInvalidArgument, Message: message}
}

// NewRunnerError reports a spawn failure, timeout, non-zero exit or an
// unparsable runner report.
func NewRunnerError(message string, cause error) error {
	return DomainError{Code: ErrCodeRunner, Message: message, Cause: cause}
}

// NewVersionError reports an incompatible runner or coverage provider version
func NewVersionError(message string) error {
	return DomainError{Code: ErrCodeVersion, Message: message}
}

// ErrorCode extracts the DomainError code, or "" for non-domain errors.
func ErrorCode(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
