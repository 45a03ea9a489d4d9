package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports malformed input; surfaced inline, never retried.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewAuthFailure reports a rejected credential or role. The message is
// deliberately generic: callers must not reveal whether the ticket id or the
// OTP was the wrong half.
func NewAuthFailure() error {
	return NewDomainError("AUTH_FAILED", "verification failed", http.StatusUnauthorized, nil)
}

// NewNotFound reports an unknown ticket/request id.
func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewConflict reports a request already decided or an illegal status
// transition, distinct from transient failure so the caller can explain
// "already processed" rather than "try again".
func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewTransient reports a network or backend availability failure. The caller
// decides whether to retry; nothing in this module retries writes on its own.
func NewTransient(err error) error {
	return &DomainError{
		Code:       "TRANSIENT",
		Message:    "service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "TRANSIENT",
		Message:    "service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return hasCode(err, "VALIDATION_FAILED") }

// IsAuthFailure reports whether err is a credential/role rejection.
func IsAuthFailure(err error) bool { return hasCode(err, "AUTH_FAILED") }

// IsConflict reports whether err is a conflict: a request already decided or
// an illegal status transition.
func IsConflict(err error) bool { return hasCode(err, "CONFLICT") }

// IsNotFound reports whether err is an unknown-id failure.
func IsNotFound(err error) bool { return hasCode(err, "NOT_FOUND") }

// IsTransient reports whether err is a retryable availability failure.
func IsTransient(err error) bool { return hasCode(err, "TRANSIENT") }
