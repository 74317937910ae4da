package core

import (
	"net/http"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// APIError is a failure reported by the PolyLab API; Message carries the
// server-provided "detail" when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func NewAPIError(code int, msg string) error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &APIError{StatusCode: code, Message: msg}
}

func (err *APIError) Error() string { return err.Message }

// APIErrorMessage returns the server-provided message when err is an
// APIError, and fallback for anything else. Validation errors and transport
// failures never leak raw error text to the user.
func APIErrorMessage(err error, fallback string) string {
	if apiErr, ok := errors.Cause(err).(*APIError); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsNotFound(err error) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}
