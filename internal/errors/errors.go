package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a resource is absent or soft-deleted.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("resource already exists")
	// ErrAuthenticationFailed is returned for bad credentials and invalid tokens.
	ErrAuthenticationFailed = errors.New("could not validate credentials")
	// ErrPermissionDenied is returned when the caller does not own the resource.
	ErrPermissionDenied = errors.New("you are not allowed to perform this action")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
)

// permissionDeniedMessage is the only text a caller ever sees for ErrPermissionDenied.
const permissionDeniedMessage = "You are not allowed to perform this action."

// Error attaches a caller-facing message to one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates an Error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NotFound creates an ErrNotFound with a custom message.
func NotFound(message string) *Error { return New(ErrNotFound, message) }

// Conflict creates an ErrConflict with a custom message.
func Conflict(message string) *Error { return New(ErrConflict, message) }

// AuthenticationFailed creates an ErrAuthenticationFailed with a custom message.
func AuthenticationFailed(message string) *Error { return New(ErrAuthenticationFailed, message) }

// Validation creates an ErrValidation with a custom message.
func Validation(message string) *Error { return New(ErrValidation, message) }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unclassified becomes a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, messageOf(err), "NOT_FOUND")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, messageOf(err), "CONFLICT")
	case errors.Is(err, ErrAuthenticationFailed):
		return NewHTTPError(http.StatusUnauthorized, messageOf(err), "AUTHENTICATION_FAILED")
	case errors.Is(err, ErrPermissionDenied):
		return NewHTTPError(http.StatusForbidden, permissionDeniedMessage, "PERMISSION_DENIED")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, messageOf(err), "VALIDATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// IsClassified reports whether err belongs to one of the known kinds.
func IsClassified(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrAuthenticationFailed, ErrPermissionDenied, ErrValidation} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// messageOf returns the outermost *Error message, or the sentinel text when err was not built with one.
func messageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrAuthenticationFailed, ErrValidation} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
