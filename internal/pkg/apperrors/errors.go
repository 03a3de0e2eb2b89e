package apperrors

import (
	"errors"
	"sort"
	"strings"
)

// Resource errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
)

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenStale         = errors.New("refresh token is expired or used")
	ErrUserNotFound       = errors.New("user not found")
	ErrTooManyRequests    = errors.New("too many requests")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Application errors
var (
	ErrUploadFailed          = errors.New("upload failed")
	ErrApplicationSubmitted  = errors.New("application already submitted")
	ErrApplicationIncomplete = errors.New("application incomplete")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewUnauthorizedError wraps one of the authentication sentinels with a client message
func NewUnauthorizedError(err error, message string) error {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// NewUploadError wraps a storage failure
func NewUploadError(message string, cause error) error {
	return &CustomError{
		Err:     ErrUploadFailed,
		Message: message,
		Details: map[string]interface{}{"cause": causeText(cause)},
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// ValidationError carries schema failures.
// Fields lists missing required fields; Errors maps every failing field to a message.
type ValidationError struct {
	Message string
	Fields  []string
	Errors  map[string]string
	Reason  error
}

// NewValidationError builds a ValidationError with sorted, de-duplicated fields
func NewValidationError(message string, fields []string, errs map[string]string) *ValidationError {
	seen := make(map[string]struct{}, len(fields))
	unique := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		unique = append(unique, f)
	}
	sort.Strings(unique)
	return &ValidationError{Message: message, Fields: unique, Errors: errs}
}

// Error implements error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return e.Message + ": " + strings.Join(e.Fields, ", ")
	}
	return e.Message
}

// WithReason attaches a more specific sentinel such as ErrApplicationIncomplete
func (e *ValidationError) WithReason(reason error) *ValidationError {
	e.Reason = reason
	return e
}

// Unwrap lets errors.Is match ErrValidationFailed and the reason, if any
func (e *ValidationError) Unwrap() []error {
	if e.Reason != nil {
		return []error{ErrValidationFailed, e.Reason}
	}
	return []error{ErrValidationFailed}
}
