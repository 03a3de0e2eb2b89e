package dto

import (
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_002"
	ErrorCodeStaleToken         ErrorCode = "AUTH_003"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_004"
	ErrorCodeUserNotFound       ErrorCode = "AUTH_005"
	ErrorCodeTooManyRequests    ErrorCode = "AUTH_006"

	// Resource errors
	ErrorCodeResourceNotFound ErrorCode = "RES_001"
	ErrorCodeConflict         ErrorCode = "RES_002"
	ErrorCodeSubmitted        ErrorCode = "RES_003"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeBadRequest       ErrorCode = "VAL_002"
	ErrorCodeIncomplete       ErrorCode = "VAL_003"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeUploadFailed   ErrorCode = "SRV_002"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool              `json:"success" example:"false"`
	Message   string            `json:"message" example:"Missing required fields"`
	Code      ErrorCode         `json:"code" example:"VAL_001"`
	Error     string            `json:"error,omitempty"`
	Fields    []string          `json:"fields,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewErrorResponse creates a standard error response
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

// WithFields lists missing required fields
func (e *ErrorResponse) WithFields(fields []string) *ErrorResponse {
	e.Fields = fields
	return e
}

// WithErrors attaches per-field messages
func (e *ErrorResponse) WithErrors(errs map[string]string) *ErrorResponse {
	e.Errors = errs
	return e
}

// WithDebug exposes the underlying error (development only)
func (e *ErrorResponse) WithDebug(err error) *ErrorResponse {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
