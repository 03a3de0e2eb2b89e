package middleware

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/logger"
)

// MsgRouteNotFound is returned for unknown routes
const MsgRouteNotFound = "Route not found"

var exposeErrors atomic.Bool

// ExposeErrors controls whether responses carry the underlying error text.
// It is enabled outside production.
func ExposeErrors(on bool) {
	exposeErrors.Store(on)
}

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: more specific sentinels first
var errorMappings = []errorMapping{
	{apperrors.ErrApplicationSubmitted, http.StatusConflict, dto.ErrorCodeSubmitted, "Application already submitted"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Resource already exists"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrTokenStale, http.StatusUnauthorized, dto.ErrorCodeStaleToken, "Refresh token is expired or used"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrUserNotFound, http.StatusUnauthorized, dto.ErrorCodeUserNotFound, "User not found"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Unauthorized request"},
	{apperrors.ErrTooManyRequests, http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests, "Too many requests"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrUploadFailed, http.StatusInternalServerError, dto.ErrorCodeUploadFailed, "Failed to upload file"},
}

// HandleAPIError writes the error response for err and aborts the request
func HandleAPIError(c *gin.Context, err error) {
	status, body := errorResponse(err)

	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg("Request failed")

	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, *dto.ErrorResponse) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		code := dto.ErrorCodeValidationFailed
		if errors.Is(err, apperrors.ErrApplicationIncomplete) {
			code = dto.ErrorCodeIncomplete
		}
		resp := dto.NewErrorResponse(code, verr.Message).
			WithFields(verr.Fields).
			WithErrors(verr.Errors)
		return http.StatusBadRequest, resp
	}

	status := http.StatusInternalServerError
	resp := dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error")
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			status = m.status
			resp = dto.NewErrorResponse(m.code, m.message)
			break
		}
	}

	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" && status != http.StatusInternalServerError {
		resp.Message = custom.Message
	}

	if exposeErrors.Load() {
		resp.WithDebug(debugCause(err, custom))
	}
	return status, resp
}

func debugCause(err error, custom *apperrors.CustomError) error {
	if custom != nil {
		if cause, ok := custom.Details["cause"].(string); ok && cause != "" {
			return errors.New(cause)
		}
	}
	return err
}

// ErrorHandler renders errors attached with c.Error when no response was written
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		HandleAPIError(c, c.Errors.Last().Err)
	}
}

// NotFoundHandler answers unknown routes
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeResourceNotFound, MsgRouteNotFound))
}
