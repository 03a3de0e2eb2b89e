package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/validation"
)

// MaxJSONBodyBytes caps JSON request bodies
const MaxJSONBodyBytes = 1 << 20

// ReadJSONObject returns the raw body after checking it is a JSON object
func ReadJSONObject(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxJSONBodyBytes+1))
	if err != nil {
		return nil, apperrors.NewBadRequestError("Unable to read request body")
	}
	if len(body) > MaxJSONBodyBytes {
		return nil, apperrors.NewBadRequestError("Request body too large")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, apperrors.NewBadRequestError("Request body must be a JSON object")
	}
	return body, nil
}

// DecodeJSON decodes the body into obj without validating it
func DecodeJSON(c *gin.Context, obj interface{}) error {
	body, err := ReadJSONObject(c)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperrors.NewValidationError(validation.MsgValidationFailed, nil,
				map[string]string{typeErr.Field: typeErr.Field + " has an invalid type"})
		}
		return apperrors.NewBadRequestError("Invalid request body: " + err.Error())
	}
	return nil
}
