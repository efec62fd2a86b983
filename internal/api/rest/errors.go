package rest

import (
	"net/http"

	"github.com/virtualpytest/core/internal/apierr"
)

// APIError is the wire shape every error response takes.
type APIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError builds an APIError with no extra details.
func NewAPIError(code, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

var (
	ErrMissingParameter = NewAPIError("MISSING_PARAMETER", "required parameter is missing", http.StatusBadRequest)
	ErrInvalidJSON      = NewAPIError("INVALID_JSON", "invalid JSON in request body", http.StatusBadRequest)
)

// TranslateError maps any error into the wire APIError shape, preferring a
// structured apierr.Error when present.
func TranslateError(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := apierr.As(err); ok {
		e := &APIError{
			Code:       string(apiErr.Kind),
			Message:    apiErr.Message,
			HTTPStatus: apierr.HTTPStatus(apiErr.Kind),
		}
		if apiErr.Details != nil {
			e.Details = apiErr.Details
		}
		return e
	}
	return NewAPIError("INTERNAL", err.Error(), http.StatusInternalServerError)
}
