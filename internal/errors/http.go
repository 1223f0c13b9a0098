package errors

import "net/http"

// ErrorResponse is the JSON body rendered for failed requests.
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPStatusFromErr maps a marked error to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsPermissionDenied(err):
		return http.StatusUnauthorized
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err), IsVersionConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the response body for an error. Internal messages
// are exposed as-is; the spec for this service surfaces provider error
// details to the caller rather than redacting them.
func NewErrorResponse(err error) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   Message(err),
		Hint:    Hint(err),
		Details: Details(err),
	}
}
