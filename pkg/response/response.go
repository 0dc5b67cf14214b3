// Package response holds the JSON bodies answered by the API. The messages
// are relied upon by clients and must stay byte for byte stable.
package response

import "net/http"

type Response struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	Details    []any  `json:"details,omitempty"`
}

var (
	UserNotFound        = Error(http.StatusNotFound, "User does not exist.")
	ShortCodeRequired   = Error(http.StatusBadRequest, "Short code is required.")
	ShortCodeNotFound   = Error(http.StatusNotFound, "Short code does not exist.")
	APIKeyRequired      = Error(http.StatusForbidden, "API key is required.")
	AccessDenied        = Error(http.StatusForbidden, "You do not have access for this operation.")
	ShortCodeExpired    = Error(http.StatusGone, "Short code has expired!")
	NeedsPassword       = Error(http.StatusForbidden, "Needs a password to be accessed.")
	IncorrectPassword   = Error(http.StatusForbidden, "The password is incorrect.")
	OriginalURLRequired = Error(http.StatusBadRequest, "Original long URL is required!")
	CustomCodeEmpty     = Error(http.StatusBadRequest, "Custom Code cannot be empty!")
	PasswordEmpty       = Error(http.StatusBadRequest, "Password cannot be empty!")
	ShortCodeExists     = Error(http.StatusBadRequest, "Short code already exists, please try with a different code.")
	APIKeyBlacklisted   = Error(http.StatusForbidden, "Access denied: API key is blacklisted.")
	TooManyRequests     = Error(http.StatusTooManyRequests, "Too many requests, please try again later.")
	InvalidRequestBody  = Error(http.StatusBadRequest, "Invalid request body.")
	ServerError         = Error(http.StatusInternalServerError, "An internal server error occurred. Please try again later.")
)

func Error(statusCode int, msg string) Response {
	return Response{
		StatusCode: statusCode,
		Error:      msg,
	}
}

// WithStatus returns a copy of resp answered with a different status code.
func WithStatus(resp Response, statusCode int) Response {
	resp.StatusCode = statusCode
	return resp
}

// WithDetails returns a copy of resp carrying details.
func WithDetails(resp Response, details ...any) Response {
	resp.Details = details
	return resp
}

func DeleteSuccess(shortCode string) Response {
	return Response{
		StatusCode: http.StatusOK,
		Message:    shortCode + " deleted successfully!",
	}
}
