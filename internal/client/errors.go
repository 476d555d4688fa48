package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a definitive rejection from the server (4xx/5xx).
type APIError struct {
	StatusCode int
	Message    string

	// RequireVerification signals that the account exists but the email
	// has not been verified yet. Callers route to the verification flow
	// instead of showing a credentials error.
	RequireVerification bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// errorBody matches the error envelope the API uses across endpoints.
type errorBody struct {
	Error               string `json:"error"`
	Detail              string `json:"detail"`
	Message             string `json:"message"`
	RequireVerification bool   `json:"require_verification"`
}

func apiErrorFromResponse(statusCode int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Message: http.StatusText(statusCode)}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Detail != "":
			apiErr.Message = body.Detail
		case body.Message != "":
			apiErr.Message = body.Message
		}
		apiErr.RequireVerification = body.RequireVerification
	}

	return apiErr
}

// IsNetworkError reports whether err means the request never produced a
// response from the server. Network failures are surfaced to the caller
// and never treated as an authentication rejection.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return !errors.As(err, &apiErr)
}

// StatusOf returns the HTTP status carried by err, or 0 for network errors.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
