package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
)

// Server error codes that mean the access token itself is the problem.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeNoToken      = "NO_TOKEN"
)

// APIError is a non-2xx answer from the storefront API.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
	RetryAfter int
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

// errorBody is the envelope the API uses for failures. Validation failures
// come back as an errors array instead of a message.
type errorBody struct {
	Success bool                   `json:"success"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Errors  []struct {
		Msg   string `json:"msg"`
		Param string `json:"param"`
		Path  string `json:"path"`
	} `json:"errors,omitempty"`
}

// ParseError builds an APIError from a failed response.
func ParseError(statusCode int, body []byte, retryAfter string) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if retryAfter != "" {
		apiErr.RetryAfter, _ = strconv.Atoi(retryAfter)
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
		apiErr.Details = eb.Details
		if apiErr.Message == "" && len(eb.Errors) > 0 {
			apiErr.Message = eb.Errors[0].Msg
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status %d", statusCode)
	}
	return apiErr
}

// AsAPIError unwraps err to an APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func hasStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == status
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool {
	return hasStatus(err, 401)
}

// IsForbidden checks if error is due to insufficient permissions
func IsForbidden(err error) bool {
	return hasStatus(err, 403)
}

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool {
	return hasStatus(err, 404)
}

// IsServerError checks if error is due to server error (5xx)
func IsServerError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode >= 500
}

// IsTokenError reports a 401 whose code says the access token is expired,
// invalid or missing.
func IsTokenError(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.StatusCode != 401 {
		return false
	}
	switch apiErr.Code {
	case CodeTokenExpired, CodeInvalidToken, CodeNoToken:
		return true
	}
	return false
}
