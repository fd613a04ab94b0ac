package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Client-side validation, never sent to the server
	ErrorTypeValidation ErrorType = "validation"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeSessionExpired ErrorType = "session_expired"
	ErrorTypeForbidden      ErrorType = "forbidden"

	// Business errors carry the server's message verbatim
	ErrorTypeBusiness  ErrorType = "business"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeConflict  ErrorType = "conflict"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeServer    ErrorType = "server"

	// Infrastructure errors: the request never got an answer
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	RetryAfter int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError reports a request that never reached the server.
func NetworkError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, "Service unavailable", cause)
	err.Suggestion = "Check your internet connection and the api.base_url setting, then try again."
	return err
}

// TimeoutError reports a request that got no answer within api.timeout.
func TimeoutError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.Suggestion = "Log in with 'uteshop auth login'."
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", cause)
	err.Suggestion = "Run 'uteshop auth login' to start a new session."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *CLIError {
	if message == "" {
		message = "Access denied"
	}
	err := NewCLIError(ErrorTypeForbidden, message, nil)
	err.Suggestion = "This action needs an account with the required role."
	return err
}

// NotFoundError reports a resource that does not exist
func NotFoundError(what string) *CLIError {
	return NewCLIError(ErrorTypeNotFound, fmt.Sprintf("%s not found", what), nil)
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("%s %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// IsValidation reports whether err is a client-side validation error.
func IsValidation(err error) bool {
	var cliErr *CLIError
	return errors.As(err, &cliErr) && cliErr.Type == ErrorTypeValidation
}

// IsType reports whether err categorizes as the given type.
func IsType(err error, t ErrorType) bool {
	if err == nil {
		return false
	}
	return CategorizeError(err).Type == t
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return TimeoutError(err)
		}
		return NetworkError(err)
	}

	if strings.Contains(err.Error(), "connection refused") {
		return NetworkError(err)
	}

	return NewCLIError(ErrorTypeUnknown, err.Error(), err)
}

func fromAPIError(apiErr *APIError) *CLIError {
	var out *CLIError
	switch {
	case apiErr.StatusCode == 401:
		out = AuthError(apiErr.Message)
	case apiErr.StatusCode == 403:
		out = ForbiddenError(apiErr.Message)
	case apiErr.StatusCode == 404:
		out = NewCLIError(ErrorTypeNotFound, apiErr.Message, nil)
	case apiErr.StatusCode == 409:
		out = NewCLIError(ErrorTypeConflict, apiErr.Message, nil)
	case apiErr.StatusCode == 429:
		out = NewCLIError(ErrorTypeRateLimit, apiErr.Message, nil)
		out.RetryAfter = apiErr.RetryAfter
		out.Suggestion = "Too many requests. Wait a moment before trying again."
	case apiErr.StatusCode >= 500:
		out = NewCLIError(ErrorTypeServer, apiErr.Message, nil)
		out.Suggestion = "The server encountered an error. Try again in a few moments."
	default:
		out = NewCLIError(ErrorTypeBusiness, apiErr.Message, nil)
	}
	out.Cause = apiErr
	out.StatusCode = apiErr.StatusCode
	return out
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	if cliErr.Type == ErrorTypeRateLimit && cliErr.RetryAfter > 0 {
		sb.WriteString(fmt.Sprintf("Retry in: %d seconds\n", cliErr.RetryAfter))
	}

	return sb.String()
}
