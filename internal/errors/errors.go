// Package errors provides custom error types for the health chat client and relay.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotConfigured   = errors.New("not configured")
	ErrRequestFailed   = errors.New("request failed")
	ErrNetwork         = errors.New("network error")
	ErrInvalidResponse = errors.New("invalid response format")
)

// ConfigError represents a missing or invalid setting, such as an absent
// upstream credential.
type ConfigError struct {
	Setting string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s is not configured", e.Setting)
	}
	return e.Message
}

// Is allows comparison with sentinel errors
func (e *ConfigError) Is(target error) bool {
	if target == ErrNotConfigured {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok
}

// NewConfigError creates a new ConfigError
func NewConfigError(setting, message string) *ConfigError {
	return &ConfigError{Setting: setting, Message: message}
}

// APIError represents a request that completed with a non-success status
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// Is allows comparison with sentinel errors
func (e *APIError) Is(target error) bool {
	if target == ErrRequestFailed {
		return true
	}
	_, ok := target.(*APIError)
	return ok
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError that keeps the response body
// for diagnostics
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NetworkError represents a transport failure before any response arrived
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s (%s): %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Err: err}
}

// NewNetworkErrorWithEndpoint creates a new NetworkError tagged with the endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// ParseError represents a payload that could not be decoded
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message string, err error) *ParseError {
	return &ParseError{Message: message, Err: err}
}

// IsConfigError reports whether err is or wraps a ConfigError
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsAPIError reports whether err is or wraps an APIError
func IsAPIError(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// IsNetworkError reports whether err is or wraps a NetworkError
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsParseError reports whether err is or wraps a ParseError
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// GetHTTPStatus extracts the HTTP status code from an error chain, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetResponseBody extracts the response body stored in an APIError, if any
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}
