package chatbot

import (
	"errors"
	"fmt"
)

// ConfigError means the bridge itself is misconfigured; retrying will not help.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("chatbot: %s is missing", e.Field)
}

// AuthError means the platform rejected the API key.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("chatbot: authentication failed with the chatbot platform (HTTP %d): %s", e.StatusCode, e.Message)
}

// TransportError covers network failures and non-2xx platform responses other than 401.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "chatbot: send failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-2xx HTTP response from the platform.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsConfigError reports whether err (or any wrapped error) is a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
