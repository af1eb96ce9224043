package domain

import (
	"errors"
	"fmt"
)

// ErrNoProviderConfigured is returned when no provider has usable credentials.
var ErrNoProviderConfigured = errors.New("no generation provider is configured, check the API key settings")

// ValidationError is a local input failure. No provider is called.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// ProviderError is a single provider's failure for one operation.
type ProviderError struct {
	Provider string // provider id, e.g. "openai"
	Op       string // "text" | "image" | "inspiration"
	Message  string // human-readable
	Err      error  // underlying cause, may be nil
}

func (e *ProviderError) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AllProvidersFailedError is returned when every configured provider failed.
// Its message is the last provider's message.
type AllProvidersFailedError struct {
	Attempts []string
	Last     error
}

func (e *AllProvidersFailedError) Error() string {
	if e.Last == nil {
		return "all generation providers failed"
	}
	return e.Last.Error()
}

func (e *AllProvidersFailedError) Unwrap() error { return e.Last }

// PersistenceError wraps a storage read or write failure.
type PersistenceError struct {
	Op  string // "read" | "write" | "decode"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
