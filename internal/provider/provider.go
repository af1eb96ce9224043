// Package provider defines the contract every generation backend implements
// and the request shaping and response parsing they share.
package provider

import (
	"context"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

// Operation names carried by ProviderError.
const (
	OpText        = "text"
	OpImage       = "image"
	OpInspiration = "inspiration"
)

// Provider wraps one generative backend behind the three creation operations.
type Provider interface {
	// ID is the stable identifier used for ordering and logs.
	ID() string
	// Configured reports whether credentials are present. It never blocks.
	Configured() bool

	GenerateText(ctx context.Context, topic string, style domain.Style, keywords domain.Facets) (domain.Content, error)
	// GenerateImage returns a data URI or a remote URL.
	GenerateImage(ctx context.Context, prompt string, keywords domain.Facets) (string, error)
	GenerateInspiration(ctx context.Context) (domain.Content, error)
}

// Fail builds the ProviderError for a failed operation.
func Fail(id, op, msg string, cause error) *domain.ProviderError {
	return &domain.ProviderError{Provider: id, Op: op, Message: msg, Err: cause}
}
