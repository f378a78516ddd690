// Package embedder provides interfaces for text embedding providers.
//
// It defines the Provider interface that all embedding implementations must
// satisfy, enabling text-to-vector conversion for similarity search, plus the
// error kinds remote providers report.
package embedder

import (
	"context"
	"errors"
	"fmt"
)

// Provider defines the interface for embedding providers.
//
// All embedding implementations (local, OpenAI, Gemini, HuggingFace) must
// implement this interface.
type Provider interface {
	// Embed converts a text string into a vector embedding of length
	// Dimensions().
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the dimension of vectors produced by this provider.
	Dimensions() int

	// Model returns the identifier of the embedding model, recorded on
	// stored memories so cross-model vectors are never compared.
	Model() string

	// Close closes the provider and releases resources.
	Close() error
}

// ErrMissingAPIKey indicates that the selected remote provider has no API key
// configured. It is surfaced as an actionable configuration prompt and never
// retried automatically.
var ErrMissingAPIKey = errors.New("embedding api key is required")

// ProviderError reports a failed remote embedding call: a non-success HTTP
// status or an unparseable body. It carries the provider's status and message
// so callers can log or map them. Remote timeouts surface here too, through
// the wrapped transport error.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s embedding request failed with status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s embedding request failed: %s", e.Provider, e.Message)
}
