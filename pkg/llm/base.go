// Package llm provides interfaces and utilities for chat-completion
// providers.
//
// It defines the Provider interface that all LLM implementations must
// satisfy, along with message types, generation options, and the error kinds
// remote providers report.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider defines the interface for chat-completion providers.
//
// All implementations (OpenAI, Gemini, Anthropic, Ollama) must implement
// this interface.
type Provider interface {
	// Generate generates text from a single prompt.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// GenerateWithMessages generates text from a conversation history
	// (system, user, and assistant messages).
	GenerateWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (string, error)

	// Close closes the provider and releases resources.
	Close() error
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the message role: "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message content text.
	Content string `json:"content"`
}

// ErrMissingAPIKey indicates that the selected chat provider has no API key
// configured. It is surfaced as an actionable configuration prompt and never
// retried automatically.
var ErrMissingAPIKey = errors.New("chat api key is required")

// ProviderError reports a failed remote completion call. It preserves the
// provider's status and raw message so callers can map substrings like
// "API key", "quota", or "rate limit" to user-facing guidance. That mapping
// is a presentation concern, not this package's.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s completion request failed with status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s completion request failed: %s", e.Provider, e.Message)
}

// GenerateOptions contains options for text generation.
type GenerateOptions struct {
	// Temperature controls randomness (0.0-2.0). Higher = more random.
	Temperature float64

	// MaxTokens limits the maximum number of tokens in the response.
	MaxTokens int

	// TopP controls nucleus sampling (0.0-1.0). Higher = more diverse.
	TopP float64

	// Stop contains stop sequences that will end generation.
	Stop []string
}

// GenerateOption is a function type for configuring generation options.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the temperature for text generation.
func WithTemperature(temp float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens in the response.
func WithMaxTokens(max int) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.MaxTokens = max
	}
}

// WithTopP sets the top-p (nucleus sampling) parameter.
func WithTopP(topP float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.TopP = topP
	}
}

// ApplyGenerateOptions applies a slice of GenerateOption functions to create
// GenerateOptions. Defaults: Temperature=0.7, MaxTokens=1000, TopP=1.0.
func ApplyGenerateOptions(opts []GenerateOption) *GenerateOptions {
	options := &GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   1000,
		TopP:        1.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
