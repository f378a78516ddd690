// Package openai provides an OpenAI-backed embedding provider.
package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/webrecall/webrecall-go/pkg/embedder"
)

// Client implements embedder.Provider using the OpenAI Embeddings API.
type Client struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// Config is the configuration for the OpenAI embedder.
// APIKey: OpenAI API key (required)
// Model: embedding model name, defaults to "text-embedding-3-small"
// BaseURL: API base URL, defaults to the OpenAI official address
// Dimensions: vector dimensions, defaults to 1536 (the model's native size)
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Dimensions int
}

// NewClient creates a new OpenAI embedder client.
//
// Returns embedder.ErrMissingAPIKey when no key is configured.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, embedder.ErrMissingAPIKey
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := openai.EmbeddingModel(cfg.Model)
	if model == "" {
		model = openai.SmallEmbedding3
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = 1536
	}

	return &Client{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed converts a single text into a vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return nil, &embedder.ProviderError{Provider: "openai", Message: err.Error()}
	}

	if len(resp.Data) == 0 {
		return nil, &embedder.ProviderError{Provider: "openai", Message: "no data returned"}
	}

	// The SDK returns float32; similarity math runs on float64.
	embedding32 := resp.Data[0].Embedding
	embedding64 := make([]float64, len(embedding32))
	for i, v := range embedding32 {
		embedding64[i] = float64(v)
	}
	return embedding64, nil
}

// Dimensions returns the vector dimensionality.
func (c *Client) Dimensions() int { return c.dimensions }

// Model returns the embedding model identifier.
func (c *Client) Model() string { return string(c.model) }

// Close is a no-op; the OpenAI SDK client needs no explicit shutdown.
func (c *Client) Close() error { return nil }
