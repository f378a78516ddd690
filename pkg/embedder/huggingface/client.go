// Package huggingface provides an embedding provider backed by the Hugging
// Face Inference API's feature-extraction pipeline. The default model
// produces 384-dimensional sentence-transformer vectors.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/webrecall/webrecall-go/pkg/embedder"
)

// Client implements embedder.Provider using the Hugging Face Inference API.
type Client struct {
	client     *http.Client
	apiKey     string
	model      string
	baseURL    string
	dimensions int
}

// Config contains configuration for creating a Hugging Face embedder client.
type Config struct {
	// APIKey is the Hugging Face access token (required).
	APIKey string

	// Model is the repository id of the embedding model
	// (default: "sentence-transformers/all-MiniLM-L6-v2").
	Model string

	// BaseURL is the inference API base URL (default: the official
	// endpoint).
	BaseURL string

	// Dimensions is the vector dimension (default: 384, the default
	// model's native size).
	Dimensions int

	// HTTPClient is a custom HTTP client (uses a default if nil).
	HTTPClient *http.Client
}

// NewClient creates a new Hugging Face embedder client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, embedder.ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}

	model := cfg.Model
	if model == "" {
		model = "sentence-transformers/all-MiniLM-L6-v2"
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = 384
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		client:     client,
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		dimensions: dimensions,
	}, nil
}

// Embed converts a single text into a vector embedding.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := map[string]interface{}{
		"inputs": []string{text},
		"options": map[string]bool{
			// Block instead of erroring while the model container warms up.
			"wait_for_model": true,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &embedder.ProviderError{Provider: "huggingface", Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &embedder.ProviderError{Provider: "huggingface", Status: resp.StatusCode, Message: string(body)}
	}

	// The pipeline returns one vector per input.
	var vectors [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, &embedder.ProviderError{Provider: "huggingface", Message: "decode response: " + err.Error()}
	}

	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, &embedder.ProviderError{Provider: "huggingface", Message: "no embedding returned"}
	}
	return vectors[0], nil
}

// Dimensions returns the vector dimensionality.
func (c *Client) Dimensions() int { return c.dimensions }

// Model returns the embedding model repository id.
func (c *Client) Model() string { return c.model }

// Close is a no-op, retained for interface compatibility.
func (c *Client) Close() error { return nil }
