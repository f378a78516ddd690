// Package gemini provides an embedding provider backed by the Google
// Generative Language (Gemini) embedContent API.
package gemini

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

// Client implements embedder.Provider using the Gemini embedContent endpoint.
type Client struct {
	client     *http.Client
	apiKey     string
	model      string
	baseURL    string
	dimensions int
}

// Config contains configuration for creating a Gemini embedder client.
type Config struct {
	// APIKey is the Generative Language API key (required).
	APIKey string

	// Model is the embedding model name (default: "text-embedding-004").
	Model string

	// BaseURL is the API base URL (default: the official endpoint).
	BaseURL string

	// Dimensions is the vector dimension (default: 768, the model's
	// native size).
	Dimensions int

	// HTTPClient is a custom HTTP client (uses a default if nil).
	HTTPClient *http.Client
}

// NewClient creates a new Gemini embedder client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, embedder.ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = 768
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
		"model": "models/" + c.model,
		"content": map[string]interface{}{
			"parts": []map[string]string{{"text": text}},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &embedder.ProviderError{Provider: "gemini", Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &embedder.ProviderError{Provider: "gemini", Status: resp.StatusCode, Message: string(body)}
	}

	var response struct {
		Embedding struct {
			Values []float64 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &embedder.ProviderError{Provider: "gemini", Message: "decode response: " + err.Error()}
	}

	if len(response.Embedding.Values) == 0 {
		return nil, &embedder.ProviderError{Provider: "gemini", Message: "no embedding returned"}
	}
	return response.Embedding.Values, nil
}

// Dimensions returns the vector dimensionality.
func (c *Client) Dimensions() int { return c.dimensions }

// Model returns the embedding model name.
func (c *Client) Model() string { return c.model }

// Close is a no-op, retained for interface compatibility.
func (c *Client) Close() error { return nil }
