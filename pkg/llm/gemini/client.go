// Package gemini provides a chat-completion provider backed by the Google
// Generative Language (Gemini) generateContent API.
//
// Gemini's request shape differs from chat-messages providers: the
// conversation, including the system instruction, is flattened into a single
// prompt string with role-prefixed lines.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/webrecall/webrecall-go/pkg/llm"
)

// Client implements llm.Provider using the Gemini generateContent endpoint.
type Client struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

// Config is the configuration for the Gemini chat client.
// APIKey: Generative Language API key (required)
// Model: model name, defaults to "gemini-1.5-flash"
// BaseURL: API base URL, defaults to the official endpoint
// HTTPClient: custom HTTP client, defaults to a 120-second timeout
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new Gemini chat client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	return &Client{
		client:  client,
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Generate generates text from a single prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	messages := []llm.Message{
		{Role: "user", Content: prompt},
	}
	return c.GenerateWithMessages(ctx, messages, opts...)
}

// GenerateWithMessages generates text from a conversation history by
// flattening it into a single role-prefixed prompt.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": FlattenMessages(messages)},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     options.Temperature,
			"maxOutputTokens": options.MaxTokens,
			"topP":            options.TopP,
		},
	}
	if len(options.Stop) > 0 {
		reqBody["generationConfig"].(map[string]interface{})["stopSequences"] = options.Stop
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &llm.ProviderError{Provider: "gemini", Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &llm.ProviderError{Provider: "gemini", Status: resp.StatusCode, Message: string(body)}
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", &llm.ProviderError{Provider: "gemini", Message: "decode response: " + err.Error()}
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", &llm.ProviderError{Provider: "gemini", Message: "no candidates returned"}
	}
	return response.Candidates[0].Content.Parts[0].Text, nil
}

// FlattenMessages turns a conversation into a single prompt string with
// role-prefixed lines, ending with an open "Assistant:" turn.
func FlattenMessages(messages []llm.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			b.WriteString("System: ")
		case "assistant":
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}

// Close is a no-op, retained for interface compatibility.
func (c *Client) Close() error { return nil }
