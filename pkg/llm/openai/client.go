// Package openai provides an OpenAI-backed chat-completion provider.
package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/webrecall/webrecall-go/pkg/llm"
)

// Client implements llm.Provider using the OpenAI chat completions API.
type Client struct {
	client *openai.Client
	model  string
}

// Config is the configuration for the OpenAI chat client.
// APIKey: OpenAI API key (required)
// Model: model name, defaults to "gpt-4o-mini"
// BaseURL: API base URL, defaults to the OpenAI official address
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a new OpenAI chat client.
//
// Returns llm.ErrMissingAPIKey when no key is configured.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Generate generates text from a single prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	messages := []llm.Message{
		{Role: "user", Content: prompt},
	}
	return c.GenerateWithMessages(ctx, messages, opts...)
}

// GenerateWithMessages generates text from a conversation history using the
// chat-messages array shape the OpenAI API expects.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		TopP:        float32(options.TopP),
		Stop:        options.Stop,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		// Preserve the SDK's error text: callers map substrings like
		// "quota" or "rate limit" to user guidance.
		return "", &llm.ProviderError{Provider: "openai", Message: err.Error()}
	}

	if len(resp.Choices) == 0 {
		return "", &llm.ProviderError{Provider: "openai", Message: "no choices returned"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the OpenAI SDK client needs no explicit shutdown.
func (c *Client) Close() error { return nil }
