package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrecall/webrecall-go/pkg/llm"
	"github.com/webrecall/webrecall-go/pkg/llm/gemini"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := gemini.NewClient(&gemini.Config{})
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}

func TestFlattenMessages(t *testing.T) {
	messages := []llm.Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello!"},
		{Role: "user", Content: "What time is it?"},
	}

	flat := gemini.FlattenMessages(messages)
	assert.Equal(t,
		"System: You are helpful.\n\nUser: Hi\n\nAssistant: Hello!\n\nUser: What time is it?\n\nAssistant:",
		flat)
}

func TestGenerateWithMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig map[string]interface{} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		assert.Contains(t, body.Contents[0].Parts[0].Text, "User: ping")
		assert.NotNil(t, body.GenerationConfig["temperature"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{{"text": "pong"}},
					},
				},
			},
		})
	}))
	defer server.Close()

	client, err := gemini.NewClient(&gemini.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	answer, err := client.Generate(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", answer)
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid API key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := gemini.NewClient(&gemini.Config{
		APIKey:  "bad-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "ping")
	var provErr *llm.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusUnauthorized, provErr.Status)
	assert.Contains(t, provErr.Message, "API key")
}
