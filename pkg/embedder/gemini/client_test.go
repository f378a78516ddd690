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

	"github.com/webrecall/webrecall-go/pkg/embedder"
	"github.com/webrecall/webrecall-go/pkg/embedder/gemini"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := gemini.NewClient(&gemini.Config{})
	assert.ErrorIs(t, err, embedder.ErrMissingAPIKey)
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "embedContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "models/text-embedding-004", body["model"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": map[string]interface{}{
				"values": []float64{0.1, 0.2, 0.3},
			},
		})
	}))
	defer server.Close()

	client, err := gemini.NewClient(&gemini.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	vec, err := client.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
}

func TestEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := gemini.NewClient(&gemini.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "hello")
	var provErr *embedder.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusTooManyRequests, provErr.Status)
	assert.Contains(t, provErr.Message, "quota exceeded")
}

func TestEmbedEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	defer server.Close()

	client, err := gemini.NewClient(&gemini.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "hello")
	var provErr *embedder.ProviderError
	require.True(t, errors.As(err, &provErr))
}

func TestDefaults(t *testing.T) {
	client, err := gemini.NewClient(&gemini.Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 768, client.Dimensions())
	assert.Equal(t, "text-embedding-004", client.Model())
}
