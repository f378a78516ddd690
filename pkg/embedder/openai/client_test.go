package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrecall/webrecall-go/pkg/embedder"
	"github.com/webrecall/webrecall-go/pkg/embedder/openai"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := openai.NewClient(&openai.Config{})
	assert.ErrorIs(t, err, embedder.ErrMissingAPIKey)
}

func TestEmbedSendsConfiguredModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "text-embedding-3-large", body.Model)
		assert.Equal(t, []string{"hello"}, body.Input)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "index": 0, "embedding": []float64{0.1, 0.2}},
			},
		})
	}))
	defer server.Close()

	client, err := openai.NewClient(&openai.Config{
		APIKey:  "test-key",
		Model:   "text-embedding-3-large",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	vec, err := client.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, vec[0], 1e-6)
	assert.InDelta(t, 0.2, vec[1], 1e-6)
	assert.Equal(t, "text-embedding-3-large", client.Model())
}

func TestDefaults(t *testing.T) {
	client, err := openai.NewClient(&openai.Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 1536, client.Dimensions())
	assert.Equal(t, "text-embedding-3-small", client.Model())
}
