package core_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrecall/webrecall-go/pkg/core"
	"github.com/webrecall/webrecall-go/pkg/model"
)

func newTestClient(t *testing.T, retrieval core.RetrievalConfig) *core.Client {
	t.Helper()
	client, err := core.NewClient(&core.Config{
		Embedder:  core.EmbedderConfig{Provider: "local"},
		Store:     core.StoreConfig{Provider: "memory"},
		Retrieval: retrieval,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func longContent(wordCount int) string {
	parts := make([]string, wordCount)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

func TestCaptureAttachesEmbedding(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{})
	ctx := context.Background()

	mem, err := client.Capture(ctx, model.Page{
		URL:     "https://go.dev/blog/context",
		Title:   "Context",
		Content: "request scoped cancellation",
	})
	require.NoError(t, err)

	assert.NotZero(t, mem.ID)
	assert.Equal(t, "go.dev", mem.Domain)
	assert.NotEmpty(t, mem.Embedding)
	assert.Equal(t, "local-hash", mem.EmbeddingModel)
	// Short content is not chunked.
	assert.Empty(t, mem.Chunks)
}

func TestCaptureRejectsEmptyURL(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{})

	_, err := client.Capture(context.Background(), model.Page{Title: "no url"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCaptureChunksLongContent(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{})
	ctx := context.Background()

	mem, err := client.Capture(ctx, model.Page{
		URL:     "https://example.com/long",
		Title:   "Long Article",
		Content: longContent(2000),
	})
	require.NoError(t, err)

	// Capped at the per-memory maximum.
	require.Len(t, mem.Chunks, 5)
	for i, chunk := range mem.Chunks {
		assert.Equal(t, fmt.Sprintf("chunk_%d", i), chunk.ID)
		assert.NotEmpty(t, chunk.Embedding)
	}
}

func TestCaptureSizeCeilingStripsVectors(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{MaxMemoryBytes: 2048})
	ctx := context.Background()

	mem, err := client.Capture(ctx, model.Page{
		URL:     "https://example.com/huge",
		Title:   "Huge Page",
		Content: longContent(1500),
	})
	require.NoError(t, err)

	assert.Empty(t, mem.Embedding)
	assert.Empty(t, mem.Chunks)
	assert.Empty(t, mem.EmbeddingModel)
	// Everything else survives.
	assert.Equal(t, "Huge Page", mem.Title)
	assert.NotEmpty(t, mem.Content)

	stored, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Empty(t, stored[0].Embedding)
}

func TestCaptureDuplicateSuppression(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{})
	ctx := context.Background()
	page := model.Page{URL: "https://example.com/same", Title: "Same", Content: "text"}

	_, err := client.Capture(ctx, page)
	require.NoError(t, err)

	_, err = client.Capture(ctx, page)
	assert.ErrorIs(t, err, core.ErrDuplicateMemory)

	// Force bypasses the window.
	_, err = client.Capture(ctx, page, core.WithForce())
	assert.NoError(t, err)
}

func TestCaptureEvictsBeyondCount(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{MaxStoredMemories: 3})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Capture(ctx, model.Page{
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Title:   fmt.Sprintf("Page %d", i),
			Content: "text",
		})
		require.NoError(t, err)
	}

	memories, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, memories, 3)
	// Oldest evicted first: pages 2, 3, 4 remain.
	assert.Equal(t, "Page 4", memories[0].Title)
	assert.Equal(t, "Page 2", memories[2].Title)
}

func TestCaptureEvictsByAge(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{MaxMemoryAge: 10 * time.Millisecond})
	ctx := context.Background()

	_, err := client.Capture(ctx, model.Page{URL: "https://example.com/old", Title: "Old", Content: "text"})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = client.Capture(ctx, model.Page{URL: "https://example.com/new", Title: "New", Content: "text"})
	require.NoError(t, err)

	memories, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "New", memories[0].Title)
}

func TestSearchFindsCapturedPage(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{})
	ctx := context.Background()

	_, err := client.Capture(ctx, model.Page{
		URL:     "https://postgres.example.com/vacuum",
		Title:   "Postgres Vacuum Guide",
		Content: "autovacuum tuning thresholds and bloat management in postgres",
	})
	require.NoError(t, err)

	results, err := client.Search(ctx, "autovacuum tuning thresholds and bloat management in postgres")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Postgres Vacuum Guide", results[0].Memory.Title)
}

func TestSearchLexicalFallbackWithoutVectors(t *testing.T) {
	// A tiny size ceiling strips every vector, leaving only the lexical path.
	client := newTestClient(t, core.RetrievalConfig{MaxMemoryBytes: 1})
	ctx := context.Background()

	_, err := client.Capture(ctx, model.Page{
		URL:     "https://example.com/rust",
		Title:   "Rust Ownership",
		Content: "borrow checker and lifetimes",
	})
	require.NoError(t, err)

	results, err := client.Search(ctx, "rust ownership")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Lexical)
	assert.Equal(t, "Rust Ownership", results[0].Memory.Title)
}

func TestSearchEmptyStore(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{})
	results, err := client.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAskSendsRewrittenQueryToEnhancer(t *testing.T) {
	// The LLM rewrites the question into a search query.
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"content": "docker networking guide"},
		})
	}))
	defer llmServer.Close()

	gotQuery := make(chan string, 1)
	enhancerServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			return
		}
		var body struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotQuery <- body.Query
		json.NewEncoder(w).Encode(map[string]interface{}{
			"enhancedResponse": "Here is what you read about docker networking.",
			"agentInsights": map[string]interface{}{
				"memoriesAnalyzed": 1,
				"averageRelevance": 0.9,
			},
		})
	}))
	defer enhancerServer.Close()

	client, err := core.NewClient(&core.Config{
		Embedder: core.EmbedderConfig{Provider: "local"},
		Store:    core.StoreConfig{Provider: "memory"},
		LLM:      core.LLMConfig{Provider: "ollama", BaseURL: llmServer.URL},
		Enhancer: core.EnhancerConfig{BaseURL: enhancerServer.URL},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	_, err = client.Capture(ctx, model.Page{
		URL:     "https://docs.docker.com/network",
		Title:   "Docker Networking",
		Content: "docker networking guide covering bridge and overlay networks",
	})
	require.NoError(t, err)

	result, err := client.Ask(ctx, "How does docker networking actually work?")
	require.NoError(t, err)
	assert.True(t, result.Enhanced)
	assert.Equal(t, "Here is what you read about docker networking.", result.Answer)

	select {
	case query := <-gotQuery:
		// The rewritten form, not the raw question, goes to the service.
		assert.Equal(t, "docker networking guide", query)
	case <-time.After(time.Second):
		t.Fatal("enhancer was never called")
	}
}

func TestAskWithoutLLM(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{})
	_, err := client.Ask(context.Background(), "what did I read?")
	assert.ErrorIs(t, err, core.ErrNoLLM)
}

func TestClearAndUsage(t *testing.T) {
	client := newTestClient(t, core.RetrievalConfig{})
	ctx := context.Background()

	_, err := client.Capture(ctx, model.Page{URL: "https://example.com/x", Title: "X", Content: "text"})
	require.NoError(t, err)

	used, quota, err := client.Usage(ctx)
	require.NoError(t, err)
	assert.Greater(t, used, int64(0))
	assert.Greater(t, quota, int64(0))

	require.NoError(t, client.Clear(ctx))
	memories, err := client.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestUnsupportedProviders(t *testing.T) {
	_, err := core.NewClient(&core.Config{
		Embedder: core.EmbedderConfig{Provider: "nonsense"},
	})
	assert.ErrorIs(t, err, core.ErrUnsupportedProvider)

	_, err = core.NewClient(&core.Config{
		Store: core.StoreConfig{Provider: "nonsense"},
	})
	assert.ErrorIs(t, err, core.ErrUnsupportedProvider)

	_, err = core.NewClient(&core.Config{
		LLM: core.LLMConfig{Provider: "nonsense"},
	})
	assert.ErrorIs(t, err, core.ErrUnsupportedProvider)
}

func TestNilConfig(t *testing.T) {
	_, err := core.NewClient(nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestAsyncClient(t *testing.T) {
	client, err := core.NewAsyncClient(&core.Config{
		Embedder: core.EmbedderConfig{Provider: "local"},
		Store:    core.StoreConfig{Provider: "memory"},
	})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	captureResult := <-client.CaptureAsync(ctx, model.Page{
		URL:     "https://example.com/async",
		Title:   "Async Page",
		Content: "captured in the background",
	})
	require.NoError(t, captureResult.Error)
	assert.Equal(t, "Async Page", captureResult.Memory.Title)

	searchResult := <-client.SearchAsync(ctx, "captured in the background")
	require.NoError(t, searchResult.Error)
	assert.NotEmpty(t, searchResult.Results)

	client.Wait()
}
