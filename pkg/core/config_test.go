package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrecall/webrecall-go/pkg/core"
)

func TestDefaultRetrievalConfig(t *testing.T) {
	def := core.DefaultRetrievalConfig()

	assert.Equal(t, 0.1, def.DocThreshold)
	assert.Equal(t, 0.15, def.ChunkThreshold)
	assert.Equal(t, 1000, def.ChunkMinChars)
	assert.Equal(t, 200, def.ChunkMaxTokens)
	assert.Equal(t, 20, def.ChunkOverlapWords)
	assert.Equal(t, 5, def.MaxChunksPerMemory)
	assert.Equal(t, 150*1024, def.MaxMemoryBytes)
	assert.Equal(t, 100, def.MaxStoredMemories)
	assert.Equal(t, 30*24*time.Hour, def.MaxMemoryAge)
	assert.Equal(t, time.Hour, def.DuplicateWindow)
	assert.Equal(t, 5, def.ContextMemories)
	assert.Equal(t, 6, def.HistoryTurns)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_PROVIDER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/recall-test.db")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_PROVIDER", "local")
	t.Setenv("ENHANCER_URL", "http://localhost:8100")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", config.Store.Provider)
	assert.Equal(t, "/tmp/recall-test.db", config.Store.Config["db_path"])
	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, "sk-test", config.LLM.APIKey)
	assert.Equal(t, "local", config.Embedder.Provider)
	assert.Equal(t, "http://localhost:8100", config.Enhancer.BaseURL)
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("STORE_PROVIDER", "")
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("LLM_PROVIDER", "")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "memory", config.Store.Provider)
	assert.Equal(t, "local", config.Embedder.Provider)
	assert.Empty(t, config.LLM.Provider)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"llm": {"provider": "anthropic", "api_key": "key", "model": "claude-3-5-sonnet-20240620"},
		"embedder": {"provider": "local"},
		"store": {"provider": "memory"},
		"retrieval": {"max_stored_memories": 50}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := core.LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", config.LLM.Provider)
	assert.Equal(t, "local", config.Embedder.Provider)
	assert.Equal(t, 50, config.Retrieval.MaxStoredMemories)
}

func TestLoadConfigFromFileMissing(t *testing.T) {
	_, err := core.LoadConfigFromFile("/nonexistent/config.json")
	assert.Error(t, err)
}
