package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a WebRecall client.
//
// It includes settings for:
//   - LLM provider (for chat answers and query rewriting, optional)
//   - Embedding provider (for vector generation)
//   - Store (for memory persistence)
//   - Enhancer (optional external agent service)
//   - Retrieval (chunking, thresholds, and retention tuning)
//
// Example:
//
//	config := &core.Config{
//	    LLM: core.LLMConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	        Model:    "gpt-4o-mini",
//	    },
//	    Embedder: core.EmbedderConfig{
//	        Provider: "local",
//	    },
//	    Store: core.StoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./webrecall.db",
//	        },
//	    },
//	}
type Config struct {
	// LLM contains LLM provider configuration. An empty provider disables
	// chat features; capture and search still work.
	LLM LLMConfig `json:"llm"`

	// Embedder contains embedding provider configuration. An empty
	// provider selects the local hashed embedder.
	Embedder EmbedderConfig `json:"embedder"`

	// Store contains persistence configuration. An empty provider selects
	// the in-process store.
	Store StoreConfig `json:"store"`

	// Enhancer contains the optional agent service configuration.
	Enhancer EnhancerConfig `json:"enhancer,omitempty"`

	// Retrieval tunes chunking, search thresholds, and retention. Zero
	// values select the defaults.
	Retrieval RetrievalConfig `json:"retrieval,omitempty"`
}

// LLMConfig contains configuration for the LLM provider.
//
// Supported providers: openai, gemini, anthropic, ollama
type LLMConfig struct {
	// Provider is the LLM provider name (openai, gemini, anthropic, ollama).
	Provider string `json:"provider"`

	// APIKey is the API key for the LLM provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use (e.g., "gpt-4o-mini", "gemini-1.5-flash").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: local, openai, gemini, huggingface
type EmbedderConfig struct {
	// Provider is the embedding provider name (local, openai, gemini, huggingface).
	Provider string `json:"provider"`

	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name (optional, uses provider default if empty).
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the dimension of the embedding vectors (optional).
	Dimensions int `json:"dimensions,omitempty"`
}

// StoreConfig contains configuration for the persistence backend.
//
// Supported providers: memory, sqlite, postgres, mysql
type StoreConfig struct {
	// Provider is the store provider name (memory, sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, table_name
	// For PostgreSQL: dsn, table_name
	// For MySQL: host, port, user, password, db_name, table_name
	// For memory: quota
	Config map[string]interface{} `json:"config,omitempty"`
}

// EnhancerConfig contains configuration for the optional agent service.
type EnhancerConfig struct {
	// BaseURL is the enhancer service URL. Empty disables enhancement.
	BaseURL string `json:"base_url,omitempty"`
}

// RetrievalConfig tunes chunking, search, and retention behavior. Zero
// values select the documented defaults.
type RetrievalConfig struct {
	// DocThreshold is the minimum document similarity for search results.
	// Default: 0.1
	DocThreshold float64 `json:"doc_threshold,omitempty"`

	// ChunkThreshold is the minimum chunk similarity for matching
	// passages. Default: 0.15
	ChunkThreshold float64 `json:"chunk_threshold,omitempty"`

	// ChunkMinChars is the content length at which capture starts
	// chunking. Default: 1000
	ChunkMinChars int `json:"chunk_min_chars,omitempty"`

	// ChunkMaxTokens is the estimated token budget per chunk. Default: 200
	ChunkMaxTokens int `json:"chunk_max_tokens,omitempty"`

	// ChunkOverlapWords is the word overlap between adjacent chunks.
	// Default: 20
	ChunkOverlapWords int `json:"chunk_overlap_words,omitempty"`

	// MaxChunksPerMemory caps how many chunks are embedded per capture.
	// Default: 5
	MaxChunksPerMemory int `json:"max_chunks_per_memory,omitempty"`

	// MaxMemoryBytes is the serialized size ceiling for a stored memory.
	// Memories over the ceiling are stored without vectors. Default: 150KB
	MaxMemoryBytes int `json:"max_memory_bytes,omitempty"`

	// MaxStoredMemories is the retention cap; oldest memories beyond it
	// are evicted. Default: 100
	MaxStoredMemories int `json:"max_stored_memories,omitempty"`

	// MaxMemoryAge evicts memories older than this. Default: 30 days
	MaxMemoryAge time.Duration `json:"max_memory_age,omitempty"`

	// DuplicateWindow suppresses re-capturing the same URL within this
	// window. Default: 1 hour
	DuplicateWindow time.Duration `json:"duplicate_window,omitempty"`

	// ContextMemories caps how many retrieved memories feed the chat
	// context. Default: 5
	ContextMemories int `json:"context_memories,omitempty"`

	// HistoryTurns is the chat session window in exchanges. Default: 6
	HistoryTurns int `json:"history_turns,omitempty"`
}

// DefaultRetrievalConfig returns the retrieval tuning defaults.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		DocThreshold:       0.1,
		ChunkThreshold:     0.15,
		ChunkMinChars:      1000,
		ChunkMaxTokens:     200,
		ChunkOverlapWords:  20,
		MaxChunksPerMemory: 5,
		MaxMemoryBytes:     150 * 1024,
		MaxStoredMemories:  100,
		MaxMemoryAge:       30 * 24 * time.Hour,
		DuplicateWindow:    time.Hour,
		ContextMemories:    5,
		HistoryTurns:       6,
	}
}

// withDefaults fills zero fields from DefaultRetrievalConfig.
func (rc RetrievalConfig) withDefaults() RetrievalConfig {
	def := DefaultRetrievalConfig()
	if rc.DocThreshold == 0 {
		rc.DocThreshold = def.DocThreshold
	}
	if rc.ChunkThreshold == 0 {
		rc.ChunkThreshold = def.ChunkThreshold
	}
	if rc.ChunkMinChars == 0 {
		rc.ChunkMinChars = def.ChunkMinChars
	}
	if rc.ChunkMaxTokens == 0 {
		rc.ChunkMaxTokens = def.ChunkMaxTokens
	}
	if rc.ChunkOverlapWords == 0 {
		rc.ChunkOverlapWords = def.ChunkOverlapWords
	}
	if rc.MaxChunksPerMemory == 0 {
		rc.MaxChunksPerMemory = def.MaxChunksPerMemory
	}
	if rc.MaxMemoryBytes == 0 {
		rc.MaxMemoryBytes = def.MaxMemoryBytes
	}
	if rc.MaxStoredMemories == 0 {
		rc.MaxStoredMemories = def.MaxStoredMemories
	}
	if rc.MaxMemoryAge == 0 {
		rc.MaxMemoryAge = def.MaxMemoryAge
	}
	if rc.DuplicateWindow == 0 {
		rc.DuplicateWindow = def.DuplicateWindow
	}
	if rc.ContextMemories == 0 {
		rc.ContextMemories = def.ContextMemories
	}
	if rc.HistoryTurns == 0 {
		rc.HistoryTurns = def.HistoryTurns
	}
	return rc
}

// FindEnvFile searches for a .env file starting from the current directory
// and walking up to 5 parent directories. Returns the path and whether one
// was found.
func FindEnvFile() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 5; i++ {
		for _, name := range []string{".env", ".env.example"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for a .env or .env.example file (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - STORE_PROVIDER (memory, sqlite, postgres, mysql)
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_DSN, POSTGRES_TABLE
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE, MYSQL_TABLE
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL, EMBEDDING_DIMS
//   - ENHANCER_URL
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("STORE_PROVIDER", "memory")

	storeConfig := make(map[string]interface{})
	switch provider {
	case "sqlite":
		storeConfig = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./webrecall.db"),
			"table_name": getEnvOrDefault("SQLITE_TABLE", "browsing_memories"),
		}
	case "postgres":
		storeConfig = map[string]interface{}{
			"dsn":        os.Getenv("POSTGRES_DSN"),
			"table_name": getEnvOrDefault("POSTGRES_TABLE", "browsing_memories"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		storeConfig = map[string]interface{}{
			"host":       getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":       port,
			"user":       getEnvOrDefault("MYSQL_USER", "root"),
			"password":   os.Getenv("MYSQL_PASSWORD"),
			"db_name":    getEnvOrDefault("MYSQL_DATABASE", "webrecall"),
			"table_name": getEnvOrDefault("MYSQL_TABLE", "browsing_memories"),
		}
	}

	dims, _ := strconv.Atoi(os.Getenv("EMBEDDING_DIMS"))

	config := &Config{
		LLM: LLMConfig{
			Provider: os.Getenv("LLM_PROVIDER"),
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    os.Getenv("LLM_MODEL"),
			BaseURL:  os.Getenv("LLM_BASE_URL"),
		},
		Embedder: EmbedderConfig{
			Provider:   getEnvOrDefault("EMBEDDING_PROVIDER", "local"),
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      os.Getenv("EMBEDDING_MODEL"),
			BaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
			Dimensions: dims,
		},
		Store: StoreConfig{
			Provider: provider,
			Config:   storeConfig,
		},
		Enhancer: EnhancerConfig{
			BaseURL: os.Getenv("ENHANCER_URL"),
		},
	}
	return config, nil
}

// LoadConfigFromFile loads configuration from a JSON file.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadConfigFromFile: %w", err)
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("LoadConfigFromFile: %w", err)
	}
	return &config, nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
