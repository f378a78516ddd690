package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/charmbracelet/log"

	"github.com/webrecall/webrecall-go/pkg/chunker"
	"github.com/webrecall/webrecall-go/pkg/embedder"
	embelocal "github.com/webrecall/webrecall-go/pkg/embedder/local"
	embgemini "github.com/webrecall/webrecall-go/pkg/embedder/gemini"
	embhf "github.com/webrecall/webrecall-go/pkg/embedder/huggingface"
	embopenai "github.com/webrecall/webrecall-go/pkg/embedder/openai"
	"github.com/webrecall/webrecall-go/pkg/llm"
	llmanthropic "github.com/webrecall/webrecall-go/pkg/llm/anthropic"
	llmgemini "github.com/webrecall/webrecall-go/pkg/llm/gemini"
	llmollama "github.com/webrecall/webrecall-go/pkg/llm/ollama"
	llmopenai "github.com/webrecall/webrecall-go/pkg/llm/openai"
	"github.com/webrecall/webrecall-go/pkg/model"
	"github.com/webrecall/webrecall-go/pkg/rag"
	"github.com/webrecall/webrecall-go/pkg/rag/enhancer"
	"github.com/webrecall/webrecall-go/pkg/rag/rewrite"
	"github.com/webrecall/webrecall-go/pkg/search"
	"github.com/webrecall/webrecall-go/pkg/store"
	storememory "github.com/webrecall/webrecall-go/pkg/store/memory"
	storemysql "github.com/webrecall/webrecall-go/pkg/store/mysql"
	storepostgres "github.com/webrecall/webrecall-go/pkg/store/postgres"
	storesqlite "github.com/webrecall/webrecall-go/pkg/store/sqlite"
)

// Client is the main WebRecall client.
//
// It orchestrates capture (chunk, embed, persist, evict), semantic search
// with lexical fallback, and retrieval-augmented chat over the stored
// browsing memories.
//
// Example:
//
//	client, err := core.NewClient(&core.Config{
//	    Embedder: core.EmbedderConfig{Provider: "local"},
//	    Store:    core.StoreConfig{Provider: "memory"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
type Client struct {
	cfg       *Config
	retrieval RetrievalConfig

	store    store.Store
	embedder embedder.Provider
	llm      llm.Provider
	enhancer *enhancer.Client
	rewriter *rewrite.Rewriter
	session  *rag.Session

	idNode *snowflake.Node
	logger *log.Logger
}

// NewClient creates a new WebRecall client from the given configuration.
//
// An empty embedder provider selects the local hashed embedder; an empty
// store provider selects the in-process store; an empty LLM provider
// disables chat features. Unknown provider names fail with
// ErrUnsupportedProvider.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, NewRecallError("NewClient", ErrInvalidConfig)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "webrecall"})

	st, err := initStore(&cfg.Store)
	if err != nil {
		return nil, NewRecallError("NewClient", err)
	}

	emb, err := initEmbedder(&cfg.Embedder)
	if err != nil {
		st.Close()
		return nil, NewRecallError("NewClient", err)
	}

	llmProvider, err := initLLM(&cfg.LLM)
	if err != nil {
		st.Close()
		emb.Close()
		return nil, NewRecallError("NewClient", err)
	}

	idNode, err := snowflake.NewNode(1)
	if err != nil {
		st.Close()
		emb.Close()
		if llmProvider != nil {
			llmProvider.Close()
		}
		return nil, NewRecallError("NewClient", err)
	}

	retrieval := cfg.Retrieval.withDefaults()

	c := &Client{
		cfg:       cfg,
		retrieval: retrieval,
		store:     st,
		embedder:  emb,
		llm:       llmProvider,
		enhancer:  enhancer.NewClient(cfg.Enhancer.BaseURL, logger),
		rewriter:  rewrite.NewRewriter(llmProvider),
		session:   rag.NewSession(retrieval.HistoryTurns),
		idNode:    idNode,
		logger:    logger,
	}

	// Cold agent services take a while to spin up; probe early so the
	// first Ask doesn't pay the full startup cost.
	if c.enhancer.Enabled() {
		go c.enhancer.Warm(context.Background())
	}

	return c, nil
}

// initStore creates the persistence backend based on configuration.
func initStore(cfg *StoreConfig) (store.Store, error) {
	switch cfg.Provider {
	case "", "memory":
		quota := int64(getInt(cfg.Config, "quota", 0))
		return storememory.NewStore(quota), nil
	case "sqlite":
		return storesqlite.NewClient(&storesqlite.Config{
			DBPath:    getString(cfg.Config, "db_path", "./webrecall.db"),
			TableName: getString(cfg.Config, "table_name", ""),
		})
	case "postgres":
		return storepostgres.NewClient(&storepostgres.Config{
			DSN:       getString(cfg.Config, "dsn", ""),
			TableName: getString(cfg.Config, "table_name", ""),
		})
	case "mysql":
		return storemysql.NewClient(&storemysql.Config{
			Host:      getString(cfg.Config, "host", "127.0.0.1"),
			Port:      getInt(cfg.Config, "port", 3306),
			User:      getString(cfg.Config, "user", "root"),
			Password:  getString(cfg.Config, "password", ""),
			Database:  getString(cfg.Config, "db_name", "webrecall"),
			TableName: getString(cfg.Config, "table_name", ""),
		})
	default:
		return nil, fmt.Errorf("%w: store %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// initEmbedder creates the embedding provider based on configuration.
func initEmbedder(cfg *EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "", "local":
		return embelocal.New(cfg.Dimensions), nil
	case "openai":
		return embopenai.NewClient(&embopenai.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	case "gemini":
		return embgemini.NewClient(&embgemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "huggingface":
		return embhf.NewClient(&embhf.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("%w: embedder %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// initLLM creates the chat provider based on configuration. An empty
// provider name returns nil, disabling chat features.
func initLLM(cfg *LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return llmopenai.NewClient(&llmopenai.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "gemini":
		return llmgemini.NewClient(&llmgemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "anthropic":
		return llmanthropic.NewClient(&llmanthropic.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "ollama":
		return llmollama.NewClient(&llmollama.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("%w: llm %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// Capture saves a page as a browsing memory.
//
// The save path: duplicate-URL suppression within the configured window
// (bypass via WithForce), chunking for long content, sequential embedding
// of the memory and its chunks, a serialized-size ceiling that strips
// vectors from oversized memories, insertion, and finally age- and
// count-based eviction.
//
// Embedding failure never aborts the save: a memory whose embedding failed
// is stored without vectors and remains reachable via lexical search.
func (c *Client) Capture(ctx context.Context, page model.Page, opts ...CaptureOption) (*model.Memory, error) {
	options := &CaptureOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if strings.TrimSpace(page.URL) == "" {
		return nil, NewRecallError("Capture", fmt.Errorf("%w: empty url", ErrInvalidInput))
	}

	existing, err := c.store.List(ctx)
	if err != nil {
		return nil, NewRecallError("Capture", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}

	if !options.Force {
		cutoff := time.Now().Add(-c.retrieval.DuplicateWindow)
		for i := range existing {
			if existing[i].URL == page.URL && existing[i].CreatedAt.After(cutoff) {
				return nil, NewRecallError("Capture", ErrDuplicateMemory)
			}
		}
	}

	mem := model.Memory{
		ID:           c.idNode.Generate().Int64(),
		URL:          page.URL,
		Title:        page.Title,
		Content:      page.Content,
		FullContent:  page.FullContent,
		SelectedText: options.SelectedText,
		Domain:       deriveDomain(page.URL),
		Tags:         options.Tags,
		Favicon:      options.Favicon,
		CreatedAt:    time.Now(),
	}
	if mem.SelectedText == "" {
		mem.SelectedText = page.SelectedText
	}
	if mem.Favicon == "" {
		mem.Favicon = page.Favicon
	}

	c.attachVectors(ctx, &mem)

	if c.serializedSize(&mem) > c.retrieval.MaxMemoryBytes {
		c.logger.Warn("memory over size ceiling, storing without vectors",
			"url", mem.URL, "ceiling", c.retrieval.MaxMemoryBytes)
		mem.Embedding = nil
		mem.Chunks = nil
		mem.EmbeddingModel = ""
	}

	if err := c.store.Insert(ctx, &mem); err != nil {
		return nil, NewRecallError("Capture", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}

	if err := c.evict(ctx); err != nil {
		c.logger.Warn("eviction failed", "error", err)
	}

	return &mem, nil
}

// attachVectors embeds the memory and its chunks. All failures degrade: a
// failed document embedding stores the memory without vectors, a failed
// chunk embedding drops that chunk.
func (c *Client) attachVectors(ctx context.Context, mem *model.Memory) {
	docText := strings.TrimSpace(mem.Title + "\n" + mem.Content)
	vec, err := c.embedder.Embed(ctx, docText)
	if err != nil {
		c.logger.Warn("embedding failed, storing without vectors",
			"url", mem.URL, "error", err)
		return
	}
	mem.Embedding = vec
	mem.EmbeddingModel = c.embedder.Model()

	if len(mem.Content) < c.retrieval.ChunkMinChars {
		return
	}

	chunks := chunker.Chunk(mem.Content, c.retrieval.ChunkMaxTokens, c.retrieval.ChunkOverlapWords)
	if len(chunks) > c.retrieval.MaxChunksPerMemory {
		chunks = chunks[:c.retrieval.MaxChunksPerMemory]
	}

	// Chunks are embedded one at a time to bound concurrent outbound
	// requests; a chunk whose embedding fails is dropped so every stored
	// chunk carries a usable vector.
	kept := chunks[:0]
	for _, chunk := range chunks {
		cvec, err := c.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			c.logger.Warn("chunk embedding failed, dropping chunk",
				"url", mem.URL, "chunk", chunk.ID, "error", err)
			continue
		}
		chunk.Embedding = cvec
		kept = append(kept, chunk)
	}
	mem.Chunks = kept
}

func (c *Client) serializedSize(mem *model.Memory) int {
	data, err := json.Marshal(mem)
	if err != nil {
		return 0
	}
	return len(data)
}

// evict enforces the retention policy: drop memories older than
// MaxMemoryAge, then drop the oldest beyond MaxStoredMemories.
func (c *Client) evict(ctx context.Context) error {
	memories, err := c.store.List(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-c.retrieval.MaxMemoryAge)
	kept := memories[:0]
	for i := range memories {
		if memories[i].CreatedAt.After(cutoff) {
			kept = append(kept, memories[i])
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt.After(kept[j].CreatedAt)
	})
	if len(kept) > c.retrieval.MaxStoredMemories {
		kept = kept[:c.retrieval.MaxStoredMemories]
	}

	if len(kept) == len(memories) {
		return nil
	}
	return c.store.Replace(ctx, kept)
}

// Search finds memories relevant to the query.
//
// Semantic search runs first; when no stored memory has an embedding, or
// semantic search yields nothing while a lexical pass matches, the lexical
// results are returned transparently (flagged via SearchResult.Lexical).
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) ([]model.SearchResult, error) {
	options := &SearchOptions{}
	for _, opt := range opts {
		opt(options)
	}

	memories, err := c.store.List(ctx)
	if err != nil {
		return nil, NewRecallError("Search", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	if len(memories) == 0 {
		return nil, nil
	}

	docThreshold := c.retrieval.DocThreshold
	if options.MinScore > 0 {
		docThreshold = options.MinScore
	}

	if anyEmbedded(memories) {
		results := search.Semantic(ctx, c.embedder, memories, query, search.Options{
			Limit:          options.Limit,
			DocThreshold:   docThreshold,
			ChunkThreshold: c.retrieval.ChunkThreshold,
		})
		if len(results) > 0 {
			return results, nil
		}
	}

	return search.Lexical(memories, query, options.Limit), nil
}

func anyEmbedded(memories []model.Memory) bool {
	for i := range memories {
		if len(memories[i].Embedding) > 0 {
			return true
		}
	}
	return false
}

// Ask answers a natural-language question using the stored memories.
//
// The pipeline: rewrite the question for retrieval, search, try the
// enhancer service (silently falling back on any failure), then a direct
// LLM completion with assembled context and session history. The exchange
// is appended to the session window on success.
func (c *Client) Ask(ctx context.Context, question string) (*model.AskResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, NewRecallError("Ask", fmt.Errorf("%w: empty question", ErrInvalidInput))
	}
	if c.llm == nil {
		return nil, NewRecallError("Ask", ErrNoLLM)
	}

	searchQuery := c.rewriter.Rewrite(ctx, question)

	results, err := c.Search(ctx, searchQuery)
	if err != nil {
		c.logger.Warn("search failed during ask, continuing without context", "error", err)
		results = nil
	}

	if c.enhancer.Enabled() && len(results) > 0 {
		answer, insights, err := c.enhancer.Enhance(ctx, searchQuery, results, c.session.Recent(3))
		if err == nil {
			c.session.Append(question, answer)
			return &model.AskResult{
				Answer:           answer,
				Sources:          results,
				Enhanced:         true,
				MemoriesAnalyzed: insights.MemoriesAnalyzed,
				AverageRelevance: insights.AverageRelevance,
			}, nil
		}
	}

	contextBlock := rag.BuildContext(results, c.retrieval.ContextMemories)
	if contextBlock == "" {
		if memories, err := c.store.List(ctx); err == nil {
			contextBlock = rag.BuildRecentContext(memories, c.retrieval.ContextMemories)
		}
	}

	messages := rag.BuildMessages(question, contextBlock, c.session.Messages())
	answer, err := c.llm.GenerateWithMessages(ctx, toLLMMessages(messages))
	if err != nil {
		return nil, NewRecallError("Ask", fmt.Errorf("%w: %v", ErrLLMOperation, err))
	}

	c.session.Append(question, answer)
	return &model.AskResult{
		Answer:  answer,
		Sources: results,
	}, nil
}

// List returns all stored memories, newest first.
func (c *Client) List(ctx context.Context) ([]model.Memory, error) {
	memories, err := c.store.List(ctx)
	if err != nil {
		return nil, NewRecallError("List", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	return memories, nil
}

// Clear removes all stored memories and resets the chat session.
func (c *Client) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return NewRecallError("Clear", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	c.session.Reset()
	return nil
}

// Usage reports the store's used bytes and quota.
func (c *Client) Usage(ctx context.Context) (used, quota int64, err error) {
	used, quota, err = c.store.Usage(ctx)
	if err != nil {
		return 0, 0, NewRecallError("Usage", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	return used, quota, nil
}

// Close releases all resources held by the client.
func (c *Client) Close() error {
	var firstErr error
	if err := c.store.Close(); err != nil {
		firstErr = err
	}
	if err := c.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if c.llm != nil {
		if err := c.llm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func deriveDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func toLLMMessages(messages []model.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func getString(config map[string]interface{}, key, fallback string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(config map[string]interface{}, key string, fallback int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}
