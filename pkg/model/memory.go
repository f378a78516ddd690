// Package model defines the data types shared across the WebRecall retrieval
// engine: captured browsing memories, their text chunks, and search results.
package model

import "time"

// Memory is a single saved unit of browsing content.
//
// A memory is created when a page is captured, optionally enriched once with
// an embedding vector and text chunks, and never mutated afterwards except by
// wholesale deletion or eviction.
type Memory struct {
	// ID is the unique, time-derived identifier of the memory.
	ID int64 `json:"id"`

	// URL is the address of the captured page.
	URL string `json:"url"`

	// Title is the page title at capture time.
	Title string `json:"title"`

	// Content is the primary (possibly summarized) text of the page.
	Content string `json:"content"`

	// FullContent is the unsummarized page text, when retained.
	FullContent string `json:"full_content,omitempty"`

	// SelectedText is the user-selected excerpt, for context-menu captures.
	SelectedText string `json:"selected_text,omitempty"`

	// Domain is derived from URL at capture time.
	Domain string `json:"domain"`

	// Tags are free-text labels attached to the memory.
	Tags []string `json:"tags,omitempty"`

	// Favicon is an optional site icon reference.
	Favicon string `json:"favicon,omitempty"`

	// Embedding is the vector representation of Content, when generation
	// succeeded. Memories without an embedding are invisible to semantic
	// search and only reachable through the lexical fallback.
	Embedding []float64 `json:"embedding,omitempty"`

	// Chunks are sub-document segments embedded individually for
	// finer-grained retrieval. Every chunk embedding present here was
	// produced by the same model as Embedding.
	Chunks []TextChunk `json:"chunks,omitempty"`

	// EmbeddingModel identifies the model that produced Embedding and all
	// chunk embeddings.
	EmbeddingModel string `json:"embedding_model,omitempty"`

	// CreatedAt is the capture timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the memory. Stores hand out clones so callers
// always operate on an independent snapshot.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	out := *m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.Embedding != nil {
		out.Embedding = append([]float64(nil), m.Embedding...)
	}
	if m.Chunks != nil {
		out.Chunks = make([]TextChunk, len(m.Chunks))
		for i, c := range m.Chunks {
			out.Chunks[i] = c
			if c.Embedding != nil {
				out.Chunks[i].Embedding = append([]float64(nil), c.Embedding...)
			}
		}
	}
	return &out
}

// TextChunk is a contiguous slice of a memory's content, produced for
// embedding at sub-document granularity.
type TextChunk struct {
	// ID is the ordinal identifier within the parent memory ("chunk_0", ...).
	ID string `json:"id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Start and End are character offsets into the whitespace-normalized
	// source text. Offsets are monotonically non-decreasing across the
	// chunk sequence; overlapping regions are shared, not recounted.
	Start int `json:"start"`
	End   int `json:"end"`

	// Tokens is the approximate token count of Content.
	Tokens int `json:"tokens"`

	// Embedding is the chunk-level vector, when generation succeeded.
	// Chunks whose embedding failed are dropped rather than stored bare.
	Embedding []float64 `json:"embedding,omitempty"`
}

// SearchResult is a memory enriched with a similarity score and the subset of
// its chunks that cleared the chunk-level threshold. Results are ephemeral:
// constructed per search call, never persisted.
type SearchResult struct {
	Memory *Memory

	// Score is the cosine similarity to the query for semantic results, or
	// the keyword match score for lexical results.
	Score float64

	// MatchingChunks are the chunks whose own similarity cleared the
	// stricter chunk-level threshold. Empty for lexical results.
	MatchingChunks []TextChunk

	// Lexical marks results produced by the keyword fallback, whose Score
	// is not a similarity and should not be shown as a percentage.
	Lexical bool
}

// ChatMessage is a single conversation turn held in a bounded in-memory
// history. It is not persisted across sessions.
type ChatMessage struct {
	// Role is "user", "assistant", or "system".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Timestamp is when the message was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// Page is the shape the content-extractor collaborator produces for a
// captured page. Extraction heuristics live outside this module.
type Page struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	FullContent  string `json:"full_content,omitempty"`
	SelectedText string `json:"selected_text,omitempty"`
	Favicon      string `json:"favicon,omitempty"`
}

// AskResult carries a generated answer together with the retrieval context
// that produced it and, when the remote enhancement path served the request,
// its diagnostic insights.
type AskResult struct {
	Answer  string
	Sources []SearchResult

	// Enhanced is true when the remote multi-agent backend produced the
	// answer instead of the direct provider path.
	Enhanced         bool
	MemoriesAnalyzed int
	AverageRelevance float64
}
