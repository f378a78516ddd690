package search

import (
	"context"
	"sort"

	"github.com/webrecall/webrecall-go/pkg/embedder"
	"github.com/webrecall/webrecall-go/pkg/model"
)

const (
	// DefaultLimit caps how many results a search returns.
	DefaultLimit = 10

	// DefaultDocThreshold is the minimum document-level similarity for a
	// memory to appear in results.
	DefaultDocThreshold = 0.1

	// DefaultChunkThreshold is the minimum chunk-level similarity for a
	// chunk to be reported as a matching passage.
	DefaultChunkThreshold = 0.15
)

// Options tunes a semantic search. Zero values select the defaults.
type Options struct {
	Limit          int
	DocThreshold   float64
	ChunkThreshold float64
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.DocThreshold == 0 {
		o.DocThreshold = DefaultDocThreshold
	}
	if o.ChunkThreshold == 0 {
		o.ChunkThreshold = DefaultChunkThreshold
	}
	return o
}

// Semantic embeds the query and ranks memories by cosine similarity.
//
// Membership and ranking use the document-level similarity alone. Chunk
// similarities never change a memory's score; they only select which chunks
// are reported as matching passages. Memories without an embedding are
// skipped entirely. If the query cannot be embedded the search degrades to
// an empty result rather than an error; callers fall back to lexical
// matching.
func Semantic(ctx context.Context, provider embedder.Provider, memories []model.Memory, query string, opts Options) []model.SearchResult {
	opts = opts.withDefaults()

	queryVec, err := provider.Embed(ctx, query)
	if err != nil || len(queryVec) == 0 {
		return nil
	}

	results := make([]model.SearchResult, 0, len(memories))
	for i := range memories {
		mem := &memories[i]
		if len(mem.Embedding) == 0 {
			continue
		}

		score := CosineSimilarity(queryVec, mem.Embedding)
		if score <= opts.DocThreshold {
			continue
		}

		var matching []model.TextChunk
		for _, chunk := range mem.Chunks {
			if len(chunk.Embedding) == 0 {
				continue
			}
			if CosineSimilarity(queryVec, chunk.Embedding) > opts.ChunkThreshold {
				matching = append(matching, chunk)
			}
		}

		results = append(results, model.SearchResult{
			Memory:         mem,
			Score:          score,
			MatchingChunks: matching,
		})
	}

	// Stable so equally scored memories keep store order (newest first).
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}
