package chunker_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webrecall/webrecall-go/pkg/chunker"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkEmptyText(t *testing.T) {
	assert.Empty(t, chunker.Chunk("", 200, 20))
	assert.Empty(t, chunker.Chunk("   \n\t  ", 200, 20))
}

func TestChunkShortTextSingleChunk(t *testing.T) {
	text := "a short piece of text"
	chunks := chunker.Chunk(text, 200, 20)

	require.Len(t, chunks, 1)
	assert.Equal(t, "chunk_0", chunks[0].ID)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(text), chunks[0].End)
}

func TestChunkTokenEstimate(t *testing.T) {
	// The estimate is three quarters of the word count, rounded up.
	chunks := chunker.Chunk(words(4), 200, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, 3, chunks[0].Tokens)

	chunks = chunker.Chunk("one", 200, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Tokens)
}

func TestChunkSplitsOnBudget(t *testing.T) {
	// 400 words at 200 estimated tokens per chunk: a chunk fills at
	// roughly 267 words, so two chunks without overlap.
	chunks := chunker.Chunk(words(400), 200, 0)

	require.Len(t, chunks, 2)
	for i, chunk := range chunks {
		assert.Equal(t, fmt.Sprintf("chunk_%d", i), chunk.ID)
		assert.LessOrEqual(t, chunk.Tokens, 201)
	}
}

func TestChunkOverlap(t *testing.T) {
	chunks := chunker.Chunk(words(400), 200, 20)
	require.GreaterOrEqual(t, len(chunks), 2)

	// The second chunk starts with the trailing overlap of the first:
	// floor(20 * 0.75) = 15 words.
	firstWords := strings.Fields(chunks[0].Content)
	secondWords := strings.Fields(chunks[1].Content)
	require.GreaterOrEqual(t, len(firstWords), 15)
	tail := firstWords[len(firstWords)-15:]
	assert.Equal(t, tail, secondWords[:15])
}

func TestChunkOffsetsIndexNormalizedText(t *testing.T) {
	text := words(400)
	chunks := chunker.Chunk(text, 200, 20)

	for _, chunk := range chunks {
		require.GreaterOrEqual(t, chunk.Start, 0)
		require.LessOrEqual(t, chunk.End, len(text))
		assert.Equal(t, chunk.Content, text[chunk.Start:chunk.End])
	}
}

func TestChunkNoTrailingOverlapOnlyChunk(t *testing.T) {
	// When the final words all fit in the previous chunk, no extra chunk
	// made purely of overlap should appear.
	chunks := chunker.Chunk(words(267), 200, 20)
	require.Len(t, chunks, 1)
}

func TestChunkCoversAllWords(t *testing.T) {
	text := words(500)
	chunks := chunker.Chunk(text, 200, 20)

	var rebuilt []string
	seen := make(map[string]struct{})
	for _, chunk := range chunks {
		for _, w := range strings.Fields(chunk.Content) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			rebuilt = append(rebuilt, w)
		}
	}
	assert.Equal(t, strings.Fields(text), rebuilt)
}
