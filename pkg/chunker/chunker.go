// Package chunker splits long text into overlapping, token-bounded segments
// for sub-document embedding.
package chunker

import (
	"fmt"
	"strings"

	"github.com/webrecall/webrecall-go/pkg/model"
)

const (
	// DefaultMaxTokens is the default per-chunk token budget.
	DefaultMaxTokens = 200

	// DefaultOverlapWords is the default overlap between consecutive
	// chunks, expressed in approximate words.
	DefaultOverlapWords = 20
)

// Chunk splits text into token-bounded chunks with word overlap.
//
// Words are accumulated greedily; the token count of the running chunk is
// estimated as ceil(words * 0.75). When the estimate exceeds maxTokens the
// running chunk closes, keeping the word that triggered the overflow, and the
// next chunk is seeded with the last floor(overlapWords * 0.75) words of it. Offsets are character positions in
// the whitespace-normalized text; the overlap region is shared between
// neighbors, not recounted.
//
// The function is pure and deterministic. Empty input yields nil.
func Chunk(text string, maxTokens, overlapWords int) []model.TextChunk {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	overlap := overlapWords * 3 / 4
	var chunks []model.TextChunk
	var current []string
	start := 0
	fresh := 0 // words appended since the last cut

	flush := func() {
		content := strings.Join(current, " ")
		chunks = append(chunks, model.TextChunk{
			ID:      fmt.Sprintf("chunk_%d", len(chunks)),
			Content: content,
			Start:   start,
			End:     start + len(content),
			Tokens:  estimateTokens(len(current)),
		})
	}

	for _, word := range words {
		current = append(current, word)
		fresh++
		if estimateTokens(len(current)) <= maxTokens {
			continue
		}
		flush()
		end := chunks[len(chunks)-1].End

		// Seed the next chunk with the trailing overlap of the one just
		// closed; its start offset backs up over the shared region.
		n := overlap
		if n > len(current) {
			n = len(current)
		}
		if n > 0 {
			seed := make([]string, n)
			copy(seed, current[len(current)-n:])
			current = seed
			start = end - len(strings.Join(seed, " "))
		} else {
			current = nil
			start = end + 1
		}
		fresh = 0
	}

	// A trailing chunk made purely of overlap carries no new content.
	if fresh > 0 {
		flush()
	}
	return chunks
}

// estimateTokens approximates the token count of a word sequence as
// ceil(words * 0.75).
func estimateTokens(words int) int {
	return (words*3 + 3) / 4
}
