// Package local provides a deterministic, offline embedding provider.
//
// It maps text to a fixed-length vector with a hashed bag-of-words scheme: no
// network, no API key, and identical output for identical input. The vectors
// are far weaker than a learned model's, but they make semantic search work
// out of the box and serve as the documented soft default when no remote
// embedding provider is configured.
package local

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// DefaultDimensions is the fixed dimensionality of locally generated vectors.
const DefaultDimensions = 384

// ModelID identifies the local vectorizer on stored memories.
const ModelID = "local-hash"

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// Embedder implements embedder.Provider without any external service.
type Embedder struct {
	dimensions int
}

// New creates a local embedder. Non-positive dimensions fall back to
// DefaultDimensions.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

// Embed converts text into a unit-length hashed bag-of-words vector.
//
// Each distinct lowercase word is hashed into a bucket and contributes its
// relative frequency; hash collisions accumulate additively. The result is
// L2-normalized, except that empty text yields the zero vector unchanged
// rather than NaN.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dimensions)
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return vec, nil
	}

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	total := float64(len(words))
	for w, n := range counts {
		vec[e.bucket(w)] += float64(n) / total
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// bucket maps a word to a vector index using a polynomial rolling hash
// wrapped to 32 bits.
func (e *Embedder) bucket(word string) int {
	var h int32
	for _, r := range word {
		h = h*31 + int32(r)
	}
	v := int(h)
	if v < 0 {
		v = -v
	}
	return v % e.dimensions
}

// Dimensions returns the vector dimensionality.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Model returns the local vectorizer identifier.
func (e *Embedder) Model() string { return ModelID }

// Close is a no-op, retained for interface compatibility.
func (e *Embedder) Close() error { return nil }
