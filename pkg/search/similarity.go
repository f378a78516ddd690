// Package search scores stored browsing memories against a query, by vector
// similarity when embeddings exist and by weighted keyword matching as the
// lexical fallback.
package search

import "math"

// CosineSimilarity returns dot(a,b) / (|a| * |b|).
//
// Vectors of different lengths come from different embedding models and are
// never comparable; they score 0 (maximally dissimilar) rather than raising,
// since this is a ranking signal, not a correctness-critical computation.
// A zero-magnitude vector also scores 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
