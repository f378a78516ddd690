package search

import (
	"sort"
	"strings"

	"github.com/webrecall/webrecall-go/pkg/model"
)

// Lexical ranks memories by weighted keyword overlap with the query. It is
// the fallback when no embedder is available or semantic search found
// nothing. Scoring per query word: title hit +3, URL or domain hit +2, tag
// hit +2, content hit +1.
func Lexical(memories []model.Memory, query string, limit int) []model.SearchResult {
	if limit <= 0 {
		limit = DefaultLimit
	}

	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil
	}

	results := make([]model.SearchResult, 0, len(memories))
	for i := range memories {
		mem := &memories[i]
		title := strings.ToLower(mem.Title)
		url := strings.ToLower(mem.URL)
		domain := strings.ToLower(mem.Domain)
		content := strings.ToLower(mem.Content)

		var score float64
		for _, word := range words {
			if strings.Contains(title, word) {
				score += 3
			}
			if strings.Contains(url, word) || strings.Contains(domain, word) {
				score += 2
			}
			for _, tag := range mem.Tags {
				if strings.Contains(strings.ToLower(tag), word) {
					score += 2
					break
				}
			}
			if strings.Contains(content, word) {
				score++
			}
		}

		if score > 0 {
			results = append(results, model.SearchResult{
				Memory:  mem,
				Score:   score,
				Lexical: true,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
