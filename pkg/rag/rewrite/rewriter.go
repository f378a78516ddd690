// Package rewrite compresses conversational questions into retrieval-friendly
// search queries. Rewriting is best effort; a failure never surfaces to the
// caller, the original query is simply searched as-is.
package rewrite

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/webrecall/webrecall-go/pkg/llm"
)

// Words shorter than 4 characters are mostly connectives and add noise to a
// keyword query; the length floor drops them without a stopword list.
var keywordPattern = regexp.MustCompile(`\b\w{4,}\b`)

// Rewriter rewrites queries via an LLM when one is configured, falling back
// to keyword extraction otherwise.
type Rewriter struct {
	provider llm.Provider
}

// NewRewriter returns a rewriter. provider may be nil, in which case only
// keyword extraction is used.
func NewRewriter(provider llm.Provider) *Rewriter {
	return &Rewriter{provider: provider}
}

// Rewrite returns a search-friendly form of query. It never fails: on any
// LLM error it falls back to ExtractKeywords, and an empty extraction falls
// back to the original query.
func (r *Rewriter) Rewrite(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	if r.provider != nil {
		rewritten, err := r.provider.Generate(ctx, fmt.Sprintf(rewritePrompt, query),
			llm.WithTemperature(0.1),
			llm.WithMaxTokens(50),
		)
		if err == nil {
			rewritten = strings.TrimSpace(strings.Trim(strings.TrimSpace(rewritten), `"`))
			if rewritten != "" {
				return rewritten
			}
		}
	}

	if keywords := ExtractKeywords(query); keywords != "" {
		return keywords
	}
	return query
}

// ExtractKeywords pulls the words of 4+ characters out of query, preserving
// first-seen order and dropping duplicates case-insensitively. Original
// casing is kept.
func ExtractKeywords(query string) string {
	matches := keywordPattern.FindAllString(query, -1)
	seen := make(map[string]struct{}, len(matches))
	keywords := make([]string, 0, len(matches))
	for _, word := range matches {
		lower := strings.ToLower(word)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, word)
	}
	return strings.Join(keywords, " ")
}
