// Package rag assembles retrieved browsing memories into the prompt context
// for a chat completion and tracks per-session conversation history.
package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/webrecall/webrecall-go/pkg/model"
)

const (
	// DefaultContextMemories caps how many retrieved memories go into the
	// prompt context.
	DefaultContextMemories = 5

	// ExcerptLength is the maximum excerpt size per memory, in characters.
	ExcerptLength = 500
)

const systemPromptWithContext = `You are a helpful assistant with access to the user's browsing history and saved web memories. Answer the user's question using the provided context from their saved pages. Cite the source pages by title when relevant. If the context does not contain the answer, say so and answer from general knowledge.`

const systemPromptNoContext = `You are a helpful assistant. The user's saved browsing memories contain nothing relevant to this question, so answer from general knowledge. Mention that nothing in their saved pages matched.`

// BuildContext renders search results as a numbered context block. At most
// limit entries are included; limit <= 0 selects the default. Each entry
// carries the page title, URL, relevance percentage, and an excerpt capped
// at ExcerptLength characters.
func BuildContext(results []model.SearchResult, limit int) string {
	if len(results) == 0 {
		return ""
	}
	if limit <= 0 {
		limit = DefaultContextMemories
	}
	if len(results) > limit {
		results = results[:limit]
	}

	var b strings.Builder
	b.WriteString("Relevant pages from your browsing history:\n\n")
	for i, res := range results {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, res.Memory.Title)
		fmt.Fprintf(&b, "URL: %s\n", res.Memory.URL)
		fmt.Fprintf(&b, "Relevance: %.0f%%\n", res.Score*100)
		fmt.Fprintf(&b, "Content: %s\n\n", excerpt(res.Memory.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildRecentContext renders the newest memories when search found nothing,
// so the model at least knows what the user has been reading lately.
func BuildRecentContext(memories []model.Memory, limit int) string {
	if len(memories) == 0 {
		return ""
	}
	if limit <= 0 {
		limit = DefaultContextMemories
	}
	if len(memories) > limit {
		memories = memories[:limit]
	}

	var b strings.Builder
	b.WriteString("No saved pages matched directly. Your most recent saved pages:\n\n")
	for i, mem := range memories {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, mem.Title)
		fmt.Fprintf(&b, "URL: %s\n", mem.URL)
		fmt.Fprintf(&b, "Content: %s\n\n", excerpt(mem.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}

// SystemPrompt returns the system message for a chat turn. hasContext
// selects between the grounded prompt and the general-knowledge variant.
func SystemPrompt(hasContext bool) string {
	if hasContext {
		return systemPromptWithContext
	}
	return systemPromptNoContext
}

// BuildMessages assembles the full message list for a completion: system
// prompt, prior session turns, then the user question with the context
// block prepended when present.
func BuildMessages(question, contextBlock string, history []model.ChatMessage) []model.ChatMessage {
	messages := make([]model.ChatMessage, 0, len(history)+2)
	messages = append(messages, model.ChatMessage{
		Role:    "system",
		Content: SystemPrompt(contextBlock != ""),
	})
	messages = append(messages, history...)

	userContent := question
	if contextBlock != "" {
		userContent = contextBlock + "\n\nQuestion: " + question
	}
	messages = append(messages, model.ChatMessage{Role: "user", Content: userContent})
	return messages
}

func excerpt(content string) string {
	if len(content) <= ExcerptLength {
		return content
	}
	// Cut on a rune boundary so multi-byte characters survive intact.
	cut := ExcerptLength
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
