package rag

import (
	"sync"

	"github.com/webrecall/webrecall-go/pkg/model"
)

// DefaultMaxTurns is how many question/answer exchanges a session retains.
const DefaultMaxTurns = 6

// Session holds the rolling conversation history for one chat session.
// Safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	maxTurns int
	turns    []turn
}

type turn struct {
	question string
	answer   string
}

// NewSession returns a session keeping at most maxTurns exchanges.
// maxTurns <= 0 selects DefaultMaxTurns.
func NewSession(maxTurns int) *Session {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Session{maxTurns: maxTurns}
}

// Append records one completed exchange, evicting the oldest when the
// window is full.
func (s *Session) Append(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn{question: question, answer: answer})
	if len(s.turns) > s.maxTurns {
		s.turns = s.turns[len(s.turns)-s.maxTurns:]
	}
}

// Messages returns the retained history as alternating user/assistant
// messages, oldest first.
func (s *Session) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]model.ChatMessage, 0, len(s.turns)*2)
	for _, t := range s.turns {
		messages = append(messages,
			model.ChatMessage{Role: "user", Content: t.question},
			model.ChatMessage{Role: "assistant", Content: t.answer},
		)
	}
	return messages
}

// Recent returns the last n questions asked in this session, oldest first.
// Used as user context for the enhancer service.
func (s *Session) Recent(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if n > 0 && len(s.turns) > n {
		start = len(s.turns) - n
	}
	questions := make([]string, 0, len(s.turns)-start)
	for _, t := range s.turns[start:] {
		questions = append(questions, t.question)
	}
	return questions
}

// Len reports how many exchanges the session currently holds.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Reset discards all history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}
