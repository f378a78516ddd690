// Package core provides the main WebRecall client tying together capture,
// retrieval, and chat over saved browsing memories.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedProvider indicates an unknown provider name in the
	// configuration.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateMemory indicates that the same URL was captured again
	// within the duplicate suppression window.
	ErrDuplicateMemory = errors.New("duplicate memory detected")

	// ErrEmbeddingFailed indicates that embedding generation failed.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrStorageOperation indicates that a storage operation failed.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrLLMOperation indicates that an LLM operation failed.
	ErrLLMOperation = errors.New("llm operation failed")

	// ErrNoLLM indicates that a chat operation was requested but no LLM
	// provider is configured.
	ErrNoLLM = errors.New("no llm provider configured")
)

// RecallError wraps errors with operation context.
//
// It records which client operation failed, making error messages more
// informative for debugging.
//
// Example:
//
//	err := &RecallError{
//	    Op:  "Capture",
//	    Err: ErrDuplicateMemory,
//	}
//	// Error() returns: "webrecall: Capture: duplicate memory detected"
type RecallError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "webrecall: <Op>: <Err>"
func (e *RecallError) Error() string {
	return fmt.Sprintf("webrecall: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with RecallError.
func (e *RecallError) Unwrap() error {
	return e.Err
}

// NewRecallError creates a new RecallError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewRecallError("Capture", err)
//	}
func NewRecallError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RecallError{
		Op:  op,
		Err: err,
	}
}
