// Package store defines the persistence interface for browsing memories and
// is implemented by the in-process, SQLite, PostgreSQL, and MySQL backends.
//
// Ranking happens in the search package, so a backend only needs flat CRUD
// over serialized memories; no backend-side vector indexing is required.
package store

import (
	"context"

	"github.com/webrecall/webrecall-go/pkg/model"
)

// Store is the persistence contract for browsing memories.
//
// All backends must implement this interface.
type Store interface {
	// Insert adds a memory. The memory's ID must already be assigned.
	Insert(ctx context.Context, memory *model.Memory) error

	// List returns all memories, newest first.
	List(ctx context.Context) ([]model.Memory, error)

	// Replace atomically swaps the full contents of the store. Used by
	// eviction, which recomputes the retained set in memory.
	Replace(ctx context.Context, memories []model.Memory) error

	// Clear removes all memories.
	Clear(ctx context.Context) error

	// Usage reports bytes used and the quota in bytes. A quota of 0 means
	// unlimited.
	Usage(ctx context.Context) (used, quota int64, err error)

	// Close releases the backend's resources.
	Close() error
}
