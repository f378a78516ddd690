// Package memory provides an in-process store backend. It is the default
// backend and the one the test suites run against; nothing is persisted
// across process restarts.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/webrecall/webrecall-go/pkg/model"
)

// DefaultQuota is the default storage quota in bytes, mirroring what a
// browser extension typically gets for local storage.
const DefaultQuota = 10 * 1024 * 1024

// Store keeps memories in a slice guarded by a mutex. Safe for concurrent
// use. List and Insert deep-copy memories so callers can never mutate
// stored state through a returned slice.
type Store struct {
	mu       sync.RWMutex
	memories []model.Memory
	quota    int64
}

// NewStore returns an empty store with the given quota in bytes.
// quota <= 0 selects DefaultQuota.
func NewStore(quota int64) *Store {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &Store{quota: quota}
}

func (s *Store) Insert(_ context.Context, memory *model.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = append(s.memories, *memory.Clone())
	return nil
}

func (s *Store) List(_ context.Context) ([]model.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Memory, 0, len(s.memories))
	for i := range s.memories {
		out = append(out, *s.memories[i].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Replace(_ context.Context, memories []model.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = make([]model.Memory, 0, len(memories))
	for i := range memories {
		s.memories = append(s.memories, *memories[i].Clone())
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = nil
	return nil
}

// Usage measures the serialized size of all stored memories, matching how
// the quota would be consumed on a real storage backend.
func (s *Store) Usage(_ context.Context) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var used int64
	for i := range s.memories {
		data, err := json.Marshal(&s.memories[i])
		if err != nil {
			return 0, 0, err
		}
		used += int64(len(data))
	}
	return used, s.quota, nil
}

func (s *Store) Close() error {
	return nil
}
