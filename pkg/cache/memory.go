package cache

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Entry)}
}

// Get returns a copy of the entry stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	entry.Result = append([]byte(nil), entry.Result...)
	return &entry, nil
}

// Put stores a copy of entry.
func (s *MemoryStore) Put(ctx context.Context, key string, entry *Entry) error {
	copied := *entry
	copied.Result = append([]byte(nil), entry.Result...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Remove deletes the entry.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Clear deletes every entry.
func (s *MemoryStore) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.data)
	s.data = make(map[string]Entry)
	return n, nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
