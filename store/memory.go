package store

import (
	"context"
	"sync"
)

// Memory keeps blobs in-process. Useful for tests and for exercising the
// persistence path without real durability. Blobs survive across cache
// instances sharing the same Memory value, which is enough to simulate a
// restart.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Read returns a copy; callers can hold the result without pinning the store.
func (s *Memory) Read(_ context.Context, locator string) ([]byte, error) {
	s.mu.RLock()
	b, ok := s.blobs[locator]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *Memory) Write(_ context.Context, locator string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.blobs[locator] = cp
	s.mu.Unlock()
	return nil
}

func (s *Memory) EnsureContainer(context.Context, string) error { return nil }

func (s *Memory) Close(context.Context) error { return nil }

// Len reports how many locators hold blobs.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
