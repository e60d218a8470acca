package archive

import (
	"context"
	"sync"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
)

// MemoryArchive keeps the latest payloads in memory. Useful for tests and local dev.
type MemoryArchive struct {
	mu       sync.RWMutex
	capacity int
	keys     []string
	blobs    map[string][]byte
}

// NewMemoryArchive constructs an archive retaining at most capacity payloads.
func NewMemoryArchive(capacity int) *MemoryArchive {
	if capacity <= 0 {
		capacity = 50
	}
	return &MemoryArchive{capacity: capacity, blobs: make(map[string][]byte)}
}

// Put stores a copy of the payload.
func (a *MemoryArchive) Put(_ context.Context, key string, payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.blobs[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.blobs[key] = append([]byte(nil), payload...)
	for len(a.keys) > a.capacity {
		delete(a.blobs, a.keys[0])
		a.keys = a.keys[1:]
	}
	return nil
}

// Get returns a stored payload.
func (a *MemoryArchive) Get(key string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.blobs[key]
	return data, ok
}

// Keys lists stored keys, oldest first.
func (a *MemoryArchive) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.keys...)
}

var _ aqi.Archive = (*MemoryArchive)(nil)
