package lookuprepo

import (
	"context"
	"sync"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
)

const defaultCapacity = 500

// MemoryRepository keeps the most recent lookups in a ring buffer for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	capacity int
	records  []aqi.LookupRecord
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryRepository{capacity: capacity}
}

// Record implements aqi.HistoryRepository.
func (r *MemoryRepository) Record(_ context.Context, record aqi.LookupRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	if overflow := len(r.records) - r.capacity; overflow > 0 {
		r.records = append([]aqi.LookupRecord(nil), r.records[overflow:]...)
	}
	return nil
}

// Recent implements aqi.HistoryRepository, newest first.
func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]aqi.LookupRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]aqi.LookupRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

var _ aqi.HistoryRepository = (*MemoryRepository)(nil)
