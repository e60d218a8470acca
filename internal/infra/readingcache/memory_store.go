package readingcache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/pkg/util"
)

const defaultMaxEntries = 100

type entry struct {
	key       string
	reading   aqi.Reading
	expiresAt time.Time
}

// MemoryStore is a size bounded LRU cache with per entry expiry.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	items      map[string]*list.Element
	order      *list.List
	now        func() time.Time
}

// NewMemoryStore constructs a cache holding at most maxEntries readings.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		items:      make(map[string]*list.Element),
		order:      list.New(),
		now:        util.NowUTC,
	}
}

// Get implements aqi.Cache. A hit marks the entry as most recently used.
func (s *MemoryStore) Get(_ context.Context, key string) (aqi.Reading, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.items[key]
	if !ok {
		return aqi.Reading{}, false, nil
	}
	e := el.Value.(*entry)
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.removeLocked(el)
		return aqi.Reading{}, false, nil
	}
	s.order.MoveToFront(el)
	return e.reading, true, nil
}

// Set implements aqi.Cache. A non-positive ttl keeps the entry until evicted.
func (s *MemoryStore) Set(_ context.Context, key string, reading aqi.Reading, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	if el, ok := s.items[key]; ok {
		e := el.Value.(*entry)
		e.reading = reading
		e.expiresAt = exp
		s.order.MoveToFront(el)
		return nil
	}
	s.items[key] = s.order.PushFront(&entry{key: key, reading: reading, expiresAt: exp})
	for s.order.Len() > s.maxEntries {
		s.removeLocked(s.order.Back())
	}
	return nil
}

// Len reports the number of cached entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *MemoryStore) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	s.order.Remove(el)
	delete(s.items, el.Value.(*entry).key)
}

var _ aqi.Cache = (*MemoryStore)(nil)
