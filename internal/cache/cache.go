package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores serialized responses by key
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process Cache used when no Redis address is configured
type MemoryCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryCache creates a MemoryCache. A zero ttl keeps entries until deleted.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:  ttl,
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.data[key] = e
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
