package sigcache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process cache backed by otter. Entries carry
// their own expiry; the otter-level TTL is an upper bound for eviction.
type MemoryCache struct {
	cache *otter.Cache[string, memoryEntry]
}

// NewMemory builds a memory cache holding at most maxEntries entries.
func NewMemory(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 50_000
	}
	cache := otter.Must(&otter.Options[string, memoryEntry]{
		MaximumSize:      maxEntries,
		ExpiryCalculator: otter.ExpiryWriting[string, memoryEntry](30 * 24 * time.Hour),
	})
	return &MemoryCache{cache: cache}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, found := m.cache.GetIfPresent(key)
	if !found {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.cache.Invalidate(key)
		return nil, false, nil
	}
	return entry.data, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.cache.Set(key, memoryEntry{data: data, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (m *MemoryCache) Close() error { return nil }
