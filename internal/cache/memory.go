package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryCache is the in-process Backend. A janitor goroutine sweeps
// expired entries and enforces maxEntries by evicting the entries
// closest to expiry.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
	stopCh     chan struct{}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache(maxEntries int, sweepInterval time.Duration) *MemoryCache {
	m := &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}
	go m.sweepLoop(sweepInterval)
	return m
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) GetMultiple(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte)
	now := time.Now()
	m.mu.RLock()
	for _, key := range keys {
		if e, ok := m.entries[key]; ok && now.Before(e.expiresAt) {
			result[key] = e.value
		}
	}
	m.mu.RUnlock()
	return result, nil
}

func (m *MemoryCache) SetMultiple(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)
	m.mu.Lock()
	for key, value := range items {
		m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Close() error {
	close(m.stopCh)
	return nil
}

func (m *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryCache) sweep() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	type aging struct {
		key       string
		expiresAt time.Time
	}
	var live []aging
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
			continue
		}
		live = append(live, aging{k, e.expiresAt})
	}

	if len(live) <= m.maxEntries {
		return
	}
	sort.Slice(live, func(i, j int) bool {
		return live[i].expiresAt.Before(live[j].expiresAt)
	})
	for _, e := range live[:len(live)-m.maxEntries] {
		delete(m.entries, e.key)
	}
}
