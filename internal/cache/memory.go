package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a MemoryCache built by NewMemoryCache.
const DefaultMaxEntries = 10000

type entry struct {
	value   string
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryCache is an in-process Cache. A zero ttl keeps entries until they are
// evicted to make room. Expired entries are swept on Set at most once per ttl.
type MemoryCache struct {
	mu         sync.RWMutex
	data       map[string]entry
	ttl        time.Duration
	maxEntries int
	nextSweep  time.Time
	now        func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]entry),
		ttl:        ttl,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}

	now := m.now()
	if !e.expired(now) {
		return e.value, true
	}

	m.mu.Lock()
	// A Set may have replaced the entry since the read lock was released.
	if cur, ok := m.data[key]; ok && cur.expired(now) {
		delete(m.data, key)
	}
	m.mu.Unlock()
	return "", false
}

func (m *MemoryCache) Set(_ context.Context, key string, value string) error {
	now := m.now()
	e := entry{value: value}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ttl > 0 && !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(m.ttl)
	}
	if _, exists := m.data[key]; !exists && m.maxEntries > 0 && len(m.data) >= m.maxEntries {
		m.sweep(now)
		if len(m.data) >= m.maxEntries {
			m.evictSoonest()
		}
	}
	m.data[key] = e
	return nil
}

// sweep drops expired entries. Callers hold mu.
func (m *MemoryCache) sweep(now time.Time) {
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
		}
	}
}

// evictSoonest drops the entry closest to expiry, or an arbitrary one when
// entries never expire. Callers hold mu.
func (m *MemoryCache) evictSoonest() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for k, e := range m.data {
		if !found || e.expires.Before(soonest) {
			victim, soonest, found = k, e.expires, true
		}
	}
	if found {
		delete(m.data, victim)
	}
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
