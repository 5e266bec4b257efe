package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/linkgate/internal/kv"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) live(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// MemoryStore is an in-memory implementation of kv.Store.
// Expired entries are dropped lazily when they are next touched.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates a new in-memory key-value store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", kv.ErrNotFound
	}

	if !entry.live(time.Now()) {
		m.mu.Lock()
		if current, ok := m.entries[key]; ok && !current.live(time.Now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()

		return "", kv.ErrNotFound
	}

	return entry.value, nil
}

func (m *MemoryStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = newMemoryEntry(value, ttl)

	return nil
}

func (m *MemoryStore) PutIfAbsent(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.entries[key]; ok && existing.live(time.Now()) {
		return kv.ErrExists
	}

	m.entries[key] = newMemoryEntry(value, ttl)

	return nil
}

// Len returns the number of entries held, including expired ones not yet reclaimed.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

func newMemoryEntry(value string, ttl time.Duration) memoryEntry {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	return entry
}

var _ kv.Store = (*MemoryStore)(nil)
