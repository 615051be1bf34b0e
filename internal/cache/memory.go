package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

var _ Cache = (*Memory)(nil)

// Memory is a process-local Cache used in tests and in deployments that run
// without a redis backend. Entries expire lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	now func() time.Time
}

type memoryEntry struct {
	value    []byte
	deadline time.Time // zero means no expiry
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !entry.deadline.IsZero() && m.now().After(entry.deadline) {
		// Re-check under the write lock: a Set may have replaced the entry
		// since the read lock was released, and that fresh entry must survive.
		m.mu.Lock()
		current, ok := m.entries[key]
		if ok && !current.deadline.IsZero() && m.now().After(current.deadline) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, ErrMiss
	}

	// Callers get their own copy so a cached snapshot can never be mutated
	// through a returned slice.
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.deadline = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, storyID string) error {
	prefix := storyPrefix(storyID)

	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}
