package persist

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps blobs in process memory. Used for ephemeral runs and tests.
type MemoryStorage struct {
	mu        sync.RWMutex
	values    map[string][]byte // key -> blob
	lastWrite time.Time         // timestamp of the last Set
}

// NewMemoryStorage creates an empty memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set replaces the blob stored under key.
func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	m.lastWrite = time.Now()
	return nil
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }

func (m *MemoryStorage) Close() error { return nil }

// LastWrite returns the timestamp of the last Set.
func (m *MemoryStorage) LastWrite() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastWrite
}
