package prefs

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Storage.Get when no value exists for the key.
var ErrNotFound = errors.New("prefs: not found")

// Storage is the durable key-value backend the store persists into. The
// production implementation lives in internal/cache (Redis); tests use
// MemoryStorage.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// StorageError marks a broken persistence environment (backend down, quota
// exceeded, serialization failure) as opposed to merely bad stored data,
// which Load absorbs by falling back to defaults.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("prefs %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// MemoryStorage is a process-local Storage, used by tests and as a
// degraded-mode fallback when Redis is not configured.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
