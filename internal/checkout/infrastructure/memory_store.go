package infrastructure

import (
	"context"
	"sync"
)

// MemoryStateStore keeps state in process memory. Nothing survives a restart.
type MemoryStateStore struct {
	mu    sync.RWMutex
	store map[string]map[string]string
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		store: make(map[string]map[string]string),
	}
}

func (m *MemoryStateStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.store[namespace][key]
	return value, ok, nil
}

func (m *MemoryStateStore) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.store[namespace]
	if !ok {
		entries = make(map[string]string)
		m.store[namespace] = entries
	}
	entries[key] = value
	return nil
}

func (m *MemoryStateStore) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.store[namespace]
	if !ok {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(m.store, namespace)
	}
	return nil
}

func (m *MemoryStateStore) Ping(_ context.Context) error {
	return nil
}
