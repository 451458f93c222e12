// ABOUTME: In-memory credential store for tests and ephemeral sessions
// ABOUTME: Keeps the same two-entry encoding as the durable backends

package storage

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decodeEntries(m.entries)
}

func (m *MemoryStore) Token(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[KeyToken], nil
}

func (m *MemoryStore) Save(_ context.Context, c Credentials) error {
	entries, err := encodeEntries(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]string)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Set writes a single raw entry. It exists so tests can stage damaged or
// half-written sessions; production code goes through Save.
func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
