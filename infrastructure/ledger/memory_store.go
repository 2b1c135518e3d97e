package ledger

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string][]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]string, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.sets[key]...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, ids []string) error {
	if err := validKey(key); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := validID(id); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[key] = out
	return nil
}

func (m *MemoryStore) Append(_ context.Context, key, id string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := validID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sets[key] {
		if existing == id {
			return nil
		}
	}
	m.sets[key] = append(m.sets[key], id)
	return nil
}
