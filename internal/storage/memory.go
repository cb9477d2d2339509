package storage

import (
	"context"
	"sync"

	"wallet/internal/account"
)

// MemoryStore keeps snapshots in a map. Used for DATA_BACKEND=memory and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]account.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]account.Snapshot)}
}

func (m *MemoryStore) Load(_ context.Context, accountID string) (account.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.accounts[accountID]
	if !ok {
		return account.Snapshot{}, ErrNotFound
	}
	return cloneSnapshot(s), nil
}

func (m *MemoryStore) Save(_ context.Context, s account.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[s.ID] = cloneSnapshot(s)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, accountID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[accountID]
	return ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, accountID)
	return nil
}
