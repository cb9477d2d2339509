package storage

import (
	"context"
	"errors"
	"log/slog"

	"wallet/internal/account"
	"wallet/internal/cache"
)

// CachedStore serves Loads from an in-process cache and writes through to
// the underlying store.
type CachedStore struct {
	next   Store
	cache  cache.Cache[account.Snapshot]
	logger *slog.Logger
}

func NewCachedStore(next Store, c cache.Cache[account.Snapshot], logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{next: next, cache: c, logger: logger}
}

func (s *CachedStore) Load(ctx context.Context, accountID string) (account.Snapshot, error) {
	if snap, ok := s.cache.Get(accountID); ok {
		s.logger.DebugContext(ctx, "Account cache hit", "account_id", accountID)
		return cloneSnapshot(snap), nil
	}
	snap, err := s.next.Load(ctx, accountID)
	if err != nil {
		return account.Snapshot{}, err
	}
	s.cache.Set(accountID, cloneSnapshot(snap))
	return snap, nil
}

// Save writes through; the cache is only updated after the store succeeds.
func (s *CachedStore) Save(ctx context.Context, snap account.Snapshot) error {
	if err := s.next.Save(ctx, snap); err != nil {
		s.cache.Delete(snap.ID)
		return err
	}
	s.cache.Set(snap.ID, cloneSnapshot(snap))
	return nil
}

func (s *CachedStore) Exists(ctx context.Context, accountID string) (bool, error) {
	if _, ok := s.cache.Get(accountID); ok {
		return true, nil
	}
	return s.next.Exists(ctx, accountID)
}

func (s *CachedStore) Delete(ctx context.Context, accountID string) error {
	s.cache.Delete(accountID)
	err := s.next.Delete(ctx, accountID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.ErrorContext(ctx, "Failed to delete account", "account_id", accountID, "error", err)
	}
	return err
}
