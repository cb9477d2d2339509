// Package session tracks which account the shell is operating on.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"wallet/internal/account"
	"wallet/internal/core"
	"wallet/internal/storage"
)

var ErrInvalidAccountID = errors.New("invalid account id")

// Session holds at most one logged-in account.
type Session struct {
	mu      sync.Mutex
	store   storage.Store
	opts    account.Options
	logger  *slog.Logger
	current *account.Account
}

func New(store storage.Store, opts account.Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{store: store, opts: opts, logger: logger}
}

// Login loads accountID, creating and saving an empty account when it does
// not exist yet. A previously logged-in account is saved first.
func (s *Session) Login(ctx context.Context, accountID string) (acc *account.Account, created bool, err error) {
	id := strings.TrimSpace(accountID)
	if id == "" {
		return nil, false, ErrInvalidAccountID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		if err := s.store.Save(ctx, s.current.Snapshot()); err != nil {
			return nil, false, fmt.Errorf("save %s before switching: %w", s.current.ID(), err)
		}
	}

	snap, err := s.store.Load(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		acc = account.New(id, s.opts)
		if err := s.store.Save(ctx, acc.Snapshot()); err != nil {
			return nil, false, fmt.Errorf("create account %s: %w", id, err)
		}
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("load account %s: %w", id, err)
	default:
		if acc, err = account.FromSnapshot(snap, s.opts); err != nil {
			return nil, false, fmt.Errorf("restore account %s: %w", id, err)
		}
	}

	s.current = acc
	s.logger.InfoContext(ctx, "Logged in", "account_id", id, "created", created)
	return acc, created, nil
}

// Logout saves the current account and clears the session.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return core.ErrNotAuthenticated
	}
	if err := s.store.Save(ctx, s.current.Snapshot()); err != nil {
		return fmt.Errorf("save %s on logout: %w", s.current.ID(), err)
	}
	s.logger.InfoContext(ctx, "Logged out", "account_id", s.current.ID())
	s.current = nil
	return nil
}

// Current returns the logged-in account or core.ErrNotAuthenticated.
func (s *Session) Current() (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, core.ErrNotAuthenticated
	}
	return s.current, nil
}

// Save persists the current account.
func (s *Session) Save(ctx context.Context) error {
	acc, err := s.Current()
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, acc.Snapshot()); err != nil {
		return fmt.Errorf("save %s: %w", acc.ID(), err)
	}
	return nil
}

// Store returns the backing store.
func (s *Session) Store() storage.Store {
	return s.store
}
