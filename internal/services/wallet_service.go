package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wallet/internal/account"
	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/rewrite"
	"wallet/internal/session"
	"wallet/internal/storage"
)

// Publisher announces saved accounts to the export pipeline.
type Publisher interface {
	PublishAccountChanged(ctx context.Context, accountID string, version int64, operation string) error
}

// WalletService runs every shell operation against the logged-in account,
// saving after each mutation and announcing the change when a publisher is
// configured.
type WalletService struct {
	mu        sync.Mutex
	session   *session.Session
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	version   int64
}

// Option configures a WalletService.
type Option func(*WalletService)

// WithPublisher enables account-changed messages.
func WithPublisher(p Publisher) Option {
	return func(s *WalletService) { s.publisher = p }
}

// WithClock overrides the time source used for relative reports.
func WithClock(now func() time.Time) Option {
	return func(s *WalletService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewWalletService(sess *session.Session, logger *slog.Logger, opts ...Option) *WalletService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &WalletService{session: sess, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// read runs fn against the current account without saving.
func (s *WalletService) read(fn func(a *account.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.session.Current()
	if err != nil {
		return err
	}
	return fn(a)
}

// mutate runs fn and saves the account afterwards. A rejected expense is
// still saved because it leaves an alert behind.
func (s *WalletService) mutate(ctx context.Context, op string, fn func(a *account.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.session.Current()
	if err != nil {
		return err
	}
	opErr := fn(a)
	if opErr != nil && !errors.Is(opErr, core.ErrInsufficientFunds) {
		return opErr
	}

	if err := s.session.Save(ctx); err != nil {
		applog.FromContextOr(ctx, s.logger).ErrorContext(ctx, "Auto-save failed", "account_id", a.ID(), "operation", op, "error", err)
		return errors.Join(opErr, fmt.Errorf("auto-save: %w", err))
	}
	s.version++
	s.publish(ctx, a.ID(), op)
	return opErr
}

func (s *WalletService) publish(ctx context.Context, accountID, op string) {
	if s.publisher == nil {
		return
	}
	// Export is best effort; the account is already saved.
	if err := s.publisher.PublishAccountChanged(ctx, accountID, s.version, op); err != nil {
		applog.FromContextOr(ctx, s.logger).WarnContext(ctx, "Failed to publish account change", "account_id", accountID, "operation", op, "error", err)
	}
}

// Login switches the session to accountID.
func (s *WalletService) Login(ctx context.Context, accountID string) (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, created, err = s.session.Login(ctx, accountID)
	return created, err
}

// Logout saves and closes the session.
func (s *WalletService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Logout(ctx)
}

// CurrentAccountID returns the logged-in account id.
func (s *WalletService) CurrentAccountID() (string, error) {
	var id string
	err := s.read(func(a *account.Account) error {
		id = a.ID()
		return nil
	})
	return id, err
}

func (s *WalletService) RecordIncome(ctx context.Context, amount float64, category string) (core.Record, error) {
	var rec core.Record
	err := s.mutate(ctx, "income", func(a *account.Account) (err error) {
		rec, err = a.RecordIncome(amount, category)
		return err
	})
	return rec, err
}

func (s *WalletService) RecordExpense(ctx context.Context, amount float64, category string) (core.Record, error) {
	var rec core.Record
	err := s.mutate(ctx, "expense", func(a *account.Account) (err error) {
		rec, err = a.RecordExpense(amount, category)
		return err
	})
	return rec, err
}

func (s *WalletService) SetBudget(ctx context.Context, category string, limit float64) error {
	return s.mutate(ctx, "budget_set", func(a *account.Account) error {
		return a.SetBudget(category, limit)
	})
}

// WouldUnderrunSpend reports whether limit is below the category's spend.
func (s *WalletService) WouldUnderrunSpend(category string, limit float64) (bool, error) {
	var under bool
	err := s.read(func(a *account.Account) error {
		under = a.WouldUnderrunSpend(category, limit)
		return nil
	})
	return under, err
}

// EditBudget replaces an existing limit and returns the previous one.
func (s *WalletService) EditBudget(ctx context.Context, category string, limit float64) (float64, error) {
	var old float64
	err := s.mutate(ctx, "budget_edit", func(a *account.Account) (err error) {
		old, err = a.EditBudget(category, limit)
		return err
	})
	return old, err
}

func (s *WalletService) RemoveBudget(ctx context.Context, category string) (float64, error) {
	var old float64
	err := s.mutate(ctx, "budget_remove", func(a *account.Account) (err error) {
		old, err = a.RemoveBudget(category)
		return err
	})
	return old, err
}

func (s *WalletService) RenameCategory(ctx context.Context, oldCategory, newCategory string) (rewrite.RenameResult, error) {
	var res rewrite.RenameResult
	err := s.mutate(ctx, "rename", func(a *account.Account) (err error) {
		res, err = a.RenameCategory(oldCategory, newCategory)
		return err
	})
	return res, err
}

func (s *WalletService) MergeCategories(ctx context.Context, categories []string, target string) (rewrite.MergeResult, error) {
	var res rewrite.MergeResult
	err := s.mutate(ctx, "merge", func(a *account.Account) (err error) {
		res, err = a.MergeCategories(categories, target)
		return err
	})
	return res, err
}

// Import applies rows and saves once at the end.
func (s *WalletService) Import(ctx context.Context, rows []account.ImportRow) (account.ImportResult, error) {
	var res account.ImportResult
	err := s.mutate(ctx, "import", func(a *account.Account) error {
		res = a.Import(rows)
		return nil
	})
	return res, err
}

// DisplayAlerts returns unread and all alerts, then marks them read.
func (s *WalletService) DisplayAlerts(ctx context.Context) (unread, all []core.Alert, err error) {
	err = s.mutate(ctx, "alerts_read", func(a *account.Account) error {
		unread, all = a.DisplayAlerts()
		return nil
	})
	return unread, all, err
}

// UnreadAlerts returns the unread alert count.
func (s *WalletService) UnreadAlerts() (int, error) {
	var n int
	err := s.read(func(a *account.Account) error {
		n = a.UnreadAlerts()
		return nil
	})
	return n, err
}

func (s *WalletService) ClearAlerts(ctx context.Context) error {
	return s.mutate(ctx, "alerts_clear", func(a *account.Account) error {
		a.ClearAlerts()
		return nil
	})
}

// Snapshot copies the current account state.
func (s *WalletService) Snapshot() (account.Snapshot, error) {
	var snap account.Snapshot
	err := s.read(func(a *account.Account) error {
		snap = a.Snapshot()
		return nil
	})
	return snap, err
}

// Save persists the current account explicitly.
func (s *WalletService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Save(ctx)
}

// Backup saves the account and writes a JSON backup into dir.
func (s *WalletService) Backup(ctx context.Context, dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.session.Current()
	if err != nil {
		return "", err
	}
	if err := s.session.Save(ctx); err != nil {
		return "", err
	}
	return storage.Backup(ctx, s.session.Store(), a.ID(), dir, s.now())
}
