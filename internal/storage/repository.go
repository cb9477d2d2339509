package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"wallet/internal/account"
	"wallet/internal/core"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteRepository stores each account across the accounts, records,
// budgets and alerts tables.
type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewSQLiteRepository(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads one account. Records and alerts come back in insertion order.
func (r *SQLiteRepository) Load(ctx context.Context, accountID string) (account.Snapshot, error) {
	s := account.Snapshot{ID: accountID, Budgets: make(map[string]float64)}

	err := r.db.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&s.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return account.Snapshot{}, fmt.Errorf("get account: %w", err)
	}

	if s.Records, err = r.loadRecords(ctx, accountID); err != nil {
		return account.Snapshot{}, err
	}
	if err := r.loadBudgets(ctx, accountID, s.Budgets); err != nil {
		return account.Snapshot{}, err
	}
	if s.Alerts, err = r.loadAlerts(ctx, accountID); err != nil {
		return account.Snapshot{}, err
	}

	r.logger.DebugContext(ctx, "Account loaded from SQLite",
		"account_id", accountID,
		"records", len(s.Records),
		"budgets", len(s.Budgets),
		"alerts", len(s.Alerts))
	return s, nil
}

func (r *SQLiteRepository) loadRecords(ctx context.Context, accountID string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount, category, occurred_at FROM records WHERE account_id = ? ORDER BY seq`, accountID)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			rec core.Record
			at  string
		)
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Amount, &rec.Category, &at); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if rec.OccurredAt, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse record %s time: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) loadBudgets(ctx context.Context, accountID string, into map[string]float64) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, amount_limit FROM budgets WHERE account_id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("get budgets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			limit    float64
		)
		if err := rows.Scan(&category, &limit); err != nil {
			return fmt.Errorf("scan budget: %w", err)
		}
		into[category] = limit
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate budgets: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadAlerts(ctx context.Context, accountID string) ([]core.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, message, created_at, is_read FROM alerts WHERE account_id = ? ORDER BY seq`, accountID)
	if err != nil {
		return nil, fmt.Errorf("get alerts: %w", err)
	}
	defer rows.Close()

	var out []core.Alert
	for rows.Next() {
		var (
			a  core.Alert
			at string
		)
		if err := rows.Scan(&a.Kind, &a.Message, &at, &a.Read); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if a.CreatedAt, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse alert time: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return out, nil
}

// Save replaces every row of the account inside one transaction and bumps
// its version.
func (r *SQLiteRepository) Save(ctx context.Context, s account.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (id, balance, version, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET balance = excluded.balance, version = accounts.version + 1, updated_at = excluded.updated_at`,
		s.ID, s.Balance, r.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	if err := deleteChildren(ctx, tx, s.ID); err != nil {
		return err
	}
	if err := insertRecords(ctx, tx, s.ID, s.Records); err != nil {
		return err
	}
	if err := insertBudgets(ctx, tx, s.ID, s.Budgets); err != nil {
		return err
	}
	if err := insertAlerts(ctx, tx, s.ID, s.Alerts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Account saved to SQLite",
		"account_id", s.ID,
		"balance", s.Balance,
		"records", len(s.Records))
	return nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, accountID string) error {
	for _, table := range []string{"records", "budgets", "alerts"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE account_id = ?`, accountID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, accountID string, records []core.Record) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (account_id, seq, id, kind, amount, category, occurred_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, accountID, i, rec.ID, string(rec.Kind), rec.Amount, rec.Category,
			rec.OccurredAt.UTC().Format(timeLayout)); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return nil
}

func insertBudgets(ctx context.Context, tx *sql.Tx, accountID string, budgets map[string]float64) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO budgets (account_id, category, amount_limit) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare budget insert: %w", err)
	}
	defer stmt.Close()

	for category, limit := range budgets {
		if _, err := stmt.ExecContext(ctx, accountID, category, limit); err != nil {
			return fmt.Errorf("insert budget %q: %w", category, err)
		}
	}
	return nil
}

func insertAlerts(ctx context.Context, tx *sql.Tx, accountID string, alerts []core.Alert) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO alerts (account_id, seq, kind, message, created_at, is_read) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare alert insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range alerts {
		if _, err := stmt.ExecContext(ctx, accountID, i, string(a.Kind), a.Message,
			a.CreatedAt.UTC().Format(timeLayout), a.Read); err != nil {
			return fmt.Errorf("insert alert %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, accountID string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE id = ?`, accountID).Scan(&n); err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	return n > 0, nil
}

// Version returns how many times the account has been saved.
func (r *SQLiteRepository) Version(ctx context.Context, accountID string) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM accounts WHERE id = ?`, accountID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get account version: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, accountID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteChildren(ctx, tx, accountID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.WarnContext(ctx, "Account deleted", "account_id", accountID)
	return nil
}

// ListAccounts returns every stored account id.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
