package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/amqp"
	"wallet/internal/export"
	"wallet/internal/export/sheets"
	"wallet/internal/storage"
)

// ExportWorker refreshes the on-disk exports of an account whenever it
// changes, and optionally mirrors its ledger to Google Sheets.
type ExportWorker struct {
	store   storage.Store
	dir     string
	formats []export.Format
	sheets  sheets.LedgerWriter
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an ExportWorker.
type Option func(*ExportWorker)

// WithSheets enables the Google Sheets sink.
func WithSheets(w sheets.LedgerWriter) Option {
	return func(e *ExportWorker) { e.sheets = w }
}

// WithFormats restricts the file formats written.
func WithFormats(formats ...export.Format) Option {
	return func(e *ExportWorker) { e.formats = formats }
}

// WithClock overrides the export timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *ExportWorker) { e.now = now }
}

func NewExportWorker(store storage.Store, dir string, logger *slog.Logger, opts ...Option) *ExportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &ExportWorker{
		store:   store,
		dir:     dir,
		formats: export.Formats,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleAccountChanged processes a single account-changed message from AMQP.
// Messages for accounts that no longer exist are acknowledged and dropped.
func (w *ExportWorker) HandleAccountChanged(ctx context.Context, msg *amqp.AccountChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing account changed message",
		"account_id", msg.AccountID,
		"version", msg.Version,
		"operation", msg.Operation)

	snap, err := w.store.Load(ctx, msg.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "Account not found, skipping export", "account_id", msg.AccountID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load account %s: %w", msg.AccountID, err)
	}

	now := w.now()
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range w.formats {
		path := filepath.Join(w.dir, export.FileName(snap.ID, f))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := export.WriteFile(path, f, snap, now); err != nil {
				return fmt.Errorf("%s export: %w", f, err)
			}
			return nil
		})
	}
	if w.sheets != nil {
		g.Go(func() error {
			if err := w.sheets.WriteLedger(gctx, snap); err != nil {
				return fmt.Errorf("sheets export: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		w.logger.ErrorContext(ctx, "Export failed", "account_id", msg.AccountID, "error", err)
		return err
	}

	w.logger.InfoContext(ctx, "Account exported",
		"account_id", msg.AccountID,
		"records", len(snap.Records),
		"formats", len(w.formats),
		"sheets", w.sheets != nil)
	return nil
}
