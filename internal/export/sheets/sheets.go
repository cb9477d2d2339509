// Package sheets mirrors an account ledger into a Google Sheets tab.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"wallet/internal/account"
)

// LedgerWriter replaces a remote sheet with an account's ledger.
type LedgerWriter interface {
	WriteLedger(ctx context.Context, snap account.Snapshot) error
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

var _ LedgerWriter = (*Client)(nil)

// Config selects the spreadsheet and the credentials used to reach it.
// CredentialsJSON wins over CredentialsFile; with neither set the
// application default credentials are used.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// New creates a Sheets client.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = slog.Default()
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Ledger"
	}

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, goption.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", id, "sheet", sheet)
	return &Client{svc: svc, spreadsheetID: id, sheetName: sheet, logger: logger}, nil
}

// WriteLedger clears the sheet and writes a header plus one row per record.
func (c *Client) WriteLedger(ctx context.Context, snap account.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	rows := LedgerRows(snap)
	vr := &gsheet.ValueRange{Values: rows}
	target := fmt.Sprintf("%s!A1", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, target, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", target, err)
	}
	c.logger.InfoContext(ctx, "Ledger written to sheet",
		"account_id", snap.ID, "rows", len(rows)-1, "sheet", c.sheetName)
	return nil
}

// LedgerRows builds the sheet payload: a header then one row per record
// with signed amounts and the running balance.
func LedgerRows(snap account.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Records)+1)
	rows = append(rows, []interface{}{"Date", "Kind", "Category", "Amount", "Balance"})
	var balance float64
	for _, r := range snap.Records {
		signed := r.Kind.Sign() * r.Amount
		balance += signed
		rows = append(rows, []interface{}{
			r.OccurredAt.Format(time.DateOnly),
			string(r.Kind),
			r.Category,
			round2(signed),
			round2(balance),
		})
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
