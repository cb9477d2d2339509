package sheets

import (
	"context"
	"testing"
	"time"

	"wallet/internal/account"
	"wallet/internal/core"
)

func TestLedgerRows(t *testing.T) {
	day := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	snap := account.Snapshot{
		ID:      "alice",
		Balance: 69.9,
		Records: []core.Record{
			{ID: "1", Kind: core.Income, Amount: 100, Category: "Salary", OccurredAt: day},
			{ID: "2", Kind: core.Expense, Amount: 30.1, Category: "Food", OccurredAt: day.Add(24 * time.Hour)},
		},
	}
	rows := LedgerRows(snap)
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][4] != "Balance" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[2][0] != "2025-02-02" || rows[2][1] != "expense" || rows[2][3] != -30.1 || rows[2][4] != 69.9 {
		t.Fatalf("unexpected expense row: %v", rows[2])
	}
}

func TestLedgerRowsEmpty(t *testing.T) {
	if rows := LedgerRows(account.Snapshot{ID: "x"}); len(rows) != 1 {
		t.Fatalf("empty ledger should only have a header, got %d rows", len(rows))
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteLedgerWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Ledger"}
	if err := c.WriteLedger(context.Background(), account.Snapshot{}); err == nil {
		t.Fatalf("expected error without service")
	}
}
