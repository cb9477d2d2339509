package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"wallet/internal/account"
)

// Document is the JSON export layout.
type Document struct {
	Account    string          `json:"account"`
	Balance    decimal.Decimal `json:"balance"`
	ExportedAt time.Time       `json:"exported_at"`
	Records    []JSONRecord    `json:"records"`
	Budgets    []JSONBudget    `json:"budgets"`
	Statistics JSONStatistics  `json:"statistics"`
}

type JSONRecord struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type JSONBudget struct {
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

type JSONStatistics struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Records      int             `json:"records"`
	Budgets      int             `json:"budgets"`
	UnreadAlerts int             `json:"unread_alerts"`
}

func fixed(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// BuildDocument assembles the JSON export for a snapshot.
func BuildDocument(snap account.Snapshot, now time.Time) (Document, error) {
	acc, err := account.FromSnapshot(snap, account.Options{})
	if err != nil {
		return Document{}, err
	}
	doc := Document{
		Account:    snap.ID,
		Balance:    fixed(acc.Balance()),
		ExportedAt: now.UTC(),
		Records:    make([]JSONRecord, 0, len(snap.Records)),
		Budgets:    []JSONBudget{},
		Statistics: JSONStatistics{
			TotalIncome:  fixed(acc.TotalIncome()),
			TotalExpense: fixed(acc.TotalExpense()),
			Records:      acc.RecordCount(),
			Budgets:      len(snap.Budgets),
			UnreadAlerts: acc.UnreadAlerts(),
		},
	}
	for _, r := range snap.Records {
		doc.Records = append(doc.Records, JSONRecord{
			ID:         r.ID,
			Kind:       string(r.Kind),
			Category:   r.Category,
			Amount:     fixed(r.Amount),
			OccurredAt: r.OccurredAt,
		})
	}
	for _, st := range acc.BudgetStatuses() {
		doc.Budgets = append(doc.Budgets, JSONBudget{
			Category:  st.Category,
			Limit:     fixed(st.Limit),
			Spent:     fixed(st.Spent),
			Remaining: fixed(st.Remaining),
		})
	}
	return doc, nil
}

// WriteJSON writes the indented JSON export.
func WriteJSON(w io.Writer, snap account.Snapshot, now time.Time) error {
	doc, err := BuildDocument(snap, now)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
