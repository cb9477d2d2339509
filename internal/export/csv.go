// Package export renders account snapshots as CSV, JSON and plain-text
// reports, and reads records back from CSV for import.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wallet/internal/account"
	"wallet/internal/core"
)

var recordsHeader = []string{"date", "kind", "category", "amount", "balance"}

var budgetsHeader = []string{"category", "limit", "spent", "remaining", "usage_pct"}

// ErrBadHeader is returned when an imported CSV does not start with the
// records header.
var ErrBadHeader = errors.New("unexpected csv header")

// Amount renders a float64 amount with exactly two decimals.
func Amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// WriteRecordsCSV writes one row per record in ledger order with the
// balance after that record.
func WriteRecordsCSV(w io.Writer, snap account.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	running := decimal.Zero
	for _, r := range snap.Records {
		amt := decimal.NewFromFloat(r.Amount)
		if r.Kind == core.Expense {
			running = running.Sub(amt)
		} else {
			running = running.Add(amt)
		}
		row := []string{
			r.OccurredAt.Format(time.RFC3339),
			string(r.Kind),
			r.Category,
			amt.StringFixed(2),
			running.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBudgetsCSV writes one row per budget, tightest first.
func WriteBudgetsCSV(w io.Writer, snap account.Snapshot) error {
	acc, err := account.FromSnapshot(snap, account.Options{})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(budgetsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, st := range acc.BudgetStatuses() {
		usage := decimal.Zero
		if st.Limit > 0 {
			usage = decimal.NewFromFloat(st.Spent).Div(decimal.NewFromFloat(st.Limit)).Mul(decimal.NewFromInt(100))
		}
		row := []string{
			st.Category,
			Amount(st.Limit),
			Amount(st.Spent),
			Amount(st.Remaining),
			usage.StringFixed(1),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write budget %s: %w", st.Category, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRecordsCSV parses rows in the WriteRecordsCSV layout. The balance
// column is optional and ignored. Rows that fail to parse are returned as
// errors alongside the rows that did.
func ReadRecordsCSV(r io.Reader) ([]account.ImportRow, []error, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 4 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}

	var (
		rows []account.ImportRow
		errs []error
		line = 1
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		row, err := parseRow(rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, errs, nil
}

func parseRow(rec []string) (account.ImportRow, error) {
	if len(rec) < 4 {
		return account.ImportRow{}, fmt.Errorf("expected at least 4 fields, got %d", len(rec))
	}
	at, err := parseDate(rec[0])
	if err != nil {
		return account.ImportRow{}, err
	}
	kind := core.Kind(strings.ToLower(strings.TrimSpace(rec[1])))
	if err := kind.Validate(); err != nil {
		return account.ImportRow{}, fmt.Errorf("%w: %q", err, rec[1])
	}
	amount, err := core.ParseAmount(rec[3])
	if err != nil {
		return account.ImportRow{}, fmt.Errorf("%w: %q", err, rec[3])
	}
	return account.ImportRow{
		Kind:       kind,
		Amount:     amount,
		Category:   strings.TrimSpace(rec[2]),
		OccurredAt: at,
	}, nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
