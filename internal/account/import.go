package account

import (
	"errors"
	"fmt"
	"time"

	"wallet/internal/core"
)

// ImportRow is one externally supplied record.
type ImportRow struct {
	Line       int
	Kind       core.Kind
	Amount     float64
	Category   string
	OccurredAt time.Time
}

// ImportResult reports what Import applied.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// Import replays rows through the ledger in order, keeping their timestamps.
// Invalid rows and expenses the balance cannot cover are skipped and
// reported. The alert sweep runs once at the end if anything was applied.
func (a *Account) Import(rows []ImportRow) ImportResult {
	var res ImportResult
	for _, row := range rows {
		at := row.OccurredAt
		if at.IsZero() {
			at = time.Now()
		}
		if _, err := a.ledger.Append(row.Kind, row.Amount, row.Category, at); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", row.Line, err))
			continue
		}
		res.Imported++
	}
	if res.Imported > 0 {
		a.engine.Evaluate(a.alerts, a.ledger, a.budgets)
	}
	return res
}

// Err joins the per-row errors, or returns nil when every row was applied.
func (r ImportResult) Err() error {
	return errors.Join(r.Errors...)
}
