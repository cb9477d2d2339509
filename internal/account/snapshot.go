package account

import (
	"fmt"

	"wallet/internal/alerts"
	"wallet/internal/budget"
	"wallet/internal/core"
	"wallet/internal/ledger"
	"wallet/internal/rewrite"
)

// Snapshot is the plain-value form of an Account handed to persistence.
type Snapshot struct {
	ID      string             `json:"id"`
	Balance float64            `json:"balance"`
	Records []core.Record      `json:"records"`
	Budgets map[string]float64 `json:"budgets"`
	Alerts  []core.Alert       `json:"alerts"`
}

// Snapshot copies the account state.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		ID:      a.id,
		Balance: a.ledger.Balance(),
		Records: a.ledger.Records(),
		Budgets: a.budgets.Limits(),
		Alerts:  a.alerts.ListAll(),
	}
}

// FromSnapshot rebuilds an account. The balance is recomputed from the
// records; a stored balance that disagrees is rejected.
func FromSnapshot(s Snapshot, opts Options) (*Account, error) {
	l, err := ledger.FromRecords(s.Records, opts.LedgerOptions...)
	if err != nil {
		return nil, fmt.Errorf("restore ledger: %w", err)
	}
	if core.Cents(l.Balance()) != core.Cents(s.Balance) {
		return nil, fmt.Errorf("restore ledger: stored balance %.2f does not match records (%.2f)", s.Balance, l.Balance())
	}

	b := budget.New(l)
	for category, limit := range s.Budgets {
		if err := b.SetLimit(category, limit); err != nil {
			return nil, fmt.Errorf("restore budget %q: %w", category, err)
		}
	}
	for i, al := range s.Alerts {
		if err := al.Kind.Validate(); err != nil {
			return nil, fmt.Errorf("restore alert %d: %w", i, err)
		}
	}

	return &Account{
		id:       s.ID,
		ledger:   l,
		budgets:  b,
		alerts:   alerts.NewList(s.Alerts...),
		engine:   opts.engine(),
		rewriter: rewrite.New(opts.Logger),
	}, nil
}
