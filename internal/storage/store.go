// Package storage persists account snapshots.
package storage

import (
	"context"
	"errors"

	"wallet/internal/account"
)

// ErrNotFound is returned by Load and Delete for unknown accounts.
var ErrNotFound = errors.New("account not found")

// Store loads and saves whole account snapshots.
type Store interface {
	Load(ctx context.Context, accountID string) (account.Snapshot, error)
	Save(ctx context.Context, s account.Snapshot) error
	Exists(ctx context.Context, accountID string) (bool, error)
	Delete(ctx context.Context, accountID string) error
}

// cloneSnapshot deep-copies s so stores never share slices or maps with
// their callers.
func cloneSnapshot(s account.Snapshot) account.Snapshot {
	out := account.Snapshot{ID: s.ID, Balance: s.Balance}
	out.Records = append(out.Records, s.Records...)
	out.Alerts = append(out.Alerts, s.Alerts...)
	out.Budgets = make(map[string]float64, len(s.Budgets))
	for k, v := range s.Budgets {
		out.Budgets[k] = v
	}
	return out
}
