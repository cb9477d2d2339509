// Package ledger holds the ordered income/expense log of an account and its
// cached running balance.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"wallet/internal/core"
)

// Ledger is an append-only sequence of records plus a running balance.
// The balance is a cached aggregate: every mutator keeps it equal to the sum
// of income minus the sum of expense over the records it has applied, kept
// in whole cents.
type Ledger struct {
	records []core.Record
	balance int64
	now     func() time.Time
	newID   func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source for new records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDGenerator overrides the record ID source.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) {
		if newID != nil {
			l.newID = newID
		}
	}
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromRecords rebuilds a ledger from persisted records, replaying them in
// order so the balance is derived rather than trusted.
func FromRecords(records []core.Record, opts ...Option) (*Ledger, error) {
	l := New(opts...)
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if r.ID == "" {
			r.ID = l.newID()
		}
		l.records = append(l.records, r)
		l.balance += int64(r.Kind.Sign()) * core.Cents(r.Amount)
	}
	return l, nil
}

// RecordIncome appends an income record and increases the balance.
func (l *Ledger) RecordIncome(amount float64, category string) (core.Record, error) {
	return l.Append(core.Income, amount, category, l.now())
}

// RecordExpense appends an expense record and decreases the balance.
// It fails with ErrInsufficientFunds when the balance is lower than amount.
func (l *Ledger) RecordExpense(amount float64, category string) (core.Record, error) {
	return l.Append(core.Expense, amount, category, l.now())
}

// Append validates and applies a record with an explicit timestamp. Imports
// use it to load historical entries; insertion order stays the order of
// application regardless of occurredAt.
func (l *Ledger) Append(kind core.Kind, amount float64, category string, occurredAt time.Time) (core.Record, error) {
	if err := kind.Validate(); err != nil {
		return core.Record{}, err
	}
	if err := core.ValidateAmount(amount); err != nil {
		return core.Record{}, err
	}
	cat, err := core.NormalizeCategory(category)
	if err != nil {
		return core.Record{}, err
	}
	if kind == core.Expense && l.balance < core.Cents(amount) {
		return core.Record{}, fmt.Errorf("%w: balance %.2f, required %.2f", core.ErrInsufficientFunds, l.Balance(), amount)
	}

	r := core.Record{
		ID:         l.newID(),
		Kind:       kind,
		Amount:     amount,
		Category:   cat,
		OccurredAt: occurredAt,
	}
	l.records = append(l.records, r)
	l.balance += int64(kind.Sign()) * core.Cents(amount)
	return r, nil
}

// Balance returns the cached running balance.
func (l *Ledger) Balance() float64 {
	return core.FromCents(l.balance)
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of all records in insertion order.
func (l *Ledger) Records() []core.Record {
	out := make([]core.Record, len(l.records))
	copy(out, l.records)
	return out
}

// Last returns the most recently applied record.
func (l *Ledger) Last() (core.Record, bool) {
	if len(l.records) == 0 {
		return core.Record{}, false
	}
	return l.records[len(l.records)-1], true
}

// RecentRecords returns the last n records in insertion order.
func (l *Ledger) RecentRecords(n int) []core.Record {
	if n <= 0 {
		return nil
	}
	start := len(l.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]core.Record, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}

// SetCategory rewrites the category of the record at index i in place.
// Identity, timestamp and amount are preserved.
func (l *Ledger) SetCategory(i int, category string) error {
	if i < 0 || i >= len(l.records) {
		return fmt.Errorf("record index %d out of range [0,%d)", i, len(l.records))
	}
	cat, err := core.NormalizeCategory(category)
	if err != nil {
		return err
	}
	l.records[i].Category = cat
	return nil
}
