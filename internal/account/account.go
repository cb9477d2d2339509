// Package account is the single entry point for mutating a user's ledger,
// budgets and alerts.
//
// Every mutation goes through Account, which applies it and then runs the
// alert evaluation that the mutation calls for. An Account is not safe for
// concurrent use; the host serializes access.
package account

import (
	"fmt"
	"log/slog"
	"time"

	"wallet/internal/alerts"
	"wallet/internal/budget"
	"wallet/internal/core"
	"wallet/internal/ledger"
	"wallet/internal/rewrite"
)

// Account owns one ledger, one budget tracker and one alert list.
type Account struct {
	id       string
	ledger   *ledger.Ledger
	budgets  *budget.Tracker
	alerts   *alerts.List
	engine   *alerts.Engine
	rewriter *rewrite.Rewriter
}

// Options are the collaborators an Account is built with.
type Options struct {
	Engine        *alerts.Engine
	Logger        *slog.Logger
	LedgerOptions []ledger.Option
}

func (o Options) engine() *alerts.Engine {
	if o.Engine != nil {
		return o.Engine
	}
	return alerts.NewEngine(alerts.DefaultThresholds())
}

// New creates an empty account.
func New(id string, opts Options) *Account {
	l := ledger.New(opts.LedgerOptions...)
	return &Account{
		id:       id,
		ledger:   l,
		budgets:  budget.New(l),
		alerts:   alerts.NewList(),
		engine:   opts.engine(),
		rewriter: rewrite.New(opts.Logger),
	}
}

// ID returns the account identifier.
func (a *Account) ID() string {
	return a.id
}

// RecordIncome appends income and runs the full alert evaluation.
func (a *Account) RecordIncome(amount float64, category string) (core.Record, error) {
	r, err := a.ledger.RecordIncome(amount, category)
	if err != nil {
		return core.Record{}, err
	}
	a.engine.Evaluate(a.alerts, a.ledger, a.budgets)
	return r, nil
}

// RecordExpense appends an expense. An attempt larger than the balance raises
// a low-balance alert before it is rejected with ErrInsufficientFunds. On
// success the category's immediate budget check runs, then the full
// evaluation.
func (a *Account) RecordExpense(amount float64, category string) (core.Record, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return core.Record{}, err
	}
	if _, err := core.NormalizeCategory(category); err != nil {
		return core.Record{}, err
	}
	if balance := a.ledger.Balance(); core.Cents(balance) < core.Cents(amount) {
		a.engine.InsufficientFunds(a.alerts, balance, amount)
	}

	r, err := a.ledger.RecordExpense(amount, category)
	if err != nil {
		return core.Record{}, err
	}
	a.engine.CheckExpense(a.alerts, a.budgets, r.Category)
	a.engine.Evaluate(a.alerts, a.ledger, a.budgets)
	return r, nil
}

// SetBudget sets or overwrites a category limit. Budget changes do not
// trigger alert evaluation.
func (a *Account) SetBudget(category string, limit float64) error {
	return a.budgets.SetLimit(category, limit)
}

// EditBudget replaces an existing limit and returns the old one. Callers are
// expected to confirm with the user first when WouldUnderrunSpend is true.
func (a *Account) EditBudget(category string, limit float64) (float64, error) {
	return a.budgets.EditLimit(category, limit)
}

// WouldUnderrunSpend reports whether limit is below what category has spent.
func (a *Account) WouldUnderrunSpend(category string, limit float64) bool {
	return a.budgets.WouldUnderrunSpend(category, limit)
}

// RemoveBudget deletes a category limit and returns it.
func (a *Account) RemoveBudget(category string) (float64, error) {
	return a.budgets.RemoveLimit(category)
}

// RenameCategory relabels a category across records and budgets.
func (a *Account) RenameCategory(oldCategory, newCategory string) (rewrite.RenameResult, error) {
	res, err := a.rewriter.Rename(a.ledger, a.budgets, oldCategory, newCategory)
	if err != nil {
		return res, fmt.Errorf("rename %q: %w", oldCategory, err)
	}
	return res, nil
}

// MergeCategories folds categories into target.
func (a *Account) MergeCategories(categories []string, target string) (rewrite.MergeResult, error) {
	res, err := a.rewriter.Merge(a.ledger, a.budgets, categories, target)
	if err != nil {
		return res, fmt.Errorf("merge into %q: %w", target, err)
	}
	return res, nil
}

// Balance returns the cached ledger balance.
func (a *Account) Balance() float64 { return a.ledger.Balance() }

// TotalIncome sums all income.
func (a *Account) TotalIncome() float64 { return a.ledger.TotalIncome() }

// TotalExpense sums all expense.
func (a *Account) TotalExpense() float64 { return a.ledger.TotalExpense() }

// AmountByCategory sums records of kind in category.
func (a *Account) AmountByCategory(kind core.Kind, category string) float64 {
	return a.ledger.AmountByCategory(kind, category)
}

// Records returns every record in insertion order.
func (a *Account) Records() []core.Record { return a.ledger.Records() }

// RecordCount returns the number of records.
func (a *Account) RecordCount() int { return a.ledger.Len() }

// RecentRecords returns up to n of the latest records.
func (a *Account) RecentRecords(n int) []core.Record { return a.ledger.RecentRecords(n) }

// ByCategory groups totals of kind per category, largest first.
func (a *Account) ByCategory(kind core.Kind) []core.CategoryAmount { return a.ledger.ByCategory(kind) }

// Between summarizes the records dated within [from, to].
func (a *Account) Between(from, to time.Time) core.PeriodSummary { return a.ledger.Between(from, to) }

// Limit returns the budget for category.
func (a *Account) Limit(category string) (float64, bool) { return a.budgets.Limit(category) }

// Budgets returns a copy of all limits.
func (a *Account) Budgets() map[string]float64 { return a.budgets.Limits() }

// BudgetStatuses returns usage for every budget, tightest first.
func (a *Account) BudgetStatuses() []budget.Status { return a.budgets.Statuses() }

// Remaining returns limit minus spend for category; ok is false with no limit.
func (a *Account) Remaining(category string) (float64, bool) { return a.budgets.Remaining(category) }

// UsageRatio returns spend/limit for category; ok is false with no limit.
func (a *Account) UsageRatio(category string) (float64, bool) { return a.budgets.UsageRatio(category) }
