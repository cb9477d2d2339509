// Package budget tracks per-category spending limits and derives usage from
// the ledger.
package budget

import (
	"sort"
	"strings"

	"wallet/internal/core"
)

// SpendSource reports how much has been recorded for a category.
// *ledger.Ledger satisfies it.
type SpendSource interface {
	AmountByCategory(kind core.Kind, category string) float64
}

// Tracker maps categories to spending limits. A missing entry means no limit,
// never a zero limit.
type Tracker struct {
	limits map[string]float64
	spend  SpendSource
}

// New creates an empty tracker reading spend from src.
func New(src SpendSource) *Tracker {
	return &Tracker{
		limits: make(map[string]float64),
		spend:  src,
	}
}

// SetLimit stores limit for category, overwriting any existing one.
func (t *Tracker) SetLimit(category string, limit float64) error {
	cat, err := core.NormalizeCategory(category)
	if err != nil {
		return err
	}
	if err := core.ValidateAmount(limit); err != nil {
		return err
	}
	t.limits[cat] = limit
	return nil
}

// EditLimit replaces an existing limit and returns the previous value.
// Callers that need confirmation must check WouldUnderrunSpend first.
func (t *Tracker) EditLimit(category string, newLimit float64) (float64, error) {
	cat, err := core.NormalizeCategory(category)
	if err != nil {
		return 0, err
	}
	if err := core.ValidateAmount(newLimit); err != nil {
		return 0, err
	}
	old, ok := t.limits[cat]
	if !ok {
		return 0, core.ErrBudgetNotFound
	}
	t.limits[cat] = newLimit
	return old, nil
}

// WouldUnderrunSpend reports whether newLimit is below what has already been
// spent in category.
func (t *Tracker) WouldUnderrunSpend(category string, newLimit float64) bool {
	return newLimit < t.Spent(category)
}

// RemoveLimit deletes the limit for category and returns it.
func (t *Tracker) RemoveLimit(category string) (float64, error) {
	category, err := core.NormalizeCategory(category)
	if err != nil {
		return 0, err
	}
	limit, ok := t.limits[category]
	if !ok {
		return 0, core.ErrBudgetNotFound
	}
	delete(t.limits, category)
	return limit, nil
}

// Limit returns the limit for category; ok is false when none is set.
func (t *Tracker) Limit(category string) (limit float64, ok bool) {
	limit, ok = t.limits[strings.TrimSpace(category)]
	return limit, ok
}

// Has reports whether category has a limit.
func (t *Tracker) Has(category string) bool {
	_, ok := t.limits[strings.TrimSpace(category)]
	return ok
}

// Spent is the expense total recorded for category.
func (t *Tracker) Spent(category string) float64 {
	if t.spend == nil {
		return 0
	}
	return t.spend.AmountByCategory(core.Expense, strings.TrimSpace(category))
}

// Remaining returns limit minus spend. A negative value means over budget;
// ok is false when category has no limit.
func (t *Tracker) Remaining(category string) (remaining float64, ok bool) {
	limit, ok := t.limits[category]
	if !ok {
		return 0, false
	}
	return limit - t.Spent(category), true
}

// UsageRatio returns spend/limit; ok is false when the limit is absent or zero.
func (t *Tracker) UsageRatio(category string) (ratio float64, ok bool) {
	limit, ok := t.limits[category]
	if !ok || limit == 0 {
		return 0, false
	}
	return t.Spent(category) / limit, true
}

// Categories returns every budgeted category, sorted.
func (t *Tracker) Categories() []string {
	out := make([]string, 0, len(t.limits))
	for c := range t.limits {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Limits returns a copy of the category to limit mapping.
func (t *Tracker) Limits() map[string]float64 {
	out := make(map[string]float64, len(t.limits))
	for c, l := range t.limits {
		out[c] = l
	}
	return out
}

// Len returns the number of budgets.
func (t *Tracker) Len() int {
	return len(t.limits)
}

// Move re-keys the budget of from to to, overwriting any budget of to.
// It reports the moved limit; ok is false when from had no budget.
func (t *Tracker) Move(from, to string) (limit float64, ok bool) {
	limit, ok = t.limits[from]
	if !ok {
		return 0, false
	}
	delete(t.limits, from)
	t.limits[to] = limit
	return limit, true
}

// Take removes and returns the budget for category, if any.
func (t *Tracker) Take(category string) (limit float64, ok bool) {
	limit, ok = t.limits[category]
	if ok {
		delete(t.limits, category)
	}
	return limit, ok
}

// Status is a snapshot of one budget's usage.
type Status struct {
	Category  string
	Limit     float64
	Spent     float64
	Remaining float64
}

// Statuses returns every budget ordered by remaining amount, tightest first.
func (t *Tracker) Statuses() []Status {
	out := make([]Status, 0, len(t.limits))
	for c, limit := range t.limits {
		spent := t.Spent(c)
		out = append(out, Status{Category: c, Limit: limit, Spent: spent, Remaining: limit - spent})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Remaining != out[j].Remaining {
			return out[i].Remaining < out[j].Remaining
		}
		return out[i].Category < out[j].Category
	})
	return out
}
