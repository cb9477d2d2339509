package account

import (
	"sort"

	"wallet/internal/core"
)

// Categories returns every category seen in records or budgets with its
// totals, sorted by name.
func (a *Account) Categories() []core.CategoryStat {
	names := make(map[string]struct{})
	for _, c := range a.ledger.Categories() {
		names[c] = struct{}{}
	}
	for _, c := range a.budgets.Categories() {
		names[c] = struct{}{}
	}

	out := make([]core.CategoryStat, 0, len(names))
	for name := range names {
		st := core.CategoryStat{
			Name:    name,
			Income:  a.ledger.AmountByCategory(core.Income, name),
			Expense: a.ledger.AmountByCategory(core.Expense, name),
		}
		if limit, ok := a.budgets.Limit(name); ok {
			st.Limit, st.HasLimit = limit, true
			st.Remaining = limit - st.Expense
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CategoryTotals is the result of a multi-category calculation.
type CategoryTotals struct {
	Rows         []core.CategoryStat
	NotFound     []string
	TotalIncome  float64
	TotalExpense float64
}

// Net is income minus expense over the found categories.
func (t CategoryTotals) Net() float64 { return t.TotalIncome - t.TotalExpense }

// CalculateCategories totals income and expense across the given categories.
// Categories without any income or expense are reported in NotFound. The
// flags restrict the totals to one kind; both false means both kinds.
func (a *Account) CalculateCategories(categories []string, incomesOnly, expensesOnly bool) CategoryTotals {
	both := !incomesOnly && !expensesOnly
	var out CategoryTotals
	for _, c := range categories {
		income := a.ledger.AmountByCategory(core.Income, c)
		expense := a.ledger.AmountByCategory(core.Expense, c)
		if income <= 0 && expense <= 0 {
			out.NotFound = append(out.NotFound, c)
			continue
		}
		row := core.CategoryStat{Name: c}
		if both || incomesOnly {
			row.Income = income
			out.TotalIncome += income
		}
		if both || expensesOnly {
			row.Expense = expense
			out.TotalExpense += expense
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
