package ledger

import (
	"sort"
	"time"

	"wallet/internal/core"
)

// TotalIncome sums every income record. Not cached.
func (l *Ledger) TotalIncome() float64 {
	return l.sum(func(r core.Record) bool { return r.Kind == core.Income })
}

// TotalExpense sums every expense record. Not cached.
func (l *Ledger) TotalExpense() float64 {
	return l.sum(func(r core.Record) bool { return r.Kind == core.Expense })
}

// AmountByCategory sums records of kind whose category matches exactly.
func (l *Ledger) AmountByCategory(kind core.Kind, category string) float64 {
	return l.sum(func(r core.Record) bool { return r.Kind == kind && r.Category == category })
}

// CountByCategory returns how many records carry category.
func (l *Ledger) CountByCategory(category string) int {
	n := 0
	for _, r := range l.records {
		if r.Category == category {
			n++
		}
	}
	return n
}

// HasCategory reports whether any record carries category.
func (l *Ledger) HasCategory(category string) bool {
	for _, r := range l.records {
		if r.Category == category {
			return true
		}
	}
	return false
}

// IndexesOf returns the positions of records whose category is in set.
func (l *Ledger) IndexesOf(set map[string]bool) []int {
	var out []int
	for i, r := range l.records {
		if set[r.Category] {
			out = append(out, i)
		}
	}
	return out
}

// Categories returns the distinct record categories, sorted.
func (l *Ledger) Categories() []string {
	seen := make(map[string]struct{})
	for _, r := range l.records {
		seen[r.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ByCategory groups totals of kind per category, largest first.
func (l *Ledger) ByCategory(kind core.Kind) []core.CategoryAmount {
	return groupByCategory(l.records, kind)
}

// Between summarizes records whose calendar date lies in [from, to],
// both ends inclusive.
func (l *Ledger) Between(from, to time.Time) core.PeriodSummary {
	summary := core.PeriodSummary{From: from, To: to}
	start := truncateDay(from)
	end := truncateDay(to)

	var in []core.Record
	var income, expense int64
	for _, r := range l.records {
		d := truncateDay(r.OccurredAt.In(from.Location()))
		if d.Before(start) || d.After(end) {
			continue
		}
		in = append(in, r)
		switch r.Kind {
		case core.Income:
			income += core.Cents(r.Amount)
		case core.Expense:
			expense += core.Cents(r.Amount)
		}
	}
	summary.TotalIncome = core.FromCents(income)
	summary.TotalExpense = core.FromCents(expense)
	summary.Count = len(in)
	summary.IncomeByCat = groupByCategory(in, core.Income)
	summary.ExpenseByCat = groupByCategory(in, core.Expense)
	return summary
}

// sum adds in whole cents so totals compare exactly against each other.
func (l *Ledger) sum(match func(core.Record) bool) float64 {
	var total int64
	for _, r := range l.records {
		if match(r) {
			total += core.Cents(r.Amount)
		}
	}
	return core.FromCents(total)
}

func groupByCategory(records []core.Record, kind core.Kind) []core.CategoryAmount {
	totals := make(map[string]int64)
	for _, r := range records {
		if r.Kind == kind {
			totals[r.Category] += core.Cents(r.Amount)
		}
	}
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.FromCents(cents)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
