package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet/internal/account"
	"wallet/internal/budget"
	"wallet/internal/core"
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrUnknownPeriod = errors.New("unknown period: use day, week, month, year or last_month")
)

// Statistics is the full account overview.
type Statistics struct {
	AccountID    string
	Balance      float64
	TotalIncome  float64
	TotalExpense float64
	RecordCount  int
	IncomeByCat  []core.CategoryAmount
	ExpenseByCat []core.CategoryAmount
	Budgets      []budget.Status
	UnreadAlerts int
	// Health holds the alerts raised by the statistics-time checks.
	Health []core.Alert
}

func (s Statistics) Net() float64 { return s.TotalIncome - s.TotalExpense }

// Statistics builds the overview and runs the health check, which may add
// alerts; the account is saved afterwards.
func (s *WalletService) Statistics(ctx context.Context) (Statistics, error) {
	var st Statistics
	err := s.mutate(ctx, "statistics", func(a *account.Account) error {
		st = Statistics{
			AccountID:    a.ID(),
			Balance:      a.Balance(),
			TotalIncome:  a.TotalIncome(),
			TotalExpense: a.TotalExpense(),
			RecordCount:  a.RecordCount(),
			IncomeByCat:  a.ByCategory(core.Income),
			ExpenseByCat: a.ByCategory(core.Expense),
			Budgets:      a.BudgetStatuses(),
		}
		st.Health = a.CheckHealth()
		st.UnreadAlerts = a.UnreadAlerts()
		return nil
	})
	return st, err
}

// Summary is the short overview printed by the summary command.
type Summary struct {
	Balance      float64
	TotalIncome  float64
	TotalExpense float64
	Recent       []core.Record
	UnreadAlerts int
}

// Summary returns balance, totals and the last n records.
func (s *WalletService) Summary(n int) (Summary, error) {
	var sum Summary
	err := s.read(func(a *account.Account) error {
		sum = Summary{
			Balance:      a.Balance(),
			TotalIncome:  a.TotalIncome(),
			TotalExpense: a.TotalExpense(),
			Recent:       a.RecentRecords(n),
			UnreadAlerts: a.UnreadAlerts(),
		}
		return nil
	})
	return sum, err
}

// Budgets returns budget usage, tightest first.
func (s *WalletService) Budgets() ([]budget.Status, error) {
	var out []budget.Status
	err := s.read(func(a *account.Account) error {
		out = a.BudgetStatuses()
		return nil
	})
	return out, err
}

// PeriodReport summarizes records dated within [from, to], inclusive by day.
func (s *WalletService) PeriodReport(from, to time.Time) (core.PeriodSummary, error) {
	if to.Before(from) {
		return core.PeriodSummary{}, fmt.Errorf("%w: %s is after %s", ErrInvalidPeriod,
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	var out core.PeriodSummary
	err := s.read(func(a *account.Account) error {
		out = a.Between(from, to)
		return nil
	})
	return out, err
}

// QuickReport runs PeriodReport over a named period relative to today.
func (s *WalletService) QuickReport(period string) (core.PeriodSummary, error) {
	from, to, err := PeriodRange(period, s.now())
	if err != nil {
		return core.PeriodSummary{}, err
	}
	return s.PeriodReport(from, to)
}

// PeriodRange resolves day|today|week|month|year|last_month against now.
// A week is the last seven days plus today.
func PeriodRange(period string, now time.Time) (from, to time.Time, err error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	y, m, _ := today.Date()

	switch strings.ToLower(strings.TrimSpace(period)) {
	case "day", "today":
		return today, today, nil
	case "week":
		return today.AddDate(0, 0, -7), today, nil
	case "month":
		first := time.Date(y, m, 1, 0, 0, 0, 0, today.Location())
		return first, first.AddDate(0, 1, -1), nil
	case "year":
		return time.Date(y, 1, 1, 0, 0, 0, 0, today.Location()), time.Date(y, 12, 31, 0, 0, 0, 0, today.Location()), nil
	case "last_month":
		first := time.Date(y, m-1, 1, 0, 0, 0, 0, today.Location())
		return first, first.AddDate(0, 1, -1), nil
	default:
		return time.Time{}, time.Time{}, ErrUnknownPeriod
	}
}

// CategoriesReport totals the given categories.
func (s *WalletService) CategoriesReport(categories []string, incomesOnly, expensesOnly bool) (account.CategoryTotals, error) {
	if len(categories) == 0 {
		return account.CategoryTotals{}, core.ErrInvalidCategory
	}
	var out account.CategoryTotals
	err := s.read(func(a *account.Account) error {
		out = a.CalculateCategories(categories, incomesOnly, expensesOnly)
		return nil
	})
	return out, err
}

// ListCategories returns every known category with totals and budget.
func (s *WalletService) ListCategories() ([]core.CategoryStat, error) {
	var out []core.CategoryStat
	err := s.read(func(a *account.Account) error {
		out = a.Categories()
		return nil
	})
	return out, err
}
