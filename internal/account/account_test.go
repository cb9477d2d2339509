package account

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"wallet/internal/alerts"
	"wallet/internal/core"
	"wallet/internal/ledger"
)

func newTestAccount(t *testing.T) *Account {
	t.Helper()
	return New("acc-1", Options{})
}

func countKind(list []core.Alert, kind core.AlertKind) int {
	n := 0
	for _, a := range list {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func mustIncome(t *testing.T, a *Account, amount float64, category string) {
	t.Helper()
	if _, err := a.RecordIncome(amount, category); err != nil {
		t.Fatalf("income %v %s: %v", amount, category, err)
	}
}

func mustExpense(t *testing.T, a *Account, amount float64, category string) {
	t.Helper()
	if _, err := a.RecordExpense(amount, category); err != nil {
		t.Fatalf("expense %v %s: %v", amount, category, err)
	}
}

func TestExpenseOverBudgetRaisesSingleExceeded(t *testing.T) {
	var notified []core.Alert
	engine := alerts.NewEngine(alerts.DefaultThresholds(),
		alerts.WithNotifier(alerts.NotifierFunc(func(al core.Alert) { notified = append(notified, al) })))
	a := New("acc", Options{Engine: engine})

	mustIncome(t, a, 2000, "Salary")
	if err := a.SetBudget("Food", 1000); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	mustExpense(t, a, 1200, "Food")

	if got := countKind(a.ListAlerts(), core.BudgetExceeded); got != 1 {
		t.Fatalf("budget exceeded alerts=%d, want 1: %+v", got, a.ListAlerts())
	}
	if countKind(notified, core.BudgetExceeded) != 1 {
		t.Fatalf("exceeded alert should be surfaced immediately, got %+v", notified)
	}
	if a.Balance() != 800 {
		t.Fatalf("balance=%v, want 800", a.Balance())
	}
}

func TestRepeatedWarningIsDeduplicated(t *testing.T) {
	a := newTestAccount(t)
	mustIncome(t, a, 5000, "Salary")
	if err := a.SetBudget("Food", 1000); err != nil {
		t.Fatal(err)
	}
	mustExpense(t, a, 850, "Food")
	mustExpense(t, a, 10, "Food")

	if got := countKind(a.ListAlerts(), core.BudgetWarning); got != 1 {
		t.Fatalf("budget warnings=%d, want 1: %+v", got, a.ListAlerts())
	}
}

func TestExpenseWithoutFunds(t *testing.T) {
	a := newTestAccount(t)
	_, err := a.RecordExpense(50, "Food")
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	all := a.ListAlerts()
	if len(all) != 1 || all[0].Kind != core.LowBalance {
		t.Fatalf("expected a single low balance alert, got %+v", all)
	}
	if a.Balance() != 0 || a.RecordCount() != 0 {
		t.Fatalf("ledger must be untouched")
	}
}

func TestExpenseOfExactRemainingBalance(t *testing.T) {
	a := newTestAccount(t)
	mustIncome(t, a, 0.3, "Gift")
	mustExpense(t, a, 0.1, "Food")
	mustExpense(t, a, 0.2, "Food")

	if a.Balance() != 0 {
		t.Fatalf("balance=%v, want 0", a.Balance())
	}
	var zero, overspending int
	for _, al := range a.ListAlerts() {
		switch {
		case strings.Contains(al.Message, "Insufficient funds"):
			t.Fatalf("unexpected insufficient funds alert: %+v", al)
		case strings.Contains(al.Message, "Balance is zero"):
			zero++
		case al.Kind == core.Overspending:
			overspending++
		}
	}
	if zero != 1 {
		t.Fatalf("zero balance alerts=%d, want 1: %+v", zero, a.ListAlerts())
	}
	if overspending != 0 {
		t.Fatalf("expenses equal income, got overspending alerts: %+v", a.ListAlerts())
	}
}

func TestInvalidInputRaisesNoAlert(t *testing.T) {
	a := newTestAccount(t)
	tests := []struct {
		name     string
		amount   float64
		category string
		want     error
	}{
		{"zero", 0, "Food", core.ErrInvalidAmount},
		{"negative", -3, "Food", core.ErrInvalidAmount},
		{"nan", math.NaN(), "Food", core.ErrInvalidAmount},
		{"blank category", 10, "  ", core.ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.RecordExpense(tt.amount, tt.category); !errors.Is(err, tt.want) {
				t.Fatalf("expense: got %v, want %v", err, tt.want)
			}
			if _, err := a.RecordIncome(tt.amount, tt.category); !errors.Is(err, tt.want) {
				t.Fatalf("income: got %v, want %v", err, tt.want)
			}
		})
	}
	if len(a.ListAlerts()) != 0 {
		t.Fatalf("validation failures must not raise alerts: %+v", a.ListAlerts())
	}
}

func TestBudgetChangesDoNotEvaluate(t *testing.T) {
	a := newTestAccount(t)
	mustIncome(t, a, 5000, "Salary")
	mustExpense(t, a, 900, "Food")
	before := len(a.ListAlerts())

	if err := a.SetBudget("Food", 500); err != nil {
		t.Fatal(err)
	}
	if !a.WouldUnderrunSpend("Food", 100) {
		t.Fatalf("limit 100 is below the 900 already spent")
	}
	old, err := a.EditBudget("Food", 100)
	if err != nil || old != 500 {
		t.Fatalf("edit: old=%v err=%v", old, err)
	}
	if len(a.ListAlerts()) != before {
		t.Fatalf("budget operations raised alerts")
	}
	if _, err := a.RemoveBudget("Missing"); !errors.Is(err, core.ErrBudgetNotFound) {
		t.Fatalf("expected ErrBudgetNotFound, got %v", err)
	}
}

func TestBalanceInvariant(t *testing.T) {
	a := newTestAccount(t)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		amount := float64(rng.Intn(5000)+1) / 10
		if rng.Intn(2) == 0 {
			_, _ = a.RecordIncome(amount, "In")
		} else {
			_, _ = a.RecordExpense(amount, "Out")
		}
		if a.Balance() < 0 {
			t.Fatalf("balance went negative: %v", a.Balance())
		}
		if diff := a.Balance() - (a.TotalIncome() - a.TotalExpense()); math.Abs(diff) > 1e-6 {
			t.Fatalf("balance drifted by %v", diff)
		}
	}
}

func TestRenamePreservesTotals(t *testing.T) {
	a := newTestAccount(t)
	mustIncome(t, a, 3000, "Salary")
	mustExpense(t, a, 100, "Food")
	mustExpense(t, a, 50, "Food")
	if err := a.SetBudget("Food", 400); err != nil {
		t.Fatal(err)
	}

	balance := a.Balance()
	res, err := a.RenameCategory("Food", "Groceries")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if res.RecordsRenamed != 2 || !res.BudgetMoved {
		t.Fatalf("unexpected result: %+v", res)
	}
	if a.Balance() != balance {
		t.Fatalf("balance changed")
	}
	if got := a.AmountByCategory(core.Expense, "Groceries"); got != 150 {
		t.Fatalf("groceries=%v, want 150", got)
	}
	if _, ok := a.Limit("Food"); ok {
		t.Fatalf("old budget should be gone")
	}

	if _, err := a.RenameCategory("Nope", "Other"); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestMergeCategories(t *testing.T) {
	a := newTestAccount(t)
	mustIncome(t, a, 3000, "Salary")
	mustExpense(t, a, 100, "Cafe")
	mustExpense(t, a, 200, "Restaurant")
	_ = a.SetBudget("Cafe", 150)
	_ = a.SetBudget("Restaurant", 350)

	res, err := a.MergeCategories([]string{"Cafe", "Restaurant", "Cinema"}, "Eating out")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.TotalExpense != 300 || len(res.NotFound) != 1 || res.NotFound[0] != "Cinema" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if limit, ok := a.Limit("Eating out"); !ok || limit != 500 {
		t.Fatalf("merged limit=%v ok=%v, want 500", limit, ok)
	}
	if got := a.AmountByCategory(core.Expense, "Eating out"); got != 300 {
		t.Fatalf("merged spend=%v", got)
	}

	if _, err := a.MergeCategories([]string{"Only"}, "X"); !errors.Is(err, core.ErrInsufficientCategories) {
		t.Fatalf("expected ErrInsufficientCategories, got %v", err)
	}
	if _, err := a.MergeCategories([]string{"A", "B"}, "X"); !errors.Is(err, core.ErrNoCategoriesFound) {
		t.Fatalf("expected ErrNoCategoriesFound, got %v", err)
	}
}

func TestCalculateCategories(t *testing.T) {
	a := newTestAccount(t)
	mustIncome(t, a, 1000, "Salary")
	mustIncome(t, a, 200, "Food")
	mustExpense(t, a, 300, "Food")

	tests := []struct {
		name           string
		incomes, costs bool
		wantIn, wantEx float64
	}{
		{"both", false, false, 1200, 300},
		{"incomes only", true, false, 1200, 0},
		{"expenses only", false, true, 0, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.CalculateCategories([]string{"Salary", "Food", "Travel"}, tt.incomes, tt.costs)
			if got.TotalIncome != tt.wantIn || got.TotalExpense != tt.wantEx {
				t.Fatalf("totals=%v/%v, want %v/%v", got.TotalIncome, got.TotalExpense, tt.wantIn, tt.wantEx)
			}
			if len(got.NotFound) != 1 || got.NotFound[0] != "Travel" {
				t.Fatalf("not found=%v", got.NotFound)
			}
		})
	}
}

func TestCategoriesIncludesBudgetOnly(t *testing.T) {
	a := newTestAccount(t)
	mustIncome(t, a, 1000, "Salary")
	_ = a.SetBudget("Travel", 300)

	stats := a.Categories()
	if len(stats) != 2 || stats[0].Name != "Salary" || stats[1].Name != "Travel" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !stats[1].HasLimit || stats[1].Remaining != 300 {
		t.Fatalf("travel stat: %+v", stats[1])
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	a := newTestAccount(t)
	mustIncome(t, a, 2500, "Salary")
	mustExpense(t, a, 400, "Rent")
	_ = a.SetBudget("Rent", 500)

	s := a.Snapshot()
	b, err := FromSnapshot(s, Options{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if b.ID() != a.ID() || b.Balance() != a.Balance() || b.RecordCount() != 2 {
		t.Fatalf("restored account differs: %+v", b.Snapshot())
	}
	if len(b.ListAlerts()) != len(a.ListAlerts()) {
		t.Fatalf("alerts not restored")
	}

	s.Balance += 1
	if _, err := FromSnapshot(s, Options{}); err == nil {
		t.Fatalf("expected balance mismatch error")
	}
}

func TestImport(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	a := New("acc", Options{LedgerOptions: []ledger.Option{ledger.WithClock(func() time.Time { return day })}})

	res := a.Import([]ImportRow{
		{Line: 2, Kind: core.Income, Amount: 1000, Category: "Salary", OccurredAt: day},
		{Line: 3, Kind: core.Expense, Amount: 5000, Category: "Car", OccurredAt: day},
		{Line: 4, Kind: core.Expense, Amount: 100, Category: " ", OccurredAt: day},
		{Line: 5, Kind: core.Expense, Amount: 100, Category: "Food", OccurredAt: day},
	})
	if res.Imported != 2 || res.Skipped != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !errors.Is(res.Err(), core.ErrInsufficientFunds) || !errors.Is(res.Err(), core.ErrInvalidCategory) {
		t.Fatalf("expected both row errors, got %v", res.Err())
	}
	if a.Balance() != 900 {
		t.Fatalf("balance=%v, want 900", a.Balance())
	}
	if sum := a.Between(day, day); sum.Count != 2 {
		t.Fatalf("imported records keep their dates, got %+v", sum)
	}
}

func TestDisplayAlertsMarksRead(t *testing.T) {
	a := newTestAccount(t)
	_, _ = a.RecordExpense(10, "Food")
	if a.UnreadAlerts() != 1 {
		t.Fatalf("unread=%d", a.UnreadAlerts())
	}
	unread, all := a.DisplayAlerts()
	if len(unread) != 1 || len(all) != 1 {
		t.Fatalf("unexpected listing")
	}
	if a.UnreadAlerts() != 0 {
		t.Fatalf("display should mark read")
	}
	if hc := a.CheckHealth(); len(hc) != 1 || hc[0].Kind != core.LowBalance {
		t.Fatalf("health on empty account: %+v", hc)
	}
	a.ClearAlerts()
	if len(a.ListAlerts()) != 0 {
		t.Fatalf("clear failed")
	}
}
