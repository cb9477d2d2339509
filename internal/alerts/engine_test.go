package alerts

import (
	"strings"
	"testing"
	"time"

	"wallet/internal/core"
)

type fakeLedger struct {
	balance, income, expense float64
	n                        int
	last                     *core.Record
}

func (f fakeLedger) Balance() float64      { return f.balance }
func (f fakeLedger) TotalIncome() float64  { return f.income }
func (f fakeLedger) TotalExpense() float64 { return f.expense }
func (f fakeLedger) Len() int              { return f.n }
func (f fakeLedger) Last() (core.Record, bool) {
	if f.last == nil {
		return core.Record{}, false
	}
	return *f.last, true
}

type fakeBudgets struct {
	limits map[string]float64
	spent  map[string]float64
}

func (f fakeBudgets) Categories() []string {
	var out []string
	for c := range f.limits {
		out = append(out, c)
	}
	return out
}
func (f fakeBudgets) Limit(c string) (float64, bool) { l, ok := f.limits[c]; return l, ok }
func (f fakeBudgets) Spent(c string) float64         { return f.spent[c] }

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(n Notifier) *Engine {
	return NewEngine(DefaultThresholds(), WithClock(func() time.Time { return testNow }), WithNotifier(n))
}

func countKey(list *List, key string) int {
	n := 0
	for _, a := range list.ListAll() {
		if strings.Contains(a.Message, Tag(key)) {
			n++
		}
	}
	return n
}

func budgetsWith(limit, spent float64) fakeBudgets {
	return fakeBudgets{
		limits: map[string]float64{"Food": limit},
		spent:  map[string]float64{"Food": spent},
	}
}

// healthy keeps every non-budget check quiet.
var healthy = fakeLedger{balance: 50000, income: 100000, expense: 50000, n: 3}

func TestBudgetChecks(t *testing.T) {
	tests := []struct {
		name     string
		spent    float64
		warning  int
		critical int
		exceeded int
	}{
		{"below warning", 799, 0, 0, 0},
		{"at warning", 800, 1, 0, 0},
		{"between", 900, 1, 0, 0},
		{"at critical", 950, 1, 1, 0},
		{"at limit", 1000, 0, 0, 0},
		{"over limit", 1200, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewList()
			newTestEngine(nil).Evaluate(list, healthy, budgetsWith(1000, tt.spent))
			if got := countKey(list, WarningKey("Food")); got != tt.warning {
				t.Errorf("warning=%d, want %d", got, tt.warning)
			}
			if got := countKey(list, CriticalKey("Food")); got != tt.critical {
				t.Errorf("critical=%d, want %d", got, tt.critical)
			}
			if got := countKey(list, ExceededKey("Food")); got != tt.exceeded {
				t.Errorf("exceeded=%d, want %d", got, tt.exceeded)
			}
		})
	}
}

func TestBudgetMessages(t *testing.T) {
	list := NewList()
	newTestEngine(nil).Evaluate(list, healthy, budgetsWith(1000, 1200))
	all := list.ListAll()
	if len(all) != 1 {
		t.Fatalf("expected 1 alert, got %d: %+v", len(all), all)
	}
	a := all[0]
	if a.Kind != core.BudgetExceeded || a.Read || !a.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected alert: %+v", a)
	}
	for _, want := range []string{"Food", "200.00", "1000.00", "1200.00"} {
		if !strings.Contains(a.Message, want) {
			t.Errorf("message %q missing %q", a.Message, want)
		}
	}
}

func TestBalanceChecks(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		key     string
	}{
		{"warning upper bound", 2000, KeyLowBalanceWarning},
		{"warning", 1500, KeyLowBalanceWarning},
		{"critical upper bound", 500, KeyLowBalanceCritical},
		{"critical", 0.5, KeyLowBalanceCritical},
		{"zero", 0, KeyZeroBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewList()
			l := fakeLedger{balance: tt.balance, income: 10000, expense: 10000 - tt.balance, n: 2}
			newTestEngine(nil).Evaluate(list, l, fakeBudgets{})
			if got := countKey(list, tt.key); got != 1 {
				t.Fatalf("%s count=%d, want 1 (alerts=%+v)", tt.key, got, list.ListAll())
			}
		})
	}

	list := NewList()
	newTestEngine(nil).Evaluate(list, fakeLedger{balance: 2000.01, income: 5000, expense: 2999.99, n: 2}, fakeBudgets{})
	if list.Len() != 0 {
		t.Fatalf("no balance alert expected above 2000, got %+v", list.ListAll())
	}
}

func TestOverspendingChecks(t *testing.T) {
	var notified []core.Alert
	n := NotifierFunc(func(a core.Alert) { notified = append(notified, a) })

	list := NewList()
	newTestEngine(n).Evaluate(list, fakeLedger{balance: 5000, income: 50000, expense: 45000, n: 2}, fakeBudgets{})
	if countKey(list, KeyOverspendingWarning) != 1 {
		t.Fatalf("expected overspending warning, got %+v", list.ListAll())
	}
	if len(notified) != 1 || notified[0].Kind != core.Overspending {
		t.Fatalf("overspending must be surfaced immediately, got %+v", notified)
	}

	list = NewList()
	newTestEngine(nil).Evaluate(list, fakeLedger{balance: 5000, income: 1000, expense: 1200, n: 2}, fakeBudgets{})
	if countKey(list, KeyOverspendingCritical) != 1 {
		t.Fatalf("expected overspending critical, got %+v", list.ListAll())
	}
	if countKey(list, KeyOverspendingWarning) != 0 {
		t.Fatalf("ratio above 1 must not warn")
	}

	list = NewList()
	newTestEngine(nil).Evaluate(list, fakeLedger{balance: 5000, income: 0, expense: 1200, n: 2}, fakeBudgets{})
	if countKey(list, KeyOverspendingCritical) != 0 {
		t.Fatalf("no overspending check without income")
	}
	if countKey(list, KeyNoIncome) != 1 {
		t.Fatalf("expected no-income alert")
	}
}

func TestLargeTransaction(t *testing.T) {
	list := NewList()
	last := core.Record{Kind: core.Income, Amount: 15000, Category: "Bonus"}
	l := fakeLedger{balance: 15000, income: 15000, n: 1, last: &last}
	e := newTestEngine(nil)
	e.Evaluate(list, l, fakeBudgets{})
	if countKey(list, LargeKey("Bonus")) != 1 {
		t.Fatalf("expected large transaction alert, got %+v", list.ListAll())
	}
	e.Evaluate(list, l, fakeBudgets{})
	if countKey(list, LargeKey("Bonus")) != 1 {
		t.Fatalf("large transaction alert should be deduplicated")
	}

	exact := core.Record{Kind: core.Income, Amount: 10000, Category: "Bonus2"}
	e.Evaluate(list, fakeLedger{balance: 25000, income: 25000, n: 2, last: &exact}, fakeBudgets{})
	if countKey(list, LargeKey("Bonus2")) != 0 {
		t.Fatalf("10000 is not above the threshold")
	}
}

func TestDedupWindow(t *testing.T) {
	e := newTestEngine(nil)
	list := NewList()
	b := budgetsWith(1000, 850)

	e.Evaluate(list, healthy, b)
	e.Evaluate(list, healthy, b)
	if got := countKey(list, WarningKey("Food")); got != 1 {
		t.Fatalf("warning count=%d, want 1", got)
	}

	// Push the warning out of the last-10 window with unrelated alerts.
	for i := 0; i < 10; i++ {
		e.InsufficientFunds(list, 0, 1)
	}
	e.Evaluate(list, healthy, b)
	if got := countKey(list, WarningKey("Food")); got != 2 {
		t.Fatalf("warning count=%d after window scrolled, want 2", got)
	}
}

func TestDedupTagDoesNotMatchPrefixCategories(t *testing.T) {
	e := newTestEngine(nil)
	list := NewList()
	e.Evaluate(list, healthy, fakeBudgets{
		limits: map[string]float64{"SeaFood": 100},
		spent:  map[string]float64{"SeaFood": 85},
	})
	e.Evaluate(list, healthy, budgetsWith(100, 85))
	if countKey(list, WarningKey("Food")) != 1 || countKey(list, WarningKey("SeaFood")) != 1 {
		t.Fatalf("expected one warning per category, got %+v", list.ListAll())
	}
}

func TestCheckExpenseExceededIsNotDeduplicated(t *testing.T) {
	var notified int
	e := newTestEngine(NotifierFunc(func(core.Alert) { notified++ }))
	list := NewList()
	b := budgetsWith(1000, 1200)

	e.CheckExpense(list, b, "Food")
	e.CheckExpense(list, b, "Food")
	if got := countKey(list, ExceededKey("Food")); got != 2 {
		t.Fatalf("immediate exceeded count=%d, want 2", got)
	}
	if notified != 2 {
		t.Fatalf("notified=%d, want 2", notified)
	}

	// The sweep sees the tag and stays quiet.
	e.Evaluate(list, healthy, b)
	if got := countKey(list, ExceededKey("Food")); got != 2 {
		t.Fatalf("sweep should be suppressed, count=%d", got)
	}
}

func TestCheckExpenseWarningIsDeduplicated(t *testing.T) {
	e := newTestEngine(nil)
	list := NewList()
	e.CheckExpense(list, budgetsWith(1000, 850), "Food")
	e.CheckExpense(list, budgetsWith(1000, 860), "Food")
	if got := countKey(list, WarningKey("Food")); got != 1 {
		t.Fatalf("warning count=%d, want 1", got)
	}
	if out := e.CheckExpense(list, budgetsWith(1000, 860), "Other"); len(out) != 0 {
		t.Fatalf("unbudgeted category should not alert")
	}
}

func TestInsufficientFunds(t *testing.T) {
	list := NewList()
	a := newTestEngine(nil).InsufficientFunds(list, 0, 50)
	if a.Kind != core.LowBalance || !strings.Contains(a.Message, "0.00") || !strings.Contains(a.Message, "50.00") {
		t.Fatalf("unexpected alert: %+v", a)
	}
	newTestEngine(nil).InsufficientFunds(list, 0, 50)
	if list.Len() != 2 {
		t.Fatalf("insufficient funds alerts are not deduplicated, len=%d", list.Len())
	}
}

func TestCheckHealth(t *testing.T) {
	list := NewList()
	e := newTestEngine(nil)
	e.CheckHealth(list, fakeLedger{balance: 900, income: 1000, expense: 100, n: 2})
	e.CheckHealth(list, fakeLedger{balance: 900, income: 1000, expense: 100, n: 2})
	if got := countKey(list, KeyHealthLowBalance); got != 2 {
		t.Fatalf("health low balance count=%d, want 2", got)
	}
	e.CheckHealth(list, fakeLedger{balance: 5000, income: 1000, expense: 1200, n: 2})
	if got := countKey(list, KeyHealthDeficit); got != 1 {
		t.Fatalf("health deficit count=%d, want 1", got)
	}
}

func TestThresholdsOverride(t *testing.T) {
	th := DefaultThresholds()
	th.BudgetWarning = 0.5
	e := NewEngine(th)
	list := NewList()
	e.Evaluate(list, healthy, budgetsWith(1000, 600))
	if countKey(list, WarningKey("Food")) != 1 {
		t.Fatalf("custom warning threshold not applied")
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	bad := DefaultThresholds()
	bad.BudgetCritical = 0.5
	bad.DedupWindow = 0
	err := bad.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "critical") || !strings.Contains(err.Error(), "dedup") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}
