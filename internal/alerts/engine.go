// Package alerts derives notifications from ledger and budget state.
//
// Every alert message embeds its dedup key as a "[key]" tag. Before raising a
// deduplicated alert the engine scans only the last DedupWindow alerts for
// that tag, so a condition may fire again once its previous alert has
// scrolled out of the window.
package alerts

import (
	"fmt"
	"time"

	"wallet/internal/core"
)

// Ledger is the read side of the ledger the engine inspects.
type Ledger interface {
	Balance() float64
	TotalIncome() float64
	TotalExpense() float64
	Len() int
	Last() (core.Record, bool)
}

// Budgets is the read side of the budget tracker the engine inspects.
type Budgets interface {
	Categories() []string
	Limit(category string) (float64, bool)
	Spent(category string) float64
}

// Notifier receives alerts that must be surfaced as soon as they are created.
type Notifier interface {
	Notify(a core.Alert)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(core.Alert)

func (f NotifierFunc) Notify(a core.Alert) { f(a) }

// Engine evaluates alert conditions. It holds no per-account state; the
// alert list is passed in on every call.
type Engine struct {
	th       Thresholds
	now      func() time.Time
	notifier Notifier
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the alert timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithNotifier sets the receiver for immediate alerts.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine creates an engine with the given thresholds.
func NewEngine(th Thresholds, opts ...Option) *Engine {
	e := &Engine{th: th, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Thresholds returns the engine configuration.
func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// Tag is the marker embedded in messages for a dedup key.
func Tag(key string) string {
	return "[" + key + "]"
}

// Dedup keys.
const (
	KeyInsufficientFunds    = "insufficient_funds"
	KeyOverspendingWarning  = "overspending_warning"
	KeyOverspendingCritical = "overspending_critical"
	KeyLowBalanceWarning    = "low_balance_warning"
	KeyLowBalanceCritical   = "low_balance_critical"
	KeyZeroBalance          = "zero_balance"
	KeyNoIncome             = "no_income"
	KeyHealthDeficit        = "health_deficit"
	KeyHealthLowBalance     = "health_low_balance"
)

func WarningKey(category string) string  { return category + "_warning" }
func CriticalKey(category string) string { return category + "_critical" }
func ExceededKey(category string) string { return category + "_exceeded" }
func LargeKey(category string) string    { return "large_transaction_" + category }

// raise stores a new alert and forwards immediate kinds to the notifier.
func (e *Engine) raise(list *List, kind core.AlertKind, key, format string, args ...any) core.Alert {
	a := core.Alert{
		Kind:      kind,
		Message:   Tag(key) + " " + fmt.Sprintf(format, args...),
		CreatedAt: e.now(),
	}
	list.add(a)
	if kind.Immediate() && e.notifier != nil {
		e.notifier.Notify(a)
	}
	return a
}

// raiseOnce is raise guarded by the recent-window dedup scan.
func (e *Engine) raiseOnce(list *List, out *[]core.Alert, kind core.AlertKind, key, format string, args ...any) {
	if list.HasRecent(Tag(key), e.th.DedupWindow) {
		return
	}
	*out = append(*out, e.raise(list, kind, key, format, args...))
}

// InsufficientFunds records a rejected expense attempt. It is not
// deduplicated: every rejected attempt is reported.
func (e *Engine) InsufficientFunds(list *List, balance, required float64) core.Alert {
	return e.raise(list, core.LowBalance, KeyInsufficientFunds,
		"Insufficient funds for the operation. Balance: %.2f, required: %.2f", balance, required)
}

// CheckExpense is the immediate pass run right after an expense is recorded,
// limited to the expense's category. The usage warning is deduplicated; the
// over-limit alert is not, so each expense past the limit reports again.
func (e *Engine) CheckExpense(list *List, b Budgets, category string) []core.Alert {
	limit, ok := b.Limit(category)
	if !ok || limit <= 0 {
		return nil
	}
	var out []core.Alert
	spent := b.Spent(category)
	usage := spent / limit

	if usage >= e.th.BudgetWarning && usage < 1 {
		e.raiseOnce(list, &out, core.BudgetWarning, WarningKey(category),
			"Category '%s': %.0f%% of budget used. Remaining: %.2f", category, usage*100, limit-spent)
	}
	if spent > limit {
		out = append(out, e.raise(list, core.BudgetExceeded, ExceededKey(category),
			"Budget exceeded for category '%s'! Limit: %.2f, spent: %.2f (over by %.2f)",
			category, limit, spent, spent-limit))
	}
	return out
}

// Evaluate runs the full sweep after a successful income or expense. Every
// check is deduplicated.
func (e *Engine) Evaluate(list *List, l Ledger, b Budgets) []core.Alert {
	var out []core.Alert
	e.checkBudgets(list, &out, b)
	e.checkBalance(list, &out, l)
	e.checkOverspending(list, &out, l)
	e.checkNoIncome(list, &out, l)
	e.checkZeroBalance(list, &out, l)
	e.checkLargeTransaction(list, &out, l)
	return out
}

func (e *Engine) checkBudgets(list *List, out *[]core.Alert, b Budgets) {
	for _, category := range b.Categories() {
		limit, ok := b.Limit(category)
		if !ok || limit <= 0 {
			continue
		}
		spent := b.Spent(category)
		usage := spent / limit
		remaining := limit - spent

		if usage >= e.th.BudgetWarning && usage < 1 {
			e.raiseOnce(list, out, core.BudgetWarning, WarningKey(category),
				"Category '%s': %.1f%% of budget used. Remaining: %.2f", category, usage*100, remaining)
		}
		if usage >= e.th.BudgetCritical && usage < 1 {
			e.raiseOnce(list, out, core.BudgetExceeded, CriticalKey(category),
				"CRITICAL LEVEL! Category '%s': %.1f%% of budget used. Only %.2f left", category, usage*100, remaining)
		}
		if spent > limit {
			e.raiseOnce(list, out, core.BudgetExceeded, ExceededKey(category),
				"BUDGET EXCEEDED! Category '%s': over by %.2f. Limit: %.2f, spent: %.2f",
				category, spent-limit, limit, spent)
		}
	}
}

func (e *Engine) checkBalance(list *List, out *[]core.Alert, l Ledger) {
	balance := l.Balance()
	if balance > e.th.LowBalanceCritical && balance <= e.th.LowBalanceWarning {
		e.raiseOnce(list, out, core.LowBalance, KeyLowBalanceWarning,
			"Low balance: %.2f. Consider topping up the account.", balance)
	}
	if balance > 0 && balance <= e.th.LowBalanceCritical {
		e.raiseOnce(list, out, core.LowBalance, KeyLowBalanceCritical,
			"CRITICALLY LOW BALANCE: %.2f. Top up the account now!", balance)
	}
}

func (e *Engine) checkOverspending(list *List, out *[]core.Alert, l Ledger) {
	income := l.TotalIncome()
	expense := l.TotalExpense()
	if income <= 0 {
		return
	}
	ratio := expense / income
	if ratio >= e.th.OverspendWarning && ratio < 1 {
		e.raiseOnce(list, out, core.Overspending, KeyOverspendingWarning,
			"WARNING: expenses are %.1f%% of income (%.2f of %.2f).", ratio*100, expense, income)
	}
	if expense > income {
		e.raiseOnce(list, out, core.Overspending, KeyOverspendingCritical,
			"CRITICAL OVERSPENDING! Expenses exceed income by %.2f (income %.2f, expenses %.2f).",
			expense-income, income, expense)
	}
}

func (e *Engine) checkNoIncome(list *List, out *[]core.Alert, l Ledger) {
	if l.TotalIncome() == 0 && l.Len() > 0 {
		e.raiseOnce(list, out, core.BudgetWarning, KeyNoIncome,
			"No income recorded yet. Add income to keep complete records.")
	}
}

func (e *Engine) checkZeroBalance(list *List, out *[]core.Alert, l Ledger) {
	if l.Balance() == 0 && l.Len() > 0 {
		e.raiseOnce(list, out, core.LowBalance, KeyZeroBalance,
			"Balance is zero. Consider topping up the account.")
	}
}

func (e *Engine) checkLargeTransaction(list *List, out *[]core.Alert, l Ledger) {
	last, ok := l.Last()
	if !ok || last.Amount <= e.th.LargeTransaction {
		return
	}
	e.raiseOnce(list, out, core.BudgetWarning, LargeKey(last.Category),
		"Large transaction: %.2f in category '%s'. Please verify it.", last.Amount, last.Category)
}

// CheckHealth is run when statistics are displayed. Neither check is
// deduplicated.
func (e *Engine) CheckHealth(list *List, l Ledger) []core.Alert {
	var out []core.Alert
	income := l.TotalIncome()
	expense := l.TotalExpense()
	if expense > income {
		out = append(out, e.raise(list, core.Overspending, KeyHealthDeficit,
			"Expenses exceeded income! Deficit: %.2f. Income: %.2f, expenses: %.2f",
			expense-income, income, expense))
	}
	if balance := l.Balance(); balance < e.th.LowBalanceFloor {
		out = append(out, e.raise(list, core.LowBalance, KeyHealthLowBalance,
			"Low balance: %.2f. Consider topping up the account.", balance))
	}
	return out
}
