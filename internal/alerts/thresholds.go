package alerts

import (
	"errors"
	"fmt"
)

// Thresholds holds every number the engine compares against.
// Ratios are fractions (0.8 means 80%), balances are absolute amounts.
type Thresholds struct {
	BudgetWarning      float64
	BudgetCritical     float64
	OverspendWarning   float64
	LowBalanceWarning  float64
	LowBalanceCritical float64
	// LowBalanceFloor is used by the statistics health check only.
	LowBalanceFloor  float64
	LargeTransaction float64
	DedupWindow      int
}

// DefaultThresholds returns the stock configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BudgetWarning:      0.80,
		BudgetCritical:     0.95,
		OverspendWarning:   0.90,
		LowBalanceWarning:  2000,
		LowBalanceCritical: 500,
		LowBalanceFloor:    1000,
		LargeTransaction:   10000,
		DedupWindow:        10,
	}
}

// Validate checks that the thresholds are internally consistent.
func (t Thresholds) Validate() error {
	var errs []error
	if t.BudgetWarning <= 0 || t.BudgetWarning >= 1 {
		errs = append(errs, fmt.Errorf("budget warning ratio %.2f must be in (0,1)", t.BudgetWarning))
	}
	if t.BudgetCritical < t.BudgetWarning || t.BudgetCritical >= 1 {
		errs = append(errs, fmt.Errorf("budget critical ratio %.2f must be in [warning,1)", t.BudgetCritical))
	}
	if t.OverspendWarning <= 0 || t.OverspendWarning >= 1 {
		errs = append(errs, fmt.Errorf("overspend warning ratio %.2f must be in (0,1)", t.OverspendWarning))
	}
	if t.LowBalanceCritical <= 0 || t.LowBalanceWarning <= t.LowBalanceCritical {
		errs = append(errs, fmt.Errorf("low balance thresholds must satisfy 0 < critical (%.2f) < warning (%.2f)", t.LowBalanceCritical, t.LowBalanceWarning))
	}
	if t.LowBalanceFloor <= 0 {
		errs = append(errs, errors.New("low balance floor must be positive"))
	}
	if t.LargeTransaction <= 0 {
		errs = append(errs, errors.New("large transaction threshold must be positive"))
	}
	if t.DedupWindow < 1 {
		errs = append(errs, errors.New("dedup window must be at least 1"))
	}
	return errors.Join(errs...)
}
