package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// PeriodSummary aggregates the records that fall inside [From, To].
type PeriodSummary struct {
	From, To     time.Time
	Count        int
	TotalIncome  float64
	TotalExpense float64
	IncomeByCat  []CategoryAmount
	ExpenseByCat []CategoryAmount
}

// Net is income minus expense over the period.
func (p PeriodSummary) Net() float64 {
	return p.TotalIncome - p.TotalExpense
}

// CategoryStat is one row of the category listing.
type CategoryStat struct {
	Name      string
	Income    float64
	Expense   float64
	Limit     float64
	HasLimit  bool
	Remaining float64
}
