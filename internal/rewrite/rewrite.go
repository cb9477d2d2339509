// Package rewrite renames and merges category labels across ledger records
// and budgets.
//
// Both operations validate everything up front and fail without touching
// state. Once validation passes, records are rewritten one by one; a record
// that cannot be rewritten is logged and skipped, and the returned counts are
// the authoritative outcome.
package rewrite

import (
	"log/slog"
	"strings"

	"wallet/internal/core"
)

// Records is the ledger surface the rewriter needs.
type Records interface {
	HasCategory(category string) bool
	CountByCategory(category string) int
	AmountByCategory(kind core.Kind, category string) float64
	IndexesOf(set map[string]bool) []int
	SetCategory(i int, category string) error
}

// Budgets is the budget surface the rewriter needs.
type Budgets interface {
	Has(category string) bool
	Move(from, to string) (float64, bool)
	Take(category string) (float64, bool)
	SetLimit(category string, limit float64) error
}

// Rewriter applies category rewrites.
type Rewriter struct {
	logger *slog.Logger
}

// New returns a rewriter logging through logger, or slog.Default when nil.
func New(logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{logger: logger}
}

// RenameResult reports the outcome of Rename.
type RenameResult struct {
	Old, New       string
	RecordsMatched int
	RecordsRenamed int
	BudgetMoved    bool
	MovedLimit     float64
}

// Rename relabels every record of oldCategory as newCategory and moves the
// old budget, if any, onto newCategory, replacing whatever budget it had.
func (rw *Rewriter) Rename(recs Records, budgets Budgets, oldCategory, newCategory string) (RenameResult, error) {
	from, err := core.NormalizeCategory(oldCategory)
	if err != nil {
		return RenameResult{}, err
	}
	to, err := core.NormalizeCategory(newCategory)
	if err != nil {
		return RenameResult{}, err
	}
	if from == to {
		return RenameResult{}, core.ErrSameCategory
	}
	if !recs.HasCategory(from) && !budgets.Has(from) {
		return RenameResult{}, core.ErrCategoryNotFound
	}

	res := RenameResult{Old: from, New: to}
	res.RecordsMatched, res.RecordsRenamed = rw.relabel(recs, map[string]bool{from: true}, to)
	res.MovedLimit, res.BudgetMoved = budgets.Move(from, to)

	rw.logger.Info("Category renamed",
		"old", from,
		"new", to,
		"records_renamed", res.RecordsRenamed,
		"budget_moved", res.BudgetMoved)
	return res, nil
}

// MergeResult reports the outcome of Merge.
type MergeResult struct {
	Target         string
	Found          []string
	NotFound       []string
	TotalIncome    float64
	TotalExpense   float64
	Transactions   int
	RecordsRenamed int
	MergedBudget   float64
	BudgetSet      bool
}

// Merge folds every found category into target. Inputs with no records and no
// budget are reported in NotFound and skipped. Budgets of the found categories
// are summed into a single target budget.
func (rw *Rewriter) Merge(recs Records, budgets Budgets, categories []string, target string) (MergeResult, error) {
	to, err := core.NormalizeCategory(target)
	if err != nil {
		return MergeResult{}, err
	}
	if len(categories) < 2 {
		return MergeResult{}, core.ErrInsufficientCategories
	}

	res := MergeResult{Target: to}
	seen := make(map[string]bool)
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		if recs.HasCategory(c) || budgets.Has(c) {
			res.Found = append(res.Found, c)
		} else {
			res.NotFound = append(res.NotFound, c)
		}
	}
	if len(res.Found) == 0 {
		return res, core.ErrNoCategoriesFound
	}

	set := make(map[string]bool, len(res.Found))
	for _, c := range res.Found {
		set[c] = true
		res.TotalIncome += recs.AmountByCategory(core.Income, c)
		res.TotalExpense += recs.AmountByCategory(core.Expense, c)
		res.Transactions += recs.CountByCategory(c)
		if limit, ok := budgets.Take(c); ok {
			res.MergedBudget += limit
		}
	}

	_, res.RecordsRenamed = rw.relabel(recs, set, to)

	if res.MergedBudget > 0 {
		if err := budgets.SetLimit(to, res.MergedBudget); err != nil {
			rw.logger.Error("Failed to set merged budget", "category", to, "limit", res.MergedBudget, "error", err)
		} else {
			res.BudgetSet = true
		}
	}

	if len(res.NotFound) > 0 {
		rw.logger.Warn("Categories not found, skipped", "categories", res.NotFound)
	}
	rw.logger.Info("Categories merged",
		"target", to,
		"merged", len(res.Found),
		"transactions", res.Transactions,
		"records_renamed", res.RecordsRenamed,
		"budget", res.MergedBudget)
	return res, nil
}

func (rw *Rewriter) relabel(recs Records, set map[string]bool, to string) (matched, renamed int) {
	idx := recs.IndexesOf(set)
	for _, i := range idx {
		if err := recs.SetCategory(i, to); err != nil {
			rw.logger.Error("Failed to rewrite record category", "index", i, "category", to, "error", err)
			continue
		}
		renamed++
	}
	return len(idx), renamed
}
