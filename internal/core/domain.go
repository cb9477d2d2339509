package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	BudgetExceeded AlertKind = "BUDGET_EXCEEDED"
	Overspending   AlertKind = "OVERSPENDING"
	LowBalance     AlertKind = "LOW_BALANCE"
	BudgetWarning  AlertKind = "BUDGET_WARNING"
)

type (
	Kind string

	AlertKind string

	Record struct {
		ID         string    `json:"id"`
		Kind       Kind      `json:"kind"`
		Amount     float64   `json:"amount"`
		Category   string    `json:"category"`
		OccurredAt time.Time `json:"occurred_at"`
	}

	Alert struct {
		Kind      AlertKind `json:"kind"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"`
		Read      bool      `json:"read"`
	}
)

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrBudgetNotFound         = errors.New("budget not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrSameCategory           = errors.New("new category equals old category")
	ErrInsufficientCategories = errors.New("at least two categories are required")
	ErrNoCategoriesFound      = errors.New("none of the categories were found")
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrInvalidKind            = errors.New("invalid record kind")
)

// ValidateAmount rejects non-positive, NaN and infinite amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeCategory trims the category and fails when nothing is left.
func NormalizeCategory(category string) (string, error) {
	c := strings.TrimSpace(category)
	if c == "" {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Sign returns +1 for income and -1 for expense.
func (k Kind) Sign() float64 {
	if k == Expense {
		return -1
	}
	return 1
}

func (r Record) Validate() error {
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrInvalidCategory
	}
	return nil
}

// Immediate reports whether alerts of this kind are surfaced to the caller
// at creation time instead of waiting to be listed.
func (k AlertKind) Immediate() bool {
	return k == BudgetExceeded || k == Overspending
}

func (k AlertKind) Validate() error {
	switch k {
	case BudgetExceeded, Overspending, LowBalance, BudgetWarning:
		return nil
	default:
		return errors.New("invalid alert kind")
	}
}
