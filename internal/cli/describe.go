package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"wallet/internal/alerts"
	"wallet/internal/core"
	"wallet/internal/services"
	"wallet/internal/session"
	"wallet/internal/storage"
)

// UsageError reports a malformed command line; it never reaches the core.
// An empty Usage is filled in with the command's usage line.
type UsageError struct {
	Reason string
	Usage  string
}

func (e *UsageError) Error() string {
	if e.Reason != "" {
		return e.Reason + "; usage: " + e.Usage
	}
	return "usage: " + e.Usage
}

func usage() error { return &UsageError{} }

func badArg(format string, args ...any) error {
	return &UsageError{Reason: fmt.Sprintf(format, args...)}
}

var descriptions = []struct {
	err  error
	text string
}{
	{core.ErrNotAuthenticated, "Not logged in. Use: login <account>"},
	{core.ErrInvalidAmount, "Amount must be a positive number"},
	{core.ErrInvalidCategory, "Category must not be empty"},
	{core.ErrInsufficientFunds, "Insufficient funds: the expense was not recorded"},
	{core.ErrBudgetNotFound, "No budget is set for that category"},
	{core.ErrCategoryNotFound, "Category not found"},
	{core.ErrSameCategory, "The new category name equals the old one"},
	{core.ErrInsufficientCategories, "Merge needs at least two categories and a target"},
	{core.ErrNoCategoriesFound, "None of the categories were found"},
	{session.ErrInvalidAccountID, "Account id must not be empty"},
	{services.ErrUnknownPeriod, "Unknown period. Use day, week, month, year or last_month"},
	{services.ErrInvalidPeriod, "The start date must not be after the end date"},
	{storage.ErrNotFound, "Account not found"},
}

// Describe turns an error into the line shown to the user.
func Describe(err error) string {
	var ue *UsageError
	if errors.As(err, &ue) {
		if ue.Reason != "" {
			return ue.Reason + "\nUsage: " + ue.Usage
		}
		return "Usage: " + ue.Usage
	}
	for _, d := range descriptions {
		if errors.Is(err, d.err) {
			return d.text
		}
	}
	return "Error: " + err.Error()
}

// AlertPrinter highlights alerts that must be seen when they are raised.
type AlertPrinter struct {
	out      io.Writer
	critical *color.Color
	warning  *color.Color
}

var _ alerts.Notifier = (*AlertPrinter)(nil)

func NewAlertPrinter(out io.Writer) *AlertPrinter {
	return &AlertPrinter{
		out:      out,
		critical: color.New(color.FgRed, color.Bold),
		warning:  color.New(color.FgYellow, color.Bold),
	}
}

// Notify prints a single alert on its own line.
func (p *AlertPrinter) Notify(a core.Alert) {
	c := p.warning
	if a.Kind == core.BudgetExceeded {
		c = p.critical
	}
	c.Fprintf(p.out, "!! %s: %s\n", a.Kind, a.Message)
}

// alertLine renders a listed alert.
func alertLine(a core.Alert) string {
	mark := " "
	if !a.Read {
		mark = "*"
	}
	return fmt.Sprintf("%s [%s] %s %s", mark, a.CreatedAt.Format("2006-01-02 15:04"), a.Kind, a.Message)
}
