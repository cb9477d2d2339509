package export

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"wallet/internal/account"
	"wallet/internal/core"
)

var titleCaser = cases.Title(language.English)

// Report renders text reports with grouped thousands in a fixed locale.
type Report struct {
	p *message.Printer
}

// NewReport returns a report renderer for tag; the zero tag falls back to
// English.
func NewReport(tag language.Tag) *Report {
	if tag == language.Und {
		tag = language.English
	}
	return &Report{p: message.NewPrinter(tag)}
}

// Money formats v with two decimals and grouped thousands.
func (r *Report) Money(v float64) string {
	return r.p.Sprintf("%.2f", v)
}

// Write renders the full account report.
func (r *Report) Write(w io.Writer, snap account.Snapshot, now time.Time) error {
	acc, err := account.FromSnapshot(snap, account.Options{})
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Account report: %s\n", snap.ID)
	fmt.Fprintf(bw, "Generated: %s\n\n", now.Format("2006-01-02 15:04"))
	fmt.Fprintf(bw, "Balance:        %s\n", r.Money(acc.Balance()))
	fmt.Fprintf(bw, "Total income:   %s\n", r.Money(acc.TotalIncome()))
	fmt.Fprintf(bw, "Total expense:  %s\n", r.Money(acc.TotalExpense()))
	fmt.Fprintf(bw, "Records:        %d\n", acc.RecordCount())

	for _, kind := range []core.Kind{core.Income, core.Expense} {
		byCat := acc.ByCategory(kind)
		if len(byCat) == 0 {
			continue
		}
		fmt.Fprintf(bw, "\n%s by category\n", titleCaser.String(string(kind)))
		for _, c := range byCat {
			fmt.Fprintf(bw, "  %-20s %14s\n", c.Name, r.Money(c.Amount))
		}
	}

	if statuses := acc.BudgetStatuses(); len(statuses) > 0 {
		fmt.Fprintf(bw, "\nBudgets\n")
		for _, st := range statuses {
			fmt.Fprintf(bw, "  %-20s %14s of %14s (remaining %s)\n",
				st.Category, r.Money(st.Spent), r.Money(st.Limit), r.Money(st.Remaining))
		}
	}

	if n := acc.UnreadAlerts(); n > 0 {
		fmt.Fprintf(bw, "\nUnread alerts: %d\n", n)
	}
	return bw.Flush()
}

// WriteTextReport renders the report in English.
func WriteTextReport(w io.Writer, snap account.Snapshot, now time.Time) error {
	return NewReport(language.English).Write(w, snap, now)
}
