package cli

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"wallet/internal/core"
	"wallet/internal/export"
)

const recentRecords = 5

func parseAmountArg(s string) (float64, error) {
	v, err := core.ParseAmount(s)
	if err != nil {
		return 0, badArg("Invalid amount %q", s)
	}
	return v, nil
}

func parseDateArg(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, badArg("Invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func (s *Shell) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage()
	}
	created, err := s.svc.Login(ctx, args[0])
	if err != nil {
		return err
	}
	if created {
		s.printf("Account %s created. Logged in.\n", args[0])
	} else {
		s.printf("Logged in as %s.\n", args[0])
	}
	if n, err := s.svc.UnreadAlerts(); err == nil && n > 0 {
		s.printf("You have %d unread alert(s). Type 'alerts' to read them.\n", n)
	}
	return nil
}

func (s *Shell) cmdLogout(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage()
	}
	if err := s.svc.Logout(ctx); err != nil {
		return err
	}
	s.printf("Logged out.\n")
	return nil
}

func (s *Shell) cmdIncome(ctx context.Context, args []string) error {
	return s.record(ctx, core.Income, args)
}

func (s *Shell) cmdExpense(ctx context.Context, args []string) error {
	return s.record(ctx, core.Expense, args)
}

func (s *Shell) cmdAdd(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage()
	}
	switch strings.ToLower(args[0]) {
	case "income":
		return s.record(ctx, core.Income, args[1:])
	case "expense":
		return s.record(ctx, core.Expense, args[1:])
	default:
		return badArg("Unknown record kind %q", args[0])
	}
}

func (s *Shell) record(ctx context.Context, kind core.Kind, args []string) error {
	if len(args) < 2 {
		return usage()
	}
	amount, err := parseAmountArg(args[0])
	if err != nil {
		return err
	}
	category := strings.Join(args[1:], " ")

	var r core.Record
	if kind == core.Income {
		r, err = s.svc.RecordIncome(ctx, amount, category)
	} else {
		r, err = s.svc.RecordExpense(ctx, amount, category)
	}
	if err != nil {
		return err
	}
	sum, err := s.svc.Summary(0)
	if err != nil {
		return err
	}
	s.printf("Recorded %s of %s in %s. Balance: %s\n", r.Kind, s.money(r.Amount), r.Category, s.money(sum.Balance))
	return nil
}

func (s *Shell) cmdBudget(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage()
	}
	sub, rest := strings.ToLower(args[0]), args[1:]

	if sub == "remove" {
		category := strings.Join(rest, " ")
		old, err := s.svc.RemoveBudget(ctx, category)
		if err != nil {
			return err
		}
		s.printf("Budget for %s removed (was %s).\n", category, s.money(old))
		return nil
	}
	if sub != "set" && sub != "edit" {
		return badArg("Unknown budget action %q", args[0])
	}
	if len(rest) < 2 {
		return usage()
	}
	limit, err := parseAmountArg(rest[len(rest)-1])
	if err != nil {
		return err
	}
	category := strings.Join(rest[:len(rest)-1], " ")

	if sub == "set" {
		if err := s.svc.SetBudget(ctx, category, limit); err != nil {
			return err
		}
		s.printf("Budget for %s set to %s.\n", category, s.money(limit))
		return nil
	}

	underrun, err := s.svc.WouldUnderrunSpend(category, limit)
	if err != nil {
		return err
	}
	if underrun && !s.confirm("Spending in "+category+" already exceeds "+s.money(limit)+". Continue?") {
		s.printf("Budget unchanged.\n")
		return nil
	}
	old, err := s.svc.EditBudget(ctx, category, limit)
	if err != nil {
		return err
	}
	s.printf("Budget for %s changed from %s to %s.\n", category, s.money(old), s.money(limit))
	return nil
}

func (s *Shell) cmdBudgets(_ context.Context, args []string) error {
	if len(args) != 0 {
		return usage()
	}
	statuses, err := s.svc.Budgets()
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		s.printf("No budgets set.\n")
		return nil
	}
	s.printf("%-20s %14s %14s %14s\n", "Category", "Limit", "Spent", "Remaining")
	for _, st := range statuses {
		s.printf("%-20s %14s %14s %14s\n", st.Category, s.money(st.Limit), s.money(st.Spent), s.money(st.Remaining))
	}
	return nil
}

func (s *Shell) cmdStats(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage()
	}
	st, err := s.svc.Statistics(ctx)
	if err != nil {
		return err
	}
	s.printf("Account:        %s\n", st.AccountID)
	s.printf("Balance:        %s\n", s.money(st.Balance))
	s.printf("Total income:   %s\n", s.money(st.TotalIncome))
	s.printf("Total expense:  %s\n", s.money(st.TotalExpense))
	s.printf("Net:            %s\n", s.money(st.Net()))
	s.printf("Records:        %d\n", st.RecordCount)
	s.printCategories("Income by category", st.IncomeByCat)
	s.printCategories("Expense by category", st.ExpenseByCat)
	if len(st.Budgets) > 0 {
		s.printf("Budgets:\n")
		for _, b := range st.Budgets {
			s.printf("  %-20s %14s of %14s\n", b.Category, s.money(b.Spent), s.money(b.Limit))
		}
	}
	for _, a := range st.Health {
		s.printf("Health: %s\n", a.Message)
	}
	s.printf("Unread alerts:  %d\n", st.UnreadAlerts)
	return nil
}

func (s *Shell) printCategories(title string, cats []core.CategoryAmount) {
	if len(cats) == 0 {
		return
	}
	s.printf("%s:\n", title)
	for _, c := range cats {
		s.printf("  %-20s %14s\n", c.Name, s.money(c.Amount))
	}
}

func (s *Shell) cmdSummary(_ context.Context, args []string) error {
	if len(args) != 0 {
		return usage()
	}
	sum, err := s.svc.Summary(recentRecords)
	if err != nil {
		return err
	}
	s.printf("Balance: %s  Income: %s  Expense: %s\n", s.money(sum.Balance), s.money(sum.TotalIncome), s.money(sum.TotalExpense))
	if len(sum.Recent) > 0 {
		s.printf("Recent records:\n")
		for _, r := range sum.Recent {
			s.printf("  %s %-7s %-20s %14s\n", r.OccurredAt.Format("2006-01-02 15:04"), r.Kind, r.Category, s.money(r.Amount))
		}
	}
	if sum.UnreadAlerts > 0 {
		s.printf("Unread alerts: %d\n", sum.UnreadAlerts)
	}
	return nil
}

func (s *Shell) cmdPeriod(_ context.Context, args []string) error {
	if len(args) != 2 {
		return usage()
	}
	from, err := parseDateArg(args[0])
	if err != nil {
		return err
	}
	to, err := parseDateArg(args[1])
	if err != nil {
		return err
	}
	p, err := s.svc.PeriodReport(from, to)
	if err != nil {
		return err
	}
	s.printPeriod(p)
	return nil
}

func (s *Shell) cmdReport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage()
	}
	if strings.EqualFold(args[0], "full") {
		return s.cmdStats(ctx, nil)
	}
	p, err := s.svc.QuickReport(args[0])
	if err != nil {
		return err
	}
	s.printPeriod(p)
	return nil
}

func (s *Shell) printPeriod(p core.PeriodSummary) {
	s.printf("Period %s .. %s: %d record(s)\n", p.From.Format(time.DateOnly), p.To.Format(time.DateOnly), p.Count)
	s.printf("Income: %s  Expense: %s  Net: %s\n", s.money(p.TotalIncome), s.money(p.TotalExpense), s.money(p.Net()))
	s.printCategories("Income by category", p.IncomeByCat)
	s.printCategories("Expense by category", p.ExpenseByCat)
}

func (s *Shell) cmdCalc(_ context.Context, args []string) error {
	var incomesOnly, expensesOnly bool
	var cats []string
	for _, a := range args {
		switch a {
		case "--income", "-i":
			incomesOnly = true
		case "--expense", "-e":
			expensesOnly = true
		default:
			cats = append(cats, a)
		}
	}
	if len(cats) == 0 {
		return usage()
	}
	t, err := s.svc.CategoriesReport(cats, incomesOnly, expensesOnly)
	if err != nil {
		return err
	}
	for _, row := range t.Rows {
		s.printf("  %-20s income %14s  expense %14s\n", row.Name, s.money(row.Income), s.money(row.Expense))
	}
	if len(t.Rows) > 0 {
		s.printf("Total income: %s  Total expense: %s  Net: %s\n", s.money(t.TotalIncome), s.money(t.TotalExpense), s.money(t.Net()))
	}
	if len(t.NotFound) > 0 {
		s.printf("Not found: %s\n", strings.Join(t.NotFound, ", "))
	}
	return nil
}

func (s *Shell) cmdCategories(_ context.Context, args []string) error {
	if len(args) != 0 {
		return usage()
	}
	stats, err := s.svc.ListCategories()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		s.printf("No categories yet.\n")
		return nil
	}
	for _, c := range stats {
		s.printf("  %-20s income %14s  expense %14s", c.Name, s.money(c.Income), s.money(c.Expense))
		if c.HasLimit {
			s.printf("  budget %s (remaining %s)", s.money(c.Limit), s.money(c.Remaining))
		}
		s.printf("\n")
	}
	return nil
}

func (s *Shell) cmdRename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage()
	}
	res, err := s.svc.RenameCategory(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	s.printf("Renamed %s to %s: %d record(s) updated.\n", res.Old, res.New, res.RecordsRenamed)
	if res.BudgetMoved {
		s.printf("Budget of %s moved to %s.\n", s.money(res.MovedLimit), res.New)
	}
	return nil
}

func (s *Shell) cmdMerge(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usage()
	}
	res, err := s.svc.MergeCategories(ctx, args[:len(args)-1], args[len(args)-1])
	if err != nil {
		return err
	}
	s.printf("Merged %s into %s: %d transaction(s), income %s, expense %s.\n",
		strings.Join(res.Found, ", "), res.Target, res.Transactions, s.money(res.TotalIncome), s.money(res.TotalExpense))
	if res.BudgetSet {
		s.printf("Budget for %s set to %s.\n", res.Target, s.money(res.MergedBudget))
	}
	if len(res.NotFound) > 0 {
		s.printf("Not found: %s\n", strings.Join(res.NotFound, ", "))
	}
	return nil
}

func (s *Shell) cmdAlerts(ctx context.Context, args []string) error {
	switch {
	case len(args) == 1 && strings.EqualFold(args[0], "clear"):
		if err := s.svc.ClearAlerts(ctx); err != nil {
			return err
		}
		s.printf("Alerts cleared.\n")
		return nil
	case len(args) != 0:
		return usage()
	}
	unread, all, err := s.svc.DisplayAlerts(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		s.printf("No alerts.\n")
		return nil
	}
	s.printf("%d alert(s), %d unread:\n", len(all), len(unread))
	for _, a := range all {
		s.printf("%s\n", alertLine(a))
	}
	return nil
}

func (s *Shell) cmdExport(_ context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage()
	}
	f, err := export.ParseFormat(args[0])
	if err != nil {
		return badArg("Unknown export format %q", args[0])
	}
	snap, err := s.svc.Snapshot()
	if err != nil {
		return err
	}
	path := filepath.Join(s.cfg.ExportDir, export.FileName(snap.ID, f))
	if len(args) == 2 {
		path = args[1]
	}
	if err := export.WriteFile(path, f, snap, s.now()); err != nil {
		return err
	}
	s.printf("Exported %s to %s\n", f, path)
	return nil
}

func (s *Shell) cmdImport(ctx context.Context, args []string) error {
	if len(args) != 2 || !strings.EqualFold(args[0], "csv") {
		return usage()
	}
	// Fail on the session before touching the file.
	if _, err := s.svc.CurrentAccountID(); err != nil {
		return err
	}
	rows, parseErrs, err := export.ReadFile(args[1])
	if err != nil {
		return err
	}
	res, err := s.svc.Import(ctx, rows)
	if err != nil {
		return err
	}
	skipped := res.Skipped + len(parseErrs)
	s.printf("Imported %d record(s), skipped %d.\n", res.Imported, skipped)
	for _, e := range append(parseErrs, res.Errors...) {
		s.printf("  %v\n", e)
	}
	return nil
}

func (s *Shell) cmdSave(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage()
	}
	if err := s.svc.Save(ctx); err != nil {
		return err
	}
	s.printf("Saved.\n")
	return nil
}

func (s *Shell) cmdBackup(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage()
	}
	path, err := s.svc.Backup(ctx, s.cfg.BackupDir)
	if err != nil {
		return err
	}
	s.printf("Backup written to %s\n", path)
	return nil
}
