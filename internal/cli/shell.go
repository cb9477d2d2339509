package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"

	"wallet/internal/core"
	"wallet/internal/export"
	"wallet/internal/services"
)

// ShellConfig holds the directories used by file-producing commands.
type ShellConfig struct {
	ExportDir string
	BackupDir string
	Prompt    string
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// Shell is a line-oriented front end over WalletService.
type Shell struct {
	svc      *services.WalletService
	in       *bufio.Scanner
	out      io.Writer
	cfg      ShellConfig
	logger   *slog.Logger
	report   *export.Report
	now      func() time.Time
	commands map[string]*command
	aliases  map[string]string
	tracer   *commandTracer
	quit     bool
}

// NewShell wires the command table. in is also read for confirmations.
func NewShell(svc *services.WalletService, in io.Reader, out io.Writer, cfg ShellConfig, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Shell{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		cfg:    cfg,
		logger: logger,
		report: export.NewReport(language.English),
		now:    time.Now,
		tracer: &commandTracer{logger: logger},
	}
	s.commands = map[string]*command{
		"help":       {"help", "Show this help", s.cmdHelp},
		"login":      {"login <account>", "Log in, creating the account if needed", s.cmdLogin},
		"logout":     {"logout", "Save and log out", s.cmdLogout},
		"income":     {"income <amount> <category>", "Record an income", s.cmdIncome},
		"expense":    {"expense <amount> <category>", "Record an expense", s.cmdExpense},
		"add":        {"add income|expense <amount> <category>", "Alternative record syntax", s.cmdAdd},
		"budget":     {"budget set|edit|remove <category> [limit]", "Manage budgets", s.cmdBudget},
		"budgets":    {"budgets", "List budgets", s.cmdBudgets},
		"stats":      {"stats", "Full statistics and health check", s.cmdStats},
		"summary":    {"summary", "Balance, totals and recent records", s.cmdSummary},
		"period":     {"period <from> <to>", "Report between two dates (YYYY-MM-DD)", s.cmdPeriod},
		"report":     {"report day|week|month|year|last_month", "Report over a named period", s.cmdReport},
		"calc":       {"calc [--income|--expense] <category...>", "Totals over categories", s.cmdCalc},
		"categories": {"categories", "List categories", s.cmdCategories},
		"rename":     {"rename <old> <new>", "Rename a category", s.cmdRename},
		"merge":      {"merge <cat1> <cat2> ... <new>", "Merge categories", s.cmdMerge},
		"alerts":     {"alerts [clear]", "Show alerts and mark them read, or clear them", s.cmdAlerts},
		"export":     {"export csv|budgets|json|report [file]", "Export the account", s.cmdExport},
		"import":     {"import csv <file>", "Import records from CSV", s.cmdImport},
		"save":       {"save", "Save the account", s.cmdSave},
		"backup":     {"backup", "Write a JSON backup", s.cmdBackup},
		"exit":       {"exit", "Save and quit", s.cmdExit},
	}
	s.aliases = map[string]string{
		"spend": "expense",
		"cats":  "categories",
		"quit":  "exit",
		"stat":  "stats",
	}
	return s
}

// Run reads commands until exit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Personal finance wallet. Type 'help' for commands.")
	for !s.quit {
		if ctx.Err() != nil {
			break
		}
		s.prompt()
		if !s.in.Scan() {
			break
		}
		s.Execute(ctx, s.in.Text())
	}
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if !s.quit {
		// End of input or cancellation: leave the account saved.
		if err := s.closeSession(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Final save failed", "error", err)
		}
	}
	return nil
}

func (s *Shell) prompt() {
	if s.cfg.Prompt == "" {
		return
	}
	if id, err := s.svc.CurrentAccountID(); err == nil {
		fmt.Fprintf(s.out, "%s@%s ", id, s.cfg.Prompt)
		return
	}
	fmt.Fprint(s.out, s.cfg.Prompt+" ")
}

// Execute runs one command line and prints its outcome. Failures are
// printed, not returned, so the loop keeps going.
func (s *Shell) Execute(ctx context.Context, line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	name := strings.ToLower(args[0])
	if target, ok := s.aliases[name]; ok {
		name = target
	}
	cmd, ok := s.commands[name]
	if !ok {
		fmt.Fprintf(s.out, "Unknown command: %s. Type 'help' for the list.\n", args[0])
		return
	}
	err := s.tracer.trace(ctx, name, func(ctx context.Context) error {
		return cmd.run(ctx, args[1:])
	})
	if err != nil {
		var ue *UsageError
		if errors.As(err, &ue) && ue.Usage == "" {
			ue.Usage = cmd.usage
		}
		fmt.Fprintln(s.out, Describe(err))
	}
}

// Stats reports how many commands ran and how many failed.
func (s *Shell) Stats() CommandStats {
	return s.tracer.stats()
}

// confirm asks a yes/no question on the shell input.
func (s *Shell) confirm(question string) bool {
	fmt.Fprintf(s.out, "%s [y/N] ", question)
	if !s.in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s.in.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// closeSession logs out if someone is logged in.
func (s *Shell) closeSession(ctx context.Context) error {
	err := s.svc.Logout(ctx)
	if errors.Is(err, core.ErrNotAuthenticated) {
		return nil
	}
	return err
}

func (s *Shell) money(v float64) string {
	return s.report.Money(v)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) cmdHelp(_ context.Context, _ []string) error {
	names := make([]string, 0, len(s.commands))
	for n := range s.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	s.printf("Commands:\n")
	for _, n := range names {
		c := s.commands[n]
		s.printf("  %-42s %s\n", c.usage, c.help)
	}
	return nil
}

func (s *Shell) cmdExit(ctx context.Context, _ []string) error {
	s.quit = true
	if err := s.closeSession(ctx); err != nil {
		return err
	}
	s.printf("Goodbye!\n")
	return nil
}
