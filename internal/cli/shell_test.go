package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wallet/internal/account"
	"wallet/internal/alerts"
	"wallet/internal/core"
	"wallet/internal/services"
	"wallet/internal/session"
	"wallet/internal/storage"
)

type harness struct {
	store *storage.MemoryStore
	out   *bytes.Buffer
	cfg   ShellConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{
		store: storage.NewMemoryStore(),
		out:   &bytes.Buffer{},
		cfg: ShellConfig{
			ExportDir: filepath.Join(dir, "exports"),
			BackupDir: filepath.Join(dir, "backups"),
		},
	}
}

// run feeds script to a fresh shell over the harness store.
func (h *harness) run(t *testing.T, script ...string) string {
	t.Helper()
	h.out.Reset()
	engine := alerts.NewEngine(alerts.DefaultThresholds(), alerts.WithNotifier(NewAlertPrinter(h.out)))
	sess := session.New(h.store, account.Options{Engine: engine}, nil)
	svc := services.NewWalletService(sess, nil)
	sh := NewShell(svc, strings.NewReader(strings.Join(script, "\n")+"\n"), h.out, h.cfg, nil)
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return h.out.String()
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestShellBudgetExceededIsHighlighted(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"login alice",
		"income 2000 Salary",
		"budget set Food 1000",
		"expense 1200 Food",
		"exit",
	)
	assertContains(t, out,
		"Account alice created",
		"Budget for Food set to 1,000.00",
		"!! BUDGET_EXCEEDED",
		"Balance: 800.00",
		"Goodbye!",
	)
}

func TestShellUsageErrorsNeverReachTheAccount(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"login alice",
		"income abc Food",
		"income 10",
		"expense -5 Food",
		"period 2025-13-01 2025-01-31",
		"budget frobnicate Food 10",
		"summary",
	)
	assertContains(t, out,
		`Invalid amount "abc"`,
		"Usage: income <amount> <category>",
		`Invalid amount "-5"`,
		`Invalid date "2025-13-01"`,
		`Unknown budget action "frobnicate"`,
		"Balance: 0.00",
	)
	if strings.Contains(out, "Recent records") {
		t.Fatalf("no record should have been written:\n%s", out)
	}
}

func TestShellRequiresLogin(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "income 10 Food", "budgets", "nonsense")
	assertContains(t, out, "Not logged in", "Unknown command: nonsense")
}

func TestShellInsufficientFunds(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "login bob", "expense 50 Food", "alerts")
	assertContains(t, out, "Insufficient funds", "1 alert(s), 1 unread", "LOW_BALANCE")
}

func TestShellBudgetEditConfirmation(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"login alice",
		"income 1000 Salary",
		"budget set Food 500",
		"expense 300 Food",
		"budget edit Food 200",
		"n",
		"budget edit Food 200",
		"yes",
		"budget edit Food 400",
		"budgets",
	)
	assertContains(t, out,
		"Spending in Food already exceeds 200.00. Continue?",
		"Budget unchanged.",
		"Budget for Food changed from 500.00 to 200.00.",
		"Budget for Food changed from 200.00 to 400.00.",
	)
	if n := strings.Count(out, "Continue?"); n != 2 {
		t.Fatalf("confirmation asked %d times, want 2", n)
	}
}

func TestShellCategoryCommands(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"login alice",
		"income 3000 Salary",
		"expense 100 Cafe",
		"expense 50 Restaurant",
		"budget set Cafe 200",
		"rename Cafe Coffee",
		"merge Coffee Restaurant Missing EatingOut",
		"calc --expense EatingOut Nowhere",
		"categories",
	)
	assertContains(t, out,
		"Renamed Cafe to Coffee: 1 record(s) updated.",
		"Budget of 200.00 moved to Coffee.",
		"Merged Coffee, Restaurant into EatingOut: 2 transaction(s)",
		"Not found: Missing",
		"Not found: Nowhere",
		"EatingOut",
	)
}

func TestShellReports(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"login alice",
		"income 1500 Salary",
		"expense 600 Food",
		"report month",
		"report fortnight",
		"period 2000-01-02 2000-01-01",
		"stats",
	)
	assertContains(t, out,
		"2 record(s)",
		"Unknown period",
		"The start date must not be after the end date",
		"Total income:   1,500.00",
		"Health:",
	)
}

func TestShellExportImportRoundTrip(t *testing.T) {
	h := newHarness(t)
	csvPath := filepath.Join(t.TempDir(), "alice.csv")
	out := h.run(t,
		"login alice",
		"income 1000 Salary",
		"expense 250.5 Rent",
		"export csv "+csvPath,
		"export json",
		"export xml",
		"backup",
	)
	assertContains(t, out, "Exported csv to "+csvPath, `Unknown export format "xml"`, "Backup written to")
	if _, err := os.Stat(filepath.Join(h.cfg.ExportDir, "alice_json.json")); err != nil {
		t.Fatalf("default json export missing: %v", err)
	}

	out = h.run(t, "login carol", fmt.Sprintf("import csv %s", csvPath), "summary")
	assertContains(t, out, "Imported 2 record(s), skipped 0.", "Balance: 749.50")
}

func TestShellPersistsOnExitAndEOF(t *testing.T) {
	h := newHarness(t)
	h.run(t, "login dave", "income 10 Gift")
	snap, err := h.store.Load(context.Background(), "dave")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Balance != 10 {
		t.Fatalf("balance=%v, want 10", snap.Balance)
	}
	out := h.run(t, "login dave", "summary")
	assertContains(t, out, "Logged in as dave.", "Balance: 10.00")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{core.ErrNotAuthenticated, "Not logged in"},
		{fmt.Errorf("wrapped: %w", core.ErrInsufficientFunds), "Insufficient funds"},
		{&UsageError{Usage: "save"}, "Usage: save"},
		{&UsageError{Reason: "bad", Usage: "save"}, "bad\nUsage: save"},
		{fmt.Errorf("disk on fire"), "Error: disk on fire"},
	}
	for _, tt := range tests {
		if got := Describe(tt.err); !strings.HasPrefix(got, tt.want) {
			t.Errorf("Describe(%v) = %q, want prefix %q", tt.err, got, tt.want)
		}
	}
}

func TestShellCommandStats(t *testing.T) {
	h := newHarness(t)
	sess := session.New(h.store, account.Options{}, nil)
	sh := NewShell(services.NewWalletService(sess, nil), strings.NewReader(""), h.out, h.cfg, nil)
	ctx := context.Background()
	sh.Execute(ctx, "login erin")
	sh.Execute(ctx, "income nope Gift")
	sh.Execute(ctx, "   ")
	sh.Execute(ctx, "bogus")

	st := sh.Stats()
	if st.Total != 2 || st.Failed != 1 {
		t.Fatalf("stats = %+v, want 2 total and 1 failed", st)
	}
}
