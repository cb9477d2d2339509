package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wallet/internal/account"
)

// Format names one export layout.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatBudgets Format = "budgets"
	FormatJSON    Format = "json"
	FormatReport  Format = "report"
)

// Formats lists every file format in a stable order.
var Formats = []Format{FormatCSV, FormatBudgets, FormatJSON, FormatReport}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Extension is the file suffix used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatReport:
		return ".txt"
	default:
		return ".csv"
	}
}

// Write renders snap in format f.
func Write(w io.Writer, f Format, snap account.Snapshot, now time.Time) error {
	switch f {
	case FormatCSV:
		return WriteRecordsCSV(w, snap)
	case FormatBudgets:
		return WriteBudgetsCSV(w, snap)
	case FormatJSON:
		return WriteJSON(w, snap, now)
	case FormatReport:
		return WriteTextReport(w, snap, now)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// WriteFile renders snap to path through a temporary file so readers never
// observe a partial export.
func WriteFile(path string, f Format, snap account.Snapshot, now time.Time) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, f, snap, now); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s export: %w", f, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}

// FileName is the default export file name for an account.
func FileName(accountID string, f Format) string {
	return accountID + "_" + string(f) + f.Extension()
}

// ReadFile parses an import CSV from disk.
func ReadFile(path string) ([]account.ImportRow, []error, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open import file: %w", err)
	}
	defer fh.Close()
	return ReadRecordsCSV(fh)
}
