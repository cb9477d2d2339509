package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wallet/internal/account"
)

// backupFile is the on-disk backup format.
type backupFile struct {
	CreatedAt time.Time        `json:"created_at"`
	Account   account.Snapshot `json:"account"`
}

// Backup writes the stored account to a timestamped JSON file in dir and
// returns its path.
func Backup(ctx context.Context, store Store, accountID, dir string, now time.Time) (string, error) {
	snap, err := store.Load(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("load account for backup: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", accountID, now.UTC().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(backupFile{CreatedAt: now.UTC(), Account: snap}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("finalize backup: %w", err)
	}
	return path, nil
}

// Restore validates the backup at path and saves it over the stored
// account with the same id.
func Restore(ctx context.Context, store Store, path string) (account.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return account.Snapshot{}, fmt.Errorf("read backup: %w", err)
	}
	var bf backupFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return account.Snapshot{}, fmt.Errorf("parse backup: %w", err)
	}
	if bf.Account.ID == "" {
		return account.Snapshot{}, fmt.Errorf("parse backup: missing account id")
	}
	if _, err := account.FromSnapshot(bf.Account, account.Options{}); err != nil {
		return account.Snapshot{}, fmt.Errorf("validate backup: %w", err)
	}
	if err := store.Save(ctx, bf.Account); err != nil {
		return account.Snapshot{}, fmt.Errorf("save restored account: %w", err)
	}
	return bf.Account, nil
}
