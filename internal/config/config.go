package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"wallet/internal/alerts"
)

type Config struct {
	// Storage
	DataBackend  string
	SQLiteDBPath string

	// Account cache
	AccountCacheSize int
	AccountCacheTTL  time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Export
	ExportDir string
	BackupDir string

	// Google Sheets export (optional)
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// Logging
	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration

	Thresholds alerts.Thresholds
}

var validBackends = []string{"memory", "sqlite"}

func Load() *Config {
	def := alerts.DefaultThresholds()
	cfg := &Config{
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/wallet.db"),

		AccountCacheSize: getEnvInt("ACCOUNT_CACHE_SIZE", 16),
		AccountCacheTTL:  getEnvDuration("ACCOUNT_CACHE_TTL", 10*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "wallet"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "account_exports"),

		ExportDir: getEnv("EXPORT_DIR", "./exports"),
		BackupDir: getEnv("BACKUP_DIR", "./backups"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		Thresholds: alerts.Thresholds{
			BudgetWarning:      getEnvFloat("ALERT_BUDGET_WARNING", def.BudgetWarning),
			BudgetCritical:     getEnvFloat("ALERT_BUDGET_CRITICAL", def.BudgetCritical),
			OverspendWarning:   getEnvFloat("ALERT_OVERSPEND_WARNING", def.OverspendWarning),
			LowBalanceWarning:  getEnvFloat("ALERT_LOW_BALANCE_WARNING", def.LowBalanceWarning),
			LowBalanceCritical: getEnvFloat("ALERT_LOW_BALANCE_CRITICAL", def.LowBalanceCritical),
			LowBalanceFloor:    getEnvFloat("ALERT_LOW_BALANCE_FLOOR", def.LowBalanceFloor),
			LargeTransaction:   getEnvFloat("ALERT_LARGE_TRANSACTION", def.LargeTransaction),
			DedupWindow:        getEnvInt("ALERT_DEDUP_WINDOW", def.DedupWindow),
		},
	}

	return cfg
}

// SheetsEnabled reports whether the Google Sheets export sink is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AccountCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid account cache size %d: must not be negative", c.AccountCacheSize))
	}
	if c.AccountCacheSize > 0 && c.AccountCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid account cache TTL %v: must be positive", c.AccountCacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasFile := c.GoogleCredentialsFile != ""
		if !hasFile && c.GoogleCredentialsJSON == "" {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if err := c.Thresholds.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			errors = append(errors, "alert thresholds: "+line)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
