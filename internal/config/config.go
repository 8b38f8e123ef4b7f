package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Engine holds the statement engine settings. The engine never reads
// ambient configuration; everything it needs is passed in explicitly so
// test instances stay deterministic.
type Engine struct {
	// Rounding digits applied to every emitted figure.
	Precision int
	// Display label only, no conversion.
	Currency string
	// Accounting standard tag stored with each statement.
	AccountingStandard string

	// Designated account names used by ratio formulas. The mapping is
	// configuration, not a hard-coded name match.
	COGSAccount            string
	InventoryAccount       string
	InterestExpenseAccount string
	// Asset accounts that make up the cash position.
	CashAccounts []string
}

type Config struct {
	Engine Engine

	// Database
	SQLiteDBPath string

	// AMQP (statement events, optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Export worker
	ExportBatchSize int
	ExportInterval  time.Duration

	// Backend selection
	DataBackend string
}

func Load() *Config {
	cfg := &Config{
		Engine: Engine{
			Precision:              getEnvInt("PRECISION", 2),
			Currency:               getEnv("CURRENCY", "USD"),
			AccountingStandard:     getEnv("ACCOUNTING_STANDARD", "GAAP"),
			COGSAccount:            getEnv("COGS_ACCOUNT", "Cost of Goods Sold"),
			InventoryAccount:       getEnv("INVENTORY_ACCOUNT", "Inventory"),
			InterestExpenseAccount: getEnv("INTEREST_EXPENSE_ACCOUNT", "Interest Expense"),
			CashAccounts:           getEnvList("CASH_ACCOUNTS", []string{"Cash"}),
		},

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finlens.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finlens"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "statement_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Statements"),

		ExportBatchSize: getEnvInt("EXPORT_BATCH_SIZE", 10),
		ExportInterval:  getEnvDuration("EXPORT_INTERVAL", 30*time.Second),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.Engine.Precision < 0 || c.Engine.Precision > 8 {
		errs = append(errs, fmt.Sprintf("invalid precision %d: must be between 0 and 8", c.Engine.Precision))
	}
	if strings.TrimSpace(c.Engine.Currency) == "" {
		errs = append(errs, "currency label cannot be empty")
	}
	if strings.TrimSpace(c.Engine.AccountingStandard) == "" {
		errs = append(errs, "accounting standard cannot be empty")
	}
	if strings.TrimSpace(c.Engine.COGSAccount) == "" {
		errs = append(errs, "COGS account name cannot be empty")
	}
	if strings.TrimSpace(c.Engine.InventoryAccount) == "" {
		errs = append(errs, "inventory account name cannot be empty")
	}
	if strings.TrimSpace(c.Engine.InterestExpenseAccount) == "" {
		errs = append(errs, "interest expense account name cannot be empty")
	}
	if len(c.Engine.CashAccounts) == 0 {
		errs = append(errs, "at least one cash account name is required")
	}

	validBackends := []string{"sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errs = append(errs, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if c.ExportBatchSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid export batch size %d: must be at least 1", c.ExportBatchSize))
	} else if c.ExportBatchSize > 1000 {
		errs = append(errs, fmt.Sprintf("invalid export batch size %d: must be at most 1000", c.ExportBatchSize))
	}

	if c.ExportInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
