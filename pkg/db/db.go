package db

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LedgerURLEnv names the variable holding the ledger database URL.
const LedgerURLEnv = "SNOWFORGE_LEDGER_URL"

// Config holds ledger database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to SNOWFORGE_LEDGER_URL)
	URL string
	// Debug logs every SQL statement
	Debug bool
}

// Connect opens the ledger database.
// If no URL is provided, it reads from SNOWFORGE_LEDGER_URL.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("%s environment variable is required", LedgerURLEnv)
	}

	logMode := logger.Silent
	if cfg.Debug || strings.HasPrefix(os.Getenv("SNOWFORGE_LOG_LEVEL"), "debug") {
		logMode = logger.Info
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logMode),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ledger database: %w", err)
	}
	return db, nil
}

// URL returns the ledger database URL from the environment, or "".
func URL() string {
	return os.Getenv(LedgerURLEnv)
}
