package main

import (
	"fmt"
	"os"

	"github.com/snowforge/snowforge/pkg/audit"
	"github.com/snowforge/snowforge/pkg/config"
	"github.com/snowforge/snowforge/pkg/db"
	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/ledger"
)

// app holds what commands share: the tool config and the optional run
// ledger and audit trail.
type app struct {
	cfg     *config.Config
	ledger  ledger.Store
	auditor *audit.Auditor
	closers []func() error
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads the config and opens the audit trail. The ledger is opened
// only when withLedger is set and the config enables it.
func openApp(withLedger bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	audit.SetEnabled(cfg.AuditEnabled)
	audit.DefaultLogger.SetWriter(os.Stderr)
	if cfg.AuditEnabled {
		store, err := audit.NewStore()
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		if store != nil {
			a.closers = append(a.closers, store.Close)
		}
		a.auditor = audit.NewAuditor(audit.DefaultLogger, store).WithLogger(logFactory("audit"))
	}

	if withLedger && cfg.LedgerEnabled {
		database, err := db.Connect(db.Config{})
		if err != nil {
			a.Close()
			return nil, err
		}
		sqlDB, err := database.DB()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)
		a.ledger = ledger.NewGormStore(database)
	}
	return a, nil
}

// snowflake reads the connection settings, loading envFile first. Dry runs
// never connect, so they pass requireAll=false.
func (a *app) snowflake(envFile string, requireAll bool) (*config.SnowflakeConfig, error) {
	return config.FromEnv(envFile, "", requireAll)
}

// engine returns a forge recording to the ledger and audit trail.
func (a *app) engine(sf *config.SnowflakeConfig) *forge.Forge {
	f := forge.FromConfig(sf, a.cfg).WithLogger(logFactory("forge"))
	if a.ledger != nil {
		f.WithRecorder(ledger.NewRecorder(a.ledger).WithLogger(logFactory("ledger")))
	}
	if a.auditor != nil {
		f.WithAuditor(a.auditor)
	}
	return f
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
