package main

import (
	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the run ledger schema",
	Long: `Apply, roll back and inspect the migrations of the run ledger and audit
tables. The database is read from ` + db.LedgerURLEnv + `.

Builds tagged embed_migrations carry the migrations in the binary; other
builds read them from SNOWFORGE_MIGRATIONS_PATH (default db/migrations).`,
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
