package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/db"
)

const migrationsTable = "snowforge_schema_migrations"

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the ledger schema",
	Long: `Create and/or upgrade the ledger schema.

This command runs all pending migrations against SNOWFORGE_LEDGER_URL.
Migrations are located in the db/migrations directory, or embedded in
binaries built with -tags embed_migrations.

Example:
  snowforge db migrate`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fmt.Fprintln(os.Stderr, "Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback ledger migrations",
	Long: `Rollback ledger migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  snowforge db down      # Rollback 1 migration
  snowforge db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fmt.Fprintf(os.Stderr, "steps must be a positive integer, got %q\n", args[0])
				os.Exit(1)
			}
			steps = n
		}

		if err := runMigrationsDown(steps); err != nil {
			fmt.Fprintln(os.Stderr, "Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current ledger migration version and how many migrations are known.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

// migrationURL returns the ledger URL with golang-migrate's version table
// moved to migrationsTable, so it does not collide with tables of other
// tools sharing the database.
func migrationURL(dbURL string) (string, error) {
	if dbURL == "" {
		return "", fmt.Errorf("%s environment variable is required", db.LedgerURLEnv)
	}
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("invalid ledger URL: %w", err)
	}
	query := parsed.Query()
	if query.Get("x-migrations-table") == "" {
		query.Set("x-migrations-table", migrationsTable)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func openMigrate() (*migrate.Migrate, error) {
	dbURL, err := migrationURL(db.URL())
	if err != nil {
		return nil, err
	}
	m, err := createMigrateInstance(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func runMigrations() error {
	m, err := openMigrate()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, _ := m.Version()
	fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migrations to run - ledger is up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, _ := m.Version()
	fmt.Printf("Migrated to version: %d\n", newVersion)
	fmt.Println("Migrations complete")
	return nil
}

func runMigrationsDown(steps int) error {
	m, err := openMigrate()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	fmt.Printf("Rolling back %d migration(s)...\n", steps)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("Rolled back all migrations")
		return nil
	}
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus() error {
	files, err := listMigrationFiles()
	if err != nil {
		return err
	}

	m, err := openMigrate()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Printf("No migrations have been applied yet (%d available)\n", len(files))
			return nil
		}
		return err
	}

	pending := pendingMigrations(files, version)
	fmt.Printf("Current version: %d\n", version)
	fmt.Printf("Pending migrations: %d\n", len(pending))
	for _, name := range pending {
		fmt.Printf("  %s\n", name)
	}
	if dirty {
		fmt.Println("Warning: Ledger is in a dirty state")
	}
	return nil
}

// pendingMigrations returns the up files whose version is above current.
func pendingMigrations(files []string, current uint) []string {
	var pending []string
	for _, name := range files {
		prefix, _, found := strings.Cut(name, "_")
		if !found {
			continue
		}
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		if version > uint64(current) {
			pending = append(pending, name)
		}
	}
	return pending
}
