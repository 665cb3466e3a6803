//go:build embed_migrations

package main

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	migrations "github.com/snowforge/snowforge/db"
)

const embeddedDir = "migrations"

func createMigrateInstance(dbURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.Migrations, embeddedDir)
	if err != nil {
		return nil, fmt.Errorf("reading embedded migrations: %w", err)
	}
	logFactory("migrate").Debug("using embedded migrations")
	return migrate.NewWithSourceInstance("iofs", src, dbURL)
}

func listMigrationFiles() ([]string, error) {
	sub, err := fs.Sub(migrations.Migrations, embeddedDir)
	if err != nil {
		return nil, err
	}
	files, err := fs.Glob(sub, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("reading embedded migrations: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
