//go:build !embed_migrations

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationsDir is where migrations are read from when they are not
// embedded in the binary.
func migrationsDir() string {
	if dir := os.Getenv("SNOWFORGE_MIGRATIONS_PATH"); dir != "" {
		return dir
	}
	return filepath.Join("db", "migrations")
}

func createMigrateInstance(dbURL string) (*migrate.Migrate, error) {
	dir := migrationsDir()
	logFactory("migrate").Debugf("reading migrations from %s", dir)
	return migrate.New("file://"+filepath.ToSlash(dir), dbURL)
}

func listMigrationFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(migrationsDir(), "*.up.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		if _, err := os.Stat(migrationsDir()); err != nil {
			return nil, fmt.Errorf("reading migrations directory: %w", err)
		}
	}
	for i, f := range files {
		files[i] = filepath.Base(f)
	}
	sort.Strings(files)
	return files, nil
}
