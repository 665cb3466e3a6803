// Package db holds the ledger schema migrations.
package db

import "embed"

// Migrations contains the SQL migrations under migrations/, embedded for
// builds tagged embed_migrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS
