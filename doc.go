// SPDX-License-Identifier: MIT

// Package dbevolve applies versioned SQL migration scripts to a database
// exactly once, in version order. It records every applied script with a
// SHA-256 fingerprint in a ledger table, refuses to run when an applied
// script has been edited, and coordinates concurrent runs through a single
// lock row so that only one process migrates at a time.
//
// A thin client layer (currently PostgreSQL and SQLite) supplies SQL
// dialect differences. The companion CLI lives under *cmd/dbevolve*; the
// core logic is here.
//
// # Install
//
//	go get github.com/bcomnes/dbevolve@latest
//
// # Quick start
//
//	import (
//	    "context"
//	    "database/sql"
//
//	    _ "github.com/jackc/pgx/v5/stdlib" // or sqlite3
//	    "github.com/bcomnes/dbevolve"
//	)
//
//	func main() {
//	    db, _ := sql.Open("pgx", os.Getenv("DATABASE_URL"))
//	    cfg := dbevolve.Config{Driver: "pg"}
//
//	    e, _ := dbevolve.New(cfg, db, dbevolve.NewGlobSource("migrations/*.sql"))
//	    applied, err := e.Migrate(context.Background(), map[string]string{"schema": "app"})
//	}
//
// Migrate returns false, nil when another process holds the lock.
//
// # Migration files
//
// Scripts are named V<version>__<description>.<ext>, for example
//
//	V1__create_tables.sql
//	V2__alter_tables.sql
//	V10__add_index.sql
//
// and run in numeric version order (V2 before V10). Statements end with ";"
// unless a "DELIMITER <token>" line changes the terminator for the rest of
// the script. Lines starting with "--" are comments. A comment containing
// NewlineDelimiterToken makes the next statement end at the first blank
// line instead. ${name} placeholders are replaced from the map passed to
// Migrate.
//
// Each script runs in its own transaction together with its ledger entry.
// A failing statement rolls the whole script back and is reported with the
// line it starts on.
//
// # Configuration
//
// Use Config to tweak behaviour:
//
//   - Driver          : database driver name ("pg", "sqlite3", "sqlite")
//   - LedgerTable     : table that records applied scripts (default "db_evolve")
//   - LockTable       : single row lock table (default "db_evolve_lock")
//   - MigrationPattern: glob used when no Source is given
//   - Logger          : progress sink; see NewZapLogger and NewSlogLogger
//   - Registerer      : optional Prometheus registerer for run metrics
//
// # Programmatic API
//
//	New(cfg, db, src)             → *Evolver
//	(*Evolver).Migrate(ctx, vars) → bool, error
//	(*Evolver).Status(ctx)        → []MigrationStatus, error
//	(*Evolver).Migrations()       → []Migration, error
//	(*Evolver).Lock()             → *Lock
//
// Every error returned by Migrate matches ErrMigration with errors.Is.
package dbevolve
