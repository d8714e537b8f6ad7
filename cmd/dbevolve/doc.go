// SPDX-License-Identifier: MIT

// Package main provides dbevolve, the command line interface for the
// dbevolve migration library.
//
// # Install
//
//	go install github.com/bcomnes/dbevolve/cmd/dbevolve@latest
//
// # Synopsis
//
//	dbevolve [command] [arguments] [flags]
//
// # Commands
//
//	migrate            Apply every pending migration.
//	status             Show the lock and each migration as applied, pending, drifted or missing.
//	new <desc>         Scaffold an empty V<n>__<desc>.sql next to the existing migrations.
//	hash <file>...     Print the SHA-256 fingerprint of each file.
//	check <file>...    Validate names and print the statements each file splits into.
//	unlock             Force-release a lock left behind by a crashed run.
//
// # Global flags
//
//	--conn string               Connection URL, or a file path for SQLite. Overrides
//	                            $DATABASE_URL and the "conn" field in --config.
//	--config string             Optional YAML or JSON config file.
//	--driver string             "pg", "sqlite3" or "sqlite" (default "pg").
//	--ledger-table string       Table recording applied scripts (default "db_evolve").
//	--lock-table string         Single row lock table (default "db_evolve_lock").
//	--migration-pattern string  Glob for locating migrations (default "migrations/*.sql").
//	-v, --verbose               Debug logging.
//
// *Precedence:* --conn flag ➜ $DATABASE_URL ➜ $DBEVOLVE_CONN ➜ "conn" in --config
//
// Every other setting can also be given as a DBEVOLVE_* environment
// variable, e.g. DBEVOLVE_LEDGER_TABLE.
//
// # Placeholders
//
// ${name} tokens in scripts are replaced from --placeholder name=value
// (repeatable) and from the "placeholders" list in the config file. Flags
// win over the config file.
//
// # Configuration file
//
//	conn: ./data/dev.sqlite
//	driver: sqlite3
//	ledger_table: db_evolve
//	migration_pattern: sql/*.sql
//	placeholders:
//	  - schema=app
//
// # Examples
//
//	# Apply every migration in ./sql
//	dbevolve migrate --driver sqlite3 --conn ./data/dev.sqlite \
//	    --migration-pattern "sql/*.sql"
//
//	# Create a timestamp based migration called create_users
//	dbevolve new "create users" --mode timestamp
//
// # Exit status
//
// The program exits non-zero on any error. A run skipped because another
// process holds the lock exits zero unless --fail-if-locked is set. Each
// command runs with a context that times out after ten minutes.
package main
