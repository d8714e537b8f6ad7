package dbevolve

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Executor is satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LedgerEntry records one applied script.
type LedgerEntry struct {
	Name      string
	Hash      string
	AppliedAt time.Time
}

// Ledger is the table of applied scripts. It is append-only.
type Ledger struct {
	db     *sql.DB
	client Client
	log    Logger
}

// NewLedger returns a Ledger stored through db using the client's dialect.
func NewLedger(db *sql.DB, client Client, log Logger) *Ledger {
	if log == nil {
		log = NopLogger
	}
	return &Ledger{db: db, client: client, log: log}
}

// EnsureTable creates the ledger table. Any failure is logged and
// swallowed: usually the table already exists, and a real problem surfaces
// on first use.
func (l *Ledger) EnsureTable(ctx context.Context) {
	if _, err := l.db.ExecContext(ctx, l.client.CreateLedgerTableSql()); err != nil {
		l.log.Log(LevelDebug, fmt.Sprintf("create ledger table: %v", err))
	}
}

// FindAll returns every ledger entry ordered by application time.
func (l *Ledger) FindAll(ctx context.Context) ([]LedgerEntry, error) {
	rows, err := l.db.QueryContext(ctx, l.client.SelectLedgerSql())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var (
			e  LedgerEntry
			ts any
		)
		if err := rows.Scan(&e.Name, &e.Hash, &ts); err != nil {
			return nil, err
		}
		if e.AppliedAt, err = l.client.ScanTime(ts); err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save appends an entry through exec, normally the transaction that applied
// the script.
func (l *Ledger) Save(ctx context.Context, exec Executor, e LedgerEntry) error {
	_, err := exec.ExecContext(ctx, l.client.InsertLedgerSql(), e.Name, e.Hash, l.client.TimeValue(e.AppliedAt))
	return err
}
