package dbevolve

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Applier runs one script inside one transaction and records it in the
// ledger as part of the same transaction.
type Applier struct {
	db     *sql.DB
	ledger *Ledger
	log    Logger
	now    func() time.Time
}

// NewApplier returns an Applier writing through db and ledger.
func NewApplier(db *sql.DB, ledger *Ledger, log Logger) *Applier {
	if log == nil {
		log = NopLogger
	}
	return &Applier{db: db, ledger: ledger, log: log, now: time.Now}
}

// Apply executes every statement of m in order and then inserts its ledger
// entry. Any failure rolls the transaction back, leaving neither the
// statements' effects nor the ledger entry behind. The script counts as
// applied only once Apply returns nil.
func (a *Applier) Apply(ctx context.Context, m Migration, placeholders map[string]string) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin transaction for "+m.Name, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			a.log.Log(LevelError, fmt.Sprintf("rollback %s: %v", m.Name, rbErr))
		}
	}()

	err = scanStatements(m.Content, func(s Statement) error {
		stmt, missing, ok := replacePlaceholders(s.SQL, placeholders)
		if !ok {
			return &PlaceholderResolutionError{Name: m.Name, Line: s.Line, Placeholder: missing}
		}
		a.log.Log(LevelInfo, fmt.Sprintf("Executing migration %s:\n%s", m.Name, stmt))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &StatementExecutionError{Name: m.Name, Line: s.Line, Err: err}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrMigration) {
			err = storageError("read "+m.Name, err)
		}
		return err
	}

	entry := LedgerEntry{Name: m.Name, Hash: m.Hash, AppliedAt: a.now()}
	if err = a.ledger.Save(ctx, tx, entry); err != nil {
		return storageError("record "+m.Name, err)
	}
	if err = tx.Commit(); err != nil {
		return storageError("commit "+m.Name, err)
	}
	return nil
}
