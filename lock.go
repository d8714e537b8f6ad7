package dbevolve

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LockRecord is the state of the singleton lock row.
type LockRecord struct {
	Locked     bool
	AcquiredAt time.Time
	Owner      string
}

// Lock coordinates migration runs across processes through a single row.
//
// Acquire relies on the database executing
//
//	UPDATE lock SET db_lock = 1 ... WHERE id = 1 AND db_lock = 0
//
// atomically with respect to concurrent transactions on the same row, so
// that exactly one racing caller sees one affected row. PostgreSQL
// guarantees this by row locking and re-checking the WHERE clause after a
// concurrent update commits. SQLite serializes all writers: while another
// connection is inside a write transaction, usually the holder applying a
// script, the UPDATE fails with SQLITE_BUSY once the connection's busy
// timeout runs out, and Acquire reports that as not acquired.
type Lock struct {
	db     *sql.DB
	client Client
	owner  string
	log    Logger
	now    func() time.Time
}

// NewLock returns a Lock that stamps owner into the row when acquired.
func NewLock(db *sql.DB, client Client, owner string, log Logger) *Lock {
	if log == nil {
		log = NopLogger
	}
	return &Lock{db: db, client: client, owner: owner, log: log, now: time.Now}
}

// EnsureTable creates the lock table and its single row. Failures are
// logged and swallowed like Ledger.EnsureTable.
func (l *Lock) EnsureTable(ctx context.Context) {
	if _, err := l.db.ExecContext(ctx, l.client.CreateLockTableSql()); err != nil {
		l.log.Log(LevelDebug, fmt.Sprintf("create lock table: %v", err))
	}
	if _, err := l.db.ExecContext(ctx, l.client.InsertLockRowSql()); err != nil {
		l.log.Log(LevelDebug, fmt.Sprintf("insert lock row: %v", err))
	}
}

// Acquire flips the lock from free to held. It returns true only if this
// call performed the transition; false means someone else holds it.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	res, err := l.db.ExecContext(ctx, l.client.AcquireLockSql(), l.client.TimeValue(l.now()), l.owner)
	if l.client.Busy(err) {
		l.log.Log(LevelDebug, fmt.Sprintf("lock table busy: %v", err))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Release frees the lock unconditionally.
func (l *Lock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, l.client.ReleaseLockSql())
	return err
}

// State reads the lock row.
func (l *Lock) State(ctx context.Context) (LockRecord, error) {
	var (
		rec   LockRecord
		flag  int
		ts    any
		owner sql.NullString
	)
	err := l.db.QueryRowContext(ctx, l.client.SelectLockSql()).Scan(&flag, &ts, &owner)
	if err != nil {
		return rec, err
	}
	rec.Locked = flag == 1
	rec.Owner = owner.String
	rec.AcquiredAt, err = l.client.ScanTime(ts)
	return rec, err
}
