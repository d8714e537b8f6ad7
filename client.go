package dbevolve

import (
	"fmt"
	"strings"
	"time"
)

// Client supplies the SQL dialect differences of one database driver. The
// statements it returns operate on the ledger and lock tables named in the
// Config it was built from.
type Client interface {
	// Driver returns the database/sql driver name, e.g. "pgx" or "sqlite3".
	Driver() string

	// Placeholder returns the bind parameter marker for the n-th (1-based)
	// argument.
	Placeholder(n int) string

	CreateLedgerTableSql() string
	CreateLockTableSql() string
	InsertLockRowSql() string
	AcquireLockSql() string
	ReleaseLockSql() string
	SelectLockSql() string
	SelectLedgerSql() string
	InsertLedgerSql() string

	// TimeValue converts t into a bind argument the driver stores.
	TimeValue(t time.Time) any

	// ScanTime converts a scanned timestamp column back to time.Time. A nil
	// value yields the zero time.
	ScanTime(v any) (time.Time, error)

	// Busy reports whether err means another connection holds a write lock
	// the statement would have to wait for.
	Busy(err error) bool
}

// NewClient returns the Client for cfg.Driver.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Driver) {
	case "pg", "pgx", "postgres", "postgresql":
		return NewPostgresClient(cfg), nil
	case "sqlite3":
		return NewSqlite3Client(cfg, "sqlite3"), nil
	case "sqlite":
		return NewSqlite3Client(cfg, "sqlite"), nil
	default:
		return nil, fmt.Errorf("db driver '%s' not supported. Must be one of: pg, sqlite3 or sqlite", cfg.Driver)
	}
}

// baseClient holds the statements common to every dialect. Concrete clients
// set the function fields for the parts that differ.
type baseClient struct {
	cfg    Config
	driver string

	quoteTableFn  func(string) string
	placeholderFn func(int) string
	timeTypeFn    func() string
	busyFn        func(error) bool
}

func (c *baseClient) Driver() string { return c.driver }

func (c *baseClient) Placeholder(n int) string { return c.placeholderFn(n) }

func (c *baseClient) Busy(err error) bool { return err != nil && c.busyFn != nil && c.busyFn(err) }

func (c *baseClient) ledgerTable() string { return c.quoteTableFn(c.cfg.LedgerTable) }

func (c *baseClient) lockTable() string { return c.quoteTableFn(c.cfg.LockTable) }

func (c *baseClient) CreateLedgerTableSql() string {
	return fmt.Sprintf(`CREATE TABLE %s (
        name VARCHAR(255) NOT NULL,
        hash VARCHAR(64) NOT NULL,
        timestamp %s,
        PRIMARY KEY (name)
      )`, c.ledgerTable(), c.timeTypeFn())
}

func (c *baseClient) CreateLockTableSql() string {
	return fmt.Sprintf(`CREATE TABLE %s (
        id INTEGER NOT NULL,
        db_lock INTEGER NOT NULL,
        timestamp %s,
        owner VARCHAR(64),
        PRIMARY KEY (id)
      )`, c.lockTable(), c.timeTypeFn())
}

// InsertLockRowSql inserts the singleton row. The fixed primary key makes a
// second insert fail, so the table never holds more than one row.
func (c *baseClient) InsertLockRowSql() string {
	return fmt.Sprintf(`INSERT INTO %s (id, db_lock) VALUES (1, 0)`, c.lockTable())
}

func (c *baseClient) AcquireLockSql() string {
	return fmt.Sprintf(`UPDATE %s SET db_lock = 1, timestamp = %s, owner = %s WHERE id = 1 AND db_lock = 0`,
		c.lockTable(), c.Placeholder(1), c.Placeholder(2))
}

func (c *baseClient) ReleaseLockSql() string {
	return fmt.Sprintf(`UPDATE %s SET db_lock = 0, owner = NULL WHERE id = 1`, c.lockTable())
}

func (c *baseClient) SelectLockSql() string {
	return fmt.Sprintf(`SELECT db_lock, timestamp, owner FROM %s WHERE id = 1`, c.lockTable())
}

func (c *baseClient) SelectLedgerSql() string {
	return fmt.Sprintf(`SELECT name, hash, timestamp FROM %s ORDER BY timestamp, name`, c.ledgerTable())
}

func (c *baseClient) InsertLedgerSql() string {
	return fmt.Sprintf(`INSERT INTO %s (name, hash, timestamp) VALUES (%s, %s, %s)`,
		c.ledgerTable(), c.Placeholder(1), c.Placeholder(2), c.Placeholder(3))
}
