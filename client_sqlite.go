package dbevolve

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// sqliteTimeFormat is fixed width so that ORDER BY timestamp sorts
// chronologically on the TEXT column.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

// Primary result codes for a connection blocked by another writer.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// Sqlite3Client implements Client for SQLite. It serves both the cgo driver
// (github.com/mattn/go-sqlite3, "sqlite3") and the pure Go one
// (modernc.org/sqlite, "sqlite").
type Sqlite3Client struct {
	baseClient
}

// NewSqlite3Client creates a new Sqlite3Client for the given driver name.
func NewSqlite3Client(cfg Config, driver string) *Sqlite3Client {
	c := &Sqlite3Client{
		baseClient: baseClient{
			cfg:    cfg,
			driver: driver,
		},
	}
	c.quoteTableFn = c.quoteTable
	c.placeholderFn = c.placeholder
	c.timeTypeFn = c.timeType
	c.busyFn = c.busy
	return c
}

// quoteTable for SQLite is simply the table name.
func (c *Sqlite3Client) quoteTable(name string) string {
	return name
}

func (c *Sqlite3Client) placeholder(int) string {
	return "?"
}

// timeType is TEXT: neither driver round-trips a TIMESTAMP column the same
// way, so timestamps are stored as formatted UTC strings.
func (c *Sqlite3Client) timeType() string {
	return "TEXT"
}

func (c *Sqlite3Client) TimeValue(t time.Time) any {
	return t.UTC().Format(sqliteTimeFormat)
}

func (c *Sqlite3Client) ScanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t, nil
	case string:
		return time.Parse(sqliteTimeFormat, t)
	case []byte:
		return time.Parse(sqliteTimeFormat, string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

// sqliteCoder is implemented by modernc.org/sqlite errors.
type sqliteCoder interface {
	Code() int
}

// busy matches SQLITE_BUSY and SQLITE_LOCKED, including their extended
// codes. mattn/go-sqlite3 errors are only usable with cgo, so they are
// matched by the fixed sqlite3_errstr text of those codes.
func (c *Sqlite3Client) busy(err error) bool {
	var coded sqliteCoder
	if errors.As(err, &coded) {
		code := coded.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}
