package dbevolve

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PostgresClient implements Client for PostgreSQL through the pgx stdlib
// driver.
type PostgresClient struct {
	baseClient
}

// NewPostgresClient creates a new PostgresClient.
func NewPostgresClient(cfg Config) *PostgresClient {
	c := &PostgresClient{
		baseClient: baseClient{
			cfg:    cfg,
			driver: "pgx",
		},
	}
	c.quoteTableFn = c.quoteTable
	c.placeholderFn = c.placeholder
	c.timeTypeFn = c.timeType
	return c
}

// quoteTable quotes each part of a possibly schema qualified table name.
func (c *PostgresClient) quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = fmt.Sprintf(`"%s"`, part)
	}
	return strings.Join(parts, ".")
}

func (c *PostgresClient) placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (c *PostgresClient) timeType() string {
	return "TIMESTAMP WITH TIME ZONE"
}

func (c *PostgresClient) TimeValue(t time.Time) any {
	return t
}

func (c *PostgresClient) ScanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}
