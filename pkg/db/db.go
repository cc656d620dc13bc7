// Package db abstracts the database backends the proxy serves: PostgreSQL
// via pgx, DuckDB and ClickHouse via their database/sql drivers. Callers see
// a single Pool interface regardless of driver.
package db

import (
	"context"
	"fmt"
)

// ResultSet carries rows plus column metadata from a single statement.
// Column order follows the statement's projection; row values are keyed by
// column name.
type ResultSet struct {
	Columns []string
	Rows    []map[string]any
}

// Conn is a single checked-out connection. The list path runs its count and
// page statements on one Conn so both observe the same pool member.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (*ResultSet, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Release()
}

// Pool is a process-wide connection pool. Checkout blocks until a connection
// is available or ctx is done.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (*ResultSet, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
	Dialect() Dialect
	Close()
}

// Open creates a Pool for the given driver name. Supported drivers:
// postgres (pgx), duckdb, clickhouse.
func Open(ctx context.Context, driver, connString string) (Pool, error) {
	switch driver {
	case "postgres", "pgx":
		return openPgx(ctx, connString)
	case "duckdb", "clickhouse":
		return openSQL(driver, connString)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
