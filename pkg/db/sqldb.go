package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2" // clickhouse driver
	_ "github.com/marcboeker/go-duckdb"        // duckdb driver
)

// sqlPool wraps database/sql for engines without a dedicated native pool.
type sqlPool struct {
	db      *sql.DB
	dialect Dialect
}

func openSQL(driver, connString string) (Pool, error) {
	sqldb, err := sql.Open(driver, connString)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	sqldb.SetMaxOpenConns(10)
	sqldb.SetMaxIdleConns(5)
	sqldb.SetConnMaxLifetime(30 * time.Minute)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	return &sqlPool{db: sqldb, dialect: dialectFor(driver)}, nil
}

func (p *sqlPool) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return sqlRowsToResultSet(rows)
}

func (p *sqlPool) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	// Not every driver reports affected rows; treat that as zero.
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (p *sqlPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return &sqlConn{conn: conn}, nil
}

func (p *sqlPool) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

func (p *sqlPool) Dialect() Dialect { return p.dialect }

func (p *sqlPool) Close() { _ = p.db.Close() }

type sqlConn struct {
	conn *sql.Conn
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return sqlRowsToResultSet(rows)
}

func (c *sqlConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (c *sqlConn) Release() { _ = c.conn.Close() }

func sqlRowsToResultSet(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, name := range columns {
			// database/sql hands back []byte for text-ish columns
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}
