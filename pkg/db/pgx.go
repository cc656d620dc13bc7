package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxPool struct {
	pool *pgxpool.Pool
}

func openPgx(ctx context.Context, connString string) (Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return &pgxPool{pool: pool}, nil
}

func (p *pgxPool) Query(ctx context.Context, sql string, args ...any) (*ResultSet, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgxRowsToResultSet(rows)
}

func (p *pgxPool) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return &pgxConn{conn: conn}, nil
}

func (p *pgxPool) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

func (p *pgxPool) Dialect() Dialect { return DialectPostgres }

func (p *pgxPool) Close() { p.pool.Close() }

type pgxConn struct {
	conn *pgxpool.Conn
}

func (c *pgxConn) Query(ctx context.Context, sql string, args ...any) (*ResultSet, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgxRowsToResultSet(rows)
}

func (c *pgxConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgxConn) Release() { c.conn.Release() }

func pgxRowsToResultSet(rows pgx.Rows) (*ResultSet, error) {
	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = string(fd.Name)
	}

	rs := &ResultSet{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			row[name] = values[i]
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}
