// Package profile provides read-only statistical summaries over tables and
// columns. Where the engine has a native summarization statement (DuckDB
// SUMMARIZE) it is used directly; otherwise summaries are computed with
// aggregate SQL over catalog-validated identifiers. No user-supplied value
// ever reaches statement text.
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/tabrest/tabrest/pkg/catalog"
	"github.com/tabrest/tabrest/pkg/db"
	"github.com/tabrest/tabrest/pkg/query"
)

type Service struct {
	pool db.Pool
	cat  *catalog.Catalog
}

func New(pool db.Pool, cat *catalog.Catalog) *Service {
	return &Service{pool: pool, cat: cat}
}

// Describe returns the table's columns, constraints, and resolved primary
// key in one payload.
func (s *Service) Describe(ctx context.Context, schema, table string) (map[string]any, error) {
	t, err := s.cat.Table(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	constraints, err := s.cat.Constraints(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"schema":      t.Schema,
		"table":       t.Name,
		"columns":     t.Columns,
		"constraints": constraints,
	}
	if pk, err := t.PrimaryKey(); err == nil {
		out["primary_key"] = pk.Name
	}
	return out, nil
}

// SummarizeTable produces one statistics row per column.
func (s *Service) SummarizeTable(ctx context.Context, schema, table string) ([]map[string]any, error) {
	t, err := s.cat.Table(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	if s.pool.Dialect().NativeSummarize {
		rs, err := s.pool.Query(ctx, fmt.Sprintf("SUMMARIZE SELECT * FROM %s",
			db.QualifyTable(t.Schema, t.Name)))
		if err != nil {
			return nil, &db.StorageError{Table: t.Name, Op: "summarize", Err: err}
		}
		return rs.Rows, nil
	}

	out := make([]map[string]any, 0, len(t.Columns))
	for _, col := range t.Columns {
		stats, err := s.summarize(ctx, t, col)
		if err != nil {
			return nil, err
		}
		stats["column_name"] = col.Name
		stats["column_type"] = col.DataType
		out = append(out, stats)
	}
	return out, nil
}

// SummarizeColumn produces statistics for a single column.
func (s *Service) SummarizeColumn(ctx context.Context, schema, table, column string) (map[string]any, error) {
	t, err := s.cat.Table(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	col, ok := t.Column(column)
	if !ok {
		return nil, &query.InvalidColumnError{Table: t.Name, Column: column}
	}

	stats, err := s.summarize(ctx, t, col)
	if err != nil {
		return nil, err
	}
	stats["column_name"] = col.Name
	stats["column_type"] = col.DataType
	return stats, nil
}

func (s *Service) summarize(ctx context.Context, t catalog.Table, col catalog.Column) (map[string]any, error) {
	ident := db.QuoteIdent(col.Name)

	selects := []string{
		"count(*) AS row_count",
		fmt.Sprintf("count(*) - count(%s) AS null_count", ident),
		fmt.Sprintf("count(DISTINCT %s) AS approx_unique", ident),
	}
	// min/max are only meaningful on ordered kinds; booleans and opaque
	// types are skipped.
	switch col.Kind {
	case catalog.KindInteger, catalog.KindFloat, catalog.KindText,
		catalog.KindDate, catalog.KindTimestamp:
		selects = append(selects,
			fmt.Sprintf("min(%s) AS min", ident),
			fmt.Sprintf("max(%s) AS max", ident))
	}

	sql := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(selects, ", "), db.QualifyTable(t.Schema, t.Name))

	rs, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, &db.StorageError{Table: t.Name, Op: "summarize", Err: err}
	}
	if len(rs.Rows) == 0 {
		return map[string]any{}, nil
	}
	return rs.Rows[0], nil
}
