package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/tabrest/tabrest/pkg/db"
)

func (c *Catalog) introspectTable(ctx context.Context, schema, table string) (Table, error) {
	d := c.pool.Dialect()

	var sql string
	if d.PKIntrospection {
		sql = fmt.Sprintf(`
			SELECT
				c.column_name,
				c.data_type,
				c.is_nullable = 'YES' AS is_nullable,
				EXISTS (
					SELECT 1 FROM information_schema.table_constraints tc
					JOIN information_schema.key_column_usage kcu
						ON tc.constraint_name = kcu.constraint_name
						AND tc.table_schema = kcu.table_schema
					WHERE tc.constraint_type = 'PRIMARY KEY'
						AND tc.table_schema = %s
						AND tc.table_name = %s
						AND kcu.column_name = c.column_name
				) AS is_primary_key
			FROM information_schema.columns c
			WHERE c.table_schema = %s AND c.table_name = %s
			ORDER BY c.ordinal_position`,
			d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4))
	} else {
		sql = fmt.Sprintf(`
			SELECT
				c.column_name,
				c.data_type,
				c.is_nullable = 'YES' AS is_nullable,
				false AS is_primary_key
			FROM information_schema.columns c
			WHERE c.table_schema = %s AND c.table_name = %s
			ORDER BY c.ordinal_position`,
			d.Placeholder(1), d.Placeholder(2))
	}

	var args []any
	if d.PKIntrospection {
		args = []any{schema, table, schema, table}
	} else {
		args = []any{schema, table}
	}

	rs, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return Table{}, &db.StorageError{Table: schema + "." + table, Op: "introspect", Err: err}
	}
	if len(rs.Rows) == 0 {
		return Table{}, &NotFoundError{Schema: schema, Table: table}
	}

	t := Table{Schema: schema, Name: table}
	for _, row := range rs.Rows {
		dataType := asString(row["data_type"])
		t.Columns = append(t.Columns, Column{
			Name:         asString(row["column_name"]),
			DataType:     dataType,
			Kind:         KindOf(dataType),
			Nullable:     asBool(row["is_nullable"]),
			IsPrimaryKey: asBool(row["is_primary_key"]),
		})
	}
	return t, nil
}

// Tables lists base tables in the schema.
func (c *Catalog) Tables(ctx context.Context, schema string) ([]string, error) {
	d := c.pool.Dialect()
	sql := fmt.Sprintf(`SELECT table_name FROM information_schema.tables
		WHERE table_schema = %s AND table_type = 'BASE TABLE'
		ORDER BY table_name`, d.Placeholder(1))
	return c.stringColumn(ctx, sql, "table_name", schema)
}

// Views lists views in the schema.
func (c *Catalog) Views(ctx context.Context, schema string) ([]string, error) {
	d := c.pool.Dialect()
	sql := fmt.Sprintf(`SELECT table_name FROM information_schema.views
		WHERE table_schema = %s ORDER BY table_name`, d.Placeholder(1))
	return c.stringColumn(ctx, sql, "table_name", schema)
}

// Columns lists column metadata for one table through the cache.
func (c *Catalog) Columns(ctx context.Context, schema, table string) ([]Column, error) {
	t, err := c.Table(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

// Constraints lists the table's constraints from information_schema.
func (c *Catalog) Constraints(ctx context.Context, schema, table string) ([]Constraint, error) {
	d := c.pool.Dialect()
	if !d.PKIntrospection {
		return nil, nil
	}
	sql := fmt.Sprintf(`
		SELECT tc.constraint_name, tc.constraint_type, kcu.column_name
		FROM information_schema.table_constraints tc
		LEFT JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = %s AND tc.table_name = %s
		ORDER BY tc.constraint_name`, d.Placeholder(1), d.Placeholder(2))

	rs, err := c.pool.Query(ctx, sql, schema, table)
	if err != nil {
		return nil, &db.StorageError{Table: schema + "." + table, Op: "list constraints", Err: err}
	}

	var out []Constraint
	for _, row := range rs.Rows {
		out = append(out, Constraint{
			Name:   asString(row["constraint_name"]),
			Type:   asString(row["constraint_type"]),
			Column: asString(row["column_name"]),
		})
	}
	return out, nil
}

// Schemas lists non-system schemas.
func (c *Catalog) Schemas(ctx context.Context) ([]string, error) {
	names, err := c.stringColumn(ctx,
		`SELECT schema_name FROM information_schema.schemata ORDER BY schema_name`,
		"schema_name")
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if !isSystemSchema(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Databases lists catalogs visible to the connection, using the dialect's
// engine-specific query.
func (c *Catalog) Databases(ctx context.Context) ([]string, error) {
	d := c.pool.Dialect()
	rs, err := c.pool.Query(ctx, d.DatabasesSQL)
	if err != nil {
		return nil, &db.StorageError{Op: "list databases", Err: err}
	}
	var out []string
	for _, row := range rs.Rows {
		for _, col := range rs.Columns {
			out = append(out, asString(row[col]))
			break
		}
	}
	return out, nil
}

func (c *Catalog) stringColumn(ctx context.Context, sql, column string, args ...any) ([]string, error) {
	rs, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &db.StorageError{Op: "introspect", Err: err}
	}
	var out []string
	for _, row := range rs.Rows {
		out = append(out, asString(row[column]))
	}
	return out, nil
}

func isSystemSchema(schema string) bool {
	switch schema {
	case "information_schema", "pg_catalog", "pg_toast", "system":
		return true
	default:
		return strings.HasPrefix(schema, "pg_temp") || strings.HasPrefix(schema, "pg_toast_temp")
	}
}

// KindOf maps an information_schema data_type string to a coarse Kind.
func KindOf(dataType string) Kind {
	dt := strings.ToLower(dataType)
	switch dt {
	case "smallint", "integer", "int", "int2", "int4", "int8", "bigint",
		"tinyint", "hugeint", "usmallint", "uinteger", "ubigint",
		"smallserial", "serial", "bigserial":
		return KindInteger
	case "real", "double precision", "double", "float", "float4", "float8":
		return KindFloat
	case "text", "string", "uuid", "character varying", "character", "varchar", "char", "bpchar":
		return KindText
	case "boolean", "bool":
		return KindBoolean
	case "date":
		return KindDate
	case "datetime":
		return KindTimestamp
	}
	switch {
	case strings.HasPrefix(dt, "timestamp"):
		return KindTimestamp
	case strings.HasPrefix(dt, "numeric") || strings.HasPrefix(dt, "decimal"):
		return KindFloat
	case strings.HasPrefix(dt, "varchar") || strings.HasPrefix(dt, "char"):
		return KindText
	default:
		return KindOther
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case uint8:
		return b != 0
	case uint64:
		return b != 0
	default:
		return false
	}
}
