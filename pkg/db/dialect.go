package db

import (
	"fmt"
	"strings"
)

// Dialect captures the per-engine SQL differences the statement builder and
// the catalog need: placeholder style, RETURNING support, native
// summarization, and the database-listing query (no portable
// information_schema equivalent exists for that one).
type Dialect struct {
	Name string
	// PositionalDollar selects $1-style placeholders; otherwise ?.
	PositionalDollar bool
	// SupportsReturning enables INSERT/UPDATE/DELETE ... RETURNING *.
	SupportsReturning bool
	// NativeSummarize enables the engine's own statistics statement
	// (DuckDB SUMMARIZE) instead of hand-built aggregates.
	NativeSummarize bool
	// PKIntrospection indicates information_schema.table_constraints is
	// available for primary-key discovery.
	PKIntrospection bool
	// DatabasesSQL lists catalogs visible to the connection.
	DatabasesSQL string
}

var (
	DialectPostgres = Dialect{
		Name:              "postgres",
		PositionalDollar:  true,
		SupportsReturning: true,
		PKIntrospection:   true,
		DatabasesSQL:      `SELECT datname FROM pg_database WHERE NOT datistemplate ORDER BY datname`,
	}
	DialectDuckDB = Dialect{
		Name:              "duckdb",
		PositionalDollar:  true,
		SupportsReturning: true,
		NativeSummarize:   true,
		PKIntrospection:   true,
		DatabasesSQL:      `SELECT database_name FROM duckdb_databases() ORDER BY database_name`,
	}
	DialectClickHouse = Dialect{
		Name:         "clickhouse",
		DatabasesSQL: `SELECT name FROM system.databases ORDER BY name`,
	}
)

// Placeholder renders the n-th (1-based) statement parameter.
func (d Dialect) Placeholder(n int) string {
	if d.PositionalDollar {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// QuoteIdent double-quotes an identifier, escaping embedded quotes. All
// identifiers are validated against the catalog before quoting; this guards
// the quoting itself, not the trust decision.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifyTable renders a schema-qualified, quoted table reference.
func QualifyTable(schema, table string) string {
	return QuoteIdent(schema) + "." + QuoteIdent(table)
}

func dialectFor(driver string) Dialect {
	switch driver {
	case "postgres", "pgx":
		return DialectPostgres
	case "duckdb":
		return DialectDuckDB
	case "clickhouse":
		return DialectClickHouse
	default:
		return Dialect{Name: driver}
	}
}
