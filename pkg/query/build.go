package query

import (
	"fmt"
	"strings"

	"github.com/tabrest/tabrest/pkg/catalog"
	"github.com/tabrest/tabrest/pkg/db"
)

// Builder renders Specs and write payloads into parameterized statements.
// It never executes SQL and never interpolates a user-supplied value into
// statement text.
type Builder struct {
	dialect db.Dialect
}

func NewBuilder(dialect db.Dialect) *Builder {
	return &Builder{dialect: dialect}
}

// SupportsReturning reports whether built write statements carry a
// RETURNING * clause.
func (b *Builder) SupportsReturning() bool { return b.dialect.SupportsReturning }

// List builds the page statement and its paired count statement. Both share
// the same WHERE clause and filter parameters; only the page statement
// carries ORDER BY / LIMIT / OFFSET. The count is a separate round-trip;
// page and total stay eventually consistent, not transactional.
func (b *Builder) List(table catalog.Table, spec Spec) (page, count Statement, err error) {
	projection := "*"
	if len(spec.Select) > 0 {
		cols := make([]string, 0, len(spec.Select))
		for _, name := range spec.Select {
			if _, ok := table.Column(name); !ok {
				return Statement{}, Statement{}, &InvalidColumnError{Table: table.Name, Column: name}
			}
			cols = append(cols, db.QuoteIdent(name))
		}
		projection = strings.Join(cols, ", ")
	}

	where, args, err := b.whereClause(table, spec.Filters)
	if err != nil {
		return Statement{}, Statement{}, err
	}

	from := " FROM " + db.QualifyTable(table.Schema, table.Name)

	var sb strings.Builder
	sb.WriteString("SELECT " + projection + from + where)

	if len(spec.OrderBy) > 0 {
		terms := make([]string, 0, len(spec.OrderBy))
		for _, o := range spec.OrderBy {
			if _, ok := table.Column(o.Column); !ok {
				return Statement{}, Statement{}, &InvalidColumnError{Table: table.Name, Column: o.Column}
			}
			dir := "ASC"
			if o.Descending {
				dir = "DESC"
			}
			terms = append(terms, db.QuoteIdent(o.Column)+" "+dir)
		}
		sb.WriteString(" ORDER BY " + strings.Join(terms, ", "))
	}

	pageArgs := make([]any, len(args), len(args)+2)
	copy(pageArgs, args)
	sb.WriteString(fmt.Sprintf(" LIMIT %s OFFSET %s",
		b.dialect.Placeholder(len(pageArgs)+1), b.dialect.Placeholder(len(pageArgs)+2)))
	pageArgs = append(pageArgs, spec.Limit, spec.Skip)

	page = Statement{SQL: sb.String(), Args: pageArgs}
	count = Statement{SQL: "SELECT count(*)" + from + where, Args: args}
	return page, count, nil
}

// Get builds a point read on the table's primary key.
func (b *Builder) Get(table catalog.Table, id string) (Statement, error) {
	pk, pkArg, err := b.primaryKey(table, id)
	if err != nil {
		return Statement{}, err
	}
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s",
		db.QualifyTable(table.Schema, table.Name), db.QuoteIdent(pk.Name), b.dialect.Placeholder(1))
	return Statement{SQL: sql, Args: []any{pkArg}}, nil
}

// Insert builds an INSERT for the fields present in record, in the table's
// declared column order. Unknown fields fail before anything executes.
func (b *Builder) Insert(table catalog.Table, record map[string]any) (Statement, error) {
	if err := b.validateFields(table, record); err != nil {
		return Statement{}, err
	}

	var cols, placeholders []string
	var args []any
	for _, col := range table.Columns {
		value, ok := record[col.Name]
		if !ok {
			continue
		}
		cols = append(cols, db.QuoteIdent(col.Name))
		placeholders = append(placeholders, b.dialect.Placeholder(len(args)+1))
		args = append(args, value)
	}
	if len(cols) == 0 {
		return Statement{}, &InvalidQueryError{Param: "body", Reason: "no insertable fields"}
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		db.QualifyTable(table.Schema, table.Name),
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if b.dialect.SupportsReturning {
		sql += " RETURNING *"
	}
	return Statement{SQL: sql, Args: args}, nil
}

// Replace builds a full-row UPDATE: every non-primary-key column is set,
// with columns absent from record explicitly set to NULL. This is the PUT
// semantics that diverges observably from Update.
func (b *Builder) Replace(table catalog.Table, id string, record map[string]any) (Statement, error) {
	if err := b.validateFields(table, record); err != nil {
		return Statement{}, err
	}
	pk, pkArg, err := b.primaryKey(table, id)
	if err != nil {
		return Statement{}, err
	}

	var sets []string
	var args []any
	for _, col := range table.Columns {
		if col.Name == pk.Name {
			continue
		}
		value, ok := record[col.Name]
		if !ok {
			value = nil
		}
		sets = append(sets, db.QuoteIdent(col.Name)+" = "+b.dialect.Placeholder(len(args)+1))
		args = append(args, value)
	}
	if len(sets) == 0 {
		return Statement{}, &InvalidQueryError{Param: "body", Reason: "table has no replaceable columns"}
	}

	return b.finishUpdate(table, pk, pkArg, sets, args), nil
}

// Update builds a partial UPDATE touching only the fields present in record.
func (b *Builder) Update(table catalog.Table, id string, record map[string]any) (Statement, error) {
	if err := b.validateFields(table, record); err != nil {
		return Statement{}, err
	}
	pk, pkArg, err := b.primaryKey(table, id)
	if err != nil {
		return Statement{}, err
	}

	var sets []string
	var args []any
	for _, col := range table.Columns {
		value, ok := record[col.Name]
		if !ok || col.Name == pk.Name {
			continue
		}
		sets = append(sets, db.QuoteIdent(col.Name)+" = "+b.dialect.Placeholder(len(args)+1))
		args = append(args, value)
	}
	if len(sets) == 0 {
		return Statement{}, &InvalidQueryError{Param: "body", Reason: "no updatable fields"}
	}

	return b.finishUpdate(table, pk, pkArg, sets, args), nil
}

// Delete builds a DELETE on the table's primary key.
func (b *Builder) Delete(table catalog.Table, id string) (Statement, error) {
	pk, pkArg, err := b.primaryKey(table, id)
	if err != nil {
		return Statement{}, err
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		db.QualifyTable(table.Schema, table.Name), db.QuoteIdent(pk.Name), b.dialect.Placeholder(1))
	if b.dialect.SupportsReturning {
		sql += " RETURNING *"
	}
	return Statement{SQL: sql, Args: []any{pkArg}}, nil
}

func (b *Builder) finishUpdate(table catalog.Table, pk catalog.Column, pkArg any, sets []string, args []any) Statement {
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		db.QualifyTable(table.Schema, table.Name),
		strings.Join(sets, ", "), db.QuoteIdent(pk.Name), b.dialect.Placeholder(len(args)+1))
	args = append(args, pkArg)
	if b.dialect.SupportsReturning {
		sql += " RETURNING *"
	}
	return Statement{SQL: sql, Args: args}
}

// whereClause renders filters as an AND conjunction. Filter values are
// coerced to the column type (LIKE/ILIKE values stay text, wildcards are the
// caller's business) and always bound as parameters.
func (b *Builder) whereClause(table catalog.Table, filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	var clauses []string
	var args []any
	for _, f := range filters {
		col, ok := table.Column(f.Column)
		if !ok {
			return "", nil, &InvalidColumnError{Table: table.Name, Column: f.Column}
		}

		var value any
		if f.Op == OpLike || f.Op == OpILike {
			value = f.RawValue
		} else {
			coerced, err := Coerce(col, f.RawValue)
			if err != nil {
				return "", nil, err
			}
			value = coerced
		}

		clauses = append(clauses, fmt.Sprintf("%s %s %s",
			db.QuoteIdent(col.Name), sqlOperators[f.Op], b.dialect.Placeholder(len(args)+1)))
		args = append(args, value)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (b *Builder) primaryKey(table catalog.Table, id string) (catalog.Column, any, error) {
	pk, err := table.PrimaryKey()
	if err != nil {
		return catalog.Column{}, nil, err
	}
	arg, err := Coerce(pk, id)
	if err != nil {
		return catalog.Column{}, nil, err
	}
	return pk, arg, nil
}

func (b *Builder) validateFields(table catalog.Table, record map[string]any) error {
	for name := range record {
		if _, ok := table.Column(name); !ok {
			return &InvalidColumnError{Table: table.Name, Column: name}
		}
	}
	return nil
}
