package catalog

import "fmt"

// NotFoundError reports a table (or record) absent from the resolved schema.
type NotFoundError struct {
	Schema string
	Table  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("relation %s.%s not found", e.Schema, e.Table)
}

// UnsupportedSchemaError reports a table with no resolvable primary key:
// nothing flagged by the catalog and no column named "id". Point reads,
// updates and deletes by id cannot work against such a table.
type UnsupportedSchemaError struct {
	Schema string
	Table  string
}

func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("no resolvable primary key for %s.%s", e.Schema, e.Table)
}
