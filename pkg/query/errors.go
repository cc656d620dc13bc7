package query

import "fmt"

// InvalidQueryError reports a malformed reserved parameter (order direction,
// limit, skip).
type InvalidQueryError struct {
	Param  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid %s parameter: %s", e.Param, e.Reason)
}

// InvalidColumnError reports a column referenced in a filter, select list,
// order clause, or write payload that does not exist in the table.
type InvalidColumnError struct {
	Table  string
	Column string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("unknown column %q in table %q", e.Column, e.Table)
}

// TypeMismatchError reports a query value that cannot be coerced to the
// target column's declared type.
type TypeMismatchError struct {
	Column string
	Value  string
	Want   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value %q for column %q is not a valid %s", e.Value, e.Column, e.Want)
}

// RejectedError reports a blacklisted keyword found in raw SQL.
type RejectedError struct {
	Keyword string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("statement contains prohibited keyword %q", e.Keyword)
}
