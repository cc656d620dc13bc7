// Package query translates HTTP query-string grammar into parameterized SQL.
// Parse produces a Spec from raw query parameters; Builder renders a Spec
// (plus catalog metadata) into statements whose every user-supplied value is
// bound as a parameter. The blacklist guard for the raw-SQL path lives here
// too.
package query

// Operator is a recognized filter operator suffix (the part after the last
// dot in a filter key).
type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpLike  Operator = "like"
	OpILike Operator = "ilike"
)

var sqlOperators = map[Operator]string{
	OpEq:    "=",
	OpNeq:   "<>",
	OpGt:    ">",
	OpGte:   ">=",
	OpLt:    "<",
	OpLte:   "<=",
	OpLike:  "LIKE",
	OpILike: "ILIKE",
}

// Filter is one column condition. RawValue stays a string until the builder
// coerces it against the column's declared type.
type Filter struct {
	Column   string
	Op       Operator
	RawValue string
}

// Order is one ORDER BY term.
type Order struct {
	Column     string
	Descending bool
}

// Spec is the structured form of one request's filter/sort/paginate/select
// parameters. Built once per request and consumed once by the Builder.
type Spec struct {
	Filters []Filter
	OrderBy []Order
	Select  []string // empty = all columns
	Limit   int
	Skip    int
}

// Statement is a parameterized SQL statement ready for execution.
type Statement struct {
	SQL  string
	Args []any
}
