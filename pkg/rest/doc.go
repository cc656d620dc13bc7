// Package rest exposes relational tables as REST resources without
// per-table code. Table metadata is discovered at request time through the
// schema catalog; query strings are translated into parameterized SQL by the
// query package.
//
// Entities are exposed at /{entity} using the configured schema context.
// Query parameters control filtering, projection, ordering, and pagination:
//
//	Parameter          | Description
//	-------------------|------------------------------------------------
//	?select=col1,col2  | Project specific columns
//	?order=col desc    | Order results (direction defaults to asc)
//	?limit=N           | Page size (default from configuration)
//	?skip=N            | Pagination offset (default 0)
//	?col.eq=val        | Filter by equality (also the default: ?col=val)
//	?col.neq=val       | Not equal
//	?col.gt=val        | Greater than (gte, lt, lte similarly)
//	?col.like=val      | Pattern match; callers supply % wildcards
//	?col.ilike=val     | Case-insensitive pattern match
//
// A filter key whose suffix after the last dot is not a recognized operator
// is treated as an equality filter on a column literally named by the whole
// key. Repeated filter keys combine with AND.
//
// List responses use the envelope {"data": [...], "count": N, "limit": N,
// "skip": N} where count is the filtered total independent of pagination.
// Point reads return the record directly.
//
// Raw SQL can be executed through POST /execute/sql, subject to the
// configured keyword blacklist. Introspection lives under /metadata,
// /profile, and /describe.
package rest
