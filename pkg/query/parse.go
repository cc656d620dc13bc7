package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Reserved query-string keys consumed by Parse itself. Any other key is a
// filter.
var reservedParams = map[string]bool{
	"select": true,
	"order":  true,
	"limit":  true,
	"skip":   true,
}

// Parse turns raw query parameters into a Spec. Unrecognized keys never
// fail: a key of form field.op with a recognized operator becomes a typed
// filter; any other key, including keys whose suffix after the last dot is
// not an operator, becomes an equality filter on the literal key, dots and
// all. Repeated keys each produce their own condition, combined with AND.
func Parse(values url.Values, defaultLimit int) (Spec, error) {
	spec := Spec{Limit: defaultLimit}

	if sel := values.Get("select"); sel != "" {
		for _, col := range strings.Split(sel, ",") {
			col = strings.TrimSpace(col)
			if col != "" && !slices.Contains(spec.Select, col) {
				spec.Select = append(spec.Select, col)
			}
		}
	}

	if order := values.Get("order"); order != "" {
		orderBy, err := parseOrder(order)
		if err != nil {
			return Spec{}, err
		}
		spec.OrderBy = orderBy
	}

	if limit := values.Get("limit"); limit != "" {
		n, err := parseNonNegative("limit", limit)
		if err != nil {
			return Spec{}, err
		}
		spec.Limit = n
	}

	if skip := values.Get("skip"); skip != "" {
		n, err := parseNonNegative("skip", skip)
		if err != nil {
			return Spec{}, err
		}
		spec.Skip = n
	}

	// url.Values iterates in map order; sort keys so the rendered WHERE
	// clause is deterministic for a given request.
	keys := make([]string, 0, len(values))
	for key := range values {
		if !reservedParams[key] {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		for _, value := range values[key] {
			spec.Filters = append(spec.Filters, parseFilter(key, value))
		}
	}

	return spec, nil
}

// parseFilter splits a key on its last dot. An unrecognized suffix means the
// whole key is a column name containing a dot, filtered with equality; this
// preserves compatibility with dotted column names.
func parseFilter(key, value string) Filter {
	if i := strings.LastIndex(key, "."); i >= 0 {
		op := Operator(key[i+1:])
		if _, ok := sqlOperators[op]; ok {
			return Filter{Column: key[:i], Op: op, RawValue: value}
		}
	}
	return Filter{Column: key, Op: OpEq, RawValue: value}
}

func parseOrder(order string) ([]Order, error) {
	var out []Order
	for _, term := range strings.Split(order, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		fields := strings.Fields(term)
		o := Order{Column: fields[0]}
		if len(fields) > 1 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				o.Descending = true
			default:
				return nil, &InvalidQueryError{Param: "order", Reason: "direction must be asc or desc"}
			}
		}
		if len(fields) > 2 {
			return nil, &InvalidQueryError{Param: "order", Reason: "malformed order term"}
		}
		out = append(out, o)
	}
	return out, nil
}

func parseNonNegative(param, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &InvalidQueryError{Param: param, Reason: "must be an integer"}
	}
	if n < 0 {
		return 0, &InvalidQueryError{Param: param, Reason: "must be non-negative"}
	}
	return n, nil
}
