package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []Filter
	}{
		{
			name:  "bare key is equality",
			query: "name=John",
			want:  []Filter{{Column: "name", Op: OpEq, RawValue: "John"}},
		},
		{
			name:  "explicit operator",
			query: "age.gte=21",
			want:  []Filter{{Column: "age", Op: OpGte, RawValue: "21"}},
		},
		{
			name:  "every operator",
			query: "a.eq=1&b.neq=2&c.gt=3&d.gte=4&e.lt=5&f.lte=6&g.like=x%25&h.ilike=y%25",
			want: []Filter{
				{Column: "a", Op: OpEq, RawValue: "1"},
				{Column: "b", Op: OpNeq, RawValue: "2"},
				{Column: "c", Op: OpGt, RawValue: "3"},
				{Column: "d", Op: OpGte, RawValue: "4"},
				{Column: "e", Op: OpLt, RawValue: "5"},
				{Column: "f", Op: OpLte, RawValue: "6"},
				{Column: "g", Op: OpLike, RawValue: "x%"},
				{Column: "h", Op: OpILike, RawValue: "y%"},
			},
		},
		{
			name:  "unrecognized suffix falls back to literal dotted column",
			query: "user.name=John",
			want:  []Filter{{Column: "user.name", Op: OpEq, RawValue: "John"}},
		},
		{
			name:  "only the last dot splits",
			query: "user.name.eq=John",
			want:  []Filter{{Column: "user.name", Op: OpEq, RawValue: "John"}},
		},
		{
			name:  "repeated keys each produce a condition",
			query: "age.gte=18&age.lte=65",
			want: []Filter{
				{Column: "age", Op: OpGte, RawValue: "18"},
				{Column: "age", Op: OpLte, RawValue: "65"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			spec, err := Parse(values, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Filters)
		})
	}
}

func TestParseFilterKeysSorted(t *testing.T) {
	values, err := url.ParseQuery("zeta=1&alpha=2&mid.gte=3")
	require.NoError(t, err)

	spec, err := Parse(values, 100)
	require.NoError(t, err)

	require.Len(t, spec.Filters, 3)
	assert.Equal(t, "alpha", spec.Filters[0].Column)
	assert.Equal(t, "mid", spec.Filters[1].Column)
	assert.Equal(t, "zeta", spec.Filters[2].Column)
}

func TestParseSelect(t *testing.T) {
	values, err := url.ParseQuery("select=id,%20name,id")
	require.NoError(t, err)

	spec, err := Parse(values, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, spec.Select)
}

func TestParseOrder(t *testing.T) {
	values, err := url.ParseQuery("order=name%20asc,age%20desc,id")
	require.NoError(t, err)

	spec, err := Parse(values, 100)
	require.NoError(t, err)
	assert.Equal(t, []Order{
		{Column: "name"},
		{Column: "age", Descending: true},
		{Column: "id"},
	}, spec.OrderBy)
}

func TestParseOrderErrors(t *testing.T) {
	for _, raw := range []string{"order=name%20sideways", "order=name%20asc%20extra"} {
		values, err := url.ParseQuery(raw)
		require.NoError(t, err)

		_, err = Parse(values, 100)
		var invalid *InvalidQueryError
		require.ErrorAs(t, err, &invalid, raw)
		assert.Equal(t, "order", invalid.Param)
	}
}

func TestParsePagination(t *testing.T) {
	values, err := url.ParseQuery("limit=10&skip=20")
	require.NoError(t, err)

	spec, err := Parse(values, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, spec.Limit)
	assert.Equal(t, 20, spec.Skip)
}

func TestParsePaginationDefaults(t *testing.T) {
	spec, err := Parse(url.Values{}, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, spec.Limit)
	assert.Equal(t, 0, spec.Skip)
}

func TestParsePaginationErrors(t *testing.T) {
	for _, raw := range []string{"limit=-1", "limit=ten", "skip=-5", "skip=1.5"} {
		values, err := url.ParseQuery(raw)
		require.NoError(t, err)

		_, err = Parse(values, 100)
		var invalid *InvalidQueryError
		assert.ErrorAs(t, err, &invalid, raw)
	}
}
