package profile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabrest/tabrest/internal/testutil"
	"github.com/tabrest/tabrest/pkg/catalog"
	"github.com/tabrest/tabrest/pkg/db"
	"github.com/tabrest/tabrest/pkg/profile"
	"github.com/tabrest/tabrest/pkg/query"
)

func stubIntrospection(pool *testutil.FakePool) *testutil.FakePool {
	return pool.Stub("information_schema.columns", &db.ResultSet{
		Columns: []string{"column_name", "data_type", "is_nullable", "is_primary_key"},
		Rows: []map[string]any{
			{"column_name": "id", "data_type": "integer", "is_nullable": false, "is_primary_key": true},
			{"column_name": "active", "data_type": "boolean", "is_nullable": true, "is_primary_key": false},
		},
	})
}

func TestSummarizeTableNative(t *testing.T) {
	pool := stubIntrospection(testutil.NewFakePool(db.DialectDuckDB)).
		Stub("SUMMARIZE", &db.ResultSet{
			Columns: []string{"column_name", "min", "max"},
			Rows:    []map[string]any{{"column_name": "id", "min": int64(1), "max": int64(9)}},
		})
	svc := profile.New(pool, catalog.New(pool))

	stats, err := svc.SummarizeTable(context.Background(), "main", "users")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "id", stats[0]["column_name"])

	var summarized bool
	for _, call := range pool.Calls() {
		if call.SQL == `SUMMARIZE SELECT * FROM "main"."users"` {
			summarized = true
		}
	}
	assert.True(t, summarized)
}

func TestSummarizeTableAggregates(t *testing.T) {
	pool := stubIntrospection(testutil.NewFakePool(db.DialectPostgres)).
		Stub("count(*) AS row_count", &db.ResultSet{
			Columns: []string{"row_count", "null_count", "approx_unique"},
			Rows:    []map[string]any{{"row_count": int64(10), "null_count": int64(0), "approx_unique": int64(10)}},
		})
	svc := profile.New(pool, catalog.New(pool))

	stats, err := svc.SummarizeTable(context.Background(), "public", "users")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "id", stats[0]["column_name"])
	assert.Equal(t, "integer", stats[0]["column_type"])

	// min/max only for ordered kinds: present for the integer column,
	// absent for the boolean one.
	var sqls []string
	for _, call := range pool.Calls() {
		sqls = append(sqls, call.SQL)
	}
	require.Len(t, sqls, 3)
	assert.Contains(t, sqls[1], "min(")
	assert.NotContains(t, sqls[2], "min(")
}

func TestSummarizeColumnUnknown(t *testing.T) {
	pool := stubIntrospection(testutil.NewFakePool(db.DialectPostgres))
	svc := profile.New(pool, catalog.New(pool))

	_, err := svc.SummarizeColumn(context.Background(), "public", "users", "bogus")
	var invalidCol *query.InvalidColumnError
	require.ErrorAs(t, err, &invalidCol)
	assert.Equal(t, "bogus", invalidCol.Column)
}

func TestDescribe(t *testing.T) {
	pool := stubIntrospection(testutil.NewFakePool(db.DialectPostgres)).
		Stub("table_constraints", &db.ResultSet{
			Columns: []string{"constraint_name", "constraint_type", "column_name"},
			Rows: []map[string]any{
				{"constraint_name": "users_pkey", "constraint_type": "PRIMARY KEY", "column_name": "id"},
			},
		})
	svc := profile.New(pool, catalog.New(pool))

	desc, err := svc.Describe(context.Background(), "public", "users")
	require.NoError(t, err)
	assert.Equal(t, "users", desc["table"])
	assert.Equal(t, "id", desc["primary_key"])
	assert.Len(t, desc["constraints"], 1)
}
